// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package trst

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/burst-chain/burst/ids"
)

// ErrUnknownMergeSource is returned by RegisterMerge when a source
// references neither a registered origin nor a registered merge node.
var ErrUnknownMergeSource = errors.New("trst: merge source is neither a known origin nor a known merge")

// MergeSource is one constituent of a merge: either a burn origin or a
// prior merge transaction, together with the amount it contributed.
type MergeSource struct {
	ID     ids.TxHash
	Amount ids.Amount
}

// MergeNode is the merger graph's per-merge record (spec §4.3).
type MergeNode struct {
	ID      ids.TxHash
	Holder  ids.WalletAddress
	Total   ids.Amount
	Sources []MergeSource
}

// RevocationEvent reports one current holder whose token descends from
// a revoked origin, and the proportional share attributable to it
// (spec §4.3).
type RevocationEvent struct {
	Holder        ids.WalletAddress
	MergeTx       ids.TxHash
	RevokedAmount ids.Amount
	TotalAmount   ids.Amount
}

// MergerGraph is the forward index enabling O(k) revocation propagation
// instead of O(n) backward traversal: origin -> [merge_tx],
// merge_tx -> MergeNode, merge_tx -> [downstream merge_tx] (spec §3).
type MergerGraph struct {
	mu            sync.RWMutex
	originAmounts map[ids.TxHash]ids.Amount
	originEdges   map[ids.TxHash][]ids.TxHash
	nodes         map[ids.TxHash]*MergeNode
	downstream    map[ids.TxHash][]ids.TxHash
}

// NewMergerGraph creates an empty graph.
func NewMergerGraph() *MergerGraph {
	return &MergerGraph{
		originAmounts: make(map[ids.TxHash]ids.Amount),
		originEdges:   make(map[ids.TxHash][]ids.TxHash),
		nodes:         make(map[ids.TxHash]*MergeNode),
		downstream:    make(map[ids.TxHash][]ids.TxHash),
	}
}

// RegisterOrigin records a burn origin's minted amount. Must be called
// before any merge referencing it is registered.
func (g *MergerGraph) RegisterOrigin(origin ids.TxHash, amount ids.Amount) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.originAmounts[origin] = amount
}

// RegisterMerge adds a new merge node and wires its forward edges: each
// source that is a known origin gets an origin->merge edge; each source
// that is a known prior merge gets a merge->merge downstream edge.
func (g *MergerGraph) RegisterMerge(node *MergeNode) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, src := range node.Sources {
		switch {
		case g.isOriginLocked(src.ID):
			g.originEdges[src.ID] = append(g.originEdges[src.ID], node.ID)
		case g.nodes[src.ID] != nil:
			g.downstream[src.ID] = append(g.downstream[src.ID], node.ID)
		default:
			return errors.Wrapf(ErrUnknownMergeSource, "source %s in merge %s", src.ID, node.ID)
		}
	}
	g.nodes[node.ID] = node
	return nil
}

func (g *MergerGraph) isOriginLocked(id ids.TxHash) bool {
	_, ok := g.originAmounts[id]
	return ok
}

func sourceAmount(node *MergeNode, id ids.TxHash) (ids.Amount, bool) {
	for _, s := range node.Sources {
		if s.ID == id {
			return s.Amount, true
		}
	}
	return ids.Amount{}, false
}

// Revoke forward-propagates the revocation of origin through the merger
// graph, stopping at leaves (nodes with no downstream merge): every
// current holder whose token descends from origin receives exactly one
// RevocationEvent, whose RevokedAmount is origin's proportional
// contribution computed as the product of each hop's
// (contributed_amount / node_total) ratio, times origin's own minted
// amount (spec §4.3, invariant 11).
func (g *MergerGraph) Revoke(origin ids.TxHash) []RevocationEvent {
	g.mu.RLock()
	defer g.mu.RUnlock()

	originAmount, ok := g.originAmounts[origin]
	if !ok {
		return nil
	}

	var events []RevocationEvent
	for _, first := range g.originEdges[origin] {
		node := g.nodes[first]
		if node == nil {
			continue
		}
		amt, ok := sourceAmount(node, origin)
		if !ok {
			continue
		}
		g.walk(node, originAmount, amt.BigInt(), node.Total.BigInt(), &events)
	}
	return events
}

func (g *MergerGraph) walk(node *MergeNode, originAmount ids.Amount, num, den *big.Int, events *[]RevocationEvent) {
	children := g.downstream[node.ID]
	if len(children) == 0 {
		*events = append(*events, RevocationEvent{
			Holder:        node.Holder,
			MergeTx:       node.ID,
			RevokedAmount: ids.MulDiv(originAmount, num, den),
			TotalAmount:   node.Total,
		})
		return
	}
	for _, childID := range children {
		child := g.nodes[childID]
		if child == nil {
			continue
		}
		contributed, ok := sourceAmount(child, node.ID)
		if !ok {
			continue
		}
		newNum := new(big.Int).Mul(num, contributed.BigInt())
		newDen := new(big.Int).Mul(den, child.Total.BigInt())
		g.walk(child, originAmount, newNum, newDen, events)
	}
}
