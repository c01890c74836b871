// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import "github.com/burst-chain/burst/ids"

// PendingRequest is one batched vote request: a block hash and the
// peer ids that asked for a vote on it.
type PendingRequest struct {
	Hash  ids.BlockHash
	Peers []string
}

// RequestAggregator batches inbound vote requests so that when
// multiple peers ask about the same block, the node generates one
// vote and sends copies to every requester instead of one per peer
// (spec §4.6.5).
type RequestAggregator struct {
	pending   map[ids.BlockHash][]string
	queue     []ids.BlockHash
	maxPending int
	batchSize  int
}

// NewRequestAggregator creates an aggregator bounded at maxPending
// distinct block hashes, dequeuing batchSize per NextBatch call.
func NewRequestAggregator(maxPending, batchSize int) *RequestAggregator {
	return &RequestAggregator{
		pending:    make(map[ids.BlockHash][]string),
		maxPending: maxPending,
		batchSize:  batchSize,
	}
}

// AddRequest records peerID's request for a vote on blockHash. If
// blockHash is already pending, peerID is appended (deduplicated). A
// brand-new blockHash is dropped if the aggregator is at capacity.
func (a *RequestAggregator) AddRequest(blockHash ids.BlockHash, peerID string) {
	peers, exists := a.pending[blockHash]
	if !exists {
		if len(a.pending) >= a.maxPending {
			return
		}
		a.queue = append(a.queue, blockHash)
	}
	for _, p := range peers {
		if p == peerID {
			return
		}
	}
	a.pending[blockHash] = append(peers, peerID)
}

// NextBatch dequeues up to batchSize pending requests in FIFO order,
// clearing them from the aggregator's state.
func (a *RequestAggregator) NextBatch() []PendingRequest {
	count := a.batchSize
	if count > len(a.queue) {
		count = len(a.queue)
	}
	batch := make([]PendingRequest, 0, count)
	for i := 0; i < count; i++ {
		h := a.queue[0]
		a.queue = a.queue[1:]
		if peers, ok := a.pending[h]; ok {
			delete(a.pending, h)
			batch = append(batch, PendingRequest{Hash: h, Peers: peers})
		}
	}
	return batch
}

// PendingCount returns the number of distinct block hashes pending.
func (a *RequestAggregator) PendingCount() int { return len(a.pending) }

// HasPending reports whether any requests are waiting to be processed.
func (a *RequestAggregator) HasPending() bool { return len(a.queue) > 0 }
