// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package p2p

import (
	"math/rand"
)

// outboundFrame pairs a destination peer id with the bytes to send it,
// the unit of work handed to the connection layer's send loop.
type outboundFrame struct {
	peerID string
	data   []byte
}

// BroadcastResult tallies a broadcast attempt across a peer set.
type BroadcastResult struct {
	Sent   int
	Failed int
}

// Broadcaster fans messages out to peers over a single outbound queue,
// decoupling flood/subset selection from the per-connection write loop
// (spec §4.7.1's keepalive/vote/block flooding and §4.6.5's solicited
// retransmission both funnel through here).
type Broadcaster struct {
	outbound chan outboundFrame
}

// NewBroadcaster creates a broadcaster with the given outbound queue
// depth; sends to a full queue count as failures rather than blocking.
func NewBroadcaster(queueDepth int) *Broadcaster {
	return &Broadcaster{outbound: make(chan outboundFrame, queueDepth)}
}

// Outbound exposes the send queue for the connection layer to drain.
func (b *Broadcaster) Outbound() <-chan outboundFrame { return b.outbound }

func (b *Broadcaster) trySend(peerID string, data []byte) bool {
	select {
	case b.outbound <- outboundFrame{peerID: peerID, data: data}:
		return true
	default:
		return false
	}
}

// eligiblePeerIDs filters peers to those connected and not banned,
// returning their manager keys alongside the states for random subset
// sampling.
func eligiblePeerIDs(peers map[string]*PeerState) []string {
	ids := make([]string, 0, len(peers))
	for id, s := range peers {
		if s.Connected && !s.Banned {
			ids = append(ids, id)
		}
	}
	return ids
}

// BroadcastToAll sends msg to every connected, unbanned peer in peers.
func (b *Broadcaster) BroadcastToAll(msg []byte, peers map[string]*PeerState) BroadcastResult {
	var res BroadcastResult
	for _, id := range eligiblePeerIDs(peers) {
		if b.trySend(id, msg) {
			res.Sent++
		} else {
			res.Failed++
		}
	}
	return res
}

// BroadcastToSubset sends msg to a uniformly random subset of k
// eligible peers (spec §4.6.3's rebroadcast fanout), or all of them if
// fewer than k are eligible.
func (b *Broadcaster) BroadcastToSubset(msg []byte, peers map[string]*PeerState, k int) BroadcastResult {
	eligible := eligiblePeerIDs(peers)
	if k < len(eligible) {
		rand.Shuffle(len(eligible), func(i, j int) { eligible[i], eligible[j] = eligible[j], eligible[i] })
		eligible = eligible[:k]
	}

	var res BroadcastResult
	for _, id := range eligible {
		if b.trySend(id, msg) {
			res.Sent++
		} else {
			res.Failed++
		}
	}
	return res
}
