// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import "github.com/burst-chain/burst/ids"

// maxRecentRebroadcasts bounds the rebroadcaster's dedup set.
const maxRecentRebroadcasts = 65536

// VoteRebroadcaster relays votes seen from other representatives so
// they reach peers without a direct connection to the original voter
// (spec §4.6.3's rebroadcast fanout), rebroadcasting only
// sufficiently-weighted votes and deduplicating against a bounded
// recent-hash window.
type VoteRebroadcaster struct {
	recent      map[[ids.HashSize]byte]struct{}
	recentOrder [][ids.HashSize]byte
	minWeight   ids.Amount
	maxRecent   int
}

// NewVoteRebroadcaster creates a rebroadcaster that only relays votes
// from reps with at least minWeight.
func NewVoteRebroadcaster(minWeight ids.Amount) *VoteRebroadcaster {
	return &VoteRebroadcaster{
		recent:    make(map[[ids.HashSize]byte]struct{}),
		minWeight: minWeight,
		maxRecent: maxRecentRebroadcasts,
	}
}

// ShouldRebroadcast reports whether voteHash should be relayed: the
// voter's weight must meet minWeight and the hash must not have been
// rebroadcast recently. A true result also records voteHash as seen.
func (r *VoteRebroadcaster) ShouldRebroadcast(voteHash [ids.HashSize]byte, voterWeight ids.Amount) bool {
	if voterWeight.Cmp(r.minWeight) < 0 {
		return false
	}
	if _, ok := r.recent[voteHash]; ok {
		return false
	}

	if len(r.recent) >= r.maxRecent && len(r.recentOrder) > 0 {
		oldest := r.recentOrder[0]
		r.recentOrder = r.recentOrder[1:]
		delete(r.recent, oldest)
	}
	r.recent[voteHash] = struct{}{}
	r.recentOrder = append(r.recentOrder, voteHash)
	return true
}

// RecentCount returns the number of recently tracked vote hashes.
func (r *VoteRebroadcaster) RecentCount() int { return len(r.recent) }

// Clear drops all dedup state.
func (r *VoteRebroadcaster) Clear() {
	r.recent = make(map[[ids.HashSize]byte]struct{})
	r.recentOrder = nil
}
