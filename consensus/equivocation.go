// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"sync"

	"github.com/burst-chain/burst/ids"
)

// EquivocationProof is evidence a representative voted for two
// different blocks within the same election (spec §4.6.3).
type EquivocationProof struct {
	Representative ids.WalletAddress
	BlockA, BlockB ids.BlockHash
	ElectionRoot   ids.BlockHash
	DetectedAt     uint64
}

type votedKey struct {
	rep  ids.WalletAddress
	root ids.BlockHash
}

// EquivocationDetector tracks the first block each (rep, election)
// pair voted for, and penalizes a rep caught voting for a second,
// different block under the same election (spec invariant 9). The
// penalty runs for penaltyDuration from the time of the rep's first
// vote under that election.
type EquivocationDetector struct {
	mu              sync.Mutex
	votes           map[votedKey]ids.BlockHash
	firstVoteAt     map[votedKey]uint64
	proofs          []EquivocationProof
	penaltyDuration uint64
	penalties       map[ids.WalletAddress]uint64
}

// NewEquivocationDetector creates a detector with the given penalty
// duration in seconds (spec default: 3600).
func NewEquivocationDetector(penaltyDurationSecs uint64) *EquivocationDetector {
	return &EquivocationDetector{
		votes:           make(map[votedKey]ids.BlockHash),
		penaltyDuration: penaltyDurationSecs,
		penalties:       make(map[ids.WalletAddress]uint64),
	}
}

// RecordVote records rep's vote for votedFor under electionRoot at now.
// Returns a non-nil proof if this conflicts with an earlier vote from
// the same rep under the same election.
func (d *EquivocationDetector) RecordVote(rep ids.WalletAddress, electionRoot, votedFor ids.BlockHash, now uint64) *EquivocationProof {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := votedKey{rep: rep, root: electionRoot}
	existing, ok := d.votes[key]
	if !ok {
		if d.firstVoteAt == nil {
			d.firstVoteAt = make(map[votedKey]uint64)
		}
		d.votes[key] = votedFor
		d.firstVoteAt[key] = now
		return nil
	}
	if existing == votedFor {
		return nil
	}

	proof := EquivocationProof{
		Representative: rep,
		BlockA:         existing,
		BlockB:         votedFor,
		ElectionRoot:   electionRoot,
		DetectedAt:     now,
	}
	d.proofs = append(d.proofs, proof)
	d.penalties[rep] = d.firstVoteAt[key] + d.penaltyDuration
	return &proof
}

// IsPenalized reports whether rep's equivocation penalty is still in
// effect at now.
func (d *EquivocationDetector) IsPenalized(rep ids.WalletAddress, now uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	expires, ok := d.penalties[rep]
	return ok && now < expires
}

// Proofs returns every equivocation proof recorded so far.
func (d *EquivocationDetector) Proofs() []EquivocationProof {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]EquivocationProof(nil), d.proofs...)
}
