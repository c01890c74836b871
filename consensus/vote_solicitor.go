// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import "github.com/burst-chain/burst/ids"

const defaultMaxSolicitations = 10

type solicitationState struct {
	blockHash         ids.BlockHash
	lastSolicited     uint64
	solicitationCount uint32
	maxSolicitations  uint32
	respondedReps     map[ids.WalletAddress]struct{}
}

// VoteSolicitor tracks which elections need active vote solicitation
// rather than passively waiting for votes to arrive, re-requesting at
// most once per interval and giving up after a maximum retry count
// (spec §4.6.5).
type VoteSolicitor struct {
	pending      map[ids.BlockHash]*solicitationState
	intervalSecs uint64
}

// NewVoteSolicitor creates a solicitor re-requesting at most once per
// intervalSecs.
func NewVoteSolicitor(intervalSecs uint64) *VoteSolicitor {
	return &VoteSolicitor{pending: make(map[ids.BlockHash]*solicitationState), intervalSecs: intervalSecs}
}

// AddElection registers root (the contested election) for solicitation
// of votes on blockHash, using the default max-solicitations budget.
// A root already registered is left untouched.
func (s *VoteSolicitor) AddElection(root, blockHash ids.BlockHash) {
	s.AddElectionWithMax(root, blockHash, defaultMaxSolicitations)
}

// AddElectionWithMax is AddElection with an explicit solicitation budget.
func (s *VoteSolicitor) AddElectionWithMax(root, blockHash ids.BlockHash, maxSolicitations uint32) {
	if _, ok := s.pending[root]; ok {
		return
	}
	s.pending[root] = &solicitationState{
		blockHash:        blockHash,
		maxSolicitations: maxSolicitations,
		respondedReps:    make(map[ids.WalletAddress]struct{}),
	}
}

// RemoveElection drops root's solicitation state (confirmed or expired).
func (s *VoteSolicitor) RemoveElection(root ids.BlockHash) {
	delete(s.pending, root)
}

// RecordVote marks rep as having responded for root, so future
// solicitation rounds skip them.
func (s *VoteSolicitor) RecordVote(root ids.BlockHash, rep ids.WalletAddress) {
	if state, ok := s.pending[root]; ok {
		state.respondedReps[rep] = struct{}{}
	}
}

// SolicitationTarget is one election that needs another round of
// solicitation, and the reps that haven't yet responded.
type SolicitationTarget struct {
	BlockHash  ids.BlockHash
	TargetReps []ids.WalletAddress
}

// ElectionsNeedingSolicitation returns the elections due for another
// solicitation round at time now: not yet at their retry limit, not
// solicited within the last intervalSecs, and with at least one
// not-yet-responded rep in allReps.
func (s *VoteSolicitor) ElectionsNeedingSolicitation(now uint64, allReps []ids.WalletAddress) []SolicitationTarget {
	var results []SolicitationTarget

	for _, state := range s.pending {
		if state.solicitationCount >= state.maxSolicitations {
			continue
		}
		if state.lastSolicited > 0 && now-state.lastSolicited < s.intervalSecs {
			continue
		}

		var targets []ids.WalletAddress
		for _, r := range allReps {
			if _, responded := state.respondedReps[r]; !responded {
				targets = append(targets, r)
			}
		}

		if len(targets) > 0 {
			state.lastSolicited = now
			state.solicitationCount++
			results = append(results, SolicitationTarget{BlockHash: state.blockHash, TargetReps: targets})
		}
	}

	return results
}

// ActiveCount returns the number of elections currently being solicited.
func (s *VoteSolicitor) ActiveCount() int { return len(s.pending) }

// Contains reports whether root is being solicited.
func (s *VoteSolicitor) Contains(root ids.BlockHash) bool {
	_, ok := s.pending[root]
	return ok
}

// RespondedCount returns how many reps have responded for root.
func (s *VoteSolicitor) RespondedCount(root ids.BlockHash) int {
	state, ok := s.pending[root]
	if !ok {
		return 0
	}
	return len(state.respondedReps)
}

// SolicitationCount returns how many rounds have been sent for root.
func (s *VoteSolicitor) SolicitationCount(root ids.BlockHash) uint32 {
	state, ok := s.pending[root]
	if !ok {
		return 0
	}
	return state.solicitationCount
}

// PruneExhausted removes elections that have hit their solicitation
// budget and returns the pruned roots.
func (s *VoteSolicitor) PruneExhausted() []ids.BlockHash {
	var exhausted []ids.BlockHash
	for root, state := range s.pending {
		if state.solicitationCount >= state.maxSolicitations {
			exhausted = append(exhausted, root)
		}
	}
	for _, root := range exhausted {
		delete(s.pending, root)
	}
	return exhausted
}
