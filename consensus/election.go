// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"sync"

	"github.com/burst-chain/burst/ids"
)

// VoteResult reports the effect CastVote had on an election's tally.
type VoteResult int

const (
	// VoteAccepted is the first vote recorded from this representative.
	VoteAccepted VoteResult = iota
	// VoteUpdated replaced a prior non-final vote from this representative.
	VoteUpdated
	// VoteRejectedFinal means the representative's earlier final vote is
	// locked and cannot be changed.
	VoteRejectedFinal
	// VoteRejectedSpacing means the vote arrived sooner than the minimum
	// spacing interval after the last recorded change for this root.
	VoteRejectedSpacing
	// VoteRejectedPenalized means the rep is serving an equivocation
	// penalty and its votes are ignored until it expires.
	VoteRejectedPenalized
)

type repVote struct {
	block    ids.BlockHash
	weight   ids.Amount
	isFinal  bool
	sequence uint64
}

// Election tracks one contested (account, previous) root's candidate
// blocks and tallies representative votes toward the 67% quorum (spec
// §4.6.4). A single Election is not safe for concurrent use without its
// own external lock; ActiveElections below handles that.
type Election struct {
	Root ids.BlockHash

	mu        sync.Mutex
	votes     map[ids.WalletAddress]*repVote
	tally     map[ids.BlockHash]ids.Amount
	finalTally map[ids.BlockHash]ids.Amount
	confirmed  *ids.BlockHash
}

// NewElection starts an election over root with no votes cast.
func NewElection(root ids.BlockHash) *Election {
	return &Election{
		Root:       root,
		votes:      make(map[ids.WalletAddress]*repVote),
		tally:      make(map[ids.BlockHash]ids.Amount),
		finalTally: make(map[ids.BlockHash]ids.Amount),
	}
}

// CastVote records one representative's vote for candidate. effectiveWeight
// is the rep's current effective weight (spec §4.6.2); isFinal votes are
// locked against further change by the same rep.
func (e *Election) CastVote(voter ids.WalletAddress, candidate ids.BlockHash, weight ids.Amount, isFinal bool) VoteResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, ok := e.votes[voter]
	if ok {
		if existing.isFinal {
			return VoteRejectedFinal
		}
		e.tally[existing.block] = e.tally[existing.block].Sub(existing.weight)
		if existing.isFinal {
			e.finalTally[existing.block] = e.finalTally[existing.block].Sub(existing.weight)
		}
		e.votes[voter] = &repVote{block: candidate, weight: weight, isFinal: isFinal, sequence: existing.sequence + 1}
		e.tally[candidate] = e.tally[candidate].Add(weight)
		if isFinal {
			e.finalTally[candidate] = e.finalTally[candidate].Add(weight)
		}
		return VoteUpdated
	}

	e.votes[voter] = &repVote{block: candidate, weight: weight, isFinal: isFinal, sequence:1}
	e.tally[candidate] = e.tally[candidate].Add(weight)
	if isFinal {
		e.finalTally[candidate] = e.finalTally[candidate].Add(weight)
	}
	return VoteAccepted
}

// Tally returns the accumulated weight for candidate.
func (e *Election) Tally(candidate ids.BlockHash) ids.Amount {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tally[candidate]
}

// FinalTally returns the accumulated final-vote weight for candidate.
func (e *Election) FinalTally(candidate ids.BlockHash) ids.Amount {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finalTally[candidate]
}

// VoterCount returns the number of distinct representatives who have
// voted in this election.
func (e *Election) VoterCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.votes)
}

// Winner returns the first candidate whose tally clears the quorum
// against effectiveWeight, and true, or (zero, false) if none has yet.
// A block with final-vote tally alone clearing quorum also confirms
// immediately (spec §4.6.4: final votes count toward both tallies).
func (e *Election) Winner(effectiveWeight ids.Amount, quorumBps uint32) (ids.BlockHash, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.confirmed != nil {
		return *e.confirmed, true
	}
	for candidate, weight := range e.tally {
		if ids.GreaterOrEqualBps(weight, quorumBps, effectiveWeight) {
			c := candidate
			e.confirmed = &c
			return c, true
		}
	}
	return ids.BlockHash{}, false
}

// ActiveElections coordinates in-flight elections with the shared rep
// weight, online weight, vote cache, vote spacing and equivocation
// machinery, so a single CastVote call path enforces every invariant
// in spec §4.6.4.
type ActiveElections struct {
	mu         sync.Mutex
	elections  map[ids.BlockHash]*Election
	weights    *RepWeightCache
	online     *OnlineWeightSampler
	cache      *VoteCache
	spacing    *VoteSpacing
	equivocation *EquivocationDetector
	quorumBps  uint32
}

// NewActiveElections wires the consensus primitives together.
func NewActiveElections(weights *RepWeightCache, online *OnlineWeightSampler, cache *VoteCache, spacing *VoteSpacing, equivocation *EquivocationDetector, quorumBps uint32) *ActiveElections {
	return &ActiveElections{
		elections:    make(map[ids.BlockHash]*Election),
		weights:      weights,
		online:       online,
		cache:        cache,
		spacing:      spacing,
		equivocation: equivocation,
		quorumBps:    quorumBps,
	}
}

// Start begins an election for root, replaying any votes the vote cache
// accumulated before the election existed (spec §4.6.3).
func (a *ActiveElections) Start(root ids.BlockHash) *Election {
	a.mu.Lock()
	if e, ok := a.elections[root]; ok {
		a.mu.Unlock()
		return e
	}
	e := NewElection(root)
	a.elections[root] = e
	a.mu.Unlock()

	for _, v := range a.cache.Drain(root) {
		weight := a.weights.Weight(v.Voter)
		e.CastVote(v.Voter, v.Hash, weight, v.IsFinal)
	}
	return e
}

// Get returns the active election for root, if any.
func (a *ActiveElections) Get(root ids.BlockHash) (*Election, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.elections[root]
	return e, ok
}

// CastVote routes a vote through spacing and equivocation checks before
// applying it to its election root (or caching it, if the root has no
// active election yet).
func (a *ActiveElections) CastVote(v Vote, now uint64) VoteResult {
	if a.equivocation.IsPenalized(v.Voter, now) {
		return VoteRejectedPenalized
	}
	if proof := a.equivocation.RecordVote(v.Voter, v.ElectionRoot, v.Hash, now); proof != nil {
		return VoteRejectedPenalized
	}
	if !a.spacing.Votable(v.ElectionRoot, v.Hash) {
		return VoteRejectedSpacing
	}
	a.spacing.Record(v.ElectionRoot, v.Hash)
	a.online.RecordVote(v.Voter, v.Timestamp)

	weight := a.weights.Weight(v.Voter)

	a.mu.Lock()
	e, ok := a.elections[v.ElectionRoot]
	a.mu.Unlock()
	if !ok {
		a.cache.Insert(v.ElectionRoot, v.Voter, v.Hash, weight, v.Timestamp, v.IsFinal)
		return VoteAccepted
	}
	return e.CastVote(v.Voter, v.Hash, weight, v.IsFinal)
}

// CheckWinner reports whether root's election has confirmed a winner.
func (a *ActiveElections) CheckWinner(root ids.BlockHash) (ids.BlockHash, bool) {
	a.mu.Lock()
	e, ok := a.elections[root]
	a.mu.Unlock()
	if !ok {
		return ids.BlockHash{}, false
	}
	weights := a.weights.AllWeights()
	effective := a.online.EffectiveWeight(0, weights)
	return e.Winner(effective, a.quorumBps)
}

// Stop removes root's election once it has resolved.
func (a *ActiveElections) Stop(root ids.BlockHash) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.elections, root)
}

// Count returns the number of currently active elections.
func (a *ActiveElections) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.elections)
}
