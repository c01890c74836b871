// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package verification

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/burst-chain/burst/ids"
)

// VerifierVote is a selected verifier's judgment on the target wallet
// (spec §4.10 step 3).
type VerifierVote uint8

const (
	Legitimate VerifierVote = iota
	Illegitimate
	Neither
)

// ErrNotSelected is returned when a vote arrives from an address that
// was not among the round's selected verifiers.
var ErrNotSelected = errors.New("verification: voter not selected for this round")

// ErrAlreadyVoted is returned on a duplicate vote from one verifier.
var ErrAlreadyVoted = errors.New("verification: verifier already voted this round")

// Round is one in-flight verification of a single target wallet:
// verifiers were selected once (from the pool, using the round's
// randomness) and are now casting votes.
type Round struct {
	Target     ids.WalletAddress
	Randomness []byte
	Verifiers  []ids.WalletAddress
	selected   map[ids.WalletAddress]struct{}
	voted      map[ids.WalletAddress]VerifierVote
	votesFor   uint32
	votesAgainst uint32
}

func newRound(target ids.WalletAddress, randomness []byte, verifiers []ids.WalletAddress) *Round {
	selected := make(map[ids.WalletAddress]struct{}, len(verifiers))
	for _, v := range verifiers {
		selected[v] = struct{}{}
	}
	return &Round{
		Target:     target,
		Randomness: randomness,
		Verifiers:  verifiers,
		selected:   selected,
		voted:      make(map[ids.WalletAddress]VerifierVote),
	}
}

// VotesFor returns the number of Legitimate votes cast so far.
func (r *Round) VotesFor() uint32 { return r.votesFor }

// VotesAgainst returns the number of Illegitimate votes cast so far;
// Neither votes count toward participation but neither tally.
func (r *Round) VotesAgainst() uint32 { return r.votesAgainst }

// RoundManager orchestrates verification rounds end to end (spec
// §4.10): checking the endorsement gate, selecting verifiers via
// SelectVerifiers once gated, and tallying votes to a terminal
// Outcome.
type RoundManager struct {
	mu         sync.Mutex
	proc       *Processor
	pool       *VerifierPool
	endorsements *EndorsementTracker
	rounds     map[ids.WalletAddress]*Round
}

// NewRoundManager wires a RoundManager over the given processor, pool
// and endorsement tracker.
func NewRoundManager(proc *Processor, pool *VerifierPool, endorsements *EndorsementTracker) *RoundManager {
	return &RoundManager{
		proc:         proc,
		pool:         pool,
		endorsements: endorsements,
		rounds:       make(map[ids.WalletAddress]*Round),
	}
}

// Endorse records an endorsement for target and, once the endorsement
// threshold is cleared and no round is already active, starts a new
// round by selecting verifiers from the pool using randomness. Returns
// the started round, or nil if the gate has not yet been cleared or a
// round for target is already in flight.
func (m *RoundManager) Endorse(target, endorser ids.WalletAddress, randomness []byte) *Round {
	count := m.endorsements.Endorse(target, endorser)
	if !m.proc.CheckEndorsements(count) {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, active := m.rounds[target]; active {
		return nil
	}

	selected := SelectVerifiers(randomness, m.pool.Pool(), int(m.proc.VerifierCount()))
	round := newRound(target, randomness, selected)
	m.rounds[target] = round
	return round
}

// Vote records voter's verdict for target's active round and returns
// the outcome after tallying. Pending is returned (with no error)
// until the participation threshold is met; the round is removed once
// it resolves to Verified or Rejected.
func (m *RoundManager) Vote(target, voter ids.WalletAddress, vote VerifierVote) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	round, ok := m.rounds[target]
	if !ok {
		return Pending, errors.New("verification: no active round for target")
	}
	if _, selected := round.selected[voter]; !selected {
		return Pending, ErrNotSelected
	}
	if _, already := round.voted[voter]; already {
		return Pending, ErrAlreadyVoted
	}

	round.voted[voter] = vote
	switch vote {
	case Legitimate:
		round.votesFor++
	case Illegitimate:
		round.votesAgainst++
	}

	outcome := m.proc.ProcessVotes(round.votesFor, round.votesAgainst, uint32(len(round.Verifiers)))
	if outcome != Pending {
		delete(m.rounds, target)
		m.endorsements.Clear(target)
	}
	return outcome, nil
}

// ActiveRound returns target's in-flight round, if any.
func (m *RoundManager) ActiveRound(target ids.WalletAddress) (*Round, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[target]
	return r, ok
}
