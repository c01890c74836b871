// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package verification

import "math"

// Outcome is the result of tallying verification votes (spec §4.10
// step 4).
type Outcome uint8

const (
	// Pending means not enough verifiers have voted yet.
	Pending Outcome = iota
	// Verified means the subject wallet was confirmed a unique human.
	Verified
	// Rejected means the subject wallet was not confirmed.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Verified:
		return "verified"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Processor orchestrates the end-to-end verification flow: checking
// the endorsement gate and tallying verifier votes once a round is
// underway.
type Processor struct {
	endorsementThreshold uint32
	verifierCount        uint32
	voteThresholdBps      uint32 // basis points, e.g. 6700 = 67%
}

// NewProcessor builds a Processor from the protocol's governable
// thresholds (spec §4.10): endorsementThreshold endorsements required
// to begin verification, verifierCount verifiers selected per round,
// voteThresholdBps the basis-points fraction of verifiers that must
// participate before the outcome is decided.
func NewProcessor(endorsementThreshold, verifierCount, voteThresholdBps uint32) *Processor {
	return &Processor{
		endorsementThreshold: endorsementThreshold,
		verifierCount:        verifierCount,
		voteThresholdBps:      voteThresholdBps,
	}
}

// CheckEndorsements reports whether endorsementCount clears the gate
// to begin verifier selection.
func (p *Processor) CheckEndorsements(endorsementCount uint32) bool {
	return endorsementCount >= p.endorsementThreshold
}

// VerifierCount returns the configured number of verifiers selected
// per verification round.
func (p *Processor) VerifierCount() uint32 { return p.verifierCount }

// ProcessVotes tallies votesFor/votesAgainst out of totalVerifiers
// selected and returns the outcome. Pending until total participation
// reaches ceil(totalVerifiers * voteThresholdBps / 10000); then
// Verified if votesFor strictly exceeds votesAgainst, else Rejected
// (a tie rejects).
func (p *Processor) ProcessVotes(votesFor, votesAgainst, totalVerifiers uint32) Outcome {
	total := votesFor + votesAgainst
	required := uint32(math.Ceil(float64(totalVerifiers) * float64(p.voteThresholdBps) / 10000.0))

	if total < required {
		return Pending
	}
	if votesFor > votesAgainst {
		return Verified
	}
	return Rejected
}
