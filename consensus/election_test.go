// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"testing"

	"github.com/burst-chain/burst/ids"
)

func addr(b byte) ids.WalletAddress {
	raw := make([]byte, ids.AddressSize)
	raw[0] = b
	return ids.WalletAddress(raw)
}

func hash(b byte) ids.BlockHash {
	var h ids.BlockHash
	h[0] = b
	return h
}

// Scenario C — vote cache replay: cache votes for hash H from reps
// {r1:300, r2:200, r3:500} (non-final), start an election for the root
// containing H, and confirm the drain replays all three with tally 1000.
func TestVoteCache_ReplayIntoElection(t *testing.T) {
	cache := NewVoteCache()
	weights := NewRepWeightCache()
	weights.AddWeight(addr(1), ids.AmountFromUint64(300))
	weights.AddWeight(addr(2), ids.AmountFromUint64(200))
	weights.AddWeight(addr(3), ids.AmountFromUint64(500))

	root := hash(0xAA)
	h := hash(0x01)

	cache.Insert(root, addr(1), h, ids.AmountFromUint64(300), 100, false)
	cache.Insert(root, addr(2), h, ids.AmountFromUint64(200), 101, false)
	cache.Insert(root, addr(3), h, ids.AmountFromUint64(500), 102, false)

	online := NewOnlineWeightSampler(300, ids.ZeroAmount)
	spacing := NewVoteSpacing()
	equiv := NewEquivocationDetector(3600)
	active := NewActiveElections(weights, online, cache, spacing, equiv, 6700)

	election := active.Start(root)
	if got := election.VoterCount(); got != 3 {
		t.Fatalf("voter count = %d, want 3", got)
	}
	if got := election.Tally(h); got.Cmp(ids.AmountFromUint64(1000)) != 0 {
		t.Fatalf("tally = %+v, want 1000", got)
	}
	if cache.Len() != 0 {
		t.Fatalf("cache should be drained, len = %d", cache.Len())
	}
}

// Scenario D — equivocation penalty: R votes h10 under root E at t=1000
// (no proof). R votes h20 under E at t=1001: proof emitted, R penalized
// for 3600s. Still penalized at t=4599; expired at t=4600.
func TestEquivocationDetector_PenaltyWindow(t *testing.T) {
	d := NewEquivocationDetector(3600)
	root := hash(0xEE)
	h10, h20 := hash(0x10), hash(0x20)
	r := addr(0x01)

	if proof := d.RecordVote(r, root, h10, 1000); proof != nil {
		t.Fatalf("first vote should not produce a proof, got %+v", proof)
	}
	proof := d.RecordVote(r, root, h20, 1001)
	if proof == nil {
		t.Fatal("expected an equivocation proof on conflicting vote")
	}
	if proof.BlockA != h10 || proof.BlockB != h20 {
		t.Fatalf("proof blocks = (%v, %v), want (%v, %v)", proof.BlockA, proof.BlockB, h10, h20)
	}

	if !d.IsPenalized(r, 4599) {
		t.Fatal("rep should still be penalized at t=4599")
	}
	if d.IsPenalized(r, 4600) {
		t.Fatal("penalty should have expired at t=4600")
	}
}

// invariant 9: a penalized rep's subsequent votes are ignored by
// ActiveElections.CastVote until the penalty expires.
func TestActiveElections_PenalizedVoterIsIgnored(t *testing.T) {
	weights := NewRepWeightCache()
	r := addr(0x01)
	weights.AddWeight(r, ids.AmountFromUint64(500))

	cache := NewVoteCache()
	online := NewOnlineWeightSampler(300, ids.ZeroAmount)
	spacing := NewVoteSpacing()
	equiv := NewEquivocationDetector(3600)
	active := NewActiveElections(weights, online, cache, spacing, equiv, 6700)

	root := hash(0xEE)
	h10, h20 := hash(0x10), hash(0x20)

	active.Start(root)
	res := active.CastVote(Vote{Voter: r, ElectionRoot: root, Hash: h10, Timestamp: 1000}, 1000)
	if res != VoteAccepted {
		t.Fatalf("first vote result = %v, want VoteAccepted", res)
	}

	res = active.CastVote(Vote{Voter: r, ElectionRoot: root, Hash: h20, Timestamp: 1001}, 1001)
	if res != VoteRejectedPenalized {
		t.Fatalf("conflicting vote result = %v, want VoteRejectedPenalized", res)
	}

	res = active.CastVote(Vote{Voter: r, ElectionRoot: root, Hash: h20, Timestamp: 2000}, 2000)
	if res != VoteRejectedPenalized {
		t.Fatalf("vote during penalty = %v, want VoteRejectedPenalized", res)
	}
}

// invariant 10: VoteCache.Insert replaces a voter's cached vote only on
// a strictly higher timestamp; an equal or lower timestamp is ignored.
func TestVoteCache_DedupOnHigherTimestampOnly(t *testing.T) {
	cache := NewVoteCache()
	root := hash(0xAA)
	voter := addr(0x01)
	hOld, hNew := hash(0x01), hash(0x02)

	cache.Insert(root, voter, hOld, ids.AmountFromUint64(100), 100, false)
	cache.Insert(root, voter, hNew, ids.AmountFromUint64(999), 50, false) // lower timestamp, ignored

	tally, _ := cache.Tally(root, hOld)
	if tally.Cmp(ids.AmountFromUint64(100)) != 0 {
		t.Fatalf("old candidate tally = %+v, want 100 (lower-timestamp insert should be ignored)", tally)
	}
	tally, _ = cache.Tally(root, hNew)
	if !tally.IsZero() {
		t.Fatalf("new candidate tally = %+v, want 0", tally)
	}

	cache.Insert(root, voter, hNew, ids.AmountFromUint64(999), 200, false) // higher timestamp, replaces
	tally, _ = cache.Tally(root, hOld)
	if !tally.IsZero() {
		t.Fatalf("old candidate tally after replace = %+v, want 0", tally)
	}
	tally, _ = cache.Tally(root, hNew)
	if tally.Cmp(ids.AmountFromUint64(999)) != 0 {
		t.Fatalf("new candidate tally after replace = %+v, want 999", tally)
	}
}

func TestElection_ConfirmsAtQuorum(t *testing.T) {
	e := NewElection(hash(0xAA))
	h := hash(0x01)
	e.CastVote(addr(1), h, ids.AmountFromUint64(670), false)

	winner, ok := e.Winner(ids.AmountFromUint64(1000), 6700)
	if !ok || winner != h {
		t.Fatalf("winner = (%v, %v), want (%v, true)", winner, ok, h)
	}
}

func TestElection_BelowQuorumNotConfirmed(t *testing.T) {
	e := NewElection(hash(0xAA))
	h := hash(0x01)
	e.CastVote(addr(1), h, ids.AmountFromUint64(669), false)

	if _, ok := e.Winner(ids.AmountFromUint64(1000), 6700); ok {
		t.Fatal("669/1000 should not clear a 6700bps quorum")
	}
}

func TestElection_FinalVoteLocksVoter(t *testing.T) {
	e := NewElection(hash(0xAA))
	h1, h2 := hash(0x01), hash(0x02)
	voter := addr(1)

	e.CastVote(voter, h1, ids.AmountFromUint64(300), true)
	res := e.CastVote(voter, h2, ids.AmountFromUint64(300), false)
	if res != VoteRejectedFinal {
		t.Fatalf("re-vote after final = %v, want VoteRejectedFinal", res)
	}
	if got := e.Tally(h1); got.Cmp(ids.AmountFromUint64(300)) != 0 {
		t.Fatalf("original final vote's tally changed: %+v", got)
	}
}

func TestVoteSpacing_BlocksRapidFlip(t *testing.T) {
	s := NewVoteSpacing()
	root := hash(0xAA)
	h1, h2 := hash(0x01), hash(0x02)

	if !s.Votable(root, h1) {
		t.Fatal("first vote for a root should always be votable")
	}
	s.Record(root, h1)

	if !s.Votable(root, h1) {
		t.Fatal("reconfirming the same candidate should always be votable")
	}
	if s.Votable(root, h2) {
		t.Fatal("switching candidates immediately should be blocked by spacing")
	}
}
