// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"testing"

	"github.com/burst-chain/burst/ids"
)

func TestVoteSolicitor_AddAndRemoveElection(t *testing.T) {
	s := NewVoteSolicitor(5)
	s.AddElection(hash(1), hash(101))

	if s.ActiveCount() != 1 || !s.Contains(hash(1)) {
		t.Fatal("expected election to be tracked")
	}
	s.RemoveElection(hash(1))
	if s.ActiveCount() != 0 || s.Contains(hash(1)) {
		t.Fatal("expected election to be removed")
	}
}

func TestVoteSolicitor_DuplicateAddIsNoop(t *testing.T) {
	s := NewVoteSolicitor(5)
	s.AddElection(hash(1), hash(101))
	s.AddElection(hash(1), hash(102))
	if s.ActiveCount() != 1 {
		t.Fatalf("expected 1 election, got %d", s.ActiveCount())
	}
}

func TestVoteSolicitor_ReturnsAllRepsInitially(t *testing.T) {
	s := NewVoteSolicitor(5)
	s.AddElection(hash(1), hash(101))

	reps := []ids.WalletAddress{addr(1), addr(2), addr(3)}
	results := s.ElectionsNeedingSolicitation(100, reps)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].BlockHash != hash(101) || len(results[0].TargetReps) != 3 {
		t.Fatalf("unexpected result: %+v", results[0])
	}
}

func TestVoteSolicitor_ExcludesRespondedReps(t *testing.T) {
	s := NewVoteSolicitor(5)
	s.AddElection(hash(1), hash(101))
	s.RecordVote(hash(1), addr(1))

	reps := []ids.WalletAddress{addr(1), addr(2), addr(3)}
	results := s.ElectionsNeedingSolicitation(100, reps)

	if len(results) != 1 || len(results[0].TargetReps) != 2 {
		t.Fatalf("expected 2 remaining targets, got %+v", results)
	}
	for _, r := range results[0].TargetReps {
		if r == addr(1) {
			t.Fatal("responded rep should be excluded")
		}
	}
}

func TestVoteSolicitor_RespectsInterval(t *testing.T) {
	s := NewVoteSolicitor(10)
	s.AddElection(hash(1), hash(101))
	reps := []ids.WalletAddress{addr(1)}

	if len(s.ElectionsNeedingSolicitation(100, reps)) != 1 {
		t.Fatal("expected first solicitation at t=100")
	}
	if len(s.ElectionsNeedingSolicitation(105, reps)) != 0 {
		t.Fatal("expected no solicitation at t=105 (only 5s elapsed)")
	}
	if len(s.ElectionsNeedingSolicitation(110, reps)) != 1 {
		t.Fatal("expected solicitation at t=110 (10s elapsed)")
	}
}

func TestVoteSolicitor_RespectsMaxCount(t *testing.T) {
	s := NewVoteSolicitor(1)
	s.AddElectionWithMax(hash(1), hash(101), 2)
	reps := []ids.WalletAddress{addr(1)}

	if len(s.ElectionsNeedingSolicitation(0, reps)) != 1 {
		t.Fatal("expected round 1")
	}
	if len(s.ElectionsNeedingSolicitation(10, reps)) != 1 {
		t.Fatal("expected round 2")
	}
	if len(s.ElectionsNeedingSolicitation(20, reps)) != 0 {
		t.Fatal("expected round 3 to be suppressed (max exceeded)")
	}
	if s.SolicitationCount(hash(1)) != 2 {
		t.Fatalf("expected solicitation count 2, got %d", s.SolicitationCount(hash(1)))
	}
}

func TestVoteSolicitor_NoSolicitationWhenAllRespondend(t *testing.T) {
	s := NewVoteSolicitor(1)
	s.AddElection(hash(1), hash(101))
	s.RecordVote(hash(1), addr(1))
	s.RecordVote(hash(1), addr(2))

	reps := []ids.WalletAddress{addr(1), addr(2)}
	results := s.ElectionsNeedingSolicitation(100, reps)
	if len(results) != 0 {
		t.Fatalf("expected no solicitation, got %+v", results)
	}
	if s.RespondedCount(hash(1)) != 2 {
		t.Fatalf("expected responded count 2, got %d", s.RespondedCount(hash(1)))
	}
}

func TestVoteSolicitor_RecordVoteForUnknownElectionIsNoop(t *testing.T) {
	s := NewVoteSolicitor(5)
	s.RecordVote(hash(99), addr(1))
	if s.ActiveCount() != 0 {
		t.Fatal("expected no elections tracked")
	}
}

func TestVoteSolicitor_PruneExhausted(t *testing.T) {
	s := NewVoteSolicitor(0)
	s.AddElectionWithMax(hash(1), hash(101), 1)
	s.AddElectionWithMax(hash(2), hash(102), 10)

	reps := []ids.WalletAddress{addr(1)}
	s.ElectionsNeedingSolicitation(0, reps)

	pruned := s.PruneExhausted()
	if len(pruned) != 1 || pruned[0] != hash(1) {
		t.Fatalf("expected hash(1) pruned, got %v", pruned)
	}
	if s.ActiveCount() != 1 {
		t.Fatalf("expected 1 remaining, got %d", s.ActiveCount())
	}
}

func TestVoteSolicitor_MultipleElectionsIndependent(t *testing.T) {
	s := NewVoteSolicitor(5)
	s.AddElection(hash(1), hash(101))
	s.AddElection(hash(2), hash(102))

	reps := []ids.WalletAddress{addr(1), addr(2)}
	results := s.ElectionsNeedingSolicitation(100, reps)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	s.RecordVote(hash(1), addr(1))
	results2 := s.ElectionsNeedingSolicitation(110, reps)
	if len(results2) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results2))
	}
	for _, r := range results2 {
		if r.BlockHash == hash(101) && len(r.TargetReps) != 1 {
			t.Fatalf("expected 1 remaining target for election 1, got %+v", r)
		}
	}
}
