// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import "testing"

func TestBacklogScanner_NewIsEmpty(t *testing.T) {
	s := NewBacklogScanner(100, 30)
	if !s.IsEmpty() || s.Len() != 0 || s.Capacity() != 100 || s.MinAgeSecs() != 30 {
		t.Fatalf("unexpected initial state: %+v", s)
	}
}

func TestBacklogScanner_AddAndLen(t *testing.T) {
	s := NewBacklogScanner(100, 30)
	s.Add(hash(1))
	s.Add(hash(2))
	s.Add(hash(3))
	if s.Len() != 3 || s.IsEmpty() {
		t.Fatalf("expected len 3, got %d", s.Len())
	}
}

func TestBacklogScanner_CapacityEnforcement(t *testing.T) {
	s := NewBacklogScanner(2, 0)
	s.Add(hash(1))
	s.Add(hash(2))
	s.Add(hash(3))
	if s.Len() != 2 || !s.IsFull() {
		t.Fatalf("expected capped at 2 and full, got len=%d full=%v", s.Len(), s.IsFull())
	}
}

func TestBacklogScanner_NextBatchDrainsFromFront(t *testing.T) {
	s := NewBacklogScanner(100, 0)
	for i := byte(1); i <= 4; i++ {
		s.Add(hash(i))
	}
	batch := s.NextBatch(2)
	if len(batch) != 2 || batch[0] != hash(1) || batch[1] != hash(2) {
		t.Fatalf("unexpected batch: %v", batch)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 remaining, got %d", s.Len())
	}
	batch2 := s.NextBatch(10)
	if len(batch2) != 2 || batch2[0] != hash(3) || batch2[1] != hash(4) {
		t.Fatalf("unexpected batch2: %v", batch2)
	}
	if !s.IsEmpty() {
		t.Fatal("expected empty after draining all")
	}
}

func TestBacklogScanner_NextBatchClampedToLen(t *testing.T) {
	s := NewBacklogScanner(100, 0)
	s.Add(hash(1))
	batch := s.NextBatch(100)
	if len(batch) != 1 || batch[0] != hash(1) {
		t.Fatalf("unexpected batch: %v", batch)
	}
}

func TestBacklogScanner_NextBatchEmpty(t *testing.T) {
	s := NewBacklogScanner(100, 0)
	if batch := s.NextBatch(10); len(batch) != 0 {
		t.Fatalf("expected empty batch, got %v", batch)
	}
}

func TestBacklogScanner_RemoveSpecificBlock(t *testing.T) {
	s := NewBacklogScanner(100, 0)
	s.Add(hash(1))
	s.Add(hash(2))
	s.Add(hash(3))
	s.Remove(hash(2))
	if s.Len() != 2 {
		t.Fatalf("expected len 2, got %d", s.Len())
	}
	batch := s.NextBatch(10)
	if len(batch) != 2 || batch[0] != hash(1) || batch[1] != hash(3) {
		t.Fatalf("unexpected batch after remove: %v", batch)
	}
}

func TestBacklogScanner_RemoveNonexistentIsNoop(t *testing.T) {
	s := NewBacklogScanner(100, 0)
	s.Add(hash(1))
	s.Remove(hash(99))
	if s.Len() != 1 {
		t.Fatalf("expected len 1, got %d", s.Len())
	}
}

func TestBacklogScanner_PeekReturnsFrontWithoutRemoving(t *testing.T) {
	s := NewBacklogScanner(100, 0)
	if _, ok := s.Peek(); ok {
		t.Fatal("expected no front entry on empty scanner")
	}
	s.Add(hash(5))
	s.Add(hash(6))
	front, ok := s.Peek()
	if !ok || front != hash(5) {
		t.Fatalf("expected front hash(5), got %v", front)
	}
	if s.Len() != 2 {
		t.Fatal("peek must not remove")
	}
}

func TestBacklogScanner_AddAfterDrainReclaimsCapacity(t *testing.T) {
	s := NewBacklogScanner(3, 0)
	s.Add(hash(1))
	s.Add(hash(2))
	s.Add(hash(3))

	s.NextBatch(2)
	if s.Len() != 1 || s.IsFull() {
		t.Fatalf("expected capacity freed, got len=%d full=%v", s.Len(), s.IsFull())
	}

	s.Add(hash(4))
	s.Add(hash(5))
	if s.Len() != 3 {
		t.Fatalf("expected len 3, got %d", s.Len())
	}
	batch := s.NextBatch(3)
	if len(batch) != 3 || batch[0] != hash(3) || batch[1] != hash(4) || batch[2] != hash(5) {
		t.Fatalf("unexpected batch: %v", batch)
	}
}
