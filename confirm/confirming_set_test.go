// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package confirm

import (
	"testing"

	"github.com/burst-chain/burst/ids"
)

func h(b byte) ids.BlockHash {
	var out ids.BlockHash
	out[0] = b
	return out
}

func TestConfirmingSet_AddAndDrainFIFO(t *testing.T) {
	s := NewConfirmingSet()
	for i := byte(1); i <= 3; i++ {
		if !s.Add(h(i)) {
			t.Fatalf("Add(%d) unexpectedly rejected", i)
		}
	}
	batch := s.NextBatch()
	if len(batch) != 3 {
		t.Fatalf("batch len = %d, want 3", len(batch))
	}
	for i, want := range []byte{1, 2, 3} {
		if batch[i] != h(want) {
			t.Fatalf("batch[%d] = %v, want %v", i, batch[i], h(want))
		}
	}
}

func TestConfirmingSet_DuplicateAddIsNoop(t *testing.T) {
	s := NewConfirmingSet()
	s.Add(h(1))
	s.Add(h(1))
	if got := s.PendingCount(); got != 1 {
		t.Fatalf("pending = %d, want 1", got)
	}
}

func TestConfirmingSet_NextBatchCapsAtCementBatchSize(t *testing.T) {
	s := NewConfirmingSet()
	for i := 0; i < CementBatchSize+10; i++ {
		var hash ids.BlockHash
		hash[0] = byte(i)
		hash[1] = byte(i >> 8)
		s.Add(hash)
	}
	batch := s.NextBatch()
	if len(batch) != CementBatchSize {
		t.Fatalf("batch len = %d, want %d", len(batch), CementBatchSize)
	}
	if got := s.PendingCount(); got != 10 {
		t.Fatalf("remaining pending = %d, want 10", got)
	}
}

func TestConfirmingSet_DeferAndRetryDeferred(t *testing.T) {
	s := NewConfirmingSet()
	s.Add(h(1))
	s.NextBatch()

	if !s.Defer(h(1), 0) {
		t.Fatal("first defer should succeed")
	}
	if got := s.DeferredCount(); got != 1 {
		t.Fatalf("deferred = %d, want 1", got)
	}

	moved := s.RetryDeferred()
	if moved != 1 {
		t.Fatalf("moved = %d, want 1", moved)
	}
	if got := s.PendingCount(); got != 1 {
		t.Fatalf("pending after retry = %d, want 1", got)
	}
	if got := s.DeferredCount(); got != 0 {
		t.Fatalf("deferred after retry = %d, want 0", got)
	}
}

func TestConfirmingSet_DeferDropsAfterMaxRetries(t *testing.T) {
	s := NewConfirmingSet()
	tries := uint32(0)
	var ok bool
	for i := uint32(0); i < DefaultMaxRetries; i++ {
		ok = s.Defer(h(1), tries)
		if !ok {
			t.Fatalf("defer %d should still be accepted", i)
		}
		tries++
	}
	if s.Defer(h(1), tries) {
		t.Fatal("defer beyond max retries should be dropped")
	}
}

func TestConfirmingSet_NearFullHysteresis(t *testing.T) {
	s := NewConfirmingSet()
	target := int((MaxConfirming*80 + 99) / 100)
	for i := 0; i < target; i++ {
		var hash ids.BlockHash
		hash[0] = byte(i)
		hash[1] = byte(i >> 8)
		hash[2] = byte(i >> 16)
		if !s.Add(hash) {
			t.Fatalf("Add %d rejected before capacity", i)
		}
	}
	if !s.IsNearFull() {
		t.Fatal("expected near_full to activate at 80% capacity")
	}

	// Drain down below the 60% low-water mark.
	for s.PendingCount() > int(MaxConfirming*55/100) {
		if len(s.NextBatch()) == 0 {
			break
		}
	}
	if s.IsNearFull() {
		t.Fatal("expected near_full to clear below 60% capacity")
	}
}

func TestConfirmingSet_AddRejectsAtCapacity(t *testing.T) {
	s := NewConfirmingSet()
	for i := 0; i < MaxConfirming; i++ {
		var hash ids.BlockHash
		hash[0] = byte(i)
		hash[1] = byte(i >> 8)
		hash[2] = byte(i >> 16)
		if !s.Add(hash) {
			t.Fatalf("Add %d unexpectedly rejected below capacity", i)
		}
	}
	var overflow ids.BlockHash
	overflow[3] = 1
	if s.Add(overflow) {
		t.Fatal("Add at capacity should be rejected")
	}
}

func TestConfirmingSet_RecordAndReadCementedCount(t *testing.T) {
	s := NewConfirmingSet()
	s.RecordCemented(5)
	s.RecordCemented(3)
	if got := s.CementedCount(); got != 8 {
		t.Fatalf("cemented count = %d, want 8", got)
	}
}

func TestConfirmingSet_EmptyNextBatchIsNil(t *testing.T) {
	s := NewConfirmingSet()
	if batch := s.NextBatch(); batch != nil {
		t.Fatalf("expected nil batch on empty set, got %v", batch)
	}
}
