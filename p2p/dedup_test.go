// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package p2p

import "testing"

func TestMessageDedup_FirstSeenIsNotDuplicate(t *testing.T) {
	d := NewDefaultMessageDedup()
	h := HashMessage([]byte("a"))
	if d.IsDuplicate(h) {
		t.Fatal("first insertion must not be reported as duplicate")
	}
}

func TestMessageDedup_RepeatIsDuplicate(t *testing.T) {
	d := NewDefaultMessageDedup()
	h := HashMessage([]byte("a"))
	d.IsDuplicate(h)
	if !d.IsDuplicate(h) {
		t.Fatal("repeated hash must be reported as duplicate")
	}
}

func TestMessageDedup_DistinctMessagesAreNotDuplicates(t *testing.T) {
	d := NewDefaultMessageDedup()
	if d.IsDuplicate(HashMessage([]byte("a"))) {
		t.Fatal("unexpected duplicate")
	}
	if d.IsDuplicate(HashMessage([]byte("b"))) {
		t.Fatal("unexpected duplicate")
	}
}

func TestMessageDedup_EvictsOldestAtCapacity(t *testing.T) {
	d := NewMessageDedup(2)
	a := HashMessage([]byte("a"))
	b := HashMessage([]byte("b"))
	c := HashMessage([]byte("c"))

	d.IsDuplicate(a)
	d.IsDuplicate(b)
	d.IsDuplicate(c) // evicts a

	if d.IsDuplicate(a) {
		t.Fatal("a should have been evicted and reported fresh")
	}
	if !d.IsDuplicate(b) {
		t.Fatal("b should still be tracked")
	}
}

func TestMessageDedup_LenAndIsEmpty(t *testing.T) {
	d := NewMessageDedup(4)
	if !d.IsEmpty() {
		t.Fatal("expected empty dedup set")
	}
	d.IsDuplicate(HashMessage([]byte("x")))
	if d.Len() != 1 {
		t.Fatalf("expected len 1, got %d", d.Len())
	}
}
