// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package confirm

import (
	"testing"

	"github.com/burst-chain/burst/ids"
)

// mockWalker is an in-memory ChainWalker test double: one account's
// chain is a simple []BlockHash indexed by height-1.
type mockWalker struct {
	account ids.WalletAddress
	chain   []ids.BlockHash
	confHeight uint64
	blockOf map[ids.BlockHash]uint64 // hash -> height, 1-based
}

func newMockWalker(account ids.WalletAddress, chain []ids.BlockHash) *mockWalker {
	blockOf := make(map[ids.BlockHash]uint64, len(chain))
	for i, hash := range chain {
		blockOf[hash] = uint64(i + 1)
	}
	return &mockWalker{account: account, chain: chain, blockOf: blockOf}
}

func (w *mockWalker) AccountForBlock(hash ids.BlockHash) (ids.WalletAddress, bool) {
	if _, ok := w.blockOf[hash]; !ok {
		return "", false
	}
	return w.account, true
}

func (w *mockWalker) HeightOfBlock(hash ids.BlockHash) (uint64, bool) {
	height, ok := w.blockOf[hash]
	return height, ok
}

func (w *mockWalker) BlockAtHeight(account ids.WalletAddress, height uint64) (ids.BlockHash, bool) {
	if account != w.account || height < 1 || height > uint64(len(w.chain)) {
		return ids.BlockHash{}, false
	}
	return w.chain[height-1], true
}

func (w *mockWalker) ConfirmationHeight(account ids.WalletAddress) uint64 {
	if account != w.account {
		return 0
	}
	return w.confHeight
}

func (w *mockWalker) SetConfirmationHeight(account ids.WalletAddress, height uint64) {
	if account == w.account {
		w.confHeight = height
	}
}

func addr(b byte) ids.WalletAddress {
	raw := make([]byte, ids.AddressSize)
	raw[0] = b
	return ids.WalletAddress(raw)
}

func chainOf(n int) []ids.BlockHash {
	chain := make([]ids.BlockHash, n)
	for i := range chain {
		chain[i] = h(byte(i + 1))
	}
	return chain
}

// invariant 8: cementing h at height H records every height in
// (old_height, H] exactly once, ascending.
func TestConfirmationProcessor_CementsRangeAscending(t *testing.T) {
	acct := addr(1)
	chain := chainOf(5)
	w := newMockWalker(acct, chain)

	proc := NewConfirmationProcessor()
	res, cemented := proc.Process(w, chain[3]) // height 4

	if res.Kind != Cemented {
		t.Fatalf("kind = %v, want Cemented", res.Kind)
	}
	if res.BlocksCemented != 4 {
		t.Fatalf("blocks cemented = %d, want 4", res.BlocksCemented)
	}
	if res.NewHeight != 4 {
		t.Fatalf("new height = %d, want 4", res.NewHeight)
	}
	for i, want := range chain[:4] {
		if cemented[i] != want {
			t.Fatalf("cemented[%d] = %v, want %v", i, cemented[i], want)
		}
	}
	if w.confHeight != 4 {
		t.Fatalf("walker confirmation height = %d, want 4", w.confHeight)
	}
}

func TestConfirmationProcessor_IncrementalFromNonZero(t *testing.T) {
	acct := addr(1)
	chain := chainOf(10)
	w := newMockWalker(acct, chain)
	w.confHeight = 4

	proc := NewConfirmationProcessor()
	res, cemented := proc.Process(w, chain[7]) // height 8

	if res.Kind != Cemented || res.BlocksCemented != 4 || res.NewHeight != 8 {
		t.Fatalf("unexpected result: %+v", res)
	}
	want := chain[4:8]
	if len(cemented) != len(want) {
		t.Fatalf("cemented len = %d, want %d", len(cemented), len(want))
	}
	for i := range want {
		if cemented[i] != want[i] {
			t.Fatalf("cemented[%d] = %v, want %v", i, cemented[i], want[i])
		}
	}
}

func TestConfirmationProcessor_AlreadyCemented(t *testing.T) {
	acct := addr(1)
	chain := chainOf(5)
	w := newMockWalker(acct, chain)
	w.confHeight = 5

	proc := NewConfirmationProcessor()
	res, cemented := proc.Process(w, chain[2]) // height 3, already below confHeight

	if res.Kind != AlreadyCemented {
		t.Fatalf("kind = %v, want AlreadyCemented", res.Kind)
	}
	if cemented != nil {
		t.Fatalf("expected no cemented hashes, got %v", cemented)
	}
	if res.NewHeight != 5 {
		t.Fatalf("new height = %d, want unchanged 5", res.NewHeight)
	}
}

func TestConfirmationProcessor_ExactlyAtConfirmationHeight(t *testing.T) {
	acct := addr(1)
	chain := chainOf(5)
	w := newMockWalker(acct, chain)
	w.confHeight = 3

	proc := NewConfirmationProcessor()
	res, _ := proc.Process(w, chain[2]) // height 3 == confHeight

	if res.Kind != AlreadyCemented {
		t.Fatalf("kind = %v, want AlreadyCemented", res.Kind)
	}
}

func TestConfirmationProcessor_UnknownHashIsAccountNotFound(t *testing.T) {
	acct := addr(1)
	chain := chainOf(2)
	w := newMockWalker(acct, chain)

	proc := NewConfirmationProcessor()
	res, _ := proc.Process(w, h(0xFF))

	if res.Kind != AccountNotFound {
		t.Fatalf("kind = %v, want AccountNotFound for an unknown hash", res.Kind)
	}
}

func TestConfirmationProcessor_CementingTwiceIsIdempotentAfterFirst(t *testing.T) {
	acct := addr(1)
	chain := chainOf(5)
	w := newMockWalker(acct, chain)

	proc := NewConfirmationProcessor()
	proc.Process(w, chain[4])

	res, cemented := proc.Process(w, chain[4])
	if res.Kind != AlreadyCemented {
		t.Fatalf("second process of same hash: kind = %v, want AlreadyCemented", res.Kind)
	}
	if cemented != nil {
		t.Fatal("expected no cemented hashes on the repeat call")
	}
}
