// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package confirm

import (
	"github.com/burst-chain/burst/ids"
)

// ChainWalker is the capability interface the cementation processor
// needs from the ledger (spec §9 "dynamic dispatch... chain walker for
// cementation"): resolve a block's owning account and height, look up
// a height's block, and persist a new confirmation height. A real
// implementation wraps ledger.Ledger; tests use an in-memory double.
type ChainWalker interface {
	AccountForBlock(hash ids.BlockHash) (ids.WalletAddress, bool)
	HeightOfBlock(hash ids.BlockHash) (uint64, bool)
	BlockAtHeight(account ids.WalletAddress, height uint64) (ids.BlockHash, bool)
	ConfirmationHeight(account ids.WalletAddress) uint64
	SetConfirmationHeight(account ids.WalletAddress, height uint64)
}

// CementResultKind discriminates the outcomes of Process (spec §4.9.2).
type CementResultKind uint8

const (
	Cemented CementResultKind = iota
	AlreadyCemented
	BlockNotFound
	AccountNotFound
)

// CementResult is the closed outcome of processing one confirmed hash.
type CementResult struct {
	Kind          CementResultKind
	Account       ids.WalletAddress
	BlocksCemented uint64
	NewHeight     uint64
}

// ConfirmationProcessor walks a single confirmed hash forward from an
// account's current confirmation height to that hash's height,
// recording cementation of every block in between. It holds no state
// of its own; all state lives in the ChainWalker.
type ConfirmationProcessor struct{}

// NewConfirmationProcessor creates a stateless cementation processor.
func NewConfirmationProcessor() *ConfirmationProcessor {
	return &ConfirmationProcessor{}
}

// Process cements hash h (spec §4.9.2): look up owning account a, find
// h's height H, and for each height k in (a.confirmation_height, H]
// record cementation of the block at height k, oldest first, then
// update a.confirmation_height = H. The returned hash slice lists the
// newly cemented block hashes in ascending-height order.
func (p *ConfirmationProcessor) Process(walker ChainWalker, h ids.BlockHash) (CementResult, []ids.BlockHash) {
	account, ok := walker.AccountForBlock(h)
	if !ok {
		return CementResult{Kind: AccountNotFound}, nil
	}

	height, ok := walker.HeightOfBlock(h)
	if !ok {
		return CementResult{Kind: BlockNotFound, Account: account}, nil
	}

	current := walker.ConfirmationHeight(account)
	if height <= current {
		return CementResult{Kind: AlreadyCemented, Account: account, NewHeight: current}, nil
	}

	cemented := make([]ids.BlockHash, 0, height-current)
	for k := current + 1; k <= height; k++ {
		hash, ok := walker.BlockAtHeight(account, k)
		if !ok {
			// A gap means the chain between the old and new confirmation
			// height is incomplete; stop short rather than skip a height.
			break
		}
		cemented = append(cemented, hash)
	}

	newHeight := current + uint64(len(cemented))
	walker.SetConfirmationHeight(account, newHeight)

	return CementResult{
		Kind:           Cemented,
		Account:        account,
		BlocksCemented: uint64(len(cemented)),
		NewHeight:      newHeight,
	}, cemented
}

// LedgerChainWalker is the production ChainWalker, backed by the
// node's real ledger store (account/height indexes). Defined here
// rather than in package ledger to avoid a ledger -> confirm import
// cycle: confirm is the consumer, not a dependency of ledger.
type LedgerChainWalker struct {
	AccountForBlockFunc       func(ids.BlockHash) (ids.WalletAddress, bool)
	HeightOfBlockFunc         func(ids.BlockHash) (uint64, bool)
	BlockAtHeightFunc         func(ids.WalletAddress, uint64) (ids.BlockHash, bool)
	ConfirmationHeightFunc    func(ids.WalletAddress) uint64
	SetConfirmationHeightFunc func(ids.WalletAddress, uint64)
}

func (w *LedgerChainWalker) AccountForBlock(hash ids.BlockHash) (ids.WalletAddress, bool) {
	return w.AccountForBlockFunc(hash)
}

func (w *LedgerChainWalker) HeightOfBlock(hash ids.BlockHash) (uint64, bool) {
	return w.HeightOfBlockFunc(hash)
}

func (w *LedgerChainWalker) BlockAtHeight(account ids.WalletAddress, height uint64) (ids.BlockHash, bool) {
	return w.BlockAtHeightFunc(account, height)
}

func (w *LedgerChainWalker) ConfirmationHeight(account ids.WalletAddress) uint64 {
	return w.ConfirmationHeightFunc(account)
}

func (w *LedgerChainWalker) SetConfirmationHeight(account ids.WalletAddress, height uint64) {
	w.SetConfirmationHeightFunc(account, height)
}
