// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package confirm

import (
	"github.com/burst-chain/burst/ids"
	"github.com/burst-chain/burst/ledger"
)

// NewLedgerWalker wraps l as a ChainWalker, persisting confirmation
// height updates through l's own account container.
func NewLedgerWalker(l *ledger.Ledger) ChainWalker {
	return &LedgerChainWalker{
		AccountForBlockFunc: func(hash ids.BlockHash) (ids.WalletAddress, bool) {
			blk, err := l.GetBlock(hash)
			if err != nil {
				return "", false
			}
			return blk.Account, true
		},
		HeightOfBlockFunc: func(hash ids.BlockHash) (uint64, bool) {
			_, height, err := l.HeightOf(hash)
			if err != nil {
				return 0, false
			}
			return height, true
		},
		BlockAtHeightFunc: func(account ids.WalletAddress, height uint64) (ids.BlockHash, bool) {
			hash, err := l.BlockAtHeight(account, height)
			if err != nil {
				return ids.BlockHash{}, false
			}
			return hash, true
		},
		ConfirmationHeightFunc: func(account ids.WalletAddress) uint64 {
			acc, err := l.GetAccount(account)
			if err != nil {
				return 0
			}
			return acc.ConfirmationHeight
		},
		SetConfirmationHeightFunc: func(account ids.WalletAddress, height uint64) {
			acc, err := l.GetAccount(account)
			if err != nil {
				return
			}
			acc.ConfirmationHeight = height
			batch := l.NewBatch()
			if err := batch.PutAccount(acc); err != nil {
				return
			}
			_ = batch.Commit()
		},
	}
}
