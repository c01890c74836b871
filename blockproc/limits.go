// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blockproc

import (
	"github.com/burst-chain/burst/account"
	"github.com/burst-chain/burst/ids"
	"github.com/burst-chain/burst/params"
)

// RecentActivity reports how many blocks an account produced in the
// trailing 24h window, needed to enforce the new-wallet tx/day cap
// (spec §4.5.1). The block processor's caller supplies this from the
// store's height index; kept as an interface so tests can fake it.
type RecentActivity interface {
	BlocksInLastDay(account ids.WalletAddress, now uint64) uint32
}

// IsNewWallet reports whether acc is still inside the new-wallet rate
// limit window.
func IsNewWallet(acc *account.Info, p params.ProtocolParams, now uint64) bool {
	if acc.State != account.Verified {
		return true
	}
	return now-acc.VerifiedAt < p.NewWalletRateLimitSecs
}

// CheckWalletLimits enforces spec §4.5.1: new wallets cap both the
// per-send amount and the block count in the trailing 24h; established
// wallets are exempt.
func CheckWalletLimits(acc *account.Info, p params.ProtocolParams, sendAmount ids.Amount, activity RecentActivity, now uint64) error {
	if !IsNewWallet(acc, p, now) {
		return nil
	}
	if !p.NewWalletSpendingLimit.IsZero() && sendAmount.Cmp(p.NewWalletSpendingLimit) > 0 {
		return ErrWalletSpendingLimit
	}
	if activity != nil && activity.BlocksInLastDay(acc.Address, now) >= p.NewWalletTxLimitPerDay {
		return ErrWalletTxLimit
	}
	return nil
}
