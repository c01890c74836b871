// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blockproc

import "github.com/pkg/errors"

// RejectReason is the closed set of structured rejection reasons a
// caller sees in a Rejected outcome (spec §7 "User-visible behavior").
type RejectReason string

const (
	ReasonBadSignature       RejectReason = "bad_signature"
	ReasonInsufficientWork   RejectReason = "insufficient_work"
	ReasonVersionMismatch    RejectReason = "version_mismatch"
	ReasonParamsMismatch     RejectReason = "params_mismatch"
	ReasonPreviousMismatch   RejectReason = "previous_mismatch"
	ReasonAccountExists      RejectReason = "account_exists"
	ReasonAccountMissing     RejectReason = "account_missing"
	ReasonLinkNotFound       RejectReason = "link_not_found"
	ReasonLinkAlreadySpent   RejectReason = "link_already_spent"
	ReasonBalanceUnderflow   RejectReason = "balance_underflow"
	ReasonBalanceMismatch    RejectReason = "balance_mismatch"
	ReasonWalletLimit        RejectReason = "wallet_limit"
	ReasonStaleTimestamp     RejectReason = "stale_timestamp"
	ReasonZeroAmount         RejectReason = "zero_amount"
	ReasonSelfTransfer       RejectReason = "self_transfer"
)

// Error lets a RejectReason double as the error checkBalance returns,
// so processLocked can recover the reason with a plain type assertion.
func (r RejectReason) Error() string { return string(r) }

var (
	ErrWalletSpendingLimit = errors.New("blockproc: send exceeds new-wallet spending limit")
	ErrWalletTxLimit       = errors.New("blockproc: new-wallet daily tx limit exceeded")
)
