// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package brn

import (
	"github.com/pkg/errors"

	"github.com/burst-chain/burst/ids"
)

// ErrInsufficientBalance is returned when a burn or stake would exceed
// the wallet's currently available BRN.
var ErrInsufficientBalance = errors.New("brn: insufficient available balance")

// StakeKind is a closed sum type over the reasons BRN can be staked
// (spec §4.2); Verification is the only kind the core itself drives
// today, others are placeholders for governance-staking flows wired in
// by the external collaborator.
type StakeKind uint8

const (
	StakeVerification StakeKind = iota
	StakeGovernance
)

// Stake records one outstanding stake of BRN.
type Stake struct {
	Staker ids.WalletAddress
	Kind   StakeKind
	Target ids.WalletAddress // meaningful for StakeVerification: the wallet being vouched for
	Amount ids.Amount
	At     uint64
	returned bool
}

// WalletState is the per-wallet accrual state (spec §3): available
// balance at time now is
//
//	TotalAccrued(VerifiedAt, now) - TotalBurned - TotalStaked.
type WalletState struct {
	VerifiedAt  uint64
	TotalBurned ids.Amount
	TotalStaked ids.Amount
}

// Available computes the wallet's available BRN at time now against the
// shared rate history (spec §4.2, invariant 1: monotone non-decreasing
// in now when no burns/stakes occur).
func Available(state WalletState, history *RateHistory, now uint64) ids.Amount {
	accrued := history.TotalAccrued(state.VerifiedAt, now)
	spent := state.TotalBurned.Add(state.TotalStaked)
	after, ok := accrued.SubChecked(spent)
	if !ok {
		return ids.ZeroAmount
	}
	return after
}

// AvailableChecked is the overflow-aware counterpart of Available.
func AvailableChecked(state WalletState, history *RateHistory, now uint64) (ids.Amount, bool) {
	accrued, ok := history.TotalAccruedChecked(state.VerifiedAt, now)
	if !ok {
		return ids.Amount{}, false
	}
	spent, ok := state.TotalBurned.AddChecked(state.TotalStaked)
	if !ok {
		return ids.Amount{}, false
	}
	return accrued.SubChecked(spent)
}

// RecordBurn atomically increments TotalBurned by amount iff amount does
// not exceed the wallet's available balance at now (spec §4.2). The
// caller is responsible for minting TRST 1:1 to the receiver once this
// succeeds — that crosses into package trst and is not this function's
// concern.
func RecordBurn(state *WalletState, history *RateHistory, amount ids.Amount, now uint64) error {
	available := Available(*state, history, now)
	if amount.Cmp(available) > 0 {
		return ErrInsufficientBalance
	}
	state.TotalBurned = state.TotalBurned.Add(amount)
	return nil
}

// StakeBrn creates a Stake for staker, incrementing state.TotalStaked,
// iff amount does not exceed the wallet's available balance at now.
func StakeBrn(staker ids.WalletAddress, state *WalletState, history *RateHistory, amount ids.Amount, kind StakeKind, target ids.WalletAddress, now uint64) (*Stake, error) {
	available := Available(*state, history, now)
	if amount.Cmp(available) > 0 {
		return nil, ErrInsufficientBalance
	}
	state.TotalStaked = state.TotalStaked.Add(amount)
	return &Stake{Staker: staker, Kind: kind, Target: target, Amount: amount, At: now}, nil
}

// ReturnStake decrements state.TotalStaked by the stake's amount. A
// no-op if the stake has already been returned, so double-return never
// double-credits the wallet.
func ReturnStake(state *WalletState, s *Stake) {
	if s.returned {
		return
	}
	state.TotalStaked = state.TotalStaked.Sub(s.Amount)
	s.returned = true
}
