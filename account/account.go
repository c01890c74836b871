// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package account defines AccountInfo, the per-wallet ledger head state
// (spec §3).
package account

import "github.com/burst-chain/burst/ids"

// VerificationState is an account's position in the UHV lifecycle
// (spec §3, §4.10).
type VerificationState uint8

const (
	Unverified VerificationState = iota
	Pending
	Verified
)

// Info is the per-account ledger head record. Invariants (enforced by
// the block processor, never by this type alone): ConfirmationHeight <=
// BlockCount; Head is the hash of the block at position BlockCount.
type Info struct {
	Address            ids.WalletAddress
	State              VerificationState
	VerifiedAt         uint64 // unix seconds; meaningful only once State == Verified
	Head               ids.BlockHash
	BlockCount         uint64
	ConfirmationHeight uint64
	Representative     ids.WalletAddress
	TotalBrnBurned     ids.Amount
	TrstBalance        ids.Amount
	TotalBrnStaked     ids.Amount
	ExpiredTrst        ids.Amount
	RevokedTrst        ids.Amount
	Epoch              uint32
}

// Valid reports whether the record satisfies its basic invariants.
func (a *Info) Valid() bool {
	return a.ConfirmationHeight <= a.BlockCount
}
