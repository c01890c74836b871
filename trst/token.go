// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package trst implements the TRST provenance graph: token lineage, the
// merger-graph forward index for revocation, and the expiry index
// (spec §4.3).
package trst

import "github.com/burst-chain/burst/ids"

// State is a TrstToken's lifecycle position.
type State uint8

const (
	Active State = iota
	Expired
	Revoked
)

// OriginShare records one constituent's contribution to a merged token.
type OriginShare struct {
	Origin ids.TxHash
	Wallet ids.WalletAddress
	Amount ids.Amount
}

// Token is a unit of TRST with full provenance (spec §3). Origin is the
// burn transaction that created its value; Link is the immediate
// predecessor transaction. For merged tokens, OriginProportions
// enumerates every constituent's contribution and
// EffectiveOriginTimestamp is the minimum of the constituents'
// effective timestamps — a merged token's expiry is always its
// earliest constituent's expiry.
type Token struct {
	ID                        ids.TxHash
	Amount                    ids.Amount
	Origin                    ids.TxHash
	Link                      ids.TxHash
	Holder                    ids.WalletAddress
	OriginTimestamp           uint64
	EffectiveOriginTimestamp  uint64
	State                     State
	OriginWallet              ids.WalletAddress
	OriginProportions         []OriginShare
}

// Mint creates a fresh, single-origin token from a burn.
func Mint(id, origin ids.TxHash, holder, originWallet ids.WalletAddress, amount ids.Amount, now uint64) *Token {
	return &Token{
		ID:                       id,
		Amount:                   amount,
		Origin:                   origin,
		Link:                     origin,
		Holder:                   holder,
		OriginTimestamp:          now,
		EffectiveOriginTimestamp: now,
		State:                    Active,
		OriginWallet:             originWallet,
		OriginProportions: []OriginShare{
			{Origin: origin, Wallet: originWallet, Amount: amount},
		},
	}
}

// Merge combines constituents into a new token held by holder. The
// merged effective origin timestamp is the minimum across constituents
// (spec §4.3); proportions from all constituents are concatenated so
// downstream revocation can attribute shares back to every ancestor.
func Merge(id ids.TxHash, constituents []*Token, holder ids.WalletAddress, now uint64) *Token {
	total := ids.ZeroAmount
	effective := uint64(1<<64 - 1)
	var proportions []OriginShare
	for _, c := range constituents {
		total = total.Add(c.Amount)
		if c.EffectiveOriginTimestamp < effective {
			effective = c.EffectiveOriginTimestamp
		}
		proportions = append(proportions, c.OriginProportions...)
	}
	return &Token{
		ID:                       id,
		Amount:                   total,
		Origin:                   id,
		Link:                     id,
		Holder:                   holder,
		OriginTimestamp:          now,
		EffectiveOriginTimestamp: effective,
		State:                    Active,
		OriginProportions:        proportions,
	}
}

// ExpiresAt returns the token's expiry time given the network's default
// TRST expiry duration, measured from its effective origin timestamp
// (spec §4.3's expiry index is keyed by exactly this value).
func (t *Token) ExpiresAt(defaultExpirySecs uint64) uint64 {
	return t.EffectiveOriginTimestamp + defaultExpirySecs
}
