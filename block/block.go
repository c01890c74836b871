// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package block defines StateBlock, the single universal block type
// every BURST account chain is made of (spec §3).
package block

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/burst-chain/burst/ids"
	"github.com/burst-chain/burst/params"
)

// Kind enumerates the StateBlock variants. A closed sum type so every
// switch over it is exhaustive-checked at the call site.
type Kind uint8

const (
	Open Kind = iota
	Send
	Receive
	RejectReceive
	Burn
	Epoch
)

func (k Kind) String() string {
	switch k {
	case Open:
		return "open"
	case Send:
		return "send"
	case Receive:
		return "receive"
	case RejectReceive:
		return "reject_receive"
	case Burn:
		return "burn"
	case Epoch:
		return "epoch"
	default:
		return "unknown"
	}
}

// paramsKind adapts Kind to params.BlockKindLike for threshold lookup.
func (k Kind) paramsKind() params.BlockKindLike { return params.BlockKindLike(k) }

// StateBlock is the universal block (spec §3). hash is derived
// deterministically from every other field and cached after first
// computation; signature is produced over the same canonical bytes used
// to compute hash, excluding hash and signature themselves.
type StateBlock struct {
	Version        uint8
	Kind           Kind
	Account        ids.WalletAddress
	Previous       ids.BlockHash // ZeroHash identifies an open block
	Representative ids.WalletAddress
	BrnBalance     ids.Amount
	TrstBalance    ids.Amount
	Link           ids.BlockHash // send block being received/rejected, or burn receiver marker
	Origin         ids.TxHash    // burn transaction id that minted the TRST this block moves, if any
	Transaction    ids.TxHash
	Timestamp      uint64
	ParamsHash     [ids.HashSize]byte
	Work           uint64
	Signature      []byte

	cache struct {
		hash atomic.Value // ids.BlockHash
	}
}

// IsOpen reports whether the block opens a new account chain.
func (b *StateBlock) IsOpen() bool { return b.Previous.IsZero() }

// SigningBytes returns the canonical byte serialization used both to
// compute Hash and to produce/verify Signature: every field except Hash
// and Signature, in declaration order, fixed-width little-endian (spec
// §4.1, §6).
func (b *StateBlock) SigningBytes() []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, b.Version, byte(b.Kind))
	buf = append(buf, b.Account.Bytes()...)
	buf = append(buf, b.Previous[:]...)
	buf = append(buf, b.Representative.Bytes()...)
	buf = appendAmount(buf, b.BrnBalance)
	buf = appendAmount(buf, b.TrstBalance)
	buf = append(buf, b.Link[:]...)
	buf = append(buf, b.Origin[:]...)
	buf = append(buf, b.Transaction[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, b.Timestamp)
	buf = append(buf, b.ParamsHash[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, b.Work)
	return buf
}

func appendAmount(buf []byte, a ids.Amount) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, a.Hi)
	buf = binary.LittleEndian.AppendUint64(buf, a.Lo)
	return buf
}

// ComputeHash derives the block's hash deterministically from
// SigningBytes. Stable across nodes: same fields, same hash, everywhere.
func (b *StateBlock) ComputeHash() ids.BlockHash {
	if cached := b.cache.hash.Load(); cached != nil {
		return cached.(ids.BlockHash)
	}
	digest := ids.Blake2b256(b.SigningBytes())
	h := ids.BlockHash(digest)
	b.cache.hash.Store(h)
	return h
}

// Hash is an alias for ComputeHash kept for callers that only ever read
// a previously-computed hash (equality/dedup uses this).
func (b *StateBlock) Hash() ids.BlockHash { return b.ComputeHash() }

// Difficulty returns the PoW difficulty of this block's (hash, work)
// pair, used by both the priority queue (§4.8) and validation (§4.5).
func (b *StateBlock) Difficulty() uint64 {
	return ids.WorkDifficulty(b.ComputeHash(), b.Work)
}

// MeetsWork reports whether the block's PoW satisfies the kind-aware
// threshold carried in p.
func (b *StateBlock) MeetsWork(p params.ProtocolParams) bool {
	return b.Difficulty() >= p.WorkThresholdFor(b.Kind.paramsKind())
}

// VerifySignature checks that Signature recovers to b.Account, the
// claimed signer (spec §4.5 step 1).
func (b *StateBlock) VerifySignature() bool {
	digest := b.ComputeHash()
	addr, err := ids.RecoverAddress(digest[:], b.Signature)
	if err != nil {
		return false
	}
	return addr == b.Account
}

// Sign computes the signature over this block's signing bytes using priv
// and stores it.
func (b *StateBlock) Sign(priv ids.NodePrivateKey) {
	digest := b.ComputeHash()
	b.Signature = priv.Sign(digest[:])
}
