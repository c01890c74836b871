// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ids defines the opaque identifiers and amount types shared by
// every other BURST package: block hashes, transaction hashes, wallet
// addresses and the fixed-point amounts used for BRN and TRST.
package ids

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"math/bits"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the byte length of a BlockHash, TxHash or node id.
const HashSize = 32

// AddressSize is the byte length of a WalletAddress.
const AddressSize = 20

// BlockHash identifies a StateBlock by its canonical hash.
type BlockHash [HashSize]byte

// TxHash identifies the transaction a block records; distinct type from
// BlockHash even though both are 32-byte Blake2b digests, to stop the
// compiler from accepting one where the other belongs.
type TxHash [HashSize]byte

// ZeroHash is the all-zero sentinel meaning "no predecessor" / "no link".
var ZeroHash BlockHash

// IsZero reports whether h is the all-zero sentinel.
func (h BlockHash) IsZero() bool { return h == ZeroHash }

// String renders the hash as lowercase hex.
func (h BlockHash) String() string { return hex.EncodeToString(h[:]) }

// Bytes returns the hash as a byte slice.
func (h BlockHash) Bytes() []byte { return h[:] }

// String renders the hash as lowercase hex.
func (h TxHash) String() string { return hex.EncodeToString(h[:]) }

// Bytes returns the hash as a byte slice.
func (h TxHash) Bytes() []byte { return h[:] }

// IsZero reports whether h is the all-zero sentinel.
func (h TxHash) IsZero() bool { return h == TxHash{} }

// BlockHashFromBytes copies b into a BlockHash; b must be HashSize long.
func BlockHashFromBytes(b []byte) (h BlockHash, err error) {
	if len(b) != HashSize {
		return h, fmt.Errorf("ids: invalid hash length %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// TxHashFromBytes copies b into a TxHash; b must be HashSize long.
func TxHashFromBytes(b []byte) (h TxHash, err error) {
	if len(b) != HashSize {
		return h, fmt.Errorf("ids: invalid hash length %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Blake2b256 hashes the concatenation of parts with Blake2b-256. Every
// content hash in the system (block hashes, PoW difficulty, network
// dedup digests, vote-cache keys) derives from this single primitive.
func Blake2b256(parts ...[]byte) [HashSize]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for a bad key, and we never pass one.
		panic(err)
	}
	for _, p := range parts {
		h.Write(p)
	}
	var out [HashSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// WorkDifficulty computes the PoW difficulty of (hash, work): the first
// 8 little-endian bytes of Blake2b(hash || work_le) read as a uint64.
// Higher is harder, per spec §4.1/§4.5/§4.8.
func WorkDifficulty(hash BlockHash, work uint64) uint64 {
	var workLE [8]byte
	for i := 0; i < 8; i++ {
		workLE[i] = byte(work >> (8 * i))
	}
	digest := Blake2b256(hash[:], workLE[:])
	return uint64(digest[0]) | uint64(digest[1])<<8 | uint64(digest[2])<<16 | uint64(digest[3])<<24 |
		uint64(digest[4])<<32 | uint64(digest[5])<<40 | uint64(digest[6])<<48 | uint64(digest[7])<<56
}

// LeadingZeros is a convenience used by difficulty-threshold comparisons
// in tests; not part of the wire format.
func LeadingZeros(v uint64) int { return bits.LeadingZeros64(v) }

// WalletAddress is a fixed-length identifier suitable for prefix range
// scans over the store's keyed containers (§4.4). Its content is the
// AddressSize raw digest bytes, not a printable text encoding.
type WalletAddress string

// Bytes returns the raw AddressSize-byte payload of the address. It
// panics if a holds fewer than AddressSize bytes.
func (a WalletAddress) Bytes() []byte { return []byte(a)[:AddressSize] }

// Amount is a 128-bit unsigned fixed-point quantity, used for both BRN
// potential and TRST balances. Stored as two uint64 halves so arithmetic
// can detect overflow explicitly rather than wrapping silently.
type Amount struct {
	Hi, Lo uint64
}

// ZeroAmount is the additive identity.
var ZeroAmount = Amount{}

// AmountFromUint64 builds an Amount from a plain 64-bit value.
func AmountFromUint64(v uint64) Amount { return Amount{Lo: v} }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.Hi == 0 && a.Lo == 0 }

// Cmp returns -1, 0 or 1 as a is less than, equal to, or greater than b.
func (a Amount) Cmp(b Amount) int {
	if a.Hi != b.Hi {
		if a.Hi < b.Hi {
			return -1
		}
		return 1
	}
	if a.Lo != b.Lo {
		if a.Lo < b.Lo {
			return -1
		}
		return 1
	}
	return 0
}

// Add returns a+b, saturating at the maximum representable value instead
// of wrapping. Used on hot paths (rep-weight updates) that must tolerate
// out-of-order deltas without corrupting state.
func (a Amount) Add(b Amount) Amount {
	lo, carry := bits.Add64(a.Lo, b.Lo, 0)
	hi, overflow := bits.Add64(a.Hi, b.Hi, carry)
	if overflow != 0 {
		return Amount{Hi: ^uint64(0), Lo: ^uint64(0)}
	}
	return Amount{Hi: hi, Lo: lo}
}

// AddChecked returns a+b and false if the addition overflows 128 bits.
func (a Amount) AddChecked(b Amount) (Amount, bool) {
	lo, carry := bits.Add64(a.Lo, b.Lo, 0)
	hi, overflow := bits.Add64(a.Hi, b.Hi, carry)
	if overflow != 0 {
		return Amount{}, false
	}
	return Amount{Hi: hi, Lo: lo}, true
}

// Sub returns a-b, saturating at zero instead of wrapping. Used for
// rep-weight decrements that may race with increments from other
// accounts' updates.
func (a Amount) Sub(b Amount) Amount {
	lo, borrow := bits.Sub64(a.Lo, b.Lo, 0)
	hi, underflow := bits.Sub64(a.Hi, b.Hi, borrow)
	if underflow != 0 {
		return Amount{}
	}
	return Amount{Hi: hi, Lo: lo}
}

// SubChecked returns a-b and false if b > a.
func (a Amount) SubChecked(b Amount) (Amount, bool) {
	if a.Cmp(b) < 0 {
		return Amount{}, false
	}
	return a.Sub(b), true
}

// MulUint64 returns a*n, saturating on overflow.
func (a Amount) MulUint64(n uint64) Amount {
	v, ok := a.MulUint64Checked(n)
	if !ok {
		return Amount{Hi: ^uint64(0), Lo: ^uint64(0)}
	}
	return v
}

// MulUint64Checked returns a*n and false if the product overflows 128 bits.
func (a Amount) MulUint64Checked(n uint64) (Amount, bool) {
	if n == 0 || a.IsZero() {
		return Amount{}, true
	}
	hiHi, hiLo := bits.Mul64(a.Hi, n)
	if hiHi != 0 {
		return Amount{}, false
	}
	loHi, loLo := bits.Mul64(a.Lo, n)
	sumHi, carry := bits.Add64(hiLo, loHi, 0)
	if carry != 0 {
		return Amount{}, false
	}
	return Amount{Hi: sumHi, Lo: loLo}, true
}

// BasisPoints scales a by bps/10000, rounding down. Used for quorum
// comparisons (tally*10000 >= 6700*weight) without overflowing; callers
// needing exact quorum math should use GreaterOrEqualBps instead.
// Saturates to the maximum Amount if a*bps does not fit in 128 bits.
func (a Amount) BasisPoints(bps uint32) Amount {
	// a * bps can overflow the Lo-only fast path for large weights, so
	// split into hi/lo scaling the same way MulUint64 does.
	v, ok := a.MulUint64Checked(uint64(bps))
	if !ok {
		return Amount{Hi: ^uint64(0), Lo: ^uint64(0)}
	}
	return v.DivUint64(10000)
}

// DivUint64 returns floor(a/n). n must be non-zero.
func (a Amount) DivUint64(n uint64) Amount {
	if n == 0 {
		panic("ids: divide by zero")
	}
	if a.Hi == 0 {
		return Amount{Lo: a.Lo / n}
	}
	quoHi, rem := bits.Div64(0, a.Hi, n)
	quoLo, _ := bits.Div64(rem, a.Lo, n)
	return Amount{Hi: quoHi, Lo: quoLo}
}

// BigInt converts a to a math/big.Int, for computations (such as the
// merger-graph's chained proportional shares) that need exact rational
// arithmetic across more than one multiplication.
func (a Amount) BigInt() *big.Int {
	v := new(big.Int).Lsh(new(big.Int).SetUint64(a.Hi), 64)
	v.Add(v, new(big.Int).SetUint64(a.Lo))
	return v
}

// AmountFromBigInt converts a non-negative big.Int back to an Amount,
// saturating if it does not fit in 128 bits.
func AmountFromBigInt(v *big.Int) Amount {
	if v.Sign() <= 0 {
		return ZeroAmount
	}
	max := new(big.Int).Lsh(big.NewInt(1), 128)
	if v.Cmp(max) >= 0 {
		return Amount{Hi: ^uint64(0), Lo: ^uint64(0)}
	}
	mask64 := new(big.Int).SetUint64(^uint64(0))
	lo := new(big.Int).And(v, mask64).Uint64()
	hi := new(big.Int).Rsh(v, 64).Uint64()
	return Amount{Hi: hi, Lo: lo}
}

// MulDiv computes floor(a * num / den) using exact big-integer
// arithmetic, for chained proportional computations (merger-graph
// revocation shares) where successive float64 multiplications would
// accumulate rounding error.
func MulDiv(a Amount, num, den *big.Int) Amount {
	if den.Sign() == 0 {
		return ZeroAmount
	}
	v := new(big.Int).Mul(a.BigInt(), num)
	v.Quo(v, den)
	return AmountFromBigInt(v)
}

// MulDivFloat scales a by frac (0 <= frac <= 1), rounding down. Used
// for the online-weight EMA trend, where the smoothing factor is a
// small float constant rather than a ratio of two on-chain amounts.
func MulDivFloat(a Amount, frac float64) Amount {
	if frac <= 0 {
		return ZeroAmount
	}
	// Represent frac exactly as num/1e9 to avoid float64 rounding
	// compounding across repeated EMA updates.
	const denom = 1_000_000_000
	num := big.NewInt(int64(frac * denom))
	return MulDiv(a, num, big.NewInt(denom))
}

// GreaterOrEqualBps reports whether a*10000 >= bps*b, the quorum
// comparison from spec §4.6.4. Tries the exact 128-bit products first;
// if either side overflows, falls back to a >= b.BasisPoints(bps), which
// rounds b*bps/10000 down (and saturates if b*bps itself overflows), so
// that fallback is not exact.
func GreaterOrEqualBps(a Amount, bps uint32, b Amount) bool {
	left, leftOK := a.MulUint64Checked(10000)
	right, rightOK := b.MulUint64Checked(uint64(bps))
	if leftOK && rightOK {
		return left.Cmp(right) >= 0
	}
	return a.Cmp(b.BasisPoints(bps)) >= 0
}
