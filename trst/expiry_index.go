// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package trst

import (
	"encoding/binary"

	"github.com/burst-chain/burst/ids"
)

// ExpiryKey builds the composite key used by the store's trst_expiry
// container: expiry_u64_be ‖ tx_hash, enabling an efficient "all tokens
// expiring before cutoff" prefix/range scan (spec §4.3, §4.4).
func ExpiryKey(expiresAt uint64, tx ids.TxHash) []byte {
	key := make([]byte, 8+ids.HashSize)
	binary.BigEndian.PutUint64(key[:8], expiresAt)
	copy(key[8:], tx[:])
	return key
}

// ExpiryKeyPrefix returns the prefix matching every token expiring
// strictly before cutoff, for use as the upper bound of a range scan.
func ExpiryKeyPrefix(cutoff uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, cutoff)
	return key
}

// ParseExpiryKey reverses ExpiryKey.
func ParseExpiryKey(key []byte) (expiresAt uint64, tx ids.TxHash, ok bool) {
	if len(key) != 8+ids.HashSize {
		return 0, ids.TxHash{}, false
	}
	expiresAt = binary.BigEndian.Uint64(key[:8])
	copy(tx[:], key[8:])
	return expiresAt, tx, true
}

// OriginKey builds the composite key for the trst_origin container:
// origin_hash ‖ tx_hash.
func OriginKey(origin, tx ids.TxHash) []byte {
	key := make([]byte, 2*ids.HashSize)
	copy(key[:ids.HashSize], origin[:])
	copy(key[ids.HashSize:], tx[:])
	return key
}
