// Copyright (c) 2022 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package store is the transactional key-value store abstraction over
// named containers (spec §4.4): a BurstStore wraps a kv.Engine, gives
// each container a stable namespace, and hands out WriteBatches that
// commit atomically across any subset of them.
package store

import (
	"encoding/binary"

	"github.com/burst-chain/burst/ids"
	"github.com/burst-chain/burst/kv"
	"github.com/burst-chain/burst/store/engine"
)

// Container names, enumerated exactly as spec §4.4 lists them.
const (
	Accounts              = "accounts"
	Blocks                = "blocks"
	Transactions          = "transactions"
	Pending               = "pending"
	HeightIndex           = "height_index"
	BlockHeightReverse    = "block_height_reverse"
	RepWeights            = "rep_weights"
	OnlineWeightSamples   = "online_weight_samples"
	TrstOriginIndex       = "trst_origin_index"
	TrstExpiryIndex       = "trst_expiry_index"
	TrstReverseIndex      = "trst_reverse_index"
	MergerOrigins         = "merger_origins"
	MergerDownstream      = "merger_downstream"
	MergerNodes           = "merger_nodes"
	Endorsements          = "endorsements"
	VerificationVotes     = "verification_votes"
	Challenges            = "challenges"
	Proposals             = "proposals"
	Votes                 = "votes"
	Delegations           = "delegations"
	Constitution          = "constitution"
	Frontiers             = "frontiers"
	Meta                  = "meta"
	BrnWallets            = "brn_wallets"
	BrnMeta               = "brn_meta"
)

// BurstStore is the node's single handle onto every named container.
type BurstStore struct {
	eng kv.Engine
}

// Open wraps an already-open kv.Engine.
func Open(eng kv.Engine) *BurstStore { return &BurstStore{eng: eng} }

// OpenFile opens (creating if absent) a LevelDB-backed store at path.
func OpenFile(path string) (*BurstStore, error) {
	eng, err := engine.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return Open(eng), nil
}

// OpenMemory opens a non-persistent store, for tests.
func OpenMemory() (*BurstStore, error) {
	eng, err := engine.OpenMemory()
	if err != nil {
		return nil, err
	}
	return Open(eng), nil
}

// Container returns the named keyed container.
func (s *BurstStore) Container(name string) kv.Store { return s.eng.Store(name) }

// Close releases the underlying engine.
func (s *BurstStore) Close() error { return s.eng.Close() }

// NewBatch returns a fresh WriteBatch: every mutation queued against any
// container through it commits in one atomic scope (spec §4.4). On-
// block-acceptance (§4.5) uses exactly one batch per block.
func (s *BurstStore) NewBatch() *WriteBatch {
	return &WriteBatch{bulk: s.eng.Batch()}
}

// WriteBatch accumulates puts/deletes across any subset of containers.
type WriteBatch struct {
	bulk kv.Bulk
}

// Put queues a put against the named container.
func (b *WriteBatch) Put(container string, key, val []byte) error {
	return b.bulk.Put(prefixed(container, key), val)
}

// Delete queues a delete against the named container.
func (b *WriteBatch) Delete(container string, key []byte) error {
	return b.bulk.Delete(prefixed(container, key))
}

// Commit fsyncs the batch to disk. On a write failure mid-batch nothing
// from this batch is observed (spec §7: store errors during a write
// batch abort the batch atomically).
func (b *WriteBatch) Commit() error { return b.bulk.Write() }

func prefixed(container string, key []byte) []byte {
	p := engine.ContainerPrefix(container)
	out := make([]byte, 0, len(p)+len(key))
	out = append(out, p...)
	out = append(out, key...)
	return out
}

// --- composite keys (spec §4.4) ---

// HeightKey builds the height_index key: account_bytes ‖ height_u64_be.
func HeightKey(account ids.WalletAddress, height uint64) []byte {
	key := make([]byte, ids.AddressSize+8)
	copy(key, account.Bytes())
	binary.BigEndian.PutUint64(key[ids.AddressSize:], height)
	return key
}

// AccountHeightPrefix returns the prefix matching every height-index
// entry for account, for an O(height) per-account block listing scan.
func AccountHeightPrefix(account ids.WalletAddress) []byte {
	return account.Bytes()
}

// PendingKey builds the pending key: destination_bytes ‖ source_hash.
func PendingKey(destination ids.WalletAddress, source ids.BlockHash) []byte {
	key := make([]byte, ids.AddressSize+ids.HashSize)
	copy(key, destination.Bytes())
	copy(key[ids.AddressSize:], source[:])
	return key
}

// VoteKey builds the votes key: proposal_hash ‖ voter_bytes.
func VoteKey(proposal ids.BlockHash, voter ids.WalletAddress) []byte {
	key := make([]byte, ids.HashSize+ids.AddressSize)
	copy(key, proposal[:])
	copy(key[ids.HashSize:], voter.Bytes())
	return key
}

// MergerEdgeKey builds the merger_origins/merger_downstream key:
// parent_hash ‖ child_hash.
func MergerEdgeKey(parent, child ids.TxHash) []byte {
	key := make([]byte, 2*ids.HashSize)
	copy(key, parent[:])
	copy(key[ids.HashSize:], child[:])
	return key
}
