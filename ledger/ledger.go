// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger ties together the store (spec §4.4), account chains,
// the BRN rate history and the TRST merger graph into the single
// read/write surface the block processor and confirmation pipeline
// operate against.
package ledger

import (
	"encoding/binary"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/burst-chain/burst/account"
	"github.com/burst-chain/burst/block"
	"github.com/burst-chain/burst/brn"
	"github.com/burst-chain/burst/ids"
	"github.com/burst-chain/burst/params"
	"github.com/burst-chain/burst/store"
	"github.com/burst-chain/burst/trst"
)

// ErrNotFound is returned when a lookup misses.
var ErrNotFound = errors.New("ledger: not found")

// PendingInfo describes a Send block's unconsumed destination credit
// (spec §4.4's pending container).
type PendingInfo struct {
	Source      ids.BlockHash
	Destination ids.WalletAddress
	Amount      ids.Amount
	Origin      ids.TxHash
}

// Ledger is the node's single ledger-state handle.
type Ledger struct {
	Store       *store.BurstStore
	RateHistory *brn.RateHistory
	MergerGraph *trst.MergerGraph
	Params      params.ProtocolParams
}

// New wires a fresh ledger over an already-open store.
func New(s *store.BurstStore, p params.ProtocolParams) *Ledger {
	return &Ledger{
		Store:       s,
		RateHistory: brn.NewRateHistory(p.InitialBrnRate),
		MergerGraph: trst.NewMergerGraph(),
		Params:      p,
	}
}

// GetAccount reads an account's head state.
func (l *Ledger) GetAccount(addr ids.WalletAddress) (*account.Info, error) {
	c := l.Store.Container(store.Accounts)
	raw, err := c.Get(addr.Bytes())
	if err != nil {
		if c.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var info account.Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetBlock reads a stored block by hash.
func (l *Ledger) GetBlock(hash ids.BlockHash) (*block.StateBlock, error) {
	c := l.Store.Container(store.Blocks)
	raw, err := c.Get(hash[:])
	if err != nil {
		if c.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeBlock(raw)
}

// BlockAtHeight resolves the block hash stored at (account, height).
func (l *Ledger) BlockAtHeight(addr ids.WalletAddress, height uint64) (ids.BlockHash, error) {
	c := l.Store.Container(store.HeightIndex)
	raw, err := c.Get(store.HeightKey(addr, height))
	if err != nil {
		if c.IsNotFound(err) {
			return ids.BlockHash{}, ErrNotFound
		}
		return ids.BlockHash{}, err
	}
	return ids.BlockHashFromBytes(raw)
}

// BlocksInLastDay implements blockproc.RecentActivity by walking the
// height index downward from the head, one lookup per height, and
// stopping at the first block older than 24h; callers pass `now` as
// the wall-clock reference (spec §4.5.1).
func (l *Ledger) BlocksInLastDay(addr ids.WalletAddress, now uint64) uint32 {
	acc, err := l.GetAccount(addr)
	if err != nil {
		return 0
	}
	var count uint32
	const daySecs = 24 * 3600
	for h := acc.BlockCount; h >= 1; h-- {
		hash, err := l.BlockAtHeight(addr, h)
		if err != nil {
			break
		}
		blk, err := l.GetBlock(hash)
		if err != nil {
			break
		}
		if now-blk.Timestamp > daySecs {
			break
		}
		count++
		if h == 1 {
			break
		}
	}
	return count
}

// HeightOf resolves the (account, height) a stored block occupies via
// the BlockHeightReverse index written alongside it in PutBlock.
func (l *Ledger) HeightOf(hash ids.BlockHash) (ids.WalletAddress, uint64, error) {
	c := l.Store.Container(store.BlockHeightReverse)
	raw, err := c.Get(hash[:])
	if err != nil {
		if c.IsNotFound(err) {
			return "", 0, ErrNotFound
		}
		return "", 0, err
	}
	if len(raw) != ids.AddressSize+8 {
		return "", 0, errors.New("ledger: malformed height-reverse entry")
	}
	addr := ids.WalletAddress(raw[:ids.AddressSize])
	height := binary.BigEndian.Uint64(raw[ids.AddressSize:])
	return addr, height, nil
}

// PendingFor reads the unconsumed pending credit for (destination, source).
func (l *Ledger) PendingFor(destination ids.WalletAddress, source ids.BlockHash) (*PendingInfo, error) {
	c := l.Store.Container(store.Pending)
	raw, err := c.Get(store.PendingKey(destination, source))
	if err != nil {
		if c.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var p PendingInfo
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Batch is a ledger-aware wrapper over store.WriteBatch: every mutation
// from accepting one block commits in a single atomic scope (spec
// §4.5's "one batch per block").
type Batch struct {
	*store.WriteBatch
}

// NewBatch starts a fresh atomic batch.
func (l *Ledger) NewBatch() *Batch { return &Batch{l.Store.NewBatch()} }

// PutAccount queues an account-info update.
func (b *Batch) PutAccount(info *account.Info) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return b.Put(store.Accounts, info.Address.Bytes(), raw)
}

// PutBlock queues a block body and its height-index entries.
func (b *Batch) PutBlock(blk *block.StateBlock, height uint64) error {
	raw := encodeBlock(blk)
	hash := blk.Hash()
	if err := b.Put(store.Blocks, hash[:], raw); err != nil {
		return err
	}
	if err := b.Put(store.HeightIndex, store.HeightKey(blk.Account, height), hash[:]); err != nil {
		return err
	}
	reverse := make([]byte, ids.AddressSize+8)
	copy(reverse, blk.Account.Bytes())
	binary.BigEndian.PutUint64(reverse[ids.AddressSize:], height)
	return b.Put(store.BlockHeightReverse, hash[:], reverse)
}

// PutPending queues a pending credit for a Send's destination.
func (b *Batch) PutPending(destination ids.WalletAddress, source ids.BlockHash, p *PendingInfo) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return b.Put(store.Pending, store.PendingKey(destination, source), raw)
}

// ConsumePending queues the removal of a spent pending credit.
func (b *Batch) ConsumePending(destination ids.WalletAddress, source ids.BlockHash) error {
	return b.Delete(store.Pending, store.PendingKey(destination, source))
}

func encodeBlock(blk *block.StateBlock) []byte {
	raw, _ := json.Marshal(struct {
		Version        uint8
		Kind           block.Kind
		Account        ids.WalletAddress
		Previous       ids.BlockHash
		Representative ids.WalletAddress
		BrnBalance     ids.Amount
		TrstBalance    ids.Amount
		Link           ids.BlockHash
		Origin         ids.TxHash
		Transaction    ids.TxHash
		Timestamp      uint64
		ParamsHash     [ids.HashSize]byte
		Work           uint64
		Signature      []byte
	}{
		blk.Version, blk.Kind, blk.Account, blk.Previous, blk.Representative,
		blk.BrnBalance, blk.TrstBalance, blk.Link, blk.Origin, blk.Transaction,
		blk.Timestamp, blk.ParamsHash, blk.Work, blk.Signature,
	})
	return raw
}

func decodeBlock(raw []byte) (*block.StateBlock, error) {
	var fields struct {
		Version        uint8
		Kind           block.Kind
		Account        ids.WalletAddress
		Previous       ids.BlockHash
		Representative ids.WalletAddress
		BrnBalance     ids.Amount
		TrstBalance    ids.Amount
		Link           ids.BlockHash
		Origin         ids.TxHash
		Transaction    ids.TxHash
		Timestamp      uint64
		ParamsHash     [ids.HashSize]byte
		Work           uint64
		Signature      []byte
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return &block.StateBlock{
		Version: fields.Version, Kind: fields.Kind, Account: fields.Account,
		Previous: fields.Previous, Representative: fields.Representative,
		BrnBalance: fields.BrnBalance, TrstBalance: fields.TrstBalance,
		Link: fields.Link, Origin: fields.Origin, Transaction: fields.Transaction,
		Timestamp: fields.Timestamp, ParamsHash: fields.ParamsHash,
		Work: fields.Work, Signature: fields.Signature,
	}, nil
}
