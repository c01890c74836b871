// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blockproc

import (
	"sort"
	"sync"

	"github.com/burst-chain/burst/ids"
)

// entry is one unconfirmed block tracked for eviction/rollback (spec
// §4.5 "Rollback / bounded backlog").
type entry struct {
	account   ids.WalletAddress
	hash      ids.BlockHash
	priority  uint64 // work_difficulty
	protected bool   // in an active election, cannot be evicted
}

// BoundedBacklog tracks unconfirmed blocks keyed by (account, priority).
// When size exceeds capacity, the lowest-priority unprotected blocks are
// scheduled for rollback; a per-account cap prevents single-account
// spam from starving everyone else (spec §4.5).
type BoundedBacklog struct {
	mu         sync.Mutex
	entries    map[ids.BlockHash]*entry
	perAccount map[ids.WalletAddress]int
	capacity   int
	perAccountCap int
}

// NewBoundedBacklog creates a backlog bounded at capacity total entries
// and perAccountCap entries per account (spec default: 128).
func NewBoundedBacklog(capacity, perAccountCap int) *BoundedBacklog {
	return &BoundedBacklog{
		entries:       make(map[ids.BlockHash]*entry),
		perAccount:    make(map[ids.WalletAddress]int),
		capacity:      capacity,
		perAccountCap: perAccountCap,
	}
}

// ErrAccountBacklogFull is returned by Add when account already has
// perAccountCap entries outstanding.
type ErrAccountBacklogFull struct{ Account ids.WalletAddress }

func (e *ErrAccountBacklogFull) Error() string { return "blockproc: account backlog full" }

// Add tracks hash for eviction bookkeeping. Returns the hashes, if any,
// that must now be rolled back to respect capacity.
func (b *BoundedBacklog) Add(account ids.WalletAddress, hash ids.BlockHash, priority uint64) ([]ids.BlockHash, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.perAccount[account] >= b.perAccountCap {
		return nil, &ErrAccountBacklogFull{Account: account}
	}

	b.entries[hash] = &entry{account: account, hash: hash, priority: priority}
	b.perAccount[account]++

	return b.evictOverflowLocked(), nil
}

func (b *BoundedBacklog) evictOverflowLocked() []ids.BlockHash {
	if len(b.entries) <= b.capacity {
		return nil
	}
	candidates := make([]*entry, 0, len(b.entries))
	for _, e := range b.entries {
		if !e.protected {
			candidates = append(candidates, e)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].priority < candidates[j].priority })

	overflow := len(b.entries) - b.capacity
	var evicted []ids.BlockHash
	for i := 0; i < overflow && i < len(candidates); i++ {
		e := candidates[i]
		delete(b.entries, e.hash)
		b.perAccount[e.account]--
		evicted = append(evicted, e.hash)
	}
	return evicted
}

// Protect marks hash as belonging to an active election: it cannot be
// evicted until Unprotect is called.
func (b *BoundedBacklog) Protect(hash ids.BlockHash) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.entries[hash]; ok {
		e.protected = true
	}
}

// Unprotect clears a prior Protect.
func (b *BoundedBacklog) Unprotect(hash ids.BlockHash) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.entries[hash]; ok {
		e.protected = false
	}
}

// Remove drops hash from the backlog, e.g. once it is confirmed or
// rolled back.
func (b *BoundedBacklog) Remove(hash ids.BlockHash) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.entries[hash]; ok {
		delete(b.entries, hash)
		b.perAccount[e.account]--
	}
}

// Len reports the number of tracked entries.
func (b *BoundedBacklog) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Contains reports whether hash is currently tracked.
func (b *BoundedBacklog) Contains(hash ids.BlockHash) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.entries[hash]
	return ok
}
