// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package blockproc implements the block-processing pipeline (spec
// §4.5): validation, gap handling, fork resolution, and the bounded
// backlog with rollback.
package blockproc

import (
	"sync"
	"time"

	"github.com/burst-chain/burst/block"
	"github.com/burst-chain/burst/ids"
)

type pending struct {
	blk      *block.StateBlock
	queuedAt time.Time
}

// UncheckedMap buffers blocks awaiting a missing previous or link hash,
// indexed both ways, bounded by total-entry capacity with TTL eviction
// (spec §4.5). It is not an error condition: a block here is simply
// waiting.
type UncheckedMap struct {
	mu         sync.Mutex
	byPrevious map[ids.BlockHash][]*pending
	bySource   map[ids.BlockHash][]*pending
	count      int
	capacity   int
	ttl        time.Duration
}

// NewUncheckedMap creates a map bounded at capacity total entries, each
// evicted once older than ttl.
func NewUncheckedMap(capacity int, ttl time.Duration) *UncheckedMap {
	return &UncheckedMap{
		byPrevious: make(map[ids.BlockHash][]*pending),
		bySource:   make(map[ids.BlockHash][]*pending),
		capacity:   capacity,
		ttl:        ttl,
	}
}

// WaitOnPrevious parks blk until missing (its Previous) arrives. Returns
// false if the map is at capacity (spec §7: newest arrival dropped).
func (u *UncheckedMap) WaitOnPrevious(missing ids.BlockHash, blk *block.StateBlock) bool {
	return u.wait(u.byPrevious, missing, blk)
}

// WaitOnSource parks blk until missing (its Link's source block) arrives.
func (u *UncheckedMap) WaitOnSource(missing ids.BlockHash, blk *block.StateBlock) bool {
	return u.wait(u.bySource, missing, blk)
}

func (u *UncheckedMap) wait(index map[ids.BlockHash][]*pending, missing ids.BlockHash, blk *block.StateBlock) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.evictExpiredLocked()
	if u.count >= u.capacity {
		return false
	}
	index[missing] = append(index[missing], &pending{blk: blk, queuedAt: time.Now()})
	u.count++
	return true
}

// DrainPrevious removes and returns every block waiting on hash as its
// previous, for re-insertion into the priority queue.
func (u *UncheckedMap) DrainPrevious(hash ids.BlockHash) []*block.StateBlock {
	return u.drain(u.byPrevious, hash)
}

// DrainSource removes and returns every block waiting on hash as its
// link source.
func (u *UncheckedMap) DrainSource(hash ids.BlockHash) []*block.StateBlock {
	return u.drain(u.bySource, hash)
}

func (u *UncheckedMap) drain(index map[ids.BlockHash][]*pending, hash ids.BlockHash) []*block.StateBlock {
	u.mu.Lock()
	defer u.mu.Unlock()
	entries := index[hash]
	delete(index, hash)
	out := make([]*block.StateBlock, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.blk)
	}
	u.count -= len(entries)
	return out
}

// Len reports the total number of parked blocks across both indexes.
func (u *UncheckedMap) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.count
}

func (u *UncheckedMap) evictExpiredLocked() {
	now := time.Now()
	evict := func(index map[ids.BlockHash][]*pending) {
		for k, entries := range index {
			kept := entries[:0]
			for _, e := range entries {
				if now.Sub(e.queuedAt) < u.ttl {
					kept = append(kept, e)
				} else {
					u.count--
				}
			}
			if len(kept) == 0 {
				delete(index, k)
			} else {
				index[k] = kept
			}
		}
	}
	evict(u.byPrevious)
	evict(u.bySource)
}
