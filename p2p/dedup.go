// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package p2p

import (
	"container/list"
	"sync"

	"github.com/burst-chain/burst/ids"
)

// DefaultDedupCapacity is the default rolling hash-set size (spec
// §4.7.3, invariant 13).
const DefaultDedupCapacity = 65536

// MessageDedup is a bounded, FIFO-eviction rolling hash set over
// recently seen message digests (spec §4.7.3): drops duplicates before
// propagation/processing without growing unbounded memory.
type MessageDedup struct {
	mu       sync.Mutex
	capacity int
	seen     map[[ids.HashSize]byte]*list.Element
	order    *list.List // front = oldest
}

// NewMessageDedup creates a dedup set bounded at capacity entries.
func NewMessageDedup(capacity int) *MessageDedup {
	return &MessageDedup{
		capacity: capacity,
		seen:     make(map[[ids.HashSize]byte]*list.Element, capacity),
		order:    list.New(),
	}
}

// NewDefaultMessageDedup creates a dedup set at DefaultDedupCapacity.
func NewDefaultMessageDedup() *MessageDedup {
	return NewMessageDedup(DefaultDedupCapacity)
}

// HashMessage digests data with Blake2b-256, the dedup key space.
func HashMessage(data []byte) [ids.HashSize]byte {
	return ids.Blake2b256(data)
}

// IsDuplicate checks hash against the set and inserts it if absent,
// evicting the oldest entry first if at capacity (invariant 13: after
// >= N distinct insertions the oldest is evicted; a repeated hash
// reports duplicate).
func (d *MessageDedup) IsDuplicate(hash [ids.HashSize]byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[hash]; ok {
		return true
	}

	if len(d.seen) >= d.capacity {
		oldest := d.order.Front()
		if oldest != nil {
			d.order.Remove(oldest)
			delete(d.seen, oldest.Value.([ids.HashSize]byte))
		}
	}

	elem := d.order.PushBack(hash)
	d.seen[hash] = elem
	return false
}

// Len returns the number of tracked digests.
func (d *MessageDedup) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// IsEmpty reports whether the set holds no digests.
func (d *MessageDedup) IsEmpty() bool { return d.Len() == 0 }
