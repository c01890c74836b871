// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blockproc

import (
	"sync"
	"time"

	"github.com/burst-chain/burst/ids"
)

const (
	maxLocalBlocks       = 1024
	localInitialInterval = time.Second
	localMaxInterval     = 60 * time.Second
	maxRebroadcasts      = 15
)

type localEntry struct {
	raw             []byte
	createdAt       time.Time
	lastBroadcastAt time.Time
	broadcastCount  uint32
	interval        time.Duration
}

// LocalBroadcaster re-broadcasts blocks this node originated until they
// are confirmed, with exponential backoff, so a locally created block
// is not stranded if its first flood broadcast is lost. Not part of
// spec §4.5 itself, but the natural companion to it: a node's own
// blocks get the same at-least-once delivery guarantee the network
// gives everyone else's.
type LocalBroadcaster struct {
	mu         sync.Mutex
	blocks     map[ids.BlockHash]*localEntry
	maxEntries int
}

// NewLocalBroadcaster creates a tracker bounded at maxEntries blocks.
func NewLocalBroadcaster(maxEntries int) *LocalBroadcaster {
	return &LocalBroadcaster{blocks: make(map[ids.BlockHash]*localEntry), maxEntries: maxEntries}
}

// NewDefaultLocalBroadcaster uses the standard capacity.
func NewDefaultLocalBroadcaster() *LocalBroadcaster {
	return NewLocalBroadcaster(maxLocalBlocks)
}

// Track begins re-broadcasting hash until Confirmed is called.
func (b *LocalBroadcaster) Track(hash ids.BlockHash, raw []byte, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.blocks) >= b.maxEntries {
		var oldestHash ids.BlockHash
		var oldestAt time.Time
		first := true
		for h, e := range b.blocks {
			if first || e.createdAt.Before(oldestAt) {
				oldestHash, oldestAt, first = h, e.createdAt, false
			}
		}
		if !first {
			delete(b.blocks, oldestHash)
		}
	}

	b.blocks[hash] = &localEntry{
		raw:             raw,
		createdAt:       now,
		lastBroadcastAt: now,
		broadcastCount:  1,
		interval:        localInitialInterval,
	}
}

// DueForRebroadcast returns every tracked block whose backoff interval
// has elapsed as of now, advancing each one's interval and count.
func (b *LocalBroadcaster) DueForRebroadcast(now time.Time) []RebroadcastCandidate {
	b.mu.Lock()
	defer b.mu.Unlock()

	var due []RebroadcastCandidate
	for hash, e := range b.blocks {
		if e.broadcastCount >= maxRebroadcasts {
			continue
		}
		if now.Sub(e.lastBroadcastAt) >= e.interval {
			due = append(due, RebroadcastCandidate{Hash: hash, Raw: e.raw})
			e.lastBroadcastAt = now
			e.broadcastCount++
			e.interval *= 2
			if e.interval > localMaxInterval {
				e.interval = localMaxInterval
			}
		}
	}
	return due
}

// RebroadcastCandidate is one block due for re-flooding.
type RebroadcastCandidate struct {
	Hash ids.BlockHash
	Raw  []byte
}

// Confirmed stops tracking hash.
func (b *LocalBroadcaster) Confirmed(hash ids.BlockHash) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blocks, hash)
}

// CleanupExpired drops every block that exhausted its rebroadcast
// budget without being confirmed.
func (b *LocalBroadcaster) CleanupExpired() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for h, e := range b.blocks {
		if e.broadcastCount >= maxRebroadcasts {
			delete(b.blocks, h)
		}
	}
}

// Len reports the number of tracked blocks.
func (b *LocalBroadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blocks)
}
