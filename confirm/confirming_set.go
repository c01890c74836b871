// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package confirm implements the confirmation pipeline (spec §4.9):
// a bounded FIFO of consensus-confirmed hashes awaiting cementation,
// and the cementation walker that advances each account's
// confirmation height strictly and causally.
package confirm

import (
	"sync"

	"github.com/burst-chain/burst/ids"
)

const (
	// MaxConfirming bounds the confirming set's total outstanding
	// entries (queue + deferred) before producers must back off.
	MaxConfirming = 16384

	// CementBatchSize is how many hashes NextBatch drains per cycle.
	CementBatchSize = 256

	// nearFullHighWaterBps and nearFullLowWaterBps are the backpressure
	// thresholds: near_full activates at 80% capacity and clears at 60%.
	nearFullHighWaterBps = 8000
	nearFullLowWaterBps  = 6000

	// DefaultMaxRetries is how many times a deferred hash may be retried
	// before it is dropped.
	DefaultMaxRetries = 8
)

type deferredEntry struct {
	hash  ids.BlockHash
	tries uint32
}

// ConfirmingSet is the FIFO of confirmed hashes awaiting cementation
// (spec §4.9.1). Producers (the consensus engine) enqueue via Add;
// the cementation loop drains via NextBatch and reports failures back
// via Defer. near_full is recomputed on every mutation, hysteresis
// between the high and low water marks so a single Add/drain pair
// cannot flap the signal.
type ConfirmingSet struct {
	mu          sync.Mutex
	queue       []ids.BlockHash
	queued      map[ids.BlockHash]bool
	deferred    []deferredEntry
	maxRetries  uint32
	nearFull    bool
	cementedCount uint64
}

// NewConfirmingSet creates an empty confirming set with the default
// capacity, batch size and retry limit.
func NewConfirmingSet() *ConfirmingSet {
	return &ConfirmingSet{
		queued:     make(map[ids.BlockHash]bool),
		maxRetries: DefaultMaxRetries,
	}
}

// Add enqueues hash for cementation. Duplicate adds of an
// already-queued hash are no-ops. Returns false if the set is at
// MaxConfirming capacity and the caller should back off.
func (s *ConfirmingSet) Add(hash ids.BlockHash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queued[hash] {
		return true
	}
	if s.totalLocked() >= MaxConfirming {
		return false
	}
	s.queue = append(s.queue, hash)
	s.queued[hash] = true
	s.refreshNearFullLocked()
	return true
}

// NextBatch pops up to CementBatchSize hashes off the front of the
// queue, oldest first.
func (s *ConfirmingSet) NextBatch() []ids.BlockHash {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := CementBatchSize
	if n > len(s.queue) {
		n = len(s.queue)
	}
	if n == 0 {
		return nil
	}
	batch := make([]ids.BlockHash, n)
	copy(batch, s.queue[:n])
	for _, h := range batch {
		delete(s.queued, h)
	}
	s.queue = s.queue[n:]
	s.refreshNearFullLocked()
	return batch
}

// Defer parks hash on the deferred retry queue after a failed
// cementation attempt, incrementing its retry count. Once the count
// exceeds maxRetries the hash is dropped and Defer returns false.
func (s *ConfirmingSet) Defer(hash ids.BlockHash, priorTries uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tries := priorTries + 1
	if tries > s.maxRetries {
		return false
	}
	s.deferred = append(s.deferred, deferredEntry{hash: hash, tries: tries})
	return true
}

// RetryDeferred moves every deferred hash back onto the main queue
// (subject to capacity) and returns how many were re-queued; hashes
// that don't fit stay deferred for the next call.
func (s *ConfirmingSet) RetryDeferred() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var remaining []deferredEntry
	moved := 0
	for _, d := range s.deferred {
		if s.queued[d.hash] || s.totalLocked() >= MaxConfirming {
			remaining = append(remaining, d)
			continue
		}
		s.queue = append(s.queue, d.hash)
		s.queued[d.hash] = true
		moved++
	}
	s.deferred = remaining
	s.refreshNearFullLocked()
	return moved
}

// RetryCountFor reports the current retry count tracked for hash on
// the deferred queue, or 0 if it is not currently deferred.
func (s *ConfirmingSet) RetryCountFor(hash ids.BlockHash) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.deferred {
		if d.hash == hash {
			return d.tries
		}
	}
	return 0
}

// IsNearFull reports the backpressure signal: true once total
// outstanding entries reach 80% of MaxConfirming, cleared again only
// once it falls back to 60%.
func (s *ConfirmingSet) IsNearFull() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nearFull
}

// PendingCount returns the number of hashes currently queued for
// cementation (excludes deferred).
func (s *ConfirmingSet) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// DeferredCount returns the number of hashes parked for retry.
func (s *ConfirmingSet) DeferredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deferred)
}

// RecordCemented accounts for count newly-cemented blocks, for
// telemetry/metrics.
func (s *ConfirmingSet) RecordCemented(count uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cementedCount += count
}

// CementedCount returns the running total recorded via RecordCemented.
func (s *ConfirmingSet) CementedCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cementedCount
}

func (s *ConfirmingSet) totalLocked() int {
	return len(s.queue) + len(s.deferred)
}

func (s *ConfirmingSet) refreshNearFullLocked() {
	total := uint64(s.totalLocked())
	switch {
	case total*10000 >= MaxConfirming*nearFullHighWaterBps:
		s.nearFull = true
	case total*10000 <= MaxConfirming*nearFullLowWaterBps:
		s.nearFull = false
	}
}
