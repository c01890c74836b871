// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package p2p

import (
	"sync"
	"time"
)

// DefaultMaxBytesPerSec is the default per-peer token-bucket rate
// (spec §4.7.3).
const DefaultMaxBytesPerSec = 5 * 1024 * 1024

// burstMultiplier caps the bucket at 2x the steady-state rate.
const burstMultiplier = 2

// BandwidthThrottle is a per-peer token bucket: starts full, refills
// over time at maxBytesPerSec, capped at burstMultiplier x rate.
type BandwidthThrottle struct {
	mu             sync.Mutex
	maxBytesPerSec uint64
	tokens         float64
	lastRefill     time.Time
	now            func() time.Time
}

// NewBandwidthThrottle creates a throttle at maxBytesPerSec, starting
// with a full bucket.
func NewBandwidthThrottle(maxBytesPerSec uint64) *BandwidthThrottle {
	return NewBandwidthThrottleAt(maxBytesPerSec, time.Now)
}

// NewBandwidthThrottleAt is NewBandwidthThrottle with an injectable
// clock, for deterministic tests that don't want to sleep.
func NewBandwidthThrottleAt(maxBytesPerSec uint64, now func() time.Time) *BandwidthThrottle {
	return &BandwidthThrottle{
		maxBytesPerSec: maxBytesPerSec,
		tokens:         float64(maxBytesPerSec),
		lastRefill:     now(),
		now:            now,
	}
}

// NewDefaultBandwidthThrottle creates a throttle at DefaultMaxBytesPerSec.
func NewDefaultBandwidthThrottle() *BandwidthThrottle {
	return NewBandwidthThrottle(DefaultMaxBytesPerSec)
}

// TryConsume refills the bucket for elapsed time, then attempts to
// spend nBytes tokens. Returns false (no tokens spent) if insufficient.
func (t *BandwidthThrottle) TryConsume(nBytes uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.refillLocked()
	if t.tokens < float64(nBytes) {
		return false
	}
	t.tokens -= float64(nBytes)
	return true
}

func (t *BandwidthThrottle) refillLocked() {
	now := t.now()
	elapsed := now.Sub(t.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	t.lastRefill = now

	cap := float64(t.maxBytesPerSec * burstMultiplier)
	t.tokens += elapsed * float64(t.maxBytesPerSec)
	if t.tokens > cap {
		t.tokens = cap
	}
}

// MaxBytesPerSec returns the configured steady-state rate.
func (t *BandwidthThrottle) MaxBytesPerSec() uint64 { return t.maxBytesPerSec }

// AvailableTokens reports the current token balance after refilling.
func (t *BandwidthThrottle) AvailableTokens() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refillLocked()
	return t.tokens
}
