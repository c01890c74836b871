// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package p2p

import (
	"testing"
	"time"
)

func TestBandwidthThrottle_StartsFull(t *testing.T) {
	now := time.Now()
	th := NewBandwidthThrottleAt(1000, func() time.Time { return now })
	if !th.TryConsume(1000) {
		t.Fatal("expected full bucket to allow consuming its entire rate")
	}
}

func TestBandwidthThrottle_RejectsWhenExhausted(t *testing.T) {
	now := time.Now()
	th := NewBandwidthThrottleAt(1000, func() time.Time { return now })
	if !th.TryConsume(1000) {
		t.Fatal("expected initial consume to succeed")
	}
	if th.TryConsume(1) {
		t.Fatal("expected consume to fail once bucket is empty")
	}
}

func TestBandwidthThrottle_RefillsOverTime(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	th := NewBandwidthThrottleAt(1000, clock)
	th.TryConsume(1000)

	now = now.Add(500 * time.Millisecond)
	if !th.TryConsume(400) {
		t.Fatal("expected half a second of refill at 1000B/s to allow consuming ~500B")
	}
}

func TestBandwidthThrottle_CapsAtBurstMultiplier(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	th := NewBandwidthThrottleAt(1000, clock)

	now = now.Add(100 * time.Second) // would refill far past the cap
	available := th.AvailableTokens()
	if available > float64(1000*burstMultiplier) {
		t.Fatalf("tokens exceeded burst cap: %v", available)
	}
}

func TestBandwidthThrottle_AvailableTokensNonNegative(t *testing.T) {
	th := NewDefaultBandwidthThrottle()
	if th.AvailableTokens() < 0 {
		t.Fatal("tokens must never go negative")
	}
}
