// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"sync"

	"github.com/burst-chain/burst/ids"
	"github.com/burst-chain/burst/params"
)

// OnlineWeightSampler tracks each representative's most recent vote
// timestamp and derives the online/effective weight used as the
// quorum denominator (spec §4.6.2).
type OnlineWeightSampler struct {
	mu        sync.Mutex
	lastVote  map[ids.WalletAddress]uint64
	windowSecs uint64
	trended   ids.Amount
	minFloor  ids.Amount
}

// NewOnlineWeightSampler creates a sampler with the given online
// window and minimum weight floor (spec default: 300s window).
func NewOnlineWeightSampler(windowSecs uint64, minFloor ids.Amount) *OnlineWeightSampler {
	return &OnlineWeightSampler{
		lastVote:   make(map[ids.WalletAddress]uint64),
		windowSecs: windowSecs,
		minFloor:   minFloor,
	}
}

// NewOnlineWeightSamplerFromParams builds a sampler from protocol params.
func NewOnlineWeightSamplerFromParams(p params.ProtocolParams) *OnlineWeightSampler {
	return NewOnlineWeightSampler(p.OnlineWindowSecs, p.OnlineWeightMinFloor)
}

// RecordVote notes that rep cast a vote at timestamp, keeping only the
// most recent timestamp per rep.
func (s *OnlineWeightSampler) RecordVote(rep ids.WalletAddress, timestamp uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timestamp > s.lastVote[rep] {
		s.lastVote[rep] = timestamp
	}
}

// OnlineRepresentatives returns every rep that voted within the window
// ending at now.
func (s *OnlineWeightSampler) OnlineRepresentatives(now uint64) []ids.WalletAddress {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := saturatingSub(now, s.windowSecs)
	out := make([]ids.WalletAddress, 0, len(s.lastVote))
	for rep, last := range s.lastVote {
		if last >= cutoff {
			out = append(out, rep)
		}
	}
	return out
}

// OnlineWeight sums weights[rep] over every currently-online rep.
func (s *OnlineWeightSampler) OnlineWeight(now uint64, weights map[ids.WalletAddress]ids.Amount) ids.Amount {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := saturatingSub(now, s.windowSecs)
	total := ids.ZeroAmount
	for rep, last := range s.lastVote {
		if last >= cutoff {
			total = total.Add(weights[rep])
		}
	}
	return total
}

// UpdateTrend folds currentOnline into the EMA trended weight: the
// first sample snaps the trend directly (spec §4.6.2).
func (s *OnlineWeightSampler) UpdateTrend(currentOnline ids.Amount, alpha float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trended.IsZero() {
		s.trended = currentOnline
		return
	}
	decayed := ids.MulDivFloat(s.trended, 1-alpha)
	sampled := ids.MulDivFloat(currentOnline, alpha)
	s.trended = decayed.Add(sampled)
}

// TrendedWeight returns the current EMA trended weight.
func (s *OnlineWeightSampler) TrendedWeight() ids.Amount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trended
}

// MinWeight returns the configured floor.
func (s *OnlineWeightSampler) MinWeight() ids.Amount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minFloor
}

// SetMinWeight overrides the floor (tests, governance updates).
func (s *OnlineWeightSampler) SetMinWeight(floor ids.Amount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minFloor = floor
}

// EffectiveWeight is max(current online, trended, floor): the quorum
// denominator (spec §4.6.2, §4.6.4).
func (s *OnlineWeightSampler) EffectiveWeight(now uint64, weights map[ids.WalletAddress]ids.Amount) ids.Amount {
	current := s.OnlineWeight(now, weights)
	effective := current
	if trended := s.TrendedWeight(); trended.Cmp(effective) > 0 {
		effective = trended
	}
	if floor := s.MinWeight(); floor.Cmp(effective) > 0 {
		effective = floor
	}
	return effective
}

// IsPrincipal reports whether repWeight is at least the principal-rep
// basis-point share of totalOnline (spec default 10 bps = 0.1%).
func (s *OnlineWeightSampler) IsPrincipal(repWeight, totalOnline ids.Amount, thresholdBps uint32) bool {
	if totalOnline.IsZero() {
		return false
	}
	return ids.GreaterOrEqualBps(repWeight, thresholdBps, totalOnline)
}

// Prune drops every rep that fell outside the online window as of now.
func (s *OnlineWeightSampler) Prune(now uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := saturatingSub(now, s.windowSecs)
	for rep, last := range s.lastVote {
		if last < cutoff {
			delete(s.lastVote, rep)
		}
	}
}

// TrackedCount returns the number of reps with a recorded vote,
// pruned or not.
func (s *OnlineWeightSampler) TrackedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lastVote)
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// OnlineWeightTracker keeps a fixed-size ring of periodic online-weight
// samples (spec default: 672 samples, one per 5-minute period over 2.3
// days) and reports their median as a secondary smoothing signal.
type OnlineWeightTracker struct {
	mu      sync.Mutex
	samples []ids.Amount
	cap     int
	next    int
	full    bool
}

// NewOnlineWeightTracker creates a tracker holding at most capacity samples.
func NewOnlineWeightTracker(capacity int) *OnlineWeightTracker {
	return &OnlineWeightTracker{samples: make([]ids.Amount, capacity), cap: capacity}
}

// Sample records one period's online weight, overwriting the oldest
// entry once the ring is full.
func (t *OnlineWeightTracker) Sample(weight ids.Amount) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples[t.next] = weight
	t.next = (t.next + 1) % t.cap
	if t.next == 0 {
		t.full = true
	}
}

// Count returns how many samples have been recorded so far.
func (t *OnlineWeightTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.full {
		return t.cap
	}
	return t.next
}

// Median returns the median of every recorded sample, zero if empty.
func (t *OnlineWeightTracker) Median() ids.Amount {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.next
	if t.full {
		n = t.cap
	}
	if n == 0 {
		return ids.ZeroAmount
	}
	sorted := append([]ids.Amount(nil), t.samples[:n]...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].Cmp(sorted[j]) > 0; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted[len(sorted)/2]
}
