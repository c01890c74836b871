// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package brn implements the BRN economic core: piecewise-constant
// rate-history integration and wallet balance accrual (spec §4.2).
package brn

import (
	"github.com/pkg/errors"

	"github.com/burst-chain/burst/ids"
)

// ErrNonMonotonicRateChange is returned by ApplyRateChange when the new
// segment would not strictly increase on the last segment's start time.
var ErrNonMonotonicRateChange = errors.New("brn: rate change not after last segment start")

// segment is one piece of the piecewise-constant rate curve: rate holds
// from StartTime until the next segment's StartTime (or forever, for the
// last segment).
type segment struct {
	Rate      ids.Amount
	StartTime uint64
}

// RateHistory is an ordered, strictly-increasing-in-start-time sequence
// of rate segments. The last segment extends to infinity.
type RateHistory struct {
	segments []segment
}

// NewRateHistory creates a history starting at time zero with the given
// initial rate.
func NewRateHistory(initialRate ids.Amount) *RateHistory {
	return &RateHistory{segments: []segment{{Rate: initialRate, StartTime: 0}}}
}

// ApplyRateChange appends a new segment starting at atTime with the
// given rate. Fails if atTime is not strictly after the last segment's
// start time (spec §4.2).
func (h *RateHistory) ApplyRateChange(newRate ids.Amount, atTime uint64) error {
	if len(h.segments) > 0 && atTime <= h.segments[len(h.segments)-1].StartTime {
		return ErrNonMonotonicRateChange
	}
	h.segments = append(h.segments, segment{Rate: newRate, StartTime: atTime})
	return nil
}

// RateAt returns the rate in effect at time t.
func (h *RateHistory) RateAt(t uint64) ids.Amount {
	rate := ids.ZeroAmount
	for _, s := range h.segments {
		if s.StartTime > t {
			break
		}
		rate = s.Rate
	}
	return rate
}

// TotalAccrued sums segment contributions between from and to (spec
// §4.2): for each segment [s_i, s_{i+1}), contribution is
// rate_i * (min(to, s_{i+1}) - max(from, s_i)) when positive. Uses
// saturating arithmetic; see TotalAccruedChecked for the overflow-aware
// variant.
func (h *RateHistory) TotalAccrued(from, to uint64) ids.Amount {
	total, _ := h.accrue(from, to, false)
	return total
}

// TotalAccruedChecked behaves like TotalAccrued but returns false if any
// segment's contribution overflows 128 bits.
func (h *RateHistory) TotalAccruedChecked(from, to uint64) (ids.Amount, bool) {
	return h.accrue(from, to, true)
}

func (h *RateHistory) accrue(from, to uint64, checked bool) (ids.Amount, bool) {
	if to <= from || len(h.segments) == 0 {
		return ids.ZeroAmount, true
	}
	total := ids.ZeroAmount
	for i, s := range h.segments {
		segStart := s.StartTime
		var segEnd uint64 = ^uint64(0) // last segment extends to infinity
		if i+1 < len(h.segments) {
			segEnd = h.segments[i+1].StartTime
		}

		lo := from
		if segStart > lo {
			lo = segStart
		}
		hi := to
		if segEnd < hi {
			hi = segEnd
		}
		if hi <= lo {
			continue
		}
		duration := hi - lo
		if s.Rate.IsZero() || duration == 0 {
			continue
		}
		contribution, ok := s.Rate.MulUint64Checked(duration)
		if !ok {
			if checked {
				return ids.Amount{}, false
			}
			contribution = s.Rate.MulUint64(duration)
		}
		if checked {
			summed, ok := total.AddChecked(contribution)
			if !ok {
				return ids.Amount{}, false
			}
			total = summed
		} else {
			total = total.Add(contribution)
		}
	}
	return total, true
}

// Segments returns a copy of the underlying segments, for tests and
// diagnostics only.
func (h *RateHistory) Segments() []struct {
	Rate      ids.Amount
	StartTime uint64
} {
	out := make([]struct {
		Rate      ids.Amount
		StartTime uint64
	}, len(h.segments))
	for i, s := range h.segments {
		out[i] = struct {
			Rate      ids.Amount
			StartTime uint64
		}{s.Rate, s.StartTime}
	}
	return out
}
