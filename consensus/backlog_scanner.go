// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import "github.com/burst-chain/burst/ids"

// BacklogScanner tracks unconfirmed blocks that didn't immediately
// enter an election — e.g. the election container was at capacity, or
// a dependency was missing — for periodic re-evaluation (spec
// §4.6.5). A bounded FIFO queue; new entries are dropped once full.
type BacklogScanner struct {
	backlog    []ids.BlockHash
	capacity   int
	minAgeSecs uint64
}

// NewBacklogScanner creates a scanner bounded at capacity entries.
// minAgeSecs is not enforced here; it's exposed for the caller's own
// re-scan eligibility filter.
func NewBacklogScanner(capacity int, minAgeSecs uint64) *BacklogScanner {
	return &BacklogScanner{capacity: capacity, minAgeSecs: minAgeSecs}
}

// Add appends hash to the backlog, silently dropped if at capacity.
func (s *BacklogScanner) Add(hash ids.BlockHash) {
	if len(s.backlog) < s.capacity {
		s.backlog = append(s.backlog, hash)
	}
}

// Remove drops hash from the backlog wherever it occurs.
func (s *BacklogScanner) Remove(hash ids.BlockHash) {
	out := s.backlog[:0]
	for _, h := range s.backlog {
		if h != hash {
			out = append(out, h)
		}
	}
	s.backlog = out
}

// NextBatch drains up to count entries from the front of the queue.
// The caller re-adds any that still need scanning.
func (s *BacklogScanner) NextBatch(count int) []ids.BlockHash {
	if count > len(s.backlog) {
		count = len(s.backlog)
	}
	batch := make([]ids.BlockHash, count)
	copy(batch, s.backlog[:count])
	s.backlog = s.backlog[count:]
	return batch
}

// Len returns the current backlog size.
func (s *BacklogScanner) Len() int { return len(s.backlog) }

// IsEmpty reports whether the backlog holds no entries.
func (s *BacklogScanner) IsEmpty() bool { return len(s.backlog) == 0 }

// Capacity returns the configured maximum size.
func (s *BacklogScanner) Capacity() int { return s.capacity }

// MinAgeSecs returns the configured minimum re-scan age.
func (s *BacklogScanner) MinAgeSecs() uint64 { return s.minAgeSecs }

// IsFull reports whether the backlog is at capacity.
func (s *BacklogScanner) IsFull() bool { return len(s.backlog) >= s.capacity }

// Peek returns the front entry without removing it.
func (s *BacklogScanner) Peek() (ids.BlockHash, bool) {
	if len(s.backlog) == 0 {
		return ids.BlockHash{}, false
	}
	return s.backlog[0], true
}
