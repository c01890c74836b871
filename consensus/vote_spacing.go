// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"sync"
	"time"

	"github.com/burst-chain/burst/ids"
)

// voteSpacingMinInterval is the minimum time between vote changes to a
// different candidate under a given election root (spec §4.6.3).
const voteSpacingMinInterval = 1500 * time.Millisecond

type spacingEntry struct {
	last      time.Time
	candidate ids.BlockHash
}

// VoteSpacing rate-limits how often the recorded vote for a given
// election root may change to a different candidate. State is kept per
// root only, not per representative: a change recorded for a root
// applies to every later vote under that root. Reconfirming the same
// candidate is always allowed regardless of timing.
type VoteSpacing struct {
	mu       sync.Mutex
	lastVote map[ids.BlockHash]spacingEntry
}

// NewVoteSpacing creates an empty tracker.
func NewVoteSpacing() *VoteSpacing {
	return &VoteSpacing{lastVote: make(map[ids.BlockHash]spacingEntry)}
}

// Votable reports whether a vote for candidate under root may be cast
// now: true if no prior vote is recorded, the candidate matches the
// last vote, or the minimum interval has elapsed.
func (s *VoteSpacing) Votable(root, candidate ids.BlockHash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.lastVote[root]
	if !ok {
		return true
	}
	if entry.candidate == candidate {
		return true
	}
	return time.Since(entry.last) >= voteSpacingMinInterval
}

// Record notes that root's vote changed to candidate just now.
func (s *VoteSpacing) Record(root, candidate ids.BlockHash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastVote[root] = spacingEntry{last: time.Now(), candidate: candidate}
}

// Cleanup drops entries whose last change is older than maxAge.
func (s *VoteSpacing) Cleanup(maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for root, entry := range s.lastVote {
		if now.Sub(entry.last) > maxAge {
			delete(s.lastVote, root)
		}
	}
}

// Len returns the number of tracked election roots.
func (s *VoteSpacing) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lastVote)
}

// IsEmpty reports whether no roots are currently tracked.
func (s *VoteSpacing) IsEmpty() bool {
	return s.Len() == 0
}
