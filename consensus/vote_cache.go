// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"sync"
	"time"

	"github.com/burst-chain/burst/ids"
)

const (
	voteCacheMaxSize   = 65536
	voteCacheMaxVoters = 64
	voteCacheTTL       = 900 * time.Second
)

type cachedVote struct {
	voter     ids.WalletAddress
	candidate ids.BlockHash
	weight    ids.Amount
	timestamp uint64
	isFinal   bool
	arrived   time.Time
}

type voteCacheEntry struct {
	votes      []*cachedVote
	tally      map[ids.BlockHash]ids.Amount
	finalTally map[ids.BlockHash]ids.Amount
}

// VoteCache holds votes that arrive for an election root before that
// election exists (spec §4.6.3): per-voter dedup (higher timestamp
// wins), a per-root voter cap with lowest-weight eviction, and a global
// capacity bound enforced by TTL sweeps.
type VoteCache struct {
	mu      sync.Mutex
	entries map[ids.BlockHash]*voteCacheEntry
}

// NewVoteCache creates an empty cache.
func NewVoteCache() *VoteCache {
	return &VoteCache{entries: make(map[ids.BlockHash]*voteCacheEntry)}
}

// Insert caches one (voter, root) vote for candidate (spec invariant 10:
// duplicate (voter, root) with a higher timestamp replaces; lower-or-equal
// is ignored).
func (c *VoteCache) Insert(root ids.BlockHash, voter ids.WalletAddress, candidate ids.BlockHash, weight ids.Amount, timestamp uint64, isFinal bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= voteCacheMaxSize {
		c.evictExpiredLocked()
	}

	entry, ok := c.entries[root]
	if !ok {
		entry = &voteCacheEntry{tally: make(map[ids.BlockHash]ids.Amount), finalTally: make(map[ids.BlockHash]ids.Amount)}
		c.entries[root] = entry
	}

	for _, v := range entry.votes {
		if v.voter == voter {
			if timestamp > v.timestamp {
				entry.tally[v.candidate] = entry.tally[v.candidate].Sub(v.weight)
				if v.isFinal {
					entry.finalTally[v.candidate] = entry.finalTally[v.candidate].Sub(v.weight)
				}
				v.candidate, v.weight, v.timestamp, v.isFinal, v.arrived = candidate, weight, timestamp, isFinal, time.Now()
				entry.tally[candidate] = entry.tally[candidate].Add(weight)
				if isFinal {
					entry.finalTally[candidate] = entry.finalTally[candidate].Add(weight)
				}
			}
			return
		}
	}

	if len(entry.votes) >= voteCacheMaxVoters {
		minIdx := -1
		for i, v := range entry.votes {
			if minIdx == -1 || v.weight.Cmp(entry.votes[minIdx].weight) < 0 {
				minIdx = i
			}
		}
		if minIdx == -1 || weight.Cmp(entry.votes[minIdx].weight) <= 0 {
			return
		}
		removed := entry.votes[minIdx]
		entry.tally[removed.candidate] = entry.tally[removed.candidate].Sub(removed.weight)
		if removed.isFinal {
			entry.finalTally[removed.candidate] = entry.finalTally[removed.candidate].Sub(removed.weight)
		}
		entry.votes = append(entry.votes[:minIdx], entry.votes[minIdx+1:]...)
	}

	entry.votes = append(entry.votes, &cachedVote{voter: voter, candidate: candidate, weight: weight, timestamp: timestamp, isFinal: isFinal, arrived: time.Now()})
	entry.tally[candidate] = entry.tally[candidate].Add(weight)
	if isFinal {
		entry.finalTally[candidate] = entry.finalTally[candidate].Add(weight)
	}
}

// Drain removes and returns every vote cached for root, to replay into
// a freshly started election.
func (c *VoteCache) Drain(root ids.BlockHash) []Vote {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[root]
	if !ok {
		return nil
	}
	delete(c.entries, root)
	out := make([]Vote, 0, len(entry.votes))
	for _, v := range entry.votes {
		out = append(out, Vote{Voter: v.voter, ElectionRoot: root, Hash: v.candidate, Timestamp: v.timestamp, IsFinal: v.isFinal})
	}
	return out
}

// Tally returns (tally, finalTally) for candidate under root, without
// draining the cache.
func (c *VoteCache) Tally(root, candidate ids.BlockHash) (ids.Amount, ids.Amount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[root]
	if !ok {
		return ids.ZeroAmount, ids.ZeroAmount
	}
	return entry.tally[candidate], entry.finalTally[candidate]
}

// TopEntry is one row of VoteCache.Top's result: the leading candidate
// for a cached election root and its tally.
type TopEntry struct {
	Root      ids.BlockHash
	Candidate ids.BlockHash
	Tally     ids.Amount
}

// Top returns the n election roots with the highest leading-candidate
// tally, descending, for the hinted scheduler (spec §4.6.5).
func (c *VoteCache) Top(n int) []TopEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]TopEntry, 0, len(c.entries))
	for root, e := range c.entries {
		var lead ids.BlockHash
		best := ids.ZeroAmount
		for cand, w := range e.tally {
			if w.Cmp(best) > 0 {
				best, lead = w, cand
			}
		}
		out = append(out, TopEntry{Root: root, Candidate: lead, Tally: best})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Tally.Cmp(out[j].Tally) < 0; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// evictExpiredLocked drops every root whose newest vote is older than
// the TTL; callers must hold c.mu.
func (c *VoteCache) evictExpiredLocked() {
	now := time.Now()
	for root, e := range c.entries {
		newest := time.Time{}
		for _, v := range e.votes {
			if v.arrived.After(newest) {
				newest = v.arrived
			}
		}
		if now.Sub(newest) >= voteCacheTTL {
			delete(c.entries, root)
		}
	}
}

// Len reports the number of distinct election roots currently cached.
func (c *VoteCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
