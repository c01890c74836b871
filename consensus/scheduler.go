// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import "github.com/burst-chain/burst/ids"

// ElectionBehavior records why an election was started (spec §4.6.5).
type ElectionBehavior int

const (
	// BehaviorPriority elections start from account-balance ordering.
	BehaviorPriority ElectionBehavior = iota
	// BehaviorHinted elections start from vote-cache evidence.
	BehaviorHinted
	// BehaviorManual elections start from an RPC request.
	BehaviorManual
)

// HintedScheduler starts elections for blocks that have already
// accumulated significant vote weight in the vote cache, i.e. votes
// that arrived before the node itself detected the fork.
type HintedScheduler struct {
	minWeightThreshold ids.Amount
	maxPerCycle        int
}

// NewHintedScheduler creates a scheduler triggering on minWeightThreshold
// accumulated weight, checking at most maxPerCycle candidates per cycle.
func NewHintedScheduler(minWeightThreshold ids.Amount, maxPerCycle int) *HintedScheduler {
	return &HintedScheduler{minWeightThreshold: minWeightThreshold, maxPerCycle: maxPerCycle}
}

// Check inspects cache's leading candidates and returns the roots that
// have accumulated enough weight to warrant starting an election.
func (s *HintedScheduler) Check(cache *VoteCache) []ids.BlockHash {
	top := cache.Top(s.maxPerCycle)
	out := make([]ids.BlockHash, 0, len(top))
	for _, entry := range top {
		if entry.Tally.Cmp(s.minWeightThreshold) >= 0 {
			out = append(out, entry.Root)
		}
	}
	return out
}

// priorityEntry is one queued election request, ranked by account balance.
type priorityEntry struct {
	root     ids.BlockHash
	account  ids.WalletAddress
	priority ids.Amount
}

// PriorityScheduler orders pending election requests by account
// balance, so high-value accounts resolve contested forks first. The
// queue is a sorted slice (highest priority first); duplicate roots
// are ignored and, once full, a push only survives by outranking the
// current lowest entry.
type PriorityScheduler struct {
	queue    []priorityEntry
	maxQueue int
}

// NewPriorityScheduler creates an empty scheduler bounded at maxQueue
// entries.
func NewPriorityScheduler(maxQueue int) *PriorityScheduler {
	return &PriorityScheduler{maxQueue: maxQueue}
}

// Push enqueues root for election with the given account and its
// balance as priority. Duplicate roots are ignored. If the queue is
// full, the entry is dropped unless it outranks the current lowest.
func (s *PriorityScheduler) Push(root ids.BlockHash, account ids.WalletAddress, balance ids.Amount) {
	for _, e := range s.queue {
		if e.root == root {
			return
		}
	}

	if len(s.queue) >= s.maxQueue {
		min := s.queue[len(s.queue)-1]
		if balance.Cmp(min.priority) <= 0 {
			return
		}
		s.queue = s.queue[:len(s.queue)-1]
	}

	entry := priorityEntry{root: root, account: account, priority: balance}
	pos := len(s.queue)
	for i, e := range s.queue {
		if balance.Cmp(e.priority) > 0 {
			pos = i
			break
		}
	}
	s.queue = append(s.queue, priorityEntry{})
	copy(s.queue[pos+1:], s.queue[pos:])
	s.queue[pos] = entry
}

// Pop removes and returns the highest-priority entry, if any.
func (s *PriorityScheduler) Pop() (ids.BlockHash, ids.WalletAddress, bool) {
	if len(s.queue) == 0 {
		return ids.BlockHash{}, "", false
	}
	entry := s.queue[0]
	s.queue = s.queue[1:]
	return entry.root, entry.account, true
}

// Len returns the current queue length.
func (s *PriorityScheduler) Len() int { return len(s.queue) }

// IsEmpty reports whether the queue holds no entries.
func (s *PriorityScheduler) IsEmpty() bool { return len(s.queue) == 0 }
