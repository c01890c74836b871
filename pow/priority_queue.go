// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pow implements the PoW-ranked ingress queue (spec §4.8):
// incoming blocks are served highest-difficulty-first, FIFO on ties.
package pow

import (
	"container/heap"
	"sync"

	"github.com/burst-chain/burst/block"
	"github.com/burst-chain/burst/notify"
)

type item struct {
	blk        *block.StateBlock
	difficulty uint64
	sequence   uint64
}

// heapSlice is a max-heap on (difficulty, -sequence): higher difficulty
// wins; among equal difficulty, the earlier-inserted (lower sequence)
// wins, giving FIFO tie-breaking (spec invariant 12).
type heapSlice []*item

func (h heapSlice) Len() int { return len(h) }
func (h heapSlice) Less(i, j int) bool {
	if h[i].difficulty != h[j].difficulty {
		return h[i].difficulty > h[j].difficulty
	}
	return h[i].sequence < h[j].sequence
}
func (h heapSlice) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *heapSlice) Push(x any)   { *h = append(*h, x.(*item)) }
func (h *heapSlice) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// PriorityQueue is a bounded max-heap of pending blocks keyed by PoW
// difficulty. Capacity overflow drops the incoming block (spec §7:
// resource exhaustion never displaces committed state).
type PriorityQueue struct {
	mu       sync.Mutex
	heap     heapSlice
	capacity int
	nextSeq  uint64
	gate     notify.Gate
}

// New creates a queue bounded at capacity entries.
func New(capacity int) *PriorityQueue {
	return &PriorityQueue{capacity: capacity}
}

// Push inserts blk, blocking (via the caller's select) only in the sense
// that it never blocks — see TryPush for the non-blocking variant name
// kept distinct for symmetry with spec §4.8's try_push. Push always
// behaves like TryPush; it exists for callers that prefer the
// async-idiom name at call sites awaiting queue space indirectly via
// backpressure elsewhere.
func (q *PriorityQueue) Push(blk *block.StateBlock) bool {
	return q.TryPush(blk)
}

// TryPush inserts blk using a non-blocking lock acquire semantics: under
// contention from many producers it still acquires the mutex (Go has no
// true non-blocking mutex), but never waits on anything other than that
// short critical section, and returns false immediately on overflow
// instead of waiting for space (spec §4.8).
func (q *PriorityQueue) TryPush(blk *block.StateBlock) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.heap) >= q.capacity {
		return false
	}
	q.nextSeq++
	heap.Push(&q.heap, &item{
		blk:        blk,
		difficulty: blk.Difficulty(),
		sequence:   q.nextSeq,
	})
	q.gate.Signal("push")
	return true
}

// Pop removes and returns the highest-difficulty block, or false if the
// queue is empty.
func (q *PriorityQueue) Pop() (*block.StateBlock, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.heap) == 0 {
		return nil, false
	}
	it := heap.Pop(&q.heap).(*item)
	return it.blk, true
}

// Len reports the current queue size.
func (q *PriorityQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

// Wait returns a channel that wakes when an item is pushed, for the
// consumer's "await next priority block" loop (spec §9).
func (q *PriorityQueue) Wait() notify.Waiter {
	return q.gate.NewWaiter()
}
