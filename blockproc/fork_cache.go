// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blockproc

import (
	"sync"

	"github.com/burst-chain/burst/block"
	"github.com/burst-chain/burst/ids"
)

// ForkCache caches every candidate block sharing a contested
// (account, previous) root, so that when an election resolves the
// caller can evaluate all of them without re-fetching from peers
// (spec §4.5 "Fork resolution").
type ForkCache struct {
	mu        sync.Mutex
	byRoot    map[ids.BlockHash]map[ids.BlockHash]*block.StateBlock
}

// NewForkCache creates an empty cache.
func NewForkCache() *ForkCache {
	return &ForkCache{byRoot: make(map[ids.BlockHash]map[ids.BlockHash]*block.StateBlock)}
}

// Add caches blk under root (its Previous hash). Returns true when blk
// is a new distinct block and root already held at least one other
// candidate — the signal to start an election.
func (c *ForkCache) Add(root ids.BlockHash, blk *block.StateBlock) (forkDetected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.byRoot[root]
	if !ok {
		m = make(map[ids.BlockHash]*block.StateBlock)
		c.byRoot[root] = m
	}
	before := len(m)
	m[blk.Hash()] = blk
	return before >= 1 && len(m) > before
}

// Candidates returns every cached block under root.
func (c *ForkCache) Candidates(root ids.BlockHash) []*block.StateBlock {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.byRoot[root]
	out := make([]*block.StateBlock, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	return out
}

// Clear drops every candidate cached under root, once its election
// resolves.
func (c *ForkCache) Clear(root ids.BlockHash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byRoot, root)
}
