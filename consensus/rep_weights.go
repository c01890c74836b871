// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package consensus implements the ORV (Open Representative Voting)
// engine (spec §4.6): representative weight tracking, online-weight
// sampling, vote processing with spacing and equivocation guards, and
// election confirmation.
package consensus

import (
	"sync"

	"github.com/burst-chain/burst/ids"
)

// RepWeightCache holds rep -> total delegated TRST, updated
// incrementally on every block that opens an account or changes its
// representative/balance (spec §4.6.1). Saturating arithmetic absorbs
// out-of-order updates without underflowing.
type RepWeightCache struct {
	mu      sync.RWMutex
	weights map[ids.WalletAddress]ids.Amount
	total   ids.Amount
}

// NewRepWeightCache creates an empty cache.
func NewRepWeightCache() *RepWeightCache {
	return &RepWeightCache{weights: make(map[ids.WalletAddress]ids.Amount)}
}

// AddWeight delegates weight to rep.
func (c *RepWeightCache) AddWeight(rep ids.WalletAddress, weight ids.Amount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weights[rep] = c.weights[rep].Add(weight)
	c.total = c.total.Add(weight)
}

// RemoveWeight undelegates weight from rep, clamped so the entry never
// goes negative; an entry that reaches zero is dropped entirely.
func (c *RepWeightCache) RemoveWeight(rep ids.WalletAddress, weight ids.Amount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.weights[rep]
	if !ok {
		return
	}
	removed := weight
	if weight.Cmp(cur) > 0 {
		removed = cur
	}
	next := cur.Sub(removed)
	if next.IsZero() {
		delete(c.weights, rep)
	} else {
		c.weights[rep] = next
	}
	c.total = c.total.Sub(removed)
}

// ChangeRep atomically moves weight from oldRep to newRep.
func (c *RepWeightCache) ChangeRep(oldRep, newRep ids.WalletAddress, weight ids.Amount) {
	c.RemoveWeight(oldRep, weight)
	c.AddWeight(newRep, weight)
}

// Weight returns rep's current delegated weight, zero if untracked.
func (c *RepWeightCache) Weight(rep ids.WalletAddress) ids.Amount {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.weights[rep]
}

// TotalWeight returns the sum of every tracked rep's weight.
func (c *RepWeightCache) TotalWeight() ids.Amount {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total
}

// RepCount returns the number of distinct representatives tracked.
func (c *RepWeightCache) RepCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.weights)
}

// AllWeights returns a snapshot copy of every tracked rep's weight.
func (c *RepWeightCache) AllWeights() map[ids.WalletAddress]ids.Amount {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[ids.WalletAddress]ids.Amount, len(c.weights))
	for k, v := range c.weights {
		out[k] = v
	}
	return out
}

// AccountWeight is one row fed to RebuildFromAccounts.
type AccountWeight struct {
	Representative ids.WalletAddress
	TrstBalance    ids.Amount
}

// RebuildFromAccounts replaces the cache wholesale from a full account
// scan, performed once at startup (spec §4.6.1).
func (c *RepWeightCache) RebuildFromAccounts(rows []AccountWeight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weights = make(map[ids.WalletAddress]ids.Amount, len(rows))
	c.total = ids.ZeroAmount
	for _, r := range rows {
		c.weights[r.Representative] = c.weights[r.Representative].Add(r.TrstBalance)
		c.total = c.total.Add(r.TrstBalance)
	}
}
