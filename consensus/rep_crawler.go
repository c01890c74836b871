// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import "github.com/burst-chain/burst/ids"

type pendingQuery struct {
	peerID string
	sentAt uint64
}

// DiscoveredRep is a representative identified by probing a connected
// peer: it responded to a confirm_req with a vote, revealing its
// representative account and online weight.
type DiscoveredRep struct {
	PeerID         string
	Representative ids.WalletAddress
	Weight         uint64
	LastSeen       uint64
}

// RepCrawler discovers representatives by periodically asking
// connected peers to vote on a known-confirmed block; their vote
// response reveals the peer's representative account, building a
// picture of reachable voting weight (spec §4.6.6).
type RepCrawler struct {
	discoveredReps    map[string]DiscoveredRep
	pendingQueries    map[ids.BlockHash][]pendingQuery
	queryTimeoutSecs  uint64
	crawlIntervalSecs uint64
	lastCrawl         uint64
	sufficientWeight  bool
}

// NewRepCrawler creates a crawler waiting queryTimeoutSecs for a
// response before considering a query stale, crawling at most once
// per crawlIntervalSecs.
func NewRepCrawler(queryTimeoutSecs, crawlIntervalSecs uint64) *RepCrawler {
	return &RepCrawler{
		discoveredReps:    make(map[string]DiscoveredRep),
		pendingQueries:    make(map[ids.BlockHash][]pendingQuery),
		queryTimeoutSecs:  queryTimeoutSecs,
		crawlIntervalSecs: crawlIntervalSecs,
	}
}

// ShouldCrawl reports whether crawlIntervalSecs has elapsed since the
// last crawl round; before the first crawl it always reports true.
func (c *RepCrawler) ShouldCrawl(now uint64) bool {
	return c.lastCrawl == 0 || now-c.lastCrawl >= c.crawlIntervalSecs
}

// StartCrawl registers confirmedBlock as the probe target for peerIDs
// at time now, returning peerIDs unchanged for the caller to send
// confirm_req to.
func (c *RepCrawler) StartCrawl(confirmedBlock ids.BlockHash, peerIDs []string, now uint64) []string {
	c.lastCrawl = now
	for _, id := range peerIDs {
		c.pendingQueries[confirmedBlock] = append(c.pendingQueries[confirmedBlock], pendingQuery{peerID: id, sentAt: now})
	}
	return peerIDs
}

// ProcessResponse records a vote response from peerID during crawling,
// learning that it represents voter with the given online weight.
func (c *RepCrawler) ProcessResponse(peerID string, voter ids.WalletAddress, weight, now uint64) DiscoveredRep {
	rep := DiscoveredRep{PeerID: peerID, Representative: voter, Weight: weight, LastSeen: now}
	c.discoveredReps[peerID] = rep
	return rep
}

// CleanupExpired drops pending queries older than queryTimeoutSecs.
func (c *RepCrawler) CleanupExpired(now uint64) {
	for hash, queries := range c.pendingQueries {
		fresh := queries[:0]
		for _, q := range queries {
			if now-q.sentAt <= c.queryTimeoutSecs {
				fresh = append(fresh, q)
			}
		}
		if len(fresh) == 0 {
			delete(c.pendingQueries, hash)
		} else {
			c.pendingQueries[hash] = fresh
		}
	}
}

// DiscoveredReps returns the full set of discovered representatives keyed by peer id.
func (c *RepCrawler) DiscoveredReps() map[string]DiscoveredRep { return c.discoveredReps }

// TotalDiscoveredWeight sums the weight of every discovered representative.
func (c *RepCrawler) TotalDiscoveredWeight() uint64 {
	var total uint64
	for _, r := range c.discoveredReps {
		total += r.Weight
	}
	return total
}

// DiscoveredCount returns the number of discovered representatives.
func (c *RepCrawler) DiscoveredCount() int { return len(c.discoveredReps) }

// SetSufficientWeight records whether quorum coverage has been reached.
func (c *RepCrawler) SetSufficientWeight(sufficient bool) { c.sufficientWeight = sufficient }

// HasSufficientWeight reports whether quorum coverage has been reached.
func (c *RepCrawler) HasSufficientWeight() bool { return c.sufficientWeight }

// PendingQueryCount returns the number of block hashes with outstanding queries.
func (c *RepCrawler) PendingQueryCount() int { return len(c.pendingQueries) }
