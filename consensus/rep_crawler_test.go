// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import "testing"

func TestRepCrawler_NewCrawlerIsEmpty(t *testing.T) {
	c := NewRepCrawler(30, 60)
	if c.DiscoveredCount() != 0 || c.PendingQueryCount() != 0 || c.TotalDiscoveredWeight() != 0 {
		t.Fatal("expected empty crawler")
	}
}

func TestRepCrawler_ShouldCrawlInitially(t *testing.T) {
	c := NewRepCrawler(30, 60)
	if !c.ShouldCrawl(0) {
		t.Fatal("expected initial crawl to be allowed")
	}
}

func TestRepCrawler_ShouldNotCrawlTooSoon(t *testing.T) {
	c := NewRepCrawler(30, 60)
	c.StartCrawl(hash(1), []string{"peer1"}, 100)
	if c.ShouldCrawl(120) {
		t.Fatal("expected crawl to be suppressed before interval elapses")
	}
}

func TestRepCrawler_ShouldCrawlAfterInterval(t *testing.T) {
	c := NewRepCrawler(30, 60)
	c.StartCrawl(hash(1), []string{"peer1"}, 100)
	if !c.ShouldCrawl(160) {
		t.Fatal("expected crawl to be allowed after interval elapses")
	}
}

func TestRepCrawler_StartCrawlRegistersPending(t *testing.T) {
	c := NewRepCrawler(30, 60)
	peers := c.StartCrawl(hash(1), []string{"peer1", "peer2"}, 100)
	if len(peers) != 2 {
		t.Fatalf("expected 2 peers returned, got %d", len(peers))
	}
	if c.PendingQueryCount() != 1 {
		t.Fatalf("expected 1 pending block hash, got %d", c.PendingQueryCount())
	}
}

func TestRepCrawler_ProcessResponseRecordsRep(t *testing.T) {
	c := NewRepCrawler(30, 60)
	rep := c.ProcessResponse("peer1", addr(1), 500, 100)
	if rep.PeerID != "peer1" || rep.Representative != addr(1) || rep.Weight != 500 {
		t.Fatalf("unexpected discovered rep: %+v", rep)
	}
	if c.DiscoveredCount() != 1 {
		t.Fatalf("expected 1 discovered rep, got %d", c.DiscoveredCount())
	}
}

func TestRepCrawler_ProcessResponseUpdatesExisting(t *testing.T) {
	c := NewRepCrawler(30, 60)
	c.ProcessResponse("peer1", addr(1), 500, 100)
	c.ProcessResponse("peer1", addr(1), 700, 200)

	if c.DiscoveredCount() != 1 {
		t.Fatalf("expected still 1 discovered rep, got %d", c.DiscoveredCount())
	}
	got := c.DiscoveredReps()["peer1"]
	if got.Weight != 700 || got.LastSeen != 200 {
		t.Fatalf("expected updated weight/lastSeen, got %+v", got)
	}
}

func TestRepCrawler_MultipleRepsAccumulateWeight(t *testing.T) {
	c := NewRepCrawler(30, 60)
	c.ProcessResponse("peer1", addr(1), 300, 100)
	c.ProcessResponse("peer2", addr(2), 400, 100)
	if c.TotalDiscoveredWeight() != 700 {
		t.Fatalf("expected total weight 700, got %d", c.TotalDiscoveredWeight())
	}
}

func TestRepCrawler_CleanupExpiredRemovesOldQueries(t *testing.T) {
	c := NewRepCrawler(30, 60)
	c.StartCrawl(hash(1), []string{"peer1"}, 100)
	c.CleanupExpired(200)
	if c.PendingQueryCount() != 0 {
		t.Fatalf("expected expired query removed, got %d pending", c.PendingQueryCount())
	}
}

func TestRepCrawler_CleanupKeepsFreshQueries(t *testing.T) {
	c := NewRepCrawler(30, 60)
	c.StartCrawl(hash(1), []string{"peer1"}, 100)
	c.CleanupExpired(110)
	if c.PendingQueryCount() != 1 {
		t.Fatalf("expected fresh query kept, got %d pending", c.PendingQueryCount())
	}
}

func TestRepCrawler_SufficientWeightFlag(t *testing.T) {
	c := NewRepCrawler(30, 60)
	if c.HasSufficientWeight() {
		t.Fatal("expected initially insufficient")
	}
	c.SetSufficientWeight(true)
	if !c.HasSufficientWeight() {
		t.Fatal("expected flag set")
	}
}

func TestRepCrawler_DiscoveredRepsAccessor(t *testing.T) {
	c := NewRepCrawler(30, 60)
	c.ProcessResponse("peer1", addr(1), 100, 50)
	reps := c.DiscoveredReps()
	if len(reps) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(reps))
	}
	if _, ok := reps["peer1"]; !ok {
		t.Fatal("expected peer1 entry present")
	}
}

func TestRepCrawler_MultiplePeersSameBlockQuery(t *testing.T) {
	c := NewRepCrawler(30, 60)
	c.StartCrawl(hash(1), []string{"peer1", "peer2", "peer3"}, 100)
	if c.PendingQueryCount() != 1 {
		t.Fatalf("expected 1 block hash tracked, got %d", c.PendingQueryCount())
	}
	c.CleanupExpired(105)
	if c.PendingQueryCount() != 1 {
		t.Fatal("expected still fresh within timeout")
	}
}
