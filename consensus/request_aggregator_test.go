// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import "testing"

func TestRequestAggregator_NewIsEmpty(t *testing.T) {
	agg := NewRequestAggregator(100, 10)
	if agg.PendingCount() != 0 || agg.HasPending() {
		t.Fatal("expected empty aggregator")
	}
}

func TestRequestAggregator_AddSingleRequest(t *testing.T) {
	agg := NewRequestAggregator(100, 10)
	agg.AddRequest(hash(1), "peer1")
	if agg.PendingCount() != 1 || !agg.HasPending() {
		t.Fatal("expected one pending request")
	}
}

func TestRequestAggregator_DuplicatePeerForSameBlockDeduped(t *testing.T) {
	agg := NewRequestAggregator(100, 10)
	agg.AddRequest(hash(1), "peer1")
	agg.AddRequest(hash(1), "peer1")
	if agg.PendingCount() != 1 {
		t.Fatalf("expected 1 pending, got %d", agg.PendingCount())
	}
	batch := agg.NextBatch()
	if len(batch) != 1 || len(batch[0].Peers) != 1 {
		t.Fatalf("expected single deduped peer, got %+v", batch)
	}
}

func TestRequestAggregator_AggregatesMultiplePeersSameBlock(t *testing.T) {
	agg := NewRequestAggregator(100, 10)
	agg.AddRequest(hash(1), "peer1")
	agg.AddRequest(hash(1), "peer2")
	agg.AddRequest(hash(1), "peer3")

	batch := agg.NextBatch()
	if len(batch) != 1 || len(batch[0].Peers) != 3 {
		t.Fatalf("expected 3 aggregated peers, got %+v", batch)
	}
}

func TestRequestAggregator_FIFOOrdering(t *testing.T) {
	agg := NewRequestAggregator(100, 10)
	agg.AddRequest(hash(1), "peer1")
	agg.AddRequest(hash(2), "peer2")
	agg.AddRequest(hash(3), "peer3")

	batch := agg.NextBatch()
	if len(batch) != 3 || batch[0].Hash != hash(1) || batch[1].Hash != hash(2) || batch[2].Hash != hash(3) {
		t.Fatalf("unexpected order: %+v", batch)
	}
}

func TestRequestAggregator_BatchSizeLimitsOutput(t *testing.T) {
	agg := NewRequestAggregator(100, 2)
	agg.AddRequest(hash(1), "peer1")
	agg.AddRequest(hash(2), "peer2")
	agg.AddRequest(hash(3), "peer3")

	if len(agg.NextBatch()) != 2 {
		t.Fatal("expected first batch of 2")
	}
	if len(agg.NextBatch()) != 1 {
		t.Fatal("expected second batch of 1")
	}
	if len(agg.NextBatch()) != 0 {
		t.Fatal("expected third batch empty")
	}
}

func TestRequestAggregator_MaxPendingDropsNewEntries(t *testing.T) {
	agg := NewRequestAggregator(2, 10)
	agg.AddRequest(hash(1), "peer1")
	agg.AddRequest(hash(2), "peer2")
	agg.AddRequest(hash(3), "peer3")
	if agg.PendingCount() != 2 {
		t.Fatalf("expected 2 pending, got %d", agg.PendingCount())
	}
}

func TestRequestAggregator_MaxPendingAllowsExistingHash(t *testing.T) {
	agg := NewRequestAggregator(2, 10)
	agg.AddRequest(hash(1), "peer1")
	agg.AddRequest(hash(2), "peer2")
	agg.AddRequest(hash(1), "peer3")
	if agg.PendingCount() != 2 {
		t.Fatalf("expected 2 pending, got %d", agg.PendingCount())
	}
	batch := agg.NextBatch()
	for _, r := range batch {
		if r.Hash == hash(1) && len(r.Peers) != 2 {
			t.Fatalf("expected hash(1) to have 2 peers, got %+v", r)
		}
	}
}

func TestRequestAggregator_NextBatchClearsState(t *testing.T) {
	agg := NewRequestAggregator(100, 10)
	agg.AddRequest(hash(1), "peer1")
	agg.AddRequest(hash(2), "peer2")

	batch := agg.NextBatch()
	if len(batch) != 2 || agg.PendingCount() != 0 || agg.HasPending() {
		t.Fatal("expected state cleared after NextBatch")
	}
}

func TestRequestAggregator_InterleavedAddAndBatch(t *testing.T) {
	agg := NewRequestAggregator(100, 2)
	agg.AddRequest(hash(1), "peer1")
	agg.AddRequest(hash(2), "peer2")

	if len(agg.NextBatch()) != 2 {
		t.Fatal("expected first batch of 2")
	}

	agg.AddRequest(hash(3), "peer3")
	if agg.PendingCount() != 1 {
		t.Fatalf("expected 1 pending after interleave, got %d", agg.PendingCount())
	}
	batch := agg.NextBatch()
	if len(batch) != 1 || batch[0].Hash != hash(3) {
		t.Fatalf("unexpected batch: %+v", batch)
	}
}
