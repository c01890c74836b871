// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package p2p

import (
	"testing"

	"github.com/burst-chain/burst/ids"
)

func TestPeerManager_UpsertAndGet(t *testing.T) {
	m := NewPeerManager()
	m.Upsert("p1", &PeerState{Connected: true})
	s, ok := m.Get("p1")
	if !ok || !s.Connected {
		t.Fatal("expected to retrieve upserted peer")
	}
}

func TestPeerManager_EligibleFiltersDisconnectedAndBanned(t *testing.T) {
	m := NewPeerManager()
	m.Upsert("a", &PeerState{Connected: true})
	m.Upsert("b", &PeerState{Connected: false})
	m.Upsert("c", &PeerState{Connected: true, Banned: true})

	eligible := m.Eligible()
	if len(eligible) != 1 {
		t.Fatalf("expected 1 eligible peer, got %d", len(eligible))
	}
}

func TestPeerManager_BanAndUnban(t *testing.T) {
	m := NewPeerManager()
	m.Upsert("a", &PeerState{Connected: true})
	m.Ban("a", 12345)

	s, _ := m.Get("a")
	if !s.Banned || s.BanUntilSecs == nil || *s.BanUntilSecs != 12345 {
		t.Fatalf("expected ban recorded, got %+v", s)
	}

	m.Unban("a")
	s, _ = m.Get("a")
	if s.Banned || s.BanUntilSecs != nil {
		t.Fatal("expected unban to clear ban state")
	}
}

func TestPeerManager_AdjustScore(t *testing.T) {
	m := NewPeerManager()
	m.Upsert("a", &PeerState{Score: 10})
	m.AdjustScore("a", -3)
	s, _ := m.Get("a")
	if s.Score != 7 {
		t.Fatalf("expected score 7, got %d", s.Score)
	}
}

func TestPeerAuth_AuthenticateAndLookup(t *testing.T) {
	auth := NewPeerAuth()
	addr := ids.WalletAddress([]byte("01234567890123456789"))
	auth.Authenticate("peer1", addr)

	if !auth.IsAuthenticated("peer1") {
		t.Fatal("expected peer1 to be authenticated")
	}
	got, ok := auth.NodeID("peer1")
	if !ok || got != addr {
		t.Fatalf("expected node id %v, got %v", addr, got)
	}
}

func TestPeerAuth_Deauthenticate(t *testing.T) {
	auth := NewPeerAuth()
	addr := ids.WalletAddress([]byte("01234567890123456789"))
	auth.Authenticate("peer1", addr)
	auth.Deauthenticate("peer1")
	if auth.IsAuthenticated("peer1") {
		t.Fatal("expected peer1 to no longer be authenticated")
	}
}

func TestPeerAuth_Count(t *testing.T) {
	auth := NewPeerAuth()
	addr := ids.WalletAddress([]byte("01234567890123456789"))
	auth.Authenticate("peer1", addr)
	auth.Authenticate("peer2", addr)
	if auth.Count() != 2 {
		t.Fatalf("expected count 2, got %d", auth.Count())
	}
}
