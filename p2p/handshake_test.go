// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package p2p

import (
	"testing"
	"time"

	"github.com/burst-chain/burst/ids"
)

func signedHandshake(t *testing.T, cookie [32]byte) (ids.WalletAddress, []byte) {
	t.Helper()
	priv, err := ids.GenerateNodeKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := priv.Address()
	digest := ids.Blake2b256(HandshakeSigningBytes(cookie, addr))
	return addr, priv.Sign(digest[:])
}

func TestCookieHandshake_IssueAndVerifySucceeds(t *testing.T) {
	h := NewCookieHandshake()
	cookie, err := h.IssueCookie("1.2.3.4")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	addr, sig := signedHandshake(t, cookie)
	if err := h.Verify("1.2.3.4", cookie, addr, sig); err != nil {
		t.Fatalf("expected verify to succeed: %v", err)
	}
}

func TestCookieHandshake_VerifyConsumesPendingEntry(t *testing.T) {
	h := NewCookieHandshake()
	cookie, _ := h.IssueCookie("1.2.3.4")
	addr, sig := signedHandshake(t, cookie)
	h.Verify("1.2.3.4", cookie, addr, sig)

	if err := h.Verify("1.2.3.4", cookie, addr, sig); err != ErrCookieNotFound {
		t.Fatalf("expected replay to fail with ErrCookieNotFound, got %v", err)
	}
}

func TestCookieHandshake_WrongCookieFails(t *testing.T) {
	h := NewCookieHandshake()
	h.IssueCookie("1.2.3.4")
	var wrong [32]byte
	addr, sig := signedHandshake(t, wrong)
	if err := h.Verify("1.2.3.4", wrong, addr, sig); err != ErrCookieNotFound {
		t.Fatalf("expected ErrCookieNotFound, got %v", err)
	}
}

func TestCookieHandshake_SignatureForWrongAddressFails(t *testing.T) {
	h := NewCookieHandshake()
	cookie, _ := h.IssueCookie("1.2.3.4")
	_, sig := signedHandshake(t, cookie)

	otherPriv, _ := ids.GenerateNodeKey()
	claimedAddr := otherPriv.Address()

	if err := h.Verify("1.2.3.4", cookie, claimedAddr, sig); err != ErrHandshakeSignatureInvalid {
		t.Fatalf("expected ErrHandshakeSignatureInvalid, got %v", err)
	}
}

func TestCookieHandshake_ExpiredCookieFails(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	h := NewCookieHandshakeAt(clock)

	cookie, _ := h.IssueCookie("1.2.3.4")
	addr, sig := signedHandshake(t, cookie)

	now = now.Add(CookieTTL + time.Second)
	if err := h.Verify("1.2.3.4", cookie, addr, sig); err != ErrCookieExpired {
		t.Fatalf("expected ErrCookieExpired, got %v", err)
	}
}

func TestCookieHandshake_RateLimitPerIP(t *testing.T) {
	h := NewCookieHandshake()
	var lastErr error
	for i := 0; i < MaxCookiesPerIPPerMinute+1; i++ {
		_, lastErr = h.IssueCookie("5.5.5.5")
	}
	if lastErr != ErrCookieRateLimited {
		t.Fatalf("expected ErrCookieRateLimited after exceeding per-IP burst, got %v", lastErr)
	}
}

func TestCookieHandshake_PendingCountTracksOutstanding(t *testing.T) {
	h := NewCookieHandshake()
	h.IssueCookie("1.1.1.1")
	h.IssueCookie("2.2.2.2")
	if h.PendingCount() != 2 {
		t.Fatalf("expected 2 pending cookies, got %d", h.PendingCount())
	}
}
