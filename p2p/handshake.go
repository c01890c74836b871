// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package p2p

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/burst-chain/burst/ids"
)

// CookieTTL is how long an issued SYN cookie remains valid (spec
// §4.7.2).
const CookieTTL = 30 * time.Second

// MaxPendingCookies bounds total outstanding cookies across all
// inbound IPs, guarding memory under a connection-flood attempt.
const MaxPendingCookies = 4096

// MaxCookiesPerIPPerMinute rate-limits how many cookies a single
// source IP may request, independent of the global cap.
const MaxCookiesPerIPPerMinute = 10

var (
	// ErrCookieRateLimited is returned by IssueCookie when ip has
	// exceeded MaxCookiesPerIPPerMinute.
	ErrCookieRateLimited = errors.New("p2p: cookie rate limit exceeded")
	// ErrCookiePoolFull is returned by IssueCookie when the global
	// pending-cookie cap has been reached.
	ErrCookiePoolFull = errors.New("p2p: pending cookie pool full")
	// ErrCookieNotFound means no pending cookie matches ip.
	ErrCookieNotFound = errors.New("p2p: no pending cookie for peer")
	// ErrCookieExpired means the cookie's TTL has elapsed.
	ErrCookieExpired = errors.New("p2p: cookie expired")
	// ErrHandshakeSignatureInvalid means the claimed node id does not
	// match the address recovered from the handshake signature.
	ErrHandshakeSignatureInvalid = errors.New("p2p: handshake signature does not match claimed node id")
)

type pendingCookie struct {
	cookie    [32]byte
	issuedAt  time.Time
	issuedIn  []time.Time // recent issue timestamps for this ip, for rate limiting
}

// CookieHandshake issues and verifies SYN cookies for inbound
// connections (spec §4.7.2), preventing a peer from completing a
// handshake without first round-tripping a server-chosen value, and
// binding that round trip to a signature over the caller's claimed
// wallet address.
type CookieHandshake struct {
	mu      sync.Mutex
	pending map[string]*pendingCookie
	now     func() time.Time
}

// NewCookieHandshake creates an empty handshake tracker.
func NewCookieHandshake() *CookieHandshake {
	return NewCookieHandshakeAt(time.Now)
}

// NewCookieHandshakeAt is NewCookieHandshake with an injectable clock.
func NewCookieHandshakeAt(now func() time.Time) *CookieHandshake {
	return &CookieHandshake{pending: make(map[string]*pendingCookie), now: now}
}

// IssueCookie generates and records a fresh cookie for ip, subject to
// the per-IP rate limit and the global pending-pool cap.
func (h *CookieHandshake) IssueCookie(ip string) ([32]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.evictExpiredLocked(now)

	existing := h.pending[ip]
	if existing != nil {
		existing.issuedIn = recentWithin(existing.issuedIn, now, time.Minute)
		if len(existing.issuedIn) >= MaxCookiesPerIPPerMinute {
			return [32]byte{}, ErrCookieRateLimited
		}
	} else if len(h.pending) >= MaxPendingCookies {
		return [32]byte{}, ErrCookiePoolFull
	}

	cookie, err := ids.RandomCookie()
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "p2p: generate cookie")
	}

	issuedIn := []time.Time{now}
	if existing != nil {
		issuedIn = append(existing.issuedIn, now)
	}
	h.pending[ip] = &pendingCookie{cookie: cookie, issuedAt: now, issuedIn: issuedIn}
	return cookie, nil
}

func recentWithin(times []time.Time, now time.Time, window time.Duration) []time.Time {
	out := times[:0]
	for _, t := range times {
		if now.Sub(t) < window {
			out = append(out, t)
		}
	}
	return out
}

func (h *CookieHandshake) evictExpiredLocked(now time.Time) {
	for ip, pc := range h.pending {
		if now.Sub(pc.issuedAt) > CookieTTL {
			delete(h.pending, ip)
		}
	}
}

// HandshakeSigningBytes returns the bytes a connecting peer signs to
// prove ownership of claimedAddress over the issued cookie.
func HandshakeSigningBytes(cookie [32]byte, claimedAddress ids.WalletAddress) []byte {
	buf := make([]byte, 0, 32+len(claimedAddress))
	buf = append(buf, cookie[:]...)
	buf = append(buf, []byte(claimedAddress)...)
	return buf
}

// Verify checks that ip has an unexpired pending cookie matching
// cookie, and that signature recovers to claimedAddress over that
// cookie. On success (or definitive failure) the pending entry for ip
// is consumed so a cookie cannot be replayed.
func (h *CookieHandshake) Verify(ip string, cookie [32]byte, claimedAddress ids.WalletAddress, signature []byte) error {
	h.mu.Lock()
	pc, ok := h.pending[ip]
	if ok {
		delete(h.pending, ip)
	}
	h.mu.Unlock()

	if !ok {
		return ErrCookieNotFound
	}
	if pc.cookie != cookie {
		return ErrCookieNotFound
	}
	if h.now().Sub(pc.issuedAt) > CookieTTL {
		return ErrCookieExpired
	}

	digest := ids.Blake2b256(HandshakeSigningBytes(cookie, claimedAddress))
	recovered, err := ids.RecoverAddress(digest[:], signature)
	if err != nil {
		return errors.Wrap(err, "p2p: recover handshake signer")
	}
	if recovered != claimedAddress {
		return ErrHandshakeSignatureInvalid
	}
	return nil
}

// PendingCount returns the number of outstanding cookies across all
// IPs, for monitoring/backpressure decisions.
func (h *CookieHandshake) PendingCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}
