// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package p2p

import (
	"sync"

	"github.com/burst-chain/burst/ids"
)

// PeerAddress is a peer's dial-back network location.
type PeerAddress struct {
	IP   string
	Port uint16
}

// String renders the address as "ip:port".
func (a PeerAddress) String() string {
	return a.IP + ":" + itoa(uint64(a.Port))
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// PeerTelemetry is the last telemetry snapshot received from a peer,
// opaque to the transport layer beyond existence (spec's TelemetryAck).
type PeerTelemetry struct {
	ProtocolVersion uint32
	ParamsHash      [ids.HashSize]byte
	BlockCount      uint64
}

// PeerState is everything the node tracks about one peer, independent
// of whether a live connection is currently open (spec §5
// "PeerManager (peer set, scores, ban list)").
type PeerState struct {
	Address      PeerAddress
	Connected    bool
	LastSeenSecs uint64
	Score        int32
	Banned       bool
	BanUntilSecs *uint64
	Telemetry    *PeerTelemetry
}

// PeerManager tracks the full peer set, their connection/ban state and
// reputation scores. A read-write lock favors the common read path
// (broadcast eligibility checks) over the rarer connect/disconnect/ban
// writes (spec §5).
type PeerManager struct {
	mu    sync.RWMutex
	peers map[string]*PeerState
}

// NewPeerManager creates an empty peer manager.
func NewPeerManager() *PeerManager {
	return &PeerManager{peers: make(map[string]*PeerState)}
}

// Upsert records or updates a peer's state under peerID.
func (m *PeerManager) Upsert(peerID string, state *PeerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peers[peerID] = state
}

// Get returns a peer's tracked state, if any.
func (m *PeerManager) Get(peerID string) (*PeerState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.peers[peerID]
	return s, ok
}

// SetConnected flips a peer's live-connection flag.
func (m *PeerManager) SetConnected(peerID string, connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.peers[peerID]; ok {
		s.Connected = connected
	}
}

// Ban marks a peer banned until banUntilSecs.
func (m *PeerManager) Ban(peerID string, banUntilSecs uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.peers[peerID]; ok {
		s.Banned = true
		s.BanUntilSecs = &banUntilSecs
	}
}

// Unban lifts a peer's ban.
func (m *PeerManager) Unban(peerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.peers[peerID]; ok {
		s.Banned = false
		s.BanUntilSecs = nil
	}
}

// AdjustScore adds delta to a peer's reputation score.
func (m *PeerManager) AdjustScore(peerID string, delta int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.peers[peerID]; ok {
		s.Score += delta
	}
}

// Eligible returns every peer currently connected and not banned, the
// candidate set broadcast draws from.
func (m *PeerManager) Eligible() []*PeerState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*PeerState, 0, len(m.peers))
	for _, s := range m.peers {
		if s.Connected && !s.Banned {
			out = append(out, s)
		}
	}
	return out
}

// PeerAuth tracks which peers have completed the handshake and the
// wallet address they proved ownership of (spec §4.7.2: "records
// authenticated peer_id -> node_id in PeerAuth").
type PeerAuth struct {
	mu            sync.Mutex
	authenticated map[string]ids.WalletAddress
}

// NewPeerAuth creates an empty authentication tracker.
func NewPeerAuth() *PeerAuth {
	return &PeerAuth{authenticated: make(map[string]ids.WalletAddress)}
}

// Authenticate records peerID as having proved ownership of nodeID.
// Re-authenticating an existing peerID replaces its recorded node id.
func (a *PeerAuth) Authenticate(peerID string, nodeID ids.WalletAddress) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.authenticated[peerID] = nodeID
}

// IsAuthenticated reports whether peerID has completed the handshake.
func (a *PeerAuth) IsAuthenticated(peerID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.authenticated[peerID]
	return ok
}

// NodeID returns the verified node id for peerID, if authenticated.
func (a *PeerAuth) NodeID(peerID string) (ids.WalletAddress, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.authenticated[peerID]
	return id, ok
}

// Deauthenticate drops peerID's authentication record on disconnect.
func (a *PeerAuth) Deauthenticate(peerID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.authenticated, peerID)
}

// Count returns the number of currently authenticated peers.
func (a *PeerAuth) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.authenticated)
}
