// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package p2p

import (
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DefaultMaxConnections bounds the live connection pool (spec §4.7.1,
// §5 resource budget for the p2p worker pool).
const DefaultMaxConnections = 64

// PeerConnection wraps a live socket to one peer, framing every
// message with the length-prefixed codec from wire.go.
type PeerConnection struct {
	PeerID    string
	Address   PeerAddress
	Conn      net.Conn
	ConnectedAt time.Time
}

// Send writes data to the peer as one length-prefixed frame.
func (c *PeerConnection) Send(data []byte) error {
	return WriteFrame(c.Conn, data)
}

// Recv reads one length-prefixed frame from the peer.
func (c *PeerConnection) Recv() ([]byte, error) {
	return ReadFrame(c.Conn)
}

// Close closes the underlying socket.
func (c *PeerConnection) Close() error {
	return c.Conn.Close()
}

var errPoolFull = errors.New("p2p: connection pool is full")

// ConnectionPool is the bounded set of live peer sockets (spec §4.7.1:
// "a bounded connection pool", grounded on the teacher's analogous
// worker-pool sizing pattern).
type ConnectionPool struct {
	mu          sync.Mutex
	connections map[string]*PeerConnection
	max         int
}

// NewConnectionPool creates a pool bounded at max connections.
func NewConnectionPool(max int) *ConnectionPool {
	return &ConnectionPool{connections: make(map[string]*PeerConnection), max: max}
}

// NewDefaultConnectionPool creates a pool bounded at DefaultMaxConnections.
func NewDefaultConnectionPool() *ConnectionPool {
	return NewConnectionPool(DefaultMaxConnections)
}

// Add inserts conn under its PeerID, rejecting it if the pool is full
// or the peer is already connected.
func (p *ConnectionPool) Add(conn *PeerConnection) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.connections[conn.PeerID]; exists {
		return errors.Errorf("p2p: peer %s already connected", conn.PeerID)
	}
	if len(p.connections) >= p.max {
		return errPoolFull
	}
	p.connections[conn.PeerID] = conn
	return nil
}

// IsFull reports whether the pool is at capacity.
func (p *ConnectionPool) IsFull() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.connections) >= p.max
}

// Remove drops and closes the connection for peerID, if present.
func (p *ConnectionPool) Remove(peerID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok := p.connections[peerID]; ok {
		conn.Close()
		delete(p.connections, peerID)
	}
}

// Get returns the live connection for peerID, if any.
func (p *ConnectionPool) Get(peerID string) (*PeerConnection, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.connections[peerID]
	return c, ok
}

// Count returns the number of live connections.
func (p *ConnectionPool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.connections)
}

// Max returns the pool's capacity.
func (p *ConnectionPool) Max() int { return p.max }

// PeerIDs returns the ids of every currently connected peer.
func (p *ConnectionPool) PeerIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.connections))
	for id := range p.connections {
		out = append(out, id)
	}
	return out
}

// Broadcast sends data to every live connection, returning the peer
// ids send failed for (e.g. a dead socket detected on write).
func (p *ConnectionPool) Broadcast(data []byte) []string {
	p.mu.Lock()
	conns := make([]*PeerConnection, 0, len(p.connections))
	for _, c := range p.connections {
		conns = append(conns, c)
	}
	p.mu.Unlock()

	var failed []string
	for _, c := range conns {
		if err := c.Send(data); err != nil {
			failed = append(failed, c.PeerID)
		}
	}
	return failed
}
