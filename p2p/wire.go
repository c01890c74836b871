// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package p2p implements the node's transport layer (spec §4.7):
// length-prefixed framing, the SYN-cookie handshake, network-layer
// message dedup, per-peer bandwidth throttling, flood/subset broadcast,
// a bounded connection pool and the bootstrap/account-sync/lazy-pull
// protocol.
package p2p

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// MaxBodySize is the largest WireMessage body the codec accepts,
// matching the connection layer's own frame-size cap (spec §4.7.1).
const MaxBodySize = 16 * 1024 * 1024

// ErrOversizedFrame is returned by ReadFrame when a peer's declared
// body length exceeds MaxBodySize.
var ErrOversizedFrame = errors.New("p2p: frame exceeds max body size")

// MessageKind discriminates the closed set of WireMessage variants
// (spec §4.7.1). Every handler switch over Kind must be exhaustive.
type MessageKind uint8

const (
	KindBlock MessageKind = iota
	KindVote
	KindConfirmReq
	KindConfirmAck
	KindKeepalive
	KindBootstrap
	KindHandshake
	KindVerificationRequest
	KindVerificationVote
	KindGovernanceProposal
	KindGovernanceVote
	KindTelemetryReq
	KindTelemetryAck
)

// WireMessage is the envelope every payload travels in over the wire:
// a one-byte kind tag followed by the kind-specific body, itself opaque
// to the framing layer (each subsystem encodes/decodes its own body).
type WireMessage struct {
	Kind MessageKind
	Body []byte
}

// Encode serializes m to its wire representation: kind byte ‖ body.
func (m WireMessage) Encode() []byte {
	out := make([]byte, 1+len(m.Body))
	out[0] = byte(m.Kind)
	copy(out[1:], m.Body)
	return out
}

// DecodeWireMessage parses the kind-tagged envelope produced by Encode.
func DecodeWireMessage(raw []byte) (WireMessage, error) {
	if len(raw) < 1 {
		return WireMessage{}, errors.New("p2p: empty message")
	}
	body := make([]byte, len(raw)-1)
	copy(body, raw[1:])
	return WireMessage{Kind: MessageKind(raw[0]), Body: body}, nil
}

// WriteFrame writes data as one length-prefixed frame: a big-endian
// u32 body length followed by the body (spec §4.7.1).
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > MaxBodySize {
		return errors.Errorf("p2p: message too large: %d > %d", len(data), MaxBodySize)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return errors.Wrap(err, "p2p: write frame length")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "p2p: write frame body")
	}
	return nil
}

// ReadFrame reads one length-prefixed frame written by WriteFrame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, errors.Wrap(err, "p2p: read frame length")
	}
	bodyLen := binary.BigEndian.Uint32(lenBuf[:])
	if bodyLen > MaxBodySize {
		return nil, ErrOversizedFrame
	}
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, errors.Wrap(err, "p2p: read frame body")
	}
	return body, nil
}
