// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package p2p

import (
	"bytes"
	"testing"
)

func TestWireMessage_EncodeDecodeRoundTrip(t *testing.T) {
	m := WireMessage{Kind: KindVote, Body: []byte("hello")}
	decoded, err := DecodeWireMessage(m.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Kind != KindVote || !bytes.Equal(decoded.Body, m.Body) {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestWireMessage_EmptyBody(t *testing.T) {
	m := WireMessage{Kind: KindKeepalive, Body: nil}
	decoded, err := DecodeWireMessage(m.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Kind != KindKeepalive || len(decoded.Body) != 0 {
		t.Fatalf("unexpected: %+v", decoded)
	}
}

func TestDecodeWireMessage_EmptyInputErrors(t *testing.T) {
	if _, err := DecodeWireMessage(nil); err == nil {
		t.Fatal("expected error decoding empty input")
	}
}

func TestWriteReadFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("frame payload")
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q want %q", got, payload)
	}
}

func TestWriteFrame_RejectsOversized(t *testing.T) {
	var buf bytes.Buffer
	oversized := make([]byte, MaxBodySize+1)
	if err := WriteFrame(&buf, oversized); err == nil {
		t.Fatal("expected error writing oversized frame")
	}
}

func TestReadFrame_RejectsOversizedDeclaredLength(t *testing.T) {
	var buf bytes.Buffer
	// Hand-craft a length prefix that exceeds MaxBodySize without
	// actually allocating that much body data.
	big := uint32(MaxBodySize) + 1
	buf.Write([]byte{byte(big >> 24), byte(big >> 16), byte(big >> 8), byte(big)})
	if _, err := ReadFrame(&buf); err != ErrOversizedFrame {
		t.Fatalf("expected ErrOversizedFrame, got %v", err)
	}
}
