// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package p2p

import (
	"github.com/pkg/errors"

	"github.com/burst-chain/burst/ids"
)

// syncChannelBuffer is the depth of the paired request/response
// channels (spec §4.7.4's bootstrap/account-sync/lazy-pull protocol).
const syncChannelBuffer = 64

// SyncRequestKind discriminates the SyncRequest sum type.
type SyncRequestKind int

const (
	SyncRequestBootstrap SyncRequestKind = iota
	SyncRequestSyncAccount
	SyncRequestLazyPull
)

// SyncRequest is one outbound ask to a peer: a full-chain bootstrap, a
// single account's chain, or one missing block by hash.
type SyncRequest struct {
	Kind      SyncRequestKind
	Peer      string
	Account   ids.WalletAddress // SyncAccount
	BlockHash ids.BlockHash     // LazyPull
}

// SyncResponseKind discriminates the SyncResponse sum type.
type SyncResponseKind int

const (
	SyncResponseFrontiers SyncResponseKind = iota
	SyncResponseBlocks
	SyncResponseBlock
	SyncResponseError
)

// AccountFrontier is one entry of a Bootstrap response: an account and
// the hash of its current head block.
type AccountFrontier struct {
	Account ids.WalletAddress
	Head    ids.BlockHash
}

// SyncResponse is one inbound answer from a peer, matched against the
// request kind that produced it.
type SyncResponse struct {
	Kind      SyncResponseKind
	Frontiers []AccountFrontier // Frontiers
	Blocks    [][]byte          // Blocks (encoded blocks, SyncAccount reply)
	Block     []byte            // Block (encoded block, LazyPull reply)
	Err       string            // Error
}

var (
	// ErrUnexpectedResponse means a response of a different kind than
	// the one requested was received.
	ErrUnexpectedResponse = errors.New("p2p: unexpected sync response kind")
	// ErrSyncChannelClosed means the peer side closed its end before
	// answering.
	ErrSyncChannelClosed = errors.New("p2p: sync channel closed")
)

// SyncProtocol is the caller-facing half of the bootstrap/account-sync
// /lazy-pull protocol: it issues one request and waits for the
// matching response, modeled as a paired channel handoff instead of
// async futures.
type SyncProtocol struct {
	requests  chan SyncRequest
	responses chan SyncResponse
}

// SyncHandle is the peer-facing half: it receives requests and sends
// back responses.
type SyncHandle struct {
	requests  <-chan SyncRequest
	responses chan<- SyncResponse
}

// NewSyncProtocol creates a connected protocol/handle pair over
// buffered channels.
func NewSyncProtocol() (*SyncProtocol, *SyncHandle) {
	reqCh := make(chan SyncRequest, syncChannelBuffer)
	respCh := make(chan SyncResponse, syncChannelBuffer)
	return &SyncProtocol{requests: reqCh, responses: respCh},
		&SyncHandle{requests: reqCh, responses: respCh}
}

// Bootstrap asks peer for its full set of account frontiers.
func (p *SyncProtocol) Bootstrap(peer string) ([]AccountFrontier, error) {
	p.requests <- SyncRequest{Kind: SyncRequestBootstrap, Peer: peer}
	resp, ok := <-p.responses
	if !ok {
		return nil, ErrSyncChannelClosed
	}
	switch resp.Kind {
	case SyncResponseFrontiers:
		return resp.Frontiers, nil
	case SyncResponseError:
		return nil, errors.New(resp.Err)
	default:
		return nil, ErrUnexpectedResponse
	}
}

// SyncAccount asks peer for account's full block chain.
func (p *SyncProtocol) SyncAccount(peer string, account ids.WalletAddress) ([][]byte, error) {
	p.requests <- SyncRequest{Kind: SyncRequestSyncAccount, Peer: peer, Account: account}
	resp, ok := <-p.responses
	if !ok {
		return nil, ErrSyncChannelClosed
	}
	switch resp.Kind {
	case SyncResponseBlocks:
		return resp.Blocks, nil
	case SyncResponseError:
		return nil, errors.New(resp.Err)
	default:
		return nil, ErrUnexpectedResponse
	}
}

// LazyPull asks peer for one specific missing block by hash.
func (p *SyncProtocol) LazyPull(peer string, hash ids.BlockHash) ([]byte, error) {
	p.requests <- SyncRequest{Kind: SyncRequestLazyPull, Peer: peer, BlockHash: hash}
	resp, ok := <-p.responses
	if !ok {
		return nil, ErrSyncChannelClosed
	}
	switch resp.Kind {
	case SyncResponseBlock:
		return resp.Block, nil
	case SyncResponseError:
		return nil, errors.New(resp.Err)
	default:
		return nil, ErrUnexpectedResponse
	}
}

// Requests exposes the handle's inbound request stream.
func (h *SyncHandle) Requests() <-chan SyncRequest { return h.requests }

// Reply sends resp back to the waiting SyncProtocol caller.
func (h *SyncHandle) Reply(resp SyncResponse) { h.responses <- resp }

// Close closes the response channel, unblocking any pending caller
// with ErrSyncChannelClosed.
func (h *SyncHandle) Close() { close(h.responses) }
