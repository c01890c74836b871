// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventbus is the core's synchronous observability boundary
// (spec §6): handlers run inline with the emitting call, so they must be
// fast, and a panicking handler is isolated rather than propagating
// into block processing (spec §7).
package eventbus

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/burst-chain/burst/ids"
)

// BlockConfirmed is emitted when consensus finalizes a block.
type BlockConfirmed struct {
	Hash    ids.BlockHash
	Account ids.WalletAddress
}

// BlockRejected is emitted when the block processor rejects a block.
type BlockRejected struct {
	Hash   ids.BlockHash
	Reason string
}

// ForkDetected is emitted when two blocks share (account, previous).
type ForkDetected struct {
	Account  ids.WalletAddress
	Existing ids.BlockHash
	Incoming ids.BlockHash
}

// BlockQueued is emitted when a block is parked in the unchecked map.
type BlockQueued struct {
	Hash       ids.BlockHash
	Dependency ids.BlockHash
}

// AccountCreated is emitted when an account's first (open) block lands.
type AccountCreated struct {
	Address ids.WalletAddress
}

// TrstTransfer is emitted on every Send/Receive pair settling.
type TrstTransfer struct {
	From, To ids.WalletAddress
	Amount   ids.Amount
}

// BrnBurned is emitted on every successful burn.
type BrnBurned struct {
	Burner, Receiver ids.WalletAddress
	Amount           ids.Amount
}

// Handler receives one event value; concrete type is one of the structs
// above. Implementations must be fast — they run synchronously on the
// emitting goroutine.
type Handler func(event any)

// Bus fans one event out to every registered handler, synchronously, in
// registration order. A handler panic is caught and logged so it cannot
// take down block processing (spec §7).
type Bus struct {
	handlers []Handler
	logger   log.Logger
}

// New creates an empty event bus.
func New() *Bus {
	return &Bus{logger: log.New("pkg", "eventbus")}
}

// Subscribe registers h to receive every future event.
func (b *Bus) Subscribe(h Handler) {
	b.handlers = append(b.handlers, h)
}

// Emit delivers event to every handler, isolating panics.
func (b *Bus) Emit(event any) {
	for _, h := range b.handlers {
		b.invoke(h, event)
	}
}

func (b *Bus) invoke(h Handler, event any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("eventbus handler panicked", "event", event, "recover", r)
		}
	}()
	h(event)
}
