// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package blockproc implements the block-acceptance pipeline (spec
// §4.5): stateless-before-stateful validation, gap/fork detection and
// the bounded backlog that gates how many unconfirmed blocks the node
// carries at once.
package blockproc

import (
	"sync"
	"time"

	"github.com/burst-chain/burst/account"
	"github.com/burst-chain/burst/block"
	"github.com/burst-chain/burst/eventbus"
	"github.com/burst-chain/burst/ids"
	"github.com/burst-chain/burst/ledger"
	"github.com/burst-chain/burst/params"
)

// Outcome is the closed sum type a Process call returns (spec §4.5
// "Outcomes"). Exactly one of the embedded pointers is non-nil.
type Outcome struct {
	Accepted *AcceptedOutcome
	Gap      *GapOutcome
	Fork     *ForkOutcome
	Rejected *RejectedOutcome
}

// AcceptedOutcome reports the block was validated and persisted.
type AcceptedOutcome struct {
	Block  *block.StateBlock
	Height uint64
}

// GapOutcome reports the block references state the node does not yet
// have; it is parked in the unchecked map awaiting the missing hash.
type GapOutcome struct {
	Block   *block.StateBlock
	Missing ids.BlockHash
	Kind    GapKind
}

// GapKind distinguishes a missing predecessor from a missing source.
type GapKind uint8

const (
	GapPrevious GapKind = iota
	GapSource
)

// ForkOutcome reports two or more blocks contest the same chain
// position; an election must resolve it.
type ForkOutcome struct {
	Root       ids.BlockHash
	Candidates []*block.StateBlock
}

// RejectedOutcome reports the block fails validation outright and will
// never be accepted as submitted.
type RejectedOutcome struct {
	Block  *block.StateBlock
	Reason RejectReason
}

// Processor runs the block-acceptance pipeline over a single Ledger.
// Per-account mutexes give cross-account parallelism while serializing
// the chain of any one account (spec §4.5.2).
type Processor struct {
	ledger    *ledger.Ledger
	params    params.ProtocolParams
	bus       *eventbus.Bus
	Unchecked *UncheckedMap
	forks     *ForkCache
	backlog   *BoundedBacklog

	accMu   sync.Mutex
	perAcct map[ids.WalletAddress]*sync.Mutex

	now func() uint64
}

// TimestampToleranceSecs bounds how far a block's timestamp may drift
// from the validator's wall clock (spec §4.5 step 8).
const TimestampToleranceSecs = 900

// NewProcessor wires a Processor over an already-open ledger.
func NewProcessor(l *ledger.Ledger, p params.ProtocolParams, bus *eventbus.Bus, now func() uint64) *Processor {
	return &Processor{
		ledger:    l,
		params:    p,
		bus:       bus,
		Unchecked: NewUncheckedMap(65536, 10*time.Minute),
		forks:     NewForkCache(),
		backlog:   NewBoundedBacklog(4096, 128),
		perAcct:   make(map[ids.WalletAddress]*sync.Mutex),
		now:       now,
	}
}

func (p *Processor) lockFor(addr ids.WalletAddress) *sync.Mutex {
	p.accMu.Lock()
	m, ok := p.perAcct[addr]
	if !ok {
		m = &sync.Mutex{}
		p.perAcct[addr] = m
	}
	p.accMu.Unlock()
	return m
}

// Process validates blk and applies it if accepted. It never blocks on
// another account's chain: only blk.Account's mutex is held (spec
// §4.5.2).
func (p *Processor) Process(blk *block.StateBlock) Outcome {
	mu := p.lockFor(blk.Account)
	mu.Lock()
	defer mu.Unlock()
	return p.processLocked(blk)
}

func (p *Processor) processLocked(blk *block.StateBlock) Outcome {
	// Step 1: signature.
	if !blk.VerifySignature() {
		return p.reject(blk, ReasonBadSignature)
	}

	// Step 2: PoW.
	if !blk.MeetsWork(p.params) {
		return p.reject(blk, ReasonInsufficientWork)
	}

	// Step 3: params compatibility (ParamsHash only; Version is not checked).
	if blk.ParamsHash != p.params.Hash() {
		return p.reject(blk, ReasonParamsMismatch)
	}

	acc, err := p.ledger.GetAccount(blk.Account)
	accExists := err == nil
	if err != nil && err != ledger.ErrNotFound {
		return p.reject(blk, ReasonAccountMissing)
	}

	// Step 4: previous-block / open-block consistency.
	if !blk.Previous.IsZero() {
		if !accExists {
			return p.reject(blk, ReasonAccountMissing)
		}
		if acc.Head != blk.Previous {
			if _, ferr := p.ledger.GetBlock(blk.Previous); ferr == ledger.ErrNotFound {
				p.Unchecked.WaitOnPrevious(blk.Previous, blk)
				p.emit(eventbus.BlockQueued{Hash: blk.Hash(), Dependency: blk.Previous})
				return Outcome{Gap: &GapOutcome{Block: blk, Missing: blk.Previous, Kind: GapPrevious}}
			}
			if prevAcct, prevHeight, herr := p.ledger.HeightOf(blk.Previous); herr == nil && prevAcct == blk.Account {
				if existing, ferr := p.ledger.BlockAtHeight(blk.Account, prevHeight+1); ferr == nil {
					if candidate, _ := p.ledger.GetBlock(existing); candidate != nil {
						p.forks.Add(blk.Previous, candidate)
					}
					p.forks.Add(blk.Previous, blk)
					p.emit(eventbus.ForkDetected{Account: blk.Account, Existing: existing, Incoming: blk.Hash()})
					return Outcome{Fork: &ForkOutcome{Root: blk.Previous, Candidates: p.forks.Candidates(blk.Previous)}}
				}
			}
			return p.reject(blk, ReasonPreviousMismatch)
		}
	} else if accExists {
		return p.reject(blk, ReasonAccountExists)
	} else {
		acc = &account.Info{Address: blk.Account}
	}

	// Step 5: link resolution for Receive / RejectReceive.
	var pending *ledger.PendingInfo
	if blk.Kind == block.Receive || blk.Kind == block.RejectReceive {
		pi, perr := p.ledger.PendingFor(blk.Account, blk.Link)
		if perr == ledger.ErrNotFound {
			p.Unchecked.WaitOnSource(blk.Link, blk)
			p.emit(eventbus.BlockQueued{Hash: blk.Hash(), Dependency: blk.Link})
			return Outcome{Gap: &GapOutcome{Block: blk, Missing: blk.Link, Kind: GapSource}}
		}
		if perr != nil {
			return p.reject(blk, ReasonLinkNotFound)
		}
		pending = pi
	}

	// Step 6: balance arithmetic.
	if err := p.checkBalance(acc, blk, pending); err != nil {
		return p.reject(blk, err.(RejectReason))
	}

	// Step 7: wallet limits (new-wallet send/day caps).
	if blk.Kind == block.Send {
		sendAmount, _ := acc.TrstBalance.SubChecked(blk.TrstBalance)
		if cerr := CheckWalletLimits(acc, p.params, sendAmount, p.ledger, p.now()); cerr != nil {
			return p.reject(blk, ReasonWalletLimit)
		}
	}

	// Step 8: timestamp tolerance.
	now := p.now()
	if blk.Timestamp > now+TimestampToleranceSecs {
		return p.reject(blk, ReasonStaleTimestamp)
	}
	if acc.BlockCount > 0 {
		if prevBlk, perr := p.ledger.GetBlock(acc.Head); perr == nil && blk.Timestamp < prevBlk.Timestamp {
			return p.reject(blk, ReasonStaleTimestamp)
		}
	}

	return p.apply(acc, blk, pending)
}

func (p *Processor) checkBalance(acc *account.Info, blk *block.StateBlock, pending *ledger.PendingInfo) error {
	switch blk.Kind {
	case block.Send:
		if blk.TrstBalance.Cmp(acc.TrstBalance) > 0 {
			return ReasonBalanceUnderflow
		}
	case block.Receive:
		if pending == nil {
			return ReasonLinkNotFound
		}
		want := acc.TrstBalance.Add(pending.Amount)
		if blk.TrstBalance.Cmp(want) != 0 {
			return ReasonBalanceMismatch
		}
	case block.RejectReceive:
		if pending == nil {
			return ReasonLinkNotFound
		}
		if blk.TrstBalance.Cmp(acc.TrstBalance) != 0 {
			return ReasonBalanceMismatch
		}
	case block.Burn:
		if blk.BrnBalance.Cmp(acc.TotalBrnBurned) < 0 {
			return ReasonBalanceUnderflow
		}
	}
	return nil
}

func (p *Processor) apply(acc *account.Info, blk *block.StateBlock, pending *ledger.PendingInfo) Outcome {
	batch := p.ledger.NewBatch()
	wasOpen := blk.IsOpen()

	updated := *acc
	updated.Head = blk.Hash()
	updated.BlockCount = acc.BlockCount + 1
	updated.Representative = blk.Representative
	updated.TrstBalance = blk.TrstBalance

	var transfer *eventbus.TrstTransfer
	var burn *eventbus.BrnBurned

	switch blk.Kind {
	case block.Send:
		delta, _ := acc.TrstBalance.SubChecked(blk.TrstBalance)
		destination := ids.WalletAddress(blk.Link[:ids.AddressSize])
		_ = batch.PutPending(destination, blk.Hash(), &ledger.PendingInfo{
			Source: blk.Hash(), Destination: destination, Amount: delta, Origin: blk.Origin,
		})
	case block.Receive:
		_ = batch.ConsumePending(blk.Account, blk.Link)
		if pending != nil {
			transfer = &eventbus.TrstTransfer{To: blk.Account, Amount: pending.Amount}
		}
	case block.RejectReceive:
		_ = batch.ConsumePending(blk.Account, blk.Link)
	case block.Burn:
		burned, _ := blk.BrnBalance.SubChecked(acc.TotalBrnBurned)
		updated.TotalBrnBurned = blk.BrnBalance
		burn = &eventbus.BrnBurned{Burner: blk.Account, Amount: burned}
	}

	if err := batch.PutAccount(&updated); err != nil {
		return p.reject(blk, ReasonBalanceMismatch)
	}
	if err := batch.PutBlock(blk, updated.BlockCount); err != nil {
		return p.reject(blk, ReasonBalanceMismatch)
	}
	if err := batch.Commit(); err != nil {
		return p.reject(blk, ReasonBalanceMismatch)
	}

	p.backlog.Remove(blk.Hash())
	if p.bus != nil {
		if wasOpen {
			p.bus.Emit(eventbus.AccountCreated{Address: blk.Account})
		}
		if transfer != nil {
			p.bus.Emit(*transfer)
		}
		if burn != nil {
			p.bus.Emit(*burn)
		}
	}
	return Outcome{Accepted: &AcceptedOutcome{Block: blk, Height: updated.BlockCount}}
}

func (p *Processor) reject(blk *block.StateBlock, reason RejectReason) Outcome {
	p.emit(eventbus.BlockRejected{Hash: blk.Hash(), Reason: string(reason)})
	return Outcome{Rejected: &RejectedOutcome{Block: blk, Reason: reason}}
}

func (p *Processor) emit(event any) {
	if p.bus != nil {
		p.bus.Emit(event)
	}
}
