// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package verification implements the UHV (unique humanity
// verification) flow (spec §4.10): endorsement collection, VRF/drand
// verifier selection, and verification-vote tallying that promotes a
// wallet from Unverified to Verified.
package verification

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/burst-chain/burst/ids"
)

// VerifierPool tracks which accounts have opted in as verifiers.
// Verifiers implicitly stake by holding at least MinStake BRN; the
// pool is the eligible set SelectVerifiers draws from.
type VerifierPool struct {
	optedIn  map[ids.WalletAddress]struct{}
	minStake ids.Amount
}

// NewVerifierPool creates an empty pool requiring minStake BRN to opt in.
func NewVerifierPool(minStake ids.Amount) *VerifierPool {
	return &VerifierPool{
		optedIn:  make(map[ids.WalletAddress]struct{}),
		minStake: minStake,
	}
}

// OptIn adds address to the pool, failing if brnBalance is below the
// configured minimum stake.
func (p *VerifierPool) OptIn(address ids.WalletAddress, brnBalance ids.Amount) error {
	if brnBalance.Cmp(p.minStake) < 0 {
		return errors.Errorf("verification: insufficient BRN stake: have %+v, need %+v", brnBalance, p.minStake)
	}
	p.optedIn[address] = struct{}{}
	return nil
}

// OptOut removes address from the pool; a no-op if it was not in it.
func (p *VerifierPool) OptOut(address ids.WalletAddress) {
	delete(p.optedIn, address)
}

// IsVerifier reports whether address is currently opted in.
func (p *VerifierPool) IsVerifier(address ids.WalletAddress) bool {
	_, ok := p.optedIn[address]
	return ok
}

// Pool returns every opted-in address, sorted for deterministic
// iteration across nodes (spec §4.10).
func (p *VerifierPool) Pool() []ids.WalletAddress {
	out := make([]ids.WalletAddress, 0, len(p.optedIn))
	for addr := range p.optedIn {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Count returns the number of currently opted-in verifiers.
func (p *VerifierPool) Count() int { return len(p.optedIn) }

// MinStake returns the configured minimum BRN stake.
func (p *VerifierPool) MinStake() ids.Amount { return p.minStake }
