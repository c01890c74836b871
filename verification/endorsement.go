// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package verification

import (
	"sync"

	"github.com/burst-chain/burst/ids"
)

// EndorsementTracker counts distinct endorsers per target wallet
// (spec §4.10 step 1): existing verified wallets each burn
// EndorsementBurnAmount BRN to vouch for a target; a second endorsement
// from the same endorser does not count twice.
type EndorsementTracker struct {
	mu        sync.Mutex
	endorsers map[ids.WalletAddress]map[ids.WalletAddress]struct{}
}

// NewEndorsementTracker creates an empty tracker.
func NewEndorsementTracker() *EndorsementTracker {
	return &EndorsementTracker{endorsers: make(map[ids.WalletAddress]map[ids.WalletAddress]struct{})}
}

// Endorse records endorser's vouch for target and returns the
// resulting distinct-endorser count. A repeat endorsement from the
// same endorser leaves the count unchanged.
func (t *EndorsementTracker) Endorse(target, endorser ids.WalletAddress) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.endorsers[target]
	if !ok {
		set = make(map[ids.WalletAddress]struct{})
		t.endorsers[target] = set
	}
	set[endorser] = struct{}{}
	return uint32(len(set))
}

// Count returns the current distinct-endorser count for target.
func (t *EndorsementTracker) Count(target ids.WalletAddress) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return uint32(len(t.endorsers[target]))
}

// Clear drops target's endorsement record, once its verification
// round has started (or been abandoned) and the count is no longer
// needed.
func (t *EndorsementTracker) Clear(target ids.WalletAddress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.endorsers, target)
}
