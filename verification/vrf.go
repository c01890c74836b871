// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package verification

import (
	"crypto/ecdsa"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/vechain/go-ecvrf"

	"github.com/burst-chain/burst/ids"
)

// SelectVerifiers deterministically ranks pool by
// score = Blake2b256(randomness ‖ address) and returns the n lowest-
// scoring addresses (spec §4.10 step 2). Any node given the same pool
// and randomness picks the same verifiers.
func SelectVerifiers(randomness []byte, pool []ids.WalletAddress, n int) []ids.WalletAddress {
	type scored struct {
		addr  ids.WalletAddress
		score [ids.HashSize]byte
	}
	ranked := make([]scored, len(pool))
	for i, addr := range pool {
		ranked[i] = scored{addr: addr, score: ids.Blake2b256(randomness, []byte(addr))}
	}
	sort.Slice(ranked, func(i, j int) bool {
		return lessBytes(ranked[i].score[:], ranked[j].score[:])
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]ids.WalletAddress, n)
	for i := 0; i < n; i++ {
		out[i] = ranked[i].addr
	}
	return out
}

func lessBytes(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// RandomnessSource supplies the per-round randomness verifier
// selection draws from (spec §4.10 step 2): a drand beacon primary,
// falling back to representative commit-reveal when the beacon is
// unreachable.
type RandomnessSource interface {
	Randomness(round uint64) ([]byte, error)
}

// CommitRevealKey is a representative's VRF keypair used for the
// commit-reveal randomness fallback when the drand beacon is
// unavailable. Distinct from the node's wallet signing key (ids.
// NodePrivateKey): wallet addresses are one-way hashes of a pubkey and
// cannot feed an ECVRF, which needs the pubkey itself to verify a
// proof, so the fallback keeps its own secp256k1 keypair in the
// go-ethereum representation go-ecvrf expects.
type CommitRevealKey struct {
	priv *ecdsa.PrivateKey
}

// GenerateCommitRevealKey creates a new random VRF keypair.
func GenerateCommitRevealKey() (CommitRevealKey, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return CommitRevealKey{}, errors.Wrap(err, "verification: generate vrf key")
	}
	return CommitRevealKey{priv: priv}, nil
}

// Commit produces this representative's VRF output and proof over
// alpha (typically the previous round's aggregated randomness plus the
// target wallet's address), per the commit phase of commit-reveal.
func (k CommitRevealKey) Commit(alpha []byte) (beta, proof []byte, err error) {
	beta, proof, err = ecvrf.NewSecp256k1Sha256Tai().Prove(k.priv, alpha)
	if err != nil {
		return nil, nil, errors.Wrap(err, "verification: vrf prove")
	}
	return beta, proof, nil
}

// VerifyReveal checks a representative's revealed (beta, proof) pair
// against alpha and their public key, returning the verified beta.
func VerifyReveal(pub *ecdsa.PublicKey, alpha, proof []byte) ([]byte, error) {
	beta, err := ecvrf.NewSecp256k1Sha256Tai().Verify(pub, alpha, proof)
	if err != nil {
		return nil, errors.Wrap(err, "verification: vrf verify")
	}
	return beta, nil
}

// CombineReveals folds a set of representatives' verified VRF outputs
// into the round's final randomness: XOR is order-independent, so the
// result does not depend on reveal arrival order, then the XOR is
// re-hashed so no single contributor's beta dominates the low-order
// bits SelectVerifiers ranks by.
func CombineReveals(betas [][]byte) [ids.HashSize]byte {
	var acc [ids.HashSize]byte
	for _, b := range betas {
		h := ids.Blake2b256(b)
		for i := range acc {
			acc[i] ^= h[i]
		}
	}
	return ids.Blake2b256(acc[:])
}
