// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ids

import (
	"crypto/rand"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"
)

// NodePrivateKey is a node or account's secp256k1 signing key. Block
// signatures, vote signatures and handshake cookie signatures all use
// the same scheme (spec §6 leaves scheme selection external, but the
// core still needs a concrete one to exercise the pipeline end to end).
type NodePrivateKey struct {
	priv *secp256k1.PrivateKey
}

// NodePublicKey is the verifying half of a NodePrivateKey.
type NodePublicKey struct {
	pub *secp256k1.PublicKey
}

// GenerateNodeKey creates a new random signing key.
func GenerateNodeKey() (NodePrivateKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return NodePrivateKey{}, errors.Wrap(err, "ids: generate key")
	}
	return NodePrivateKey{priv: priv}, nil
}

// Public returns the public key corresponding to k.
func (k NodePrivateKey) Public() NodePublicKey {
	return NodePublicKey{pub: k.priv.PubKey()}
}

// Sign produces a recoverable ECDSA signature over digest (expected to
// be a 32-byte hash). Recoverable so RecoverAddress can check a block's
// claimed signer without the ledger having to store public keys
// separately from addresses.
func (k NodePrivateKey) Sign(digest []byte) []byte {
	return ecdsa.SignCompact(k.priv, digest, true)
}

// Address derives the wallet address owned by this key: the low
// AddressSize bytes of Blake2b256(pubkey).
func (k NodePrivateKey) Address() WalletAddress {
	return k.Public().Address()
}

// Address derives the wallet address corresponding to pub.
func (pub NodePublicKey) Address() WalletAddress {
	digest := Blake2b256(pub.pub.SerializeCompressed())
	return WalletAddress(digest[HashSize-AddressSize:])
}

// Bytes returns the compressed SEC1 encoding of the public key.
func (pub NodePublicKey) Bytes() []byte { return pub.pub.SerializeCompressed() }

// ParseNodePublicKey decodes a compressed SEC1 public key.
func ParseNodePublicKey(b []byte) (NodePublicKey, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return NodePublicKey{}, errors.Wrap(err, "ids: parse public key")
	}
	return NodePublicKey{pub: pub}, nil
}

// Verify checks that sig is a valid signature by pub over digest.
func (pub NodePublicKey) Verify(digest, sig []byte) bool {
	addr, err := RecoverAddress(digest, sig)
	if err != nil {
		return false
	}
	return addr == pub.Address()
}

// RecoverAddress recovers the wallet address that produced sig over
// digest, using the recoverable signature's embedded recovery id. This
// is how the block processor checks a block's signature against its
// claimed Account without the ledger ever storing raw public keys.
func RecoverAddress(digest, sig []byte) (WalletAddress, error) {
	pub, _, err := ecdsa.RecoverCompact(sig, digest)
	if err != nil {
		return "", errors.Wrap(err, "ids: recover signature")
	}
	return NodePublicKey{pub: pub}.Address(), nil
}

// RandomCookie returns a fresh cryptographically random 32-byte value,
// used for the SYN-cookie handshake (spec §4.7.2).
func RandomCookie() ([32]byte, error) {
	var c [32]byte
	if _, err := rand.Read(c[:]); err != nil {
		return c, errors.Wrap(err, "ids: random cookie")
	}
	return c, nil
}
