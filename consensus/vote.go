// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"encoding/binary"

	"github.com/burst-chain/burst/ids"
)

// Vote is one representative's signed ballot for a block hash within a
// contested (account, previous) root's election (spec §4.6.3).
// ElectionRoot identifies the election (the contested previous hash);
// Hash identifies which candidate block the vote is for. Sequence lets
// a later non-final vote from the same voter supersede an earlier one.
type Vote struct {
	Voter        ids.WalletAddress
	ElectionRoot ids.BlockHash
	Hash         ids.BlockHash
	Sequence     uint64
	IsFinal      bool
	Timestamp    uint64
	Signature    []byte
}

// SigningBytes returns the canonical bytes a vote's Signature is
// produced over (spec §6): voter_ascii ‖ timestamp_u64_le ‖
// sequence_u64_le ‖ is_final_u8 ‖ hash. A single Vote carries exactly
// one candidate hash; the wire format's "hash_i for hash_i in hashes"
// degenerates to that one element here.
func (v *Vote) SigningBytes() []byte {
	buf := make([]byte, 0, len(v.Voter)+8+8+1+ids.HashSize)
	buf = append(buf, []byte(v.Voter)...)
	buf = binary.LittleEndian.AppendUint64(buf, v.Timestamp)
	buf = binary.LittleEndian.AppendUint64(buf, v.Sequence)
	if v.IsFinal {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, v.Hash[:]...)
	return buf
}

// Sign computes Signature over SigningBytes using priv.
func (v *Vote) Sign(priv ids.NodePrivateKey) {
	digest := ids.Blake2b256(v.SigningBytes())
	v.Signature = priv.Sign(digest[:])
}

// VerifySignature checks that Signature recovers to v.Voter.
func (v *Vote) VerifySignature() bool {
	digest := ids.Blake2b256(v.SigningBytes())
	addr, err := ids.RecoverAddress(digest[:], v.Signature)
	if err != nil {
		return false
	}
	return addr == v.Voter
}
