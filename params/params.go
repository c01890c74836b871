// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params carries every governable scalar a BURST node needs
// (spec §4.1), keyed by network, plus the canonical genesis parameters
// for each NetworkID (spec §6).
package params

import (
	"encoding/binary"

	"github.com/burst-chain/burst/ids"
)

// NetworkID selects one of the three canonical networks; each has a
// distinct genesis timestamp, initial ProtocolParams and genesis creator
// address, and therefore a distinct genesis hash.
type NetworkID uint8

const (
	Live NetworkID = iota
	Test
	Dev
)

func (n NetworkID) String() string {
	switch n {
	case Live:
		return "live"
	case Test:
		return "test"
	case Dev:
		return "dev"
	default:
		return "unknown"
	}
}

// ProtocolParams carries every governable scalar: BRN rate, TRST
// expiry, endorsement thresholds, governance timings, quorum basis
// points, anti-spam difficulty. A ParamsHash derived from the canonical
// serialization of these fields is embedded in handshakes and telemetry
// to detect version divergence (spec §4.1).
type ProtocolParams struct {
	Network NetworkID

	// BRN / wallet limits
	InitialBrnRate             ids.Amount
	NewWalletRateLimitSecs     uint64
	NewWalletSpendingLimit     ids.Amount
	NewWalletTxLimitPerDay     uint32

	// TRST
	TrstDefaultExpirySecs uint64

	// Anti-spam PoW thresholds, expressed as difficulty multipliers of Base.
	WorkThresholdBase   uint64
	WorkThresholdOpenMul   uint64 // Open/Receive = Base * 8
	WorkThresholdEpochMul  uint64 // Epoch = Base * 64

	// Consensus
	QuorumBasisPoints      uint32 // 6700 = 67%
	PrincipalRepThreshold  uint32 // basis points of online weight, default 10 (0.1%)
	OnlineWindowSecs       uint64
	OnlineWeightEmaAlpha   float64 // 0.05 per spec §4.6.2
	OnlineWeightMinFloor   ids.Amount
	VoteSpacingMillis      uint64
	EquivocationPenaltySecs uint64

	// Verification / UHV
	EndorsementBurnAmount ids.Amount
	EndorsementThreshold  uint32
	NumVerifiers          uint32
	VerifierStakeAmount   ids.Amount
	VerifierVoteThresholdBasisPoints uint32 // ceil(num*threshold)
	MinBrnStakeForVerifierPool       ids.Amount

	// Governance (opaque to the core per spec §9 open question)
	GovernanceEmaParticipationBasisPoints uint32

	// Genesis
	GenesisTimestamp uint64
	GenesisCreator   ids.WalletAddress
}

// Hash returns the canonical params hash: Blake2b256 over a fixed-order
// little-endian encoding of every field. Two nodes with identical
// ProtocolParams always compute the same hash; this is embedded in
// handshakes (§4.7.2) and block validation (§4.5 step 3).
func (p ProtocolParams) Hash() [ids.HashSize]byte {
	buf := make([]byte, 0, 256)
	putU64 := func(v uint64) { buf = binary.LittleEndian.AppendUint64(buf, v) }
	putU32 := func(v uint32) { buf = binary.LittleEndian.AppendUint32(buf, v) }
	putAmount := func(a ids.Amount) { putU64(a.Hi); putU64(a.Lo) }

	buf = append(buf, byte(p.Network))
	putAmount(p.InitialBrnRate)
	putU64(p.NewWalletRateLimitSecs)
	putAmount(p.NewWalletSpendingLimit)
	putU32(p.NewWalletTxLimitPerDay)
	putU64(p.TrstDefaultExpirySecs)
	putU64(p.WorkThresholdBase)
	putU64(p.WorkThresholdOpenMul)
	putU64(p.WorkThresholdEpochMul)
	putU32(p.QuorumBasisPoints)
	putU32(p.PrincipalRepThreshold)
	putU64(p.OnlineWindowSecs)
	putU64(uint64(p.OnlineWeightEmaAlpha * 1e9))
	putAmount(p.OnlineWeightMinFloor)
	putU64(p.VoteSpacingMillis)
	putU64(p.EquivocationPenaltySecs)
	putAmount(p.EndorsementBurnAmount)
	putU32(p.EndorsementThreshold)
	putU32(p.NumVerifiers)
	putAmount(p.VerifierStakeAmount)
	putU32(p.VerifierVoteThresholdBasisPoints)
	putAmount(p.MinBrnStakeForVerifierPool)
	putU32(p.GovernanceEmaParticipationBasisPoints)
	putU64(p.GenesisTimestamp)
	buf = append(buf, p.GenesisCreator.Bytes()...)

	return ids.Blake2b256(buf)
}

// WorkThresholdFor returns the PoW difficulty threshold for the given
// block kind, per spec §4.5 step 2: Base for Send/Burn, Base*8 for
// Open/Receive, Base*64 for Epoch.
func (p ProtocolParams) WorkThresholdFor(kind BlockKindLike) uint64 {
	switch kind {
	case KindOpen, KindReceive:
		return p.WorkThresholdBase * p.WorkThresholdOpenMul
	case KindEpoch:
		return p.WorkThresholdBase * p.WorkThresholdEpochMul
	default:
		return p.WorkThresholdBase
	}
}

// BlockKindLike avoids an import cycle with package block: block.Kind is
// defined as this same underlying type and passed through unchanged.
type BlockKindLike uint8

const (
	KindOpen BlockKindLike = iota
	KindSend
	KindReceive
	KindRejectReceive
	KindBurn
	KindEpoch
)

// DefaultLive returns the canonical parameters for the Live network.
func DefaultLive() ProtocolParams { return defaults(Live, 1700000000) }

// DefaultTest returns the canonical parameters for the Test network.
func DefaultTest() ProtocolParams { return defaults(Test, 1700000000) }

// DefaultDev returns the canonical parameters for the Dev network,
// tuned for fast local iteration (short expiries, low thresholds).
func DefaultDev() ProtocolParams {
	p := defaults(Dev, 1700000000)
	p.WorkThresholdBase = 1
	p.TrstDefaultExpirySecs = 3600
	p.NewWalletRateLimitSecs = 60
	return p
}

func defaults(network NetworkID, genesisTime uint64) ProtocolParams {
	return ProtocolParams{
		Network:                network,
		InitialBrnRate:         ids.AmountFromUint64(100),
		NewWalletRateLimitSecs: 30 * 24 * 3600,
		NewWalletSpendingLimit: ids.AmountFromUint64(1000),
		NewWalletTxLimitPerDay: 50,
		TrstDefaultExpirySecs:  4 * 365 * 24 * 3600,
		WorkThresholdBase:      1 << 44,
		WorkThresholdOpenMul:   8,
		WorkThresholdEpochMul:  64,
		QuorumBasisPoints:      6700,
		PrincipalRepThreshold:  10, // 0.1% = 10 bps
		OnlineWindowSecs:       300,
		OnlineWeightEmaAlpha:   0.05,
		OnlineWeightMinFloor:   ids.AmountFromUint64(1),
		VoteSpacingMillis:      1500,
		EquivocationPenaltySecs: 3600,
		EndorsementBurnAmount:  ids.AmountFromUint64(10),
		EndorsementThreshold:   3,
		NumVerifiers:           7,
		VerifierStakeAmount:    ids.AmountFromUint64(50),
		VerifierVoteThresholdBasisPoints: 5714, // ~4/7: ceil(7*0.5714) = 4 of 7 verifiers
		MinBrnStakeForVerifierPool:       ids.AmountFromUint64(500),
		GenesisTimestamp:       genesisTime,
		GenesisCreator:         ids.WalletAddress(make([]byte, ids.AddressSize)),
	}
}
