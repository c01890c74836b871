// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package nodecfg defines the daemon's external CLI/config surface
// (spec §6): the NodeConfig record a binary entrypoint builds from
// flags and hands to the core (ledger, consensus, p2p, RPC) at
// startup.
package nodecfg

import (
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"

	"github.com/burst-chain/burst/params"
)

// NodeConfig is the fully-resolved startup configuration for one
// daemon process (spec §6's CLI-surface record).
type NodeConfig struct {
	Network        params.NetworkID
	DataDir        string
	P2PPort        uint16
	RPCEnabled     bool
	RPCPort        uint16
	WSEnabled      bool
	WSPort         uint16
	BootstrapPeers []string
	MaxPeers       uint32
	MetricsEnabled bool
	FaucetEnabled  bool
	UPnPEnabled    bool
	LogLevel       string
}

// Default values mirrored from the CLI flag defaults below, exposed
// for callers constructing a NodeConfig outside of cli.Context (tests,
// embedding).
const (
	DefaultP2PPort  = 9732
	DefaultRPCPort  = 9733
	DefaultWSPort   = 9734
	DefaultMaxPeers = 64
	DefaultLogLevel = "info"
)

// Flags is the urfave/cli flag set a main package registers on its
// cli.App to populate a NodeConfig via FromContext.
var Flags = []cli.Flag{
	cli.StringFlag{Name: "network", Value: "live", Usage: "network to join: live, test, dev"},
	cli.StringFlag{Name: "data-dir", Value: "", Usage: "directory for the node database"},
	cli.IntFlag{Name: "p2p-port", Value: DefaultP2PPort, Usage: "p2p listen port"},
	cli.BoolFlag{Name: "rpc", Usage: "enable the RPC server"},
	cli.IntFlag{Name: "rpc-port", Value: DefaultRPCPort, Usage: "RPC listen port"},
	cli.BoolFlag{Name: "ws", Usage: "enable the WebSocket server"},
	cli.IntFlag{Name: "ws-port", Value: DefaultWSPort, Usage: "WebSocket listen port"},
	cli.StringSliceFlag{Name: "bootstrap-peer", Usage: "bootstrap peer address, repeatable"},
	cli.IntFlag{Name: "max-peers", Value: DefaultMaxPeers, Usage: "maximum connected peer count"},
	cli.BoolFlag{Name: "metrics", Usage: "enable the metrics endpoint"},
	cli.BoolFlag{Name: "faucet", Usage: "enable the dev faucet (dev network only)"},
	cli.BoolFlag{Name: "upnp", Usage: "attempt UPnP port mapping for the p2p port"},
	cli.StringFlag{Name: "log-level", Value: DefaultLogLevel, Usage: "log verbosity: trace, debug, info, warn, error"},
}

// FromContext builds a NodeConfig from a parsed cli.Context, applying
// the same defaults as Flags and validating the result.
func FromContext(ctx *cli.Context) (NodeConfig, error) {
	network, err := parseNetwork(ctx.String("network"))
	if err != nil {
		return NodeConfig{}, err
	}

	cfg := NodeConfig{
		Network:        network,
		DataDir:        ctx.String("data-dir"),
		P2PPort:        uint16(ctx.Int("p2p-port")),
		RPCEnabled:     ctx.Bool("rpc"),
		RPCPort:        uint16(ctx.Int("rpc-port")),
		WSEnabled:      ctx.Bool("ws"),
		WSPort:         uint16(ctx.Int("ws-port")),
		BootstrapPeers: ctx.StringSlice("bootstrap-peer"),
		MaxPeers:       uint32(ctx.Int("max-peers")),
		MetricsEnabled: ctx.Bool("metrics"),
		FaucetEnabled:  ctx.Bool("faucet"),
		UPnPEnabled:    ctx.Bool("upnp"),
		LogLevel:       ctx.String("log-level"),
	}
	if err := cfg.Validate(); err != nil {
		return NodeConfig{}, err
	}
	return cfg, nil
}

func parseNetwork(s string) (params.NetworkID, error) {
	switch s {
	case "live":
		return params.Live, nil
	case "test":
		return params.Test, nil
	case "dev":
		return params.Dev, nil
	default:
		return 0, errors.Errorf("nodecfg: unknown network %q (want live, test or dev)", s)
	}
}

// Validate rejects configurations the daemon cannot start with: a
// missing data directory, a zero p2p port, or an enabled server with
// no port assigned.
func (c NodeConfig) Validate() error {
	if c.DataDir == "" {
		return errors.New("nodecfg: data-dir is required")
	}
	if c.P2PPort == 0 {
		return errors.New("nodecfg: p2p-port must be nonzero")
	}
	if c.RPCEnabled && c.RPCPort == 0 {
		return errors.New("nodecfg: rpc-port must be nonzero when rpc is enabled")
	}
	if c.WSEnabled && c.WSPort == 0 {
		return errors.New("nodecfg: ws-port must be nonzero when ws is enabled")
	}
	if c.FaucetEnabled && c.Network != params.Dev {
		return errors.New("nodecfg: faucet is only available on the dev network")
	}
	if c.MaxPeers == 0 {
		return errors.New("nodecfg: max-peers must be nonzero")
	}
	return nil
}

// Params resolves the canonical ProtocolParams for c.Network.
func (c NodeConfig) Params() params.ProtocolParams {
	switch c.Network {
	case params.Test:
		return params.DefaultTest()
	case params.Dev:
		return params.DefaultDev()
	default:
		return params.DefaultLive()
	}
}
