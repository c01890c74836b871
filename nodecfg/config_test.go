// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nodecfg

import (
	"flag"
	"testing"

	"gopkg.in/urfave/cli.v1"

	"github.com/burst-chain/burst/params"
)

func contextWithFlags(t *testing.T, args []string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range Flags {
		f.Apply(set)
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cli.NewContext(nil, set, nil)
}

func TestFromContext_DefaultsAndRequiredDataDir(t *testing.T) {
	ctx := contextWithFlags(t, []string{"-data-dir", "/tmp/burst"})
	cfg, err := FromContext(ctx)
	if err != nil {
		t.Fatalf("FromContext: %v", err)
	}
	if cfg.Network != params.Live {
		t.Fatalf("expected default network live, got %v", cfg.Network)
	}
	if cfg.P2PPort != DefaultP2PPort {
		t.Fatalf("expected default p2p port, got %d", cfg.P2PPort)
	}
	if cfg.MaxPeers != DefaultMaxPeers {
		t.Fatalf("expected default max peers, got %d", cfg.MaxPeers)
	}
}

func TestFromContext_MissingDataDirErrors(t *testing.T) {
	ctx := contextWithFlags(t, nil)
	if _, err := FromContext(ctx); err == nil {
		t.Fatal("expected error for missing data-dir")
	}
}

func TestFromContext_UnknownNetworkErrors(t *testing.T) {
	ctx := contextWithFlags(t, []string{"-data-dir", "/tmp/burst", "-network", "bogus"})
	if _, err := FromContext(ctx); err == nil {
		t.Fatal("expected error for unknown network")
	}
}

func TestFromContext_RPCEnabledRequiresPort(t *testing.T) {
	ctx := contextWithFlags(t, []string{"-data-dir", "/tmp/burst", "-rpc", "-rpc-port", "0"})
	if _, err := FromContext(ctx); err == nil {
		t.Fatal("expected error for rpc enabled with zero port")
	}
}

func TestFromContext_FaucetOnlyOnDev(t *testing.T) {
	ctx := contextWithFlags(t, []string{"-data-dir", "/tmp/burst", "-faucet", "-network", "live"})
	if _, err := FromContext(ctx); err == nil {
		t.Fatal("expected error enabling faucet outside dev network")
	}

	devCtx := contextWithFlags(t, []string{"-data-dir", "/tmp/burst", "-faucet", "-network", "dev"})
	if _, err := FromContext(devCtx); err != nil {
		t.Fatalf("expected faucet on dev to succeed: %v", err)
	}
}

func TestFromContext_BootstrapPeersParsed(t *testing.T) {
	ctx := contextWithFlags(t, []string{
		"-data-dir", "/tmp/burst",
		"-bootstrap-peer", "1.2.3.4:9732",
		"-bootstrap-peer", "5.6.7.8:9732",
	})
	cfg, err := FromContext(ctx)
	if err != nil {
		t.Fatalf("FromContext: %v", err)
	}
	if len(cfg.BootstrapPeers) != 2 {
		t.Fatalf("expected 2 bootstrap peers, got %d", len(cfg.BootstrapPeers))
	}
}

func TestNodeConfig_ParamsResolvesNetwork(t *testing.T) {
	cfg := NodeConfig{Network: params.Test}
	p := cfg.Params()
	if p.Network != params.Test {
		t.Fatalf("expected test network params, got %v", p.Network)
	}
}
