package p2p

import (
	"context"
	"fmt"
	"time"

	lp2plog "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/libp2p/go-libp2p/core/transport"
	"github.com/libp2p/go-libp2p/p2p/muxer/yamux"
	"github.com/libp2p/go-libp2p/p2p/net/connmgr"
	tptu "github.com/libp2p/go-libp2p/p2p/net/upgrader"
	"github.com/libp2p/go-libp2p/p2p/security/noise"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	ma "github.com/multiformats/go-multiaddr"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

// Peer is an alias to libp2p's peer.ID.
type Peer = peer.ID

// NoPeer is used when peer doesn't matter.
const NoPeer Peer = ""

// DefaultConfig config.
func DefaultConfig() Config {
	return Config{
		Listen:             "/ip4/0.0.0.0/tcp/7613",
		LogLevel:           zapcore.WarnLevel,
		Flood:              true,
		LowPeers:           20,
		HighPeers:          60,
		GracePeersShutdown: 30 * time.Second,
		MaxMessageSize:     64 << 10,
		BootstrapTimeout:   10 * time.Second,
	}
}

// Config for all things related to p2p layer.
type Config struct {
	DataDir            string        `mapstructure:"-"`
	LogLevel           zapcore.Level `mapstructure:"log-level"`
	GracePeersShutdown time.Duration `mapstructure:"grace-peers-shutdown"`
	MaxMessageSize     int           `mapstructure:"max-message-size"`
	BootstrapTimeout   time.Duration `mapstructure:"bootstrap-timeout"`

	// see https://lwn.net/Articles/542629/ for reuseport explanation
	DisableReusePort bool     `mapstructure:"disable-reuseport"`
	Flood            bool     `mapstructure:"flood"`
	IsBootnode       bool     `mapstructure:"bootnode"`
	Listen           string   `mapstructure:"listen"`
	Bootnodes        []string `mapstructure:"bootnodes"`
	LowPeers         int      `mapstructure:"low-peers"`
	HighPeers        int      `mapstructure:"high-peers"`
}

// Validate checks that addresses in the config can be parsed.
func (cfg *Config) Validate() error {
	var errs error
	if _, err := ma.NewMultiaddr(cfg.Listen); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("invalid listen address %q: %w", cfg.Listen, err))
	}
	for _, bootnode := range cfg.Bootnodes {
		if _, err := peer.AddrInfoFromString(bootnode); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid bootnode %q: %w", bootnode, err))
		}
	}
	if cfg.LowPeers > cfg.HighPeers {
		errs = multierr.Append(errs, fmt.Errorf("low-peers %d is above high-peers %d", cfg.LowPeers, cfg.HighPeers))
	}
	return errs
}

// Host is a libp2p host with the configured bootnodes.
type Host struct {
	host.Host

	logger    *zap.Logger
	cfg       Config
	bootnodes []peer.AddrInfo
}

// New initializes libp2p host. Nodes with a different prologue can't complete the
// noise handshake with each other.
func New(_ context.Context, logger *zap.Logger, cfg Config, prologue []byte) (*Host, error) {
	key, err := EnsureIdentity(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return NewWithKey(logger, cfg, prologue, key)
}

// NewWithKey initializes libp2p host with the given identity.
func NewWithKey(logger *zap.Logger, cfg Config, prologue []byte, key crypto.PrivKey) (*Host, error) {
	logger.Info("starting libp2p host", zap.String("listen", cfg.Listen), zap.Strings("bootnodes", cfg.Bootnodes))
	lp2plog.SetPrimaryCore(logger.Core())
	lp2plog.SetAllLoggers(lp2plog.LogLevel(cfg.LogLevel))
	cm, err := connmgr.NewConnManager(cfg.LowPeers, cfg.HighPeers, connmgr.WithGracePeriod(cfg.GracePeersShutdown))
	if err != nil {
		return nil, fmt.Errorf("p2p create conn mgr: %w", err)
	}
	bootnodes := make([]peer.AddrInfo, 0, len(cfg.Bootnodes))
	for _, bootnode := range cfg.Bootnodes {
		info, err := peer.AddrInfoFromString(bootnode)
		if err != nil {
			return nil, fmt.Errorf("parse into peer.AddrInfo %s: %w", bootnode, err)
		}
		bootnodes = append(bootnodes, *info)
	}
	streamer := *yamux.DefaultTransport
	lopts := []libp2p.Option{
		libp2p.Identity(key),
		libp2p.ListenAddrStrings(cfg.Listen),
		libp2p.UserAgent("go-agewitness"),
		libp2p.Transport(func(upgrader transport.Upgrader, rcmgr network.ResourceManager) (transport.Transport, error) {
			opts := []tcp.Option{}
			if cfg.DisableReusePort {
				opts = append(opts, tcp.DisableReuseport())
			}
			return tcp.NewTCPTransport(upgrader, rcmgr, opts...)
		}),
		libp2p.Security(noise.ID, func(id protocol.ID, privkey crypto.PrivKey, muxers []tptu.StreamMuxer) (*noise.SessionTransport, error) {
			tp, err := noise.New(id, privkey, muxers)
			if err != nil {
				return nil, err
			}
			return tp.WithSessionOptions(noise.Prologue(prologue))
		}),
		libp2p.Muxer("/yamux/1.0.0", &streamer),
		libp2p.ConnectionManager(cm),
	}
	h, err := libp2p.New(lopts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize libp2p host: %w", err)
	}
	h.Network().Notify(&network.NotifyBundle{
		ConnectedF: func(n network.Network, _ network.Conn) {
			connectedPeers.WithLabelValues().Set(float64(len(n.Peers())))
		},
		DisconnectedF: func(n network.Network, _ network.Conn) {
			connectedPeers.WithLabelValues().Set(float64(len(n.Peers())))
		},
	})
	logger.Info("local node identity", zap.Stringer("identity", h.ID()))
	return &Host{Host: h, logger: logger, cfg: cfg, bootnodes: bootnodes}, nil
}

// Bootstrap connects to all configured bootnodes. It fails only if none of them is reachable.
func (h *Host) Bootstrap(ctx context.Context) error {
	remote := make([]peer.AddrInfo, 0, len(h.bootnodes))
	for _, info := range h.bootnodes {
		if info.ID != h.ID() {
			remote = append(remote, info)
		}
	}
	if len(remote) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, h.cfg.BootstrapTimeout)
	defer cancel()
	var eg errgroup.Group
	errs := make([]error, len(remote))
	for i, info := range remote {
		eg.Go(func() error {
			if err := h.Connect(ctx, info); err != nil {
				h.logger.Warn("failed to connect to bootnode", zap.Stringer("peer", info.ID), zap.Error(err))
				errs[i] = err
			}
			return nil
		})
	}
	eg.Wait()
	for _, err := range errs {
		if err == nil {
			return nil
		}
	}
	return fmt.Errorf("connect to bootnodes: %w", multierr.Combine(errs...))
}

// Stop closes the host.
func (h *Host) Stop() error {
	if err := h.Close(); err != nil {
		return fmt.Errorf("failed to close libp2p host: %w", err)
	}
	return nil
}
