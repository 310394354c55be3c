// Package config contains agewitness node configuration definitions.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/spacemeshos/go-agewitness/p2p"
	"github.com/spacemeshos/go-agewitness/prune"
	"github.com/spacemeshos/go-agewitness/tradelimit"
	"github.com/spacemeshos/go-agewitness/witness"
	"github.com/spacemeshos/go-agewitness/witness/exchange"
)

const (
	defaultDataDirName = "agewitness"
	// DefaultNetworkID separates signatures and connections of different networks.
	DefaultNetworkID = "aw-main"
)

var defaultDataDir = filepath.Join(os.Getenv("HOME"), defaultDataDirName)

// Config defines the top level configuration for an agewitness node.
type Config struct {
	BaseConfig `mapstructure:"main"`
	Preset     string           `mapstructure:"preset"`
	Witness    WitnessConfig    `mapstructure:"witness"`
	TradeLimit TradeLimitConfig `mapstructure:"tradelimit"`
	P2P        p2p.Config       `mapstructure:"p2p"`
	Exchange   ExchangeConfig   `mapstructure:"exchange"`
	LOGGING    LoggerConfig     `mapstructure:"logging"`
}

// BaseConfig defines the default configuration options for the node.
type BaseConfig struct {
	DataDirParent string `mapstructure:"data-folder"`
	FileLock      string `mapstructure:"filelock"`
	NetworkID     string `mapstructure:"network-id"`

	CollectMetrics bool `mapstructure:"metrics"`
	MetricsPort    int  `mapstructure:"metrics-port"`
}

// WitnessConfig configures issuance and verification of witnesses.
type WitnessConfig struct {
	// ReleaseDate of the feature. Witnesses dated before it, minus the tolerance, are rejected.
	ReleaseDate      time.Time     `mapstructure:"release-date"`
	ReleaseTolerance time.Duration `mapstructure:"release-tolerance"`
	// Retention of witnesses received from peers. Never below prune.MinRetention.
	Retention      time.Duration `mapstructure:"retention"`
	PruneInterval  time.Duration `mapstructure:"prune-interval"`
	NonceCacheSize int           `mapstructure:"nonce-cache-size"`
	// SyntacticCheck makes the gossip handler verify signatures before relaying.
	SyntacticCheck bool `mapstructure:"syntactic-check"`
	// Accounts are paths to account files owned by this node.
	Accounts []string `mapstructure:"accounts"`
}

// TradeLimitConfig holds the fade-in schedule.
type TradeLimitConfig struct {
	Schedule tradelimit.Schedule `mapstructure:"schedule"`
}

// ExchangeConfig configures the direct exchange protocol.
type ExchangeConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// DataDir returns the directory with the node's data, namespaced by the network id.
func (cfg *Config) DataDir() string {
	return filepath.Join(cfg.DataDirParent, cfg.NetworkID)
}

// Validate checks the whole configuration and reports every problem found.
func (cfg *Config) Validate() error {
	var err error
	if cfg.DataDirParent == "" {
		err = multierr.Append(err, errors.New("main.data-folder is empty"))
	}
	if cfg.NetworkID == "" {
		err = multierr.Append(err, errors.New("main.network-id is empty"))
	}
	if cfg.CollectMetrics && (cfg.MetricsPort <= 0 || cfg.MetricsPort > 65535) {
		err = multierr.Append(err, fmt.Errorf("main.metrics-port %d is out of range", cfg.MetricsPort))
	}
	if cfg.Witness.ReleaseDate.IsZero() {
		err = multierr.Append(err, errors.New("witness.release-date is not set"))
	}
	if cfg.Witness.ReleaseTolerance < 0 {
		err = multierr.Append(err, errors.New("witness.release-tolerance is negative"))
	}
	if cfg.Witness.Retention != 0 && cfg.Witness.Retention < prune.MinRetention {
		err = multierr.Append(err, fmt.Errorf("witness.retention %s is below %s", cfg.Witness.Retention, prune.MinRetention))
	}
	if cfg.Witness.PruneInterval < 0 {
		err = multierr.Append(err, errors.New("witness.prune-interval is negative"))
	}
	if cfg.Witness.NonceCacheSize <= 0 {
		err = multierr.Append(err, errors.New("witness.nonce-cache-size must be positive"))
	}
	if verr := cfg.TradeLimit.Schedule.Validate(); verr != nil {
		err = multierr.Append(err, fmt.Errorf("tradelimit.schedule: %w", verr))
	}
	if verr := cfg.P2P.Validate(); verr != nil {
		err = multierr.Append(err, fmt.Errorf("p2p: %w", verr))
	}
	if cfg.Exchange.Timeout <= 0 {
		err = multierr.Append(err, errors.New("exchange.timeout must be positive"))
	}
	return err
}

// DefaultConfig returns the default configuration for an agewitness node.
func DefaultConfig() Config {
	return Config{
		BaseConfig: defaultBaseConfig(),
		Witness:    DefaultWitnessConfig(),
		TradeLimit: TradeLimitConfig{Schedule: tradelimit.DefaultSchedule()},
		P2P:        p2p.DefaultConfig(),
		Exchange:   ExchangeConfig{Timeout: exchange.DefaultTimeout},
		LOGGING:    DefaultLoggingConfig(),
	}
}

// DefaultWitnessConfig returns the default witness configuration.
func DefaultWitnessConfig() WitnessConfig {
	return WitnessConfig{
		ReleaseDate:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		ReleaseTolerance: witness.DefaultReleaseTolerance,
		Retention:        prune.MinRetention,
		PruneInterval:    time.Hour,
		NonceCacheSize:   witness.DefaultNonceCacheSize,
	}
}

func defaultBaseConfig() BaseConfig {
	return BaseConfig{
		DataDirParent: defaultDataDir,
		FileLock:      filepath.Join(os.TempDir(), "agewitness.lock"),
		NetworkID:     DefaultNetworkID,
		MetricsPort:   1010,
	}
}

// LoadConfig reads the config file into viper. An empty path is a no-op.
func LoadConfig(path string, vip *viper.Viper) error {
	if len(path) == 0 {
		return nil
	}
	vip.SetConfigFile(path)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("can't load config at %s: %w", path, err)
	}
	return nil
}

// Unmarshal decodes values loaded by viper on top of cfg.
func Unmarshal(vip *viper.Viper, cfg *Config) error {
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
	opts := []viper.DecoderConfigOption{
		viper.DecodeHook(hook),
		WithZeroFields(),
		WithIgnoreUntagged(),
		WithErrorUnused(),
	}
	if err := vip.Unmarshal(cfg, opts...); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func WithZeroFields() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ZeroFields = true
	}
}

func WithIgnoreUntagged() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.IgnoreUntaggedFields = true
	}
}

func WithErrorUnused() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
	}
}
