// Package cmd contains flags and build information shared by agewitness executables.
package cmd

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/spacemeshos/go-agewitness/config"
	"github.com/spacemeshos/go-agewitness/config/presets"
)

var (
	// Version is the app's semantic version. Designed to be overwritten by make.
	Version string

	// Branch is the git branch used to build the App. Designed to be overwritten by make.
	Branch string

	// Commit is the git commit used to build the app. Designed to be overwritten by make.
	Commit string
)

// AddFlags adds node flags to the flag set and returns the path to the config file.
func AddFlags(flagSet *pflag.FlagSet, cfg *config.Config) (configPath *string) {
	configPath = flagSet.StringP("config", "c", "", "load configuration from file")
	flagSet.StringVarP(&cfg.Preset, "preset", "p", cfg.Preset,
		fmt.Sprintf("preset overwrites default values of the config. options %+s", presets.Options()))

	/** ======================== BaseConfig Flags ========================== **/
	flagSet.StringVarP(&cfg.DataDirParent, "data-folder", "d",
		cfg.DataDirParent, "specify data directory for agewitness")
	flagSet.StringVar(&cfg.FileLock, "filelock",
		cfg.FileLock, "filesystem lock to prevent running more than one instance")
	flagSet.StringVar(&cfg.NetworkID, "network-id",
		cfg.NetworkID, "network identifier, separates signatures and connections of different networks")
	flagSet.BoolVar(&cfg.CollectMetrics, "metrics",
		cfg.CollectMetrics, "collect node metrics")
	flagSet.IntVar(&cfg.MetricsPort, "metrics-port",
		cfg.MetricsPort, "metric server port")
	flagSet.StringVar(&cfg.LOGGING.Encoder, "log-encoder",
		cfg.LOGGING.Encoder, "log as JSON instead of plain text")

	/** ======================== Witness Flags ========================== **/
	flagSet.StringSliceVar(&cfg.Witness.Accounts, "accounts",
		cfg.Witness.Accounts, "account files to issue witnesses for and to prove to peers")
	flagSet.DurationVar(&cfg.Witness.Retention, "witness-retention",
		cfg.Witness.Retention, "how long witnesses received from peers are kept")
	flagSet.BoolVar(&cfg.Witness.SyntacticCheck, "witness-syntactic-check",
		cfg.Witness.SyntacticCheck, "verify witness signatures before relaying them")

	/** ======================== P2P Flags ========================== **/
	flagSet.StringVar(&cfg.P2P.Listen, "listen",
		cfg.P2P.Listen, "address for listening")
	flagSet.BoolVar(&cfg.P2P.Flood, "flood",
		cfg.P2P.Flood, "flood created messages to all peers")
	flagSet.IntVar(&cfg.P2P.LowPeers, "low-peers",
		cfg.P2P.LowPeers, "low watermark for the number of connections")
	flagSet.IntVar(&cfg.P2P.HighPeers, "high-peers",
		cfg.P2P.HighPeers,
		"high watermark for the number of connections; once reached, connections are pruned until low watermark remains")
	flagSet.StringSliceVar(&cfg.P2P.Bootnodes, "bootnodes",
		cfg.P2P.Bootnodes, "entrypoints into the network")

	/** ======================== Exchange Flags ========================== **/
	flagSet.DurationVar(&cfg.Exchange.Timeout, "exchange-timeout",
		cfg.Exchange.Timeout, "timeout for a single witness exchange")
	return configPath
}
