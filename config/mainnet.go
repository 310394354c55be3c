package config

import (
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/go-agewitness/tradelimit"
)

// MainnetConfig is the configuration of the public network.
func MainnetConfig() Config {
	conf := DefaultConfig()
	conf.NetworkID = DefaultNetworkID
	conf.CollectMetrics = true
	conf.Witness.SyntacticCheck = true
	conf.Witness.Retention = 90 * 24 * time.Hour

	// restrictions for young accounts are relaxed a year after release
	conf.TradeLimit.Schedule = tradelimit.Schedule{
		{UnderOneMonth: 2_500, OneToTwoMonths: 5_000},
		{
			EffectiveFrom:  conf.Witness.ReleaseDate.AddDate(1, 0, 0),
			UnderOneMonth:  5_000,
			OneToTwoMonths: 7_500,
		},
	}

	conf.P2P.LowPeers = 40
	conf.P2P.HighPeers = 100
	conf.LOGGING.P2PLoggerLevel = zapcore.ErrorLevel
	conf.LOGGING.Encoder = JSONLogEncoder
	return conf
}
