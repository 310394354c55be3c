package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/go-agewitness/tradelimit"
)

func TestDefaultConfigValid(t *testing.T) {
	def := DefaultConfig()
	require.NoError(t, def.Validate())
	conf := MainnetConfig()
	require.NoError(t, conf.Validate())
}

func TestLoadConfigMissing(t *testing.T) {
	vip := viper.New()
	require.NoError(t, LoadConfig("", vip))
	err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), vip)
	require.ErrorContains(t, err, "can't load config")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[main]
network-id = "aw-test"
metrics = true

[witness]
release-date = "2025-07-01T00:00:00Z"
release-tolerance = "2h"
retention = "1440h"

[[tradelimit.schedule]]
under-one-month = 1000
one-to-two-months = 4000

[[tradelimit.schedule]]
effective-from = "2026-01-01T00:00:00Z"
under-one-month = 3000
one-to-two-months = 6000

[exchange]
timeout = "3s"

[logging]
issuer = "debug"
`), 0o600))

	vip := viper.New()
	require.NoError(t, LoadConfig(path, vip))
	conf := DefaultConfig()
	require.NoError(t, Unmarshal(vip, &conf))
	require.NoError(t, conf.Validate())

	require.Equal(t, "aw-test", conf.NetworkID)
	require.True(t, conf.CollectMetrics)
	require.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), conf.Witness.ReleaseDate.UTC())
	require.Equal(t, 2*time.Hour, conf.Witness.ReleaseTolerance)
	require.Equal(t, 60*24*time.Hour, conf.Witness.Retention)
	require.Equal(t, tradelimit.Schedule{
		{UnderOneMonth: 1000, OneToTwoMonths: 4000},
		{
			EffectiveFrom:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			UnderOneMonth:  3000,
			OneToTwoMonths: 6000,
		},
	}, normalize(conf.TradeLimit.Schedule))
	require.Equal(t, 3*time.Second, conf.Exchange.Timeout)
	require.Equal(t, zapcore.DebugLevel, conf.LOGGING.IssuerLoggerLevel)
	// untouched values keep their defaults
	require.Equal(t, DefaultConfig().P2P, conf.P2P)
}

func normalize(schedule tradelimit.Schedule) tradelimit.Schedule {
	out := make(tradelimit.Schedule, len(schedule))
	for i, step := range schedule {
		step.EffectiveFrom = step.EffectiveFrom.UTC()
		out[i] = step
	}
	return out
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"witness": {"unknown-key": 1}}`), 0o600))
	vip := viper.New()
	require.NoError(t, LoadConfig(path, vip))
	conf := DefaultConfig()
	require.Error(t, Unmarshal(vip, &conf))
}

func TestValidateReportsAll(t *testing.T) {
	conf := DefaultConfig()
	conf.NetworkID = ""
	conf.Witness.ReleaseDate = time.Time{}
	conf.Witness.Retention = time.Hour
	conf.Witness.NonceCacheSize = 0
	conf.TradeLimit.Schedule = nil
	conf.P2P.Listen = "not a multiaddr"
	conf.Exchange.Timeout = 0

	err := conf.Validate()
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 7)
}

func TestDataDir(t *testing.T) {
	conf := DefaultConfig()
	conf.DataDirParent = "/data"
	conf.NetworkID = "aw-x"
	require.Equal(t, filepath.Join("/data", "aw-x"), conf.DataDir())
}
