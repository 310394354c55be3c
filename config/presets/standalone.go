package presets

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/go-agewitness/config"
)

func init() {
	register("standalone", standalone())
}

// standalone runs a single node without peers, useful for local testing.
func standalone() config.Config {
	conf := config.DefaultConfig()
	conf.NetworkID = "aw-standalone"
	conf.DataDirParent = filepath.Join(os.TempDir(), "agewitness")
	conf.FileLock = filepath.Join(conf.DataDirParent, "LOCK")

	conf.Witness.ReleaseDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	conf.Witness.PruneInterval = 10 * time.Minute
	conf.Witness.NonceCacheSize = 1024

	conf.P2P.Listen = "/ip4/127.0.0.1/tcp/0"
	conf.P2P.Bootnodes = nil
	conf.P2P.LowPeers = 0
	conf.P2P.HighPeers = 10
	conf.P2P.Flood = false

	conf.Exchange.Timeout = 5 * time.Second
	conf.LOGGING.AppLoggerLevel = zapcore.DebugLevel
	return conf
}
