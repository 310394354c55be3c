package p2p

import "github.com/spacemeshos/go-agewitness/metrics"

const subsystem metrics.Subsystem = "p2p"

var connectedPeers = subsystem.Gauge("connected_peers", "Number of connected peers")
