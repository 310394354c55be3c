package prune

import "github.com/spacemeshos/go-agewitness/metrics"

const subsystem metrics.Subsystem = "prune"

var (
	pruneLatency   = subsystem.Histogram("prune_seconds", "prune time in seconds", metrics.LatencyBuckets, "step")
	witnessLatency = pruneLatency.WithLabelValues("witnesses")

	prunedWitnesses = subsystem.Counter("pruned_witnesses",
		"number of witnesses removed from the database").WithLabelValues()
)
