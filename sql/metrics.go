package sql

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/spacemeshos/go-agewitness/metrics"
)

const subsystem metrics.Subsystem = "database"

// queryDuration in nanoseconds, labeled by the query text.
var queryDuration = subsystem.Histogram("query_duration", "Duration of the query in nanoseconds",
	prometheus.ExponentialBuckets(100_000, 2, 20), "query")
