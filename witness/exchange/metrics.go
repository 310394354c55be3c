package exchange

import "github.com/spacemeshos/go-agewitness/metrics"

const subsystem metrics.Subsystem = "exchange"

var (
	serverRequests        = subsystem.Counter("server_requests", "Number of challenges answered by result", "result")
	serverRequestOk       = serverRequests.WithLabelValues("ok")
	serverRequestRejected = serverRequests.WithLabelValues("rejected")
	serverRequestFailed   = serverRequests.WithLabelValues("failed")

	clientFailed = subsystem.Counter("client_failed",
		"Number of exchanges that failed before verification").WithLabelValues()

	clientLatency = subsystem.Histogram("client_latency_seconds", "Duration of completed exchanges",
		metrics.LatencyBuckets).WithLabelValues()
)
