package witness

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/spacemeshos/go-agewitness/metrics"
)

const subsystem metrics.Subsystem = "witness"

var (
	storeSize = subsystem.Gauge("store_size", "Number of witnesses in the store").WithLabelValues()

	issued         = subsystem.Counter("issued", "Number of witnesses issued by this node", "result")
	issuedNew      = issued.WithLabelValues("new")
	issuedExisting = issued.WithLabelValues("existing")
	issuedFailed   = issued.WithLabelValues("failed")

	published         = subsystem.Counter("published", "Number of witnesses handed to the broadcaster", "result")
	publishedOk       = published.WithLabelValues("ok")
	publishedFailed   = published.WithLabelValues("failed")
	publishedDeferred = published.WithLabelValues("deferred")

	verifications = subsystem.Counter("verifications", "Number of witness verifications by result reason", "reason")

	acceptedAge = subsystem.Histogram("accepted_age_days", "Age of accepted witnesses in days",
		prometheus.LinearBuckets(0, 15, 12),
	).WithLabelValues()

	gossip          = subsystem.Counter("gossip", "Number of received witness gossip messages by result", "result")
	gossipNew       = gossip.WithLabelValues("new")
	gossipKnown     = gossip.WithLabelValues("known")
	gossipMalformed = gossip.WithLabelValues("malformed")
)
