package pubsub

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/spacemeshos/go-agewitness/metrics"
)

const subsystem metrics.Subsystem = "gossip"

// processedMessagesDuration in nanoseconds to process a message. Labeled by topic and result.
var processedMessagesDuration = subsystem.Histogram(
	"processed_messages_duration",
	"Duration in nanoseconds to process a message",
	prometheus.ExponentialBuckets(100_000, 4, 10),
	"topic", "result",
)
