package peer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/spacemeshos/go-treesync/metrics"
)

const (
	subsystem = "peer"

	dirSend    = "send"
	dirReceive = "receive"

	outcomeOK   = "ok"
	outcomeFail = "fail"
)

var (
	traversals = metrics.NewCounter(
		"traversals",
		subsystem,
		"Number of tree traversals",
		[]string{"dir", "outcome"},
	)
	messages = metrics.NewCounter(
		"messages",
		subsystem,
		"Number of messages sent or received",
		[]string{"dir"},
	)
	batches = metrics.NewCounter(
		"batches",
		subsystem,
		"Number of message batches sent or received",
		[]string{"dir"},
	)
	wireBytes = metrics.NewCounter(
		"bytes",
		subsystem,
		"Number of bytes sent or received over the wire",
		[]string{"dir"},
	)
	traversalDuration = metrics.NewHistogramWithBuckets(
		"traversal_duration_seconds",
		subsystem,
		"Duration of a tree traversal",
		[]string{"dir"},
		prometheus.ExponentialBuckets(0.001, 2, 16),
	)
	refTableSize = metrics.NewGauge(
		"ref_table_size",
		subsystem,
		"Number of entries in the reference table after the last traversal",
		[]string{"dir"},
	)
)
