package statsd

import (
	"time"

	"github.com/spf13/pflag"
)

const (
	// DefaultHost is the default collector host.
	DefaultHost = "127.0.0.1"
	// DefaultPort is the default collector port.
	DefaultPort = 8125
	// DefaultBatchSize is the default number of lines per flush. Zero means every metric is sent
	// as its own datagram without batching.
	DefaultBatchSize = 0
	// DefaultPoolSize is the default number of workers draining the batch queue.
	DefaultPoolSize = 1
	// DefaultQueueDepthFactor is how many batches the queue holds when no max depth is configured.
	DefaultQueueDepthFactor = 10
	// DefaultMaxPacketSize is the default maximum size of a datagram. Zero disables the limit.
	DefaultMaxPacketSize = 0
	// DefaultDropLogInterval is the default minimum time between two queue capacity warnings.
	DefaultDropLogInterval = 1 * time.Second
)

const (
	// ParamHost is the name of parameter with the collector host.
	ParamHost = "host"
	// ParamPort is the name of parameter with the collector port.
	ParamPort = "port"
	// ParamNamespace is the name of parameter with the namespace prefixed to every metric.
	ParamNamespace = "namespace"
	// ParamBatchSize is the name of parameter with the number of lines per flush.
	ParamBatchSize = "batch-size"
	// ParamMaxQueueDepth is the name of parameter with the maximum number of queued lines.
	ParamMaxQueueDepth = "max-queue-depth"
	// ParamPoolSize is the name of parameter with the number of workers.
	ParamPoolSize = "pool-size"
	// ParamMaxPacketSize is the name of parameter with the maximum datagram size.
	ParamMaxPacketSize = "max-packet-size"
	// ParamDropLogInterval is the name of parameter with the minimum time between capacity warnings.
	ParamDropLogInterval = "drop-log-interval"
)

// AddFlags adds flags to the specified FlagSet.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(ParamHost, DefaultHost, "Collector host")
	fs.Int(ParamPort, DefaultPort, "Collector port")
	fs.String(ParamNamespace, "", "Namespace all metrics")
	fs.Int(ParamBatchSize, DefaultBatchSize, "Number of lines per datagram, 0 sends every metric immediately")
	fs.Int(ParamMaxQueueDepth, 0, "Maximum number of queued lines, 0 means 10 times the batch size")
	fs.Int(ParamPoolSize, DefaultPoolSize, "Number of workers flushing batches")
	fs.Int(ParamMaxPacketSize, DefaultMaxPacketSize, "Maximum datagram size in bytes, 0 to disable")
	fs.Duration(ParamDropLogInterval, DefaultDropLogInterval, "Minimum time between queue capacity warnings")
}
