package sink

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics exports the Receiver's counters to reg.
func (r *Receiver) RegisterMetrics(reg prometheus.Registerer, namespace string) error {
	counter := func(name, help string, v *uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(atomic.LoadUint64(v))
		})
	}
	collectors := []prometheus.Collector{
		counter("packets_received_total", "Datagrams received.", &r.packetsReceived),
		counter("lines_received_total", "Lines parsed successfully.", &r.linesReceived),
		counter("bad_lines_total", "Lines which failed to parse.", &r.badLines),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "last_packet_timestamp_seconds",
			Help:      "Unix time the last datagram was received at.",
		}, func() float64 {
			return float64(atomic.LoadInt64(&r.lastPacket)) / 1e9
		}),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register sink metrics: %v", err)
		}
	}
	return nil
}
