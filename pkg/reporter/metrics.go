package reporter

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsSubsystem = "reporter"

// RegisterMetrics exports the Reporter's counters to reg. The collectors read the live counters,
// nothing is copied on the hot path.
func (r *Reporter) RegisterMetrics(reg prometheus.Registerer, namespace string) error {
	counter := func(name, help string, v *uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(atomic.LoadUint64(v))
		})
	}
	gauge := func(name, help string, f func() int) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(f())
		})
	}

	collectors := []prometheus.Collector{
		counter("lines_enqueued_total", "Lines admitted into the queue.", &r.enqueued),
		counter("lines_dropped_total", "Lines rejected because the queue was full or stopped.", &r.dropped),
		counter("flushes_total", "Non-empty batches flushed.", &r.flushes),
		counter("datagrams_total", "Datagrams sent or attempted.", &r.datagrams),
		counter("lines_flushed_total", "Lines included in datagrams.", &r.linesFlushed),
		counter("send_errors_total", "Datagrams which failed to send.", &r.sendErrors),
		gauge("queue_length", "Lines waiting in the queue.", func() int { return len(r.queue) }),
		gauge("queue_capacity", "Maximum number of lines the queue holds.", func() int { return cap(r.queue) }),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register reporter metrics: %v", err)
		}
	}
	return nil
}
