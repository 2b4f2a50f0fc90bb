package statsd

import (
	"context"
	"time"
)

// MetricType is an enumeration of all the possible types of metric line.
type MetricType byte

const (
	_ = iota
	// COUNTER is statsd counter type
	COUNTER MetricType = iota
	// TIMER is statsd timer type
	TIMER
	// GAUGE is statsd gauge type
	GAUGE
)

func (m MetricType) String() string {
	switch m {
	case GAUGE:
		return "gauge"
	case TIMER:
		return "timer"
	case COUNTER:
		return "counter"
	}
	return "unknown"
}

// Symbol returns the wire representation of the type.
func (m MetricType) Symbol() string {
	switch m {
	case GAUGE:
		return "g"
	case TIMER:
		return "ms"
	case COUNTER:
		return "c"
	}
	return ""
}

// ParseMetricType converts a wire symbol back into a MetricType. ok is false for unknown symbols.
func ParseMetricType(symbol string) (t MetricType, ok bool) {
	switch symbol {
	case "c":
		return COUNTER, true
	case "g":
		return GAUGE, true
	case "ms":
		return TIMER, true
	}
	return 0, false
}

// Sender is the application facing API. Every method is fire-and-forget: delivery failures and
// dropped lines are never reported to the caller.
type Sender interface {
	// Increment adds 1 to a counter.
	Increment(stat string, sampleRate float64)
	// Decrement subtracts 1 from a counter.
	Decrement(stat string, sampleRate float64)
	// Count adds delta to a counter.
	Count(stat string, delta int64, sampleRate float64)
	// Gauge records an absolute value.
	Gauge(stat string, value float64, sampleRate float64)
	// Timing records a duration in milliseconds.
	Timing(stat string, ms int64, sampleRate float64)
	// TimingDuration records a duration with sub-millisecond precision.
	TimingDuration(stat string, d time.Duration, sampleRate float64)
	// Time runs f and records how long it took.
	Time(stat string, sampleRate float64, f func())
	// Close flushes anything buffered and releases the socket.
	Close() error
}

// Runnable is a long running function intended to be launched in a goroutine.
type Runnable func(context.Context)
