package main

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hindenbug/statsd"
)

type countingSender struct {
	mu     sync.Mutex
	byType map[statsd.MetricType]int
	names  map[string]struct{}
}

func newCountingSender() *countingSender {
	return &countingSender{
		byType: map[statsd.MetricType]int{},
		names:  map[string]struct{}{},
	}
}

func (cs *countingSender) record(stat string, t statsd.MetricType) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.byType[t]++
	cs.names[stat] = struct{}{}
}

func (cs *countingSender) Increment(stat string, sampleRate float64) { cs.record(stat, statsd.COUNTER) }
func (cs *countingSender) Decrement(stat string, sampleRate float64) { cs.record(stat, statsd.COUNTER) }
func (cs *countingSender) Count(stat string, delta int64, sampleRate float64) {
	cs.record(stat, statsd.COUNTER)
}
func (cs *countingSender) Gauge(stat string, value float64, sampleRate float64) {
	cs.record(stat, statsd.GAUGE)
}
func (cs *countingSender) Timing(stat string, ms int64, sampleRate float64) {
	cs.record(stat, statsd.TIMER)
}
func (cs *countingSender) TimingDuration(stat string, d time.Duration, sampleRate float64) {
	cs.record(stat, statsd.TIMER)
}
func (cs *countingSender) Time(stat string, sampleRate float64, f func()) {
	f()
	cs.record(stat, statsd.TIMER)
}
func (cs *countingSender) Close() error { return nil }

func TestParseTypes(t *testing.T) {
	t.Parallel()
	types, err := parseTypes("c")
	require.NoError(t, err)
	assert.Equal(t, []statsd.MetricType{statsd.COUNTER}, types)

	types, err = parseTypes("g, ms")
	require.NoError(t, err)
	assert.Equal(t, []statsd.MetricType{statsd.GAUGE, statsd.TIMER}, types)

	types, err = parseTypes("mixed")
	require.NoError(t, err)
	assert.Len(t, types, 3)

	_, err = parseTypes("s")
	assert.Error(t, err)
}

func newTestViper() *viper.Viper {
	v := viper.New()
	v.Set(ParamCount, 1001)
	v.Set(ParamWorkers, 4)
	v.Set(ParamStat, "load")
	v.Set(ParamType, "mixed")
	v.Set(ParamSampleRate, 1.0)
	v.Set(ParamNameCardinality, 5)
	v.Set(ParamValueLimit, 10)
	return v
}

func TestGeneratorsSplitCount(t *testing.T) {
	t.Parallel()
	generators, err := newGeneratorsFromViper(newTestViper())
	require.NoError(t, err)
	require.Len(t, generators, 4)

	total := uint64(0)
	for _, g := range generators {
		total += g.remaining
	}
	assert.EqualValues(t, 1001, total)
	assert.EqualValues(t, 251, generators[0].remaining)
	assert.EqualValues(t, 250, generators[3].remaining)
}

func TestGeneratorsRejectInvalid(t *testing.T) {
	t.Parallel()
	for _, param := range []string{ParamWorkers, ParamNameCardinality, ParamValueLimit} {
		v := newTestViper()
		v.Set(param, 0)
		_, err := newGeneratorsFromViper(v)
		assert.Error(t, err, param)
	}
}

func TestGeneratorRun(t *testing.T) {
	t.Parallel()
	generators, err := newGeneratorsFromViper(newTestViper())
	require.NoError(t, err)

	sender := newCountingSender()
	for _, g := range generators {
		g.sender = sender
		g.run(context.Background())
	}

	assert.EqualValues(t, 1001, totalSent(generators))
	total := 0
	for _, n := range sender.byType {
		total += n
	}
	assert.Equal(t, 1001, total)
	assert.Len(t, sender.byType, 3)
	assert.LessOrEqual(t, len(sender.names), 5)
	for name := range sender.names {
		assert.True(t, strings.HasPrefix(name, "load."), name)
	}
}

func TestGeneratorStopsOnCancel(t *testing.T) {
	t.Parallel()
	generators, err := newGeneratorsFromViper(newTestViper())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := generators[0]
	g.sender = newCountingSender()
	g.run(ctx)
	assert.Zero(t, totalSent(generators))
}
