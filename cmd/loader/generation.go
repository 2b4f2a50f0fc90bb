package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/viper"

	"github.com/hindenbug/statsd"
)

type metricGenerator struct {
	sent uint64 // atomic

	rnd             *rand.Rand
	sender          statsd.Sender
	remaining       uint64
	stat            string
	nameCardinality int
	types           []statsd.MetricType
	sampleRate      float64
	valueLimit      int
}

func newGeneratorsFromViper(v *viper.Viper) ([]*metricGenerator, error) {
	workers := v.GetInt(ParamWorkers)
	if workers < 1 {
		return nil, errors.New(ParamWorkers + " must be positive")
	}
	nameCardinality := v.GetInt(ParamNameCardinality)
	if nameCardinality < 1 {
		return nil, errors.New(ParamNameCardinality + " must be positive")
	}
	valueLimit := v.GetInt(ParamValueLimit)
	if valueLimit < 1 {
		return nil, errors.New(ParamValueLimit + " must be positive")
	}
	types, err := parseTypes(v.GetString(ParamType))
	if err != nil {
		return nil, err
	}

	count := v.GetUint64(ParamCount)
	generators := make([]*metricGenerator, 0, workers)
	for i := 0; i < workers; i++ {
		share := count / uint64(workers)
		if uint64(i) < count%uint64(workers) {
			share++
		}
		generators = append(generators, &metricGenerator{
			rnd:             rand.New(rand.NewSource(rand.Int63())),
			remaining:       share,
			stat:            v.GetString(ParamStat),
			nameCardinality: nameCardinality,
			types:           types,
			sampleRate:      v.GetFloat64(ParamSampleRate),
			valueLimit:      valueLimit,
		})
	}
	return generators, nil
}

// parseTypes parses a comma separated list of type symbols. "mixed" selects every type.
func parseTypes(s string) ([]statsd.MetricType, error) {
	if s == "mixed" {
		return []statsd.MetricType{statsd.COUNTER, statsd.GAUGE, statsd.TIMER}, nil
	}
	var types []statsd.MetricType
	for _, symbol := range strings.Split(s, ",") {
		t, ok := statsd.ParseMetricType(strings.TrimSpace(symbol))
		if !ok {
			return nil, fmt.Errorf("%s (%s) not one of c, g, ms or mixed", ParamType, symbol)
		}
		types = append(types, t)
	}
	return types, nil
}

func (mg *metricGenerator) run(ctx context.Context) {
	for mg.remaining > 0 && ctx.Err() == nil {
		mg.next()
	}
}

func (mg *metricGenerator) name() string {
	if mg.nameCardinality <= 1 {
		return mg.stat
	}
	return mg.stat + "." + strconv.Itoa(mg.rnd.Intn(mg.nameCardinality))
}

func (mg *metricGenerator) next() {
	// Only this goroutine writes remaining.
	mg.remaining--
	name := mg.name()
	switch mg.types[mg.rnd.Intn(len(mg.types))] {
	case statsd.COUNTER:
		mg.sender.Increment(name, mg.sampleRate)
	case statsd.GAUGE:
		mg.sender.Gauge(name, float64(mg.rnd.Intn(mg.valueLimit)), mg.sampleRate)
	case statsd.TIMER:
		d := time.Duration(mg.rnd.Int63n(int64(mg.valueLimit) * int64(time.Millisecond)))
		mg.sender.TimingDuration(name, d, mg.sampleRate)
	}
	atomic.AddUint64(&mg.sent, 1)
}
