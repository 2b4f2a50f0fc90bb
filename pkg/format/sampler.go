package format

import (
	"math/rand"
	"sync"
	"time"
)

// Sampler decides whether a sampled metric event is transmitted.
type Sampler interface {
	// Sample returns true if an event with the given sample rate should be sent.
	Sample(sampleRate float64) bool
}

// SamplerFunc type is an adapter to allow the use of ordinary functions as Sampler.
type SamplerFunc func(sampleRate float64) bool

// Sample calls f(sampleRate).
func (f SamplerFunc) Sample(sampleRate float64) bool {
	return f(sampleRate)
}

// AlwaysSample sends every event regardless of its rate.
var AlwaysSample = SamplerFunc(func(float64) bool { return true })

type randSampler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSampler returns a Sampler drawing from src. A nil src is seeded from the current time.
// The returned Sampler is safe for concurrent use.
func NewSampler(src rand.Source) Sampler {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &randSampler{
		rnd: rand.New(src),
	}
}

func (s *randSampler) Sample(sampleRate float64) bool {
	if sampleRate >= 1 {
		return true
	}
	if sampleRate <= 0 {
		return false
	}
	s.mu.Lock()
	draw := s.rnd.Float64()
	s.mu.Unlock()
	return draw < sampleRate
}
