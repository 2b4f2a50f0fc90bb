package format

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSamplerBounds(t *testing.T) {
	t.Parallel()
	s := NewSampler(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		assert.True(t, s.Sample(1))
		assert.True(t, s.Sample(1.5))
		assert.False(t, s.Sample(0))
		assert.False(t, s.Sample(-1))
	}
}

func TestSamplerRate(t *testing.T) {
	t.Parallel()
	const n = 100000
	s := NewSampler(rand.NewSource(42))
	sent := 0
	for i := 0; i < n; i++ {
		if s.Sample(0.5) {
			sent++
		}
	}
	assert.InDelta(t, 0.5, float64(sent)/n, 0.01)
}

func TestSamplerConcurrent(t *testing.T) {
	t.Parallel()
	const perWorker = 10000
	const workers = 8
	s := NewSampler(nil)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sent := 0
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			local := 0
			for j := 0; j < perWorker; j++ {
				if s.Sample(0.25) {
					local++
				}
			}
			mu.Lock()
			sent += local
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.InDelta(t, 0.25, float64(sent)/(perWorker*workers), 0.02)
}
