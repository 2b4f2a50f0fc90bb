package reporter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hindenbug/statsd/internal/fixtures"
	"github.com/hindenbug/statsd/pkg/healthcheck"
)

func TestQueueHealthCheck(t *testing.T) {
	t.Parallel()
	r, err := New(nil, &fixtures.CapturingSocket{}, Config{FlushThreshold: 1, MaxQueueDepth: 2})
	require.NoError(t, err)
	checks := r.HealthChecks()
	require.Len(t, checks, 1)

	msg, status := checks[0]()
	assert.Equal(t, healthcheck.Healthy, status)
	assert.Equal(t, "reporter queue 0/2", msg)

	r.Enqueue("a")
	r.Enqueue("b")
	msg, status = checks[0]()
	assert.Equal(t, healthcheck.Unhealthy, status)
	assert.Equal(t, "reporter queue full (2/2)", msg)
}

func TestSendDeepCheck(t *testing.T) {
	t.Parallel()
	socket := &fixtures.CapturingSocket{Err: errors.New("refused")}
	r, err := New(nil, socket, Config{FlushThreshold: 1})
	require.NoError(t, err)
	checks := r.DeepChecks()
	require.Len(t, checks, 1)

	_, status := checks[0]()
	assert.Equal(t, healthcheck.Healthy, status)

	r.flush(0, []string{"a"})
	msg, status := checks[0]()
	assert.Equal(t, healthcheck.Unhealthy, status)
	assert.Equal(t, "reporter failing to send (1 errors)", msg)

	socket.Err = nil
	r.flush(0, []string{"b"})
	_, status = checks[0]()
	assert.Equal(t, healthcheck.Healthy, status)
}
