package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hindenbug/statsd/internal/fixtures"
	"github.com/hindenbug/statsd/pkg/healthcheck"
	"github.com/hindenbug/statsd/pkg/ready"
	"github.com/hindenbug/statsd/pkg/web"
)

type staticChecks struct {
	health []healthcheck.HealthcheckFunc
	deep   []healthcheck.HealthcheckFunc
}

func (s staticChecks) HealthChecks() []healthcheck.HealthcheckFunc { return s.health }
func (s staticChecks) DeepChecks() []healthcheck.HealthcheckFunc   { return s.deep }

func check(msg string, status healthcheck.HealthyStatus) healthcheck.HealthcheckFunc {
	return func() (string, healthcheck.HealthyStatus) {
		return msg, status
	}
}

func get(t *testing.T, h http.Handler, path string) (int, []byte) {
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, body
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()
	s, err := web.NewServer(fixtures.NewTestLogger(t), "127.0.0.1:0", nil, staticChecks{
		health: []healthcheck.HealthcheckFunc{check("queue ok", healthcheck.Healthy)},
		deep:   []healthcheck.HealthcheckFunc{check("send failing", healthcheck.Unhealthy)},
	})
	require.NoError(t, err)

	code, body := get(t, s.Handler(), "/healthcheck")
	assert.Equal(t, http.StatusOK, code)
	var result map[string][]string
	require.NoError(t, jsoniter.Unmarshal(body, &result))
	assert.Equal(t, map[string][]string{"ok": {"queue ok"}, "failed": {}}, result)

	code, body = get(t, s.Handler(), "/deepcheck")
	assert.Equal(t, http.StatusInternalServerError, code)
	require.NoError(t, jsoniter.Unmarshal(body, &result))
	assert.Equal(t, map[string][]string{"ok": {}, "failed": {"send failing"}}, result)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "Test."})
	reg.MustRegister(counter)
	counter.Add(3)

	s, err := web.NewServer(fixtures.NewTestLogger(t), "127.0.0.1:0", reg)
	require.NoError(t, err)

	code, body := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "test_total 3")
}

func TestMetricsDisabledWithoutGatherer(t *testing.T) {
	t.Parallel()
	s, err := web.NewServer(nil, "127.0.0.1:0", nil)
	require.NoError(t, err)

	code, body := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not found", string(body))
}

func TestServerShutsDown(t *testing.T) {
	t.Parallel()
	s, err := web.NewServer(fixtures.NewTestLogger(t), "127.0.0.1:0", nil)
	require.NoError(t, err)

	var wgReady sync.WaitGroup
	wgReady.Add(1)
	ctx, cancel := context.WithCancel(ready.WithWaitGroup(context.Background(), &wgReady))
	chDone := make(chan struct{})
	go func() {
		defer close(chDone)
		s.Run(ctx)
	}()
	wgReady.Wait()
	require.NotEmpty(t, s.Addr())

	resp, err := http.Get("http://" + s.Addr() + "/healthcheck")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case <-chDone:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
