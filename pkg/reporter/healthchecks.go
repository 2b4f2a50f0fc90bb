package reporter

import (
	"fmt"
	"sync/atomic"

	"github.com/hindenbug/statsd/pkg/healthcheck"
)

// HealthChecks reports unhealthy while the queue is full and lines are being dropped.
func (r *Reporter) HealthChecks() []healthcheck.HealthcheckFunc {
	return []healthcheck.HealthcheckFunc{r.checkQueue}
}

// DeepChecks reports unhealthy while the most recent datagram failed to send.
func (r *Reporter) DeepChecks() []healthcheck.HealthcheckFunc {
	return []healthcheck.HealthcheckFunc{r.checkSend}
}

func (r *Reporter) checkQueue() (string, healthcheck.HealthyStatus) {
	length, capacity := len(r.queue), cap(r.queue)
	if length >= capacity {
		return fmt.Sprintf("reporter queue full (%d/%d)", length, capacity), healthcheck.Unhealthy
	}
	return fmt.Sprintf("reporter queue %d/%d", length, capacity), healthcheck.Healthy
}

func (r *Reporter) checkSend() (string, healthcheck.HealthyStatus) {
	if atomic.LoadInt32(&r.lastSendFailed) != 0 {
		return fmt.Sprintf("reporter failing to send (%d errors)", atomic.LoadUint64(&r.sendErrors)), healthcheck.Unhealthy
	}
	return "reporter sending", healthcheck.Healthy
}
