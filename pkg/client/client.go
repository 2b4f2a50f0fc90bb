// Package client provides the application facing statsd Sender.
//
// A Client created with a zero BatchSize formats every metric and sends it straight away as its
// own datagram. With a positive BatchSize metrics are queued and flushed in batches by a
// reporter.Reporter running in the background.
package client

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ash2k/stager/wait"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tilinna/clock"

	"github.com/hindenbug/statsd"
	"github.com/hindenbug/statsd/pkg/format"
	"github.com/hindenbug/statsd/pkg/reporter"
	"github.com/hindenbug/statsd/pkg/transport"
	"github.com/hindenbug/statsd/pkg/util"
)

// Client sends metrics to a statsd collector. All methods are safe for concurrent use and never
// report delivery failures to the caller.
type Client struct {
	closed int32 // atomic

	logger    logrus.FieldLogger
	namespace string
	socket    transport.Socket
	sampler   format.Sampler
	clock     clock.Clock
	reporter  *reporter.Reporter

	cancel    context.CancelFunc
	wg        wait.Group
	closeOnce sync.Once
	closeErr  error
}

var _ statsd.Sender = (*Client)(nil)

// New creates a Client. ctx bounds dialing the collector and the lifetime of the background
// workers in batched mode; Close must be called to flush and release the socket.
func New(ctx context.Context, logger logrus.FieldLogger, cfg Config, opts ...Option) (*Client, error) {
	logger = util.LoggerOrNull(logger)
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.BatchSize < 0 {
		return nil, fmt.Errorf("%s must be zero or positive", statsd.ParamBatchSize)
	}
	if o.sampler == nil {
		o.sampler = format.NewSampler(nil)
	}
	if o.clock == nil {
		o.clock = clock.FromContext(ctx)
	}

	socket := o.socket
	if socket == nil {
		var err error
		socket, err = transport.Dial(ctx, logger, cfg.Address(), o.backoff)
		if err != nil {
			return nil, err
		}
	}

	c := &Client{
		logger:    logger,
		namespace: cfg.Namespace,
		socket:    socket,
		sampler:   o.sampler,
		clock:     o.clock,
	}
	if cfg.BatchSize == 0 {
		logger.WithField("address", cfg.Address()).Debug("sending metrics directly")
		return c, nil
	}

	r, err := reporter.New(logger, socket, reporter.Config{
		FlushThreshold:  cfg.BatchSize,
		MaxQueueDepth:   cfg.MaxQueueDepth,
		PoolSize:        cfg.PoolSize,
		MaxPacketSize:   cfg.MaxPacketSize,
		DropLogInterval: cfg.DropLogInterval,
	})
	if err != nil {
		_ = socket.Close()
		return nil, err
	}
	ctxRun, cancel := context.WithCancel(ctx)
	c.reporter = r
	c.cancel = cancel
	c.wg.StartWithContext(ctxRun, r.Run)
	return c, nil
}

// NewFromViper creates a Client configured from v. The dial retry policy is read from v as
// well, options passed in opts take precedence.
func NewFromViper(ctx context.Context, logger logrus.FieldLogger, v *viper.Viper, opts ...Option) (*Client, error) {
	bf, err := util.GetRetryFromViper(v)
	if err != nil {
		return nil, err
	}
	return New(ctx, logger, ConfigFromViper(v), append([]Option{WithBackoff(bf)}, opts...)...)
}

// Reporter returns the batching engine, nil in direct mode.
func (c *Client) Reporter() *reporter.Reporter {
	return c.reporter
}

func (c *Client) Increment(stat string, sampleRate float64) {
	c.Count(stat, 1, sampleRate)
}

func (c *Client) Decrement(stat string, sampleRate float64) {
	c.Count(stat, -1, sampleRate)
}

func (c *Client) Count(stat string, delta int64, sampleRate float64) {
	c.send(stat, strconv.FormatInt(delta, 10), statsd.COUNTER, sampleRate)
}

func (c *Client) Gauge(stat string, value float64, sampleRate float64) {
	c.send(stat, strconv.FormatFloat(value, 'f', -1, 64), statsd.GAUGE, sampleRate)
}

func (c *Client) Timing(stat string, ms int64, sampleRate float64) {
	c.send(stat, strconv.FormatInt(ms, 10), statsd.TIMER, sampleRate)
}

func (c *Client) TimingDuration(stat string, d time.Duration, sampleRate float64) {
	ms := float64(d) / float64(time.Millisecond)
	c.send(stat, strconv.FormatFloat(ms, 'f', -1, 64), statsd.TIMER, sampleRate)
}

// Time runs f and records its duration rounded to the nearest millisecond.
func (c *Client) Time(stat string, sampleRate float64, f func()) {
	start := c.clock.Now()
	f()
	elapsed := c.clock.Now().Sub(start)
	c.Timing(stat, int64(math.Round(float64(elapsed)/float64(time.Millisecond))), sampleRate)
}

func (c *Client) send(stat, value string, t statsd.MetricType, sampleRate float64) {
	if !c.sampler.Sample(sampleRate) {
		return
	}
	line := format.Format(c.namespace, stat, value, t, sampleRate)
	if c.reporter != nil {
		c.reporter.Enqueue(line)
		return
	}
	if atomic.LoadInt32(&c.closed) != 0 {
		c.logger.WithField("line", line).Debug("client closed, dropping line")
		return
	}
	if err := c.socket.Send([]byte(line)); err != nil {
		c.logger.WithError(err).Error("failed to send metric")
	}
}

// Close stops accepting metrics, flushes everything queued, waits for the workers to exit and
// closes the socket. It is safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		atomic.StoreInt32(&c.closed, 1)
		if c.cancel != nil {
			c.cancel()
			c.wg.Wait()
		}
		c.closeErr = c.socket.Close()
	})
	return c.closeErr
}
