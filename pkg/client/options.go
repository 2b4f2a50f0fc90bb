package client

import (
	"github.com/tilinna/clock"

	"github.com/hindenbug/statsd/pkg/format"
	"github.com/hindenbug/statsd/pkg/transport"
	"github.com/hindenbug/statsd/pkg/util"
)

type options struct {
	socket  transport.Socket
	sampler format.Sampler
	clock   clock.Clock
	backoff util.BackoffFactory
}

// Option configures optional parts of a Client.
type Option func(*options)

// WithSocket makes the client send through socket instead of dialing the configured address.
// The client takes ownership of socket and closes it on Close.
func WithSocket(socket transport.Socket) Option {
	return func(o *options) {
		o.socket = socket
	}
}

// WithSampler replaces the random sampler.
func WithSampler(sampler format.Sampler) Option {
	return func(o *options) {
		o.sampler = sampler
	}
}

// WithClock sets the clock used by Time. By default the clock attached to the context passed
// to New is used.
func WithClock(clck clock.Clock) Option {
	return func(o *options) {
		o.clock = clck
	}
}

// WithBackoff sets the retry policy for dialing the collector.
func WithBackoff(bf util.BackoffFactory) Option {
	return func(o *options) {
		o.backoff = bf
	}
}
