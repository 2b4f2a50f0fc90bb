package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"github.com/tilinna/clock"

	"github.com/hindenbug/statsd/pkg/util"
)

// Socket is a best-effort datagram sink. Send must be safe for concurrent use, each call is
// delivered as exactly one datagram (or not at all). Send must not retain payload after it returns.
type Socket interface {
	Send(payload []byte) error
	Close() error
}

// DialFunc is an indirection layer over net.Dial() to allow for different implementations.
type DialFunc func(network, address string) (net.Conn, error)

type udpSocket struct {
	logger  logrus.FieldLogger
	address string
	conn    net.Conn

	closeOnce sync.Once
	closeErr  error
}

// Dial creates a connected UDP Socket for address. Failures to resolve or connect are retried
// according to the BackoffFactory using the clock attached to ctx; a nil factory means no retries.
func Dial(ctx context.Context, logger logrus.FieldLogger, address string, bf util.BackoffFactory) (Socket, error) {
	return DialWith(ctx, logger, address, bf, net.Dial)
}

// DialWith is Dial with a custom DialFunc.
func DialWith(ctx context.Context, logger logrus.FieldLogger, address string, bf util.BackoffFactory, dial DialFunc) (Socket, error) {
	logger = util.LoggerOrNull(logger)
	if bf == nil {
		bf = util.NoRetries
	}
	clck := clock.FromContext(ctx)
	bo := bf(clck)
	for {
		conn, err := dial("udp", address)
		if err == nil {
			logger.WithField("address", address).Debug("connected")
			return &udpSocket{
				logger:  logger,
				address: address,
				conn:    conn,
			}, nil
		}

		next := bo.NextBackOff()
		if next == backoff.Stop {
			return nil, fmt.Errorf("failed to connect to %s: %v", address, err)
		}

		logger.WithFields(logrus.Fields{
			"address": address,
			"sleep":   next,
			"error":   err,
		}).Warn("failed to connect")

		timer := clck.NewTimer(next)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// Send writes payload as a single datagram.
func (s *udpSocket) Send(payload []byte) error {
	s.logger.Debugf("datagram: %s", payload)
	if _, err := s.conn.Write(payload); err != nil {
		return fmt.Errorf("error sending to %s: %v", s.address, err)
	}
	return nil
}

// Close releases the underlying connection. It is safe to call more than once.
func (s *udpSocket) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
