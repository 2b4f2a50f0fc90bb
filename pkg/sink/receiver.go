// Package sink is a minimal statsd collector. It parses incoming datagrams and hands each line to
// a Handler, for local development and for verifying what a client actually puts on the wire.
package sink

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tilinna/clock"

	"github.com/hindenbug/statsd/pkg/format"
	"github.com/hindenbug/statsd/pkg/util"
)

// ip packet size is stored in two bytes and that is how big in theory the packet can be.
const packetSizeUDP = 0xffff

// Handler is invoked for every line which parses.
type Handler interface {
	HandleLine(ctx context.Context, line format.Line, source net.Addr)
}

// HandlerFunc type is an adapter to allow the use of ordinary functions as Handler.
type HandlerFunc func(ctx context.Context, line format.Line, source net.Addr)

// HandleLine calls f(ctx, line, source).
func (f HandlerFunc) HandleLine(ctx context.Context, line format.Line, source net.Addr) {
	f(ctx, line, source)
}

// ReceiverStats holds statistics for a Receiver.
type ReceiverStats struct {
	LastPacket      time.Time
	PacketsReceived uint64
	LinesReceived   uint64
	BadLines        uint64
}

// Receiver reads datagrams from a PacketConn and parses them into lines.
type Receiver struct {
	// Counter fields below must be read/written only using atomic instructions.
	// 64-bit fields must be the first fields in the struct to guarantee proper memory alignment.
	// See https://golang.org/pkg/sync/atomic/#pkg-note-BUG
	lastPacket      int64 // When last packet was received. Unix timestamp in nsec.
	packetsReceived uint64
	linesReceived   uint64
	badLines        uint64

	logger  logrus.FieldLogger
	handler Handler
}

// NewReceiver initialises a new Receiver.
func NewReceiver(logger logrus.FieldLogger, handler Handler) *Receiver {
	return &Receiver{
		logger:  util.LoggerOrNull(logger),
		handler: handler,
	}
}

// Stats returns current Receiver stats. Safe for concurrent use.
func (r *Receiver) Stats() ReceiverStats {
	return ReceiverStats{
		LastPacket:      time.Unix(0, atomic.LoadInt64(&r.lastPacket)),
		PacketsReceived: atomic.LoadUint64(&r.packetsReceived),
		LinesReceived:   atomic.LoadUint64(&r.linesReceived),
		BadLines:        atomic.LoadUint64(&r.badLines),
	}
}

// Receive accepts incoming datagrams on c until it is closed. Closing c after ctx is done makes
// Receive return nil. Several Receive calls may share one PacketConn.
func (r *Receiver) Receive(ctx context.Context, c net.PacketConn) error {
	clck := clock.FromContext(ctx)
	buf := make([]byte, packetSizeUDP)
	for {
		// This will error out when the socket is closed.
		nbytes, addr, err := c.ReadFrom(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("error reading from socket: %v", err)
			}
			r.logger.WithError(err).Warn("error reading from socket")
			continue
		}
		atomic.AddUint64(&r.packetsReceived, 1)
		atomic.StoreInt64(&r.lastPacket, clck.Now().UnixNano())
		r.handlePacket(ctx, addr, buf[:nbytes])
	}
}

func (r *Receiver) handlePacket(ctx context.Context, addr net.Addr, msg []byte) {
	var lines, bad uint64
	for _, raw := range format.SplitPayload(string(msg)) {
		line, err := format.Parse(raw)
		if err != nil {
			// logging as debug to avoid spamming logs when a bad actor sends
			// badly formatted messages
			r.logger.WithFields(logrus.Fields{
				"line":   raw,
				"source": addr,
			}).WithError(err).Debug("error parsing line")
			bad++
			continue
		}
		lines++
		r.handler.HandleLine(ctx, line, addr)
	}
	atomic.AddUint64(&r.linesReceived, lines)
	atomic.AddUint64(&r.badLines, bad)
}
