package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	"github.com/ash2k/stager/wait"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/hindenbug/statsd"
	"github.com/hindenbug/statsd/pkg/format"
	"github.com/hindenbug/statsd/pkg/sink"
	"github.com/hindenbug/statsd/pkg/web"
)

// tally counts received lines per type.
type tally struct {
	counters uint64 // atomic
	gauges   uint64 // atomic
	timers   uint64 // atomic
	print    bool
}

func (t *tally) HandleLine(ctx context.Context, line format.Line, source net.Addr) {
	switch line.Type {
	case statsd.COUNTER:
		atomic.AddUint64(&t.counters, 1)
	case statsd.GAUGE:
		atomic.AddUint64(&t.gauges, 1)
	case statsd.TIMER:
		atomic.AddUint64(&t.timers, 1)
	}
	if t.print {
		fmt.Println(formatLine(line))
	}
}

func formatLine(line format.Line) string {
	return format.Format("", line.Name, strconv.FormatFloat(line.Value, 'f', -1, 64), line.Type, line.SampleRate)
}

func main() {
	opts := parseArgs(os.Args[1:])
	if opts.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if opts.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if err := run(opts); err != nil {
		logrus.Fatalf("%v", err)
	}
}

func run(opts commandOptions) error {
	logger := logrus.StandardLogger()

	ctx, cancelFunc := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelFunc()

	conns, err := listen(opts)
	if err != nil {
		return err
	}

	t := &tally{print: opts.Print}
	receiver := sink.NewReceiver(logger, t)

	var wgWeb wait.Group
	defer wgWeb.Wait()
	ctxWeb, cancelWeb := context.WithCancel(context.Background()) // Separate context!
	defer cancelWeb()
	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		if err := receiver.RegisterMetrics(reg, "statsd"); err != nil {
			closeAll(logger, conns)
			return err
		}
		server, err := web.NewServer(logger, opts.MetricsAddr, reg)
		if err != nil {
			closeAll(logger, conns)
			return err
		}
		wgWeb.StartWithContext(ctxWeb, server.Run)
	}

	var wgReceivers wait.Group
	for i := 0; i < opts.Readers; i++ {
		conn := conns[i%len(conns)]
		wgReceivers.Start(func() {
			if err := receiver.Receive(ctx, conn); err != nil {
				logger.WithError(err).Error("receiver failed")
			}
		})
	}
	logger.WithFields(logrus.Fields{
		"address":    opts.Address,
		"readers":    opts.Readers,
		"reuse-port": opts.ReusePort,
	}).Info("listening")

	<-ctx.Done()
	// This makes receivers error out and stop
	closeAll(logger, conns)
	wgReceivers.Wait()

	stats := receiver.Stats()
	logger.WithFields(logrus.Fields{
		"packets":   stats.PacketsReceived,
		"lines":     stats.LinesReceived,
		"bad-lines": stats.BadLines,
		"counters":  atomic.LoadUint64(&t.counters),
		"gauges":    atomic.LoadUint64(&t.gauges),
		"timers":    atomic.LoadUint64(&t.timers),
	}).Info("stopped")
	return nil
}

// listen opens one shared socket, or one socket per reader with reuse-port.
func listen(opts commandOptions) ([]net.PacketConn, error) {
	n := 1
	if opts.ReusePort {
		n = opts.Readers
	}
	conns := make([]net.PacketConn, 0, n)
	for i := 0; i < n; i++ {
		conn, err := sink.Listen(opts.Address, opts.ReusePort)
		if err != nil {
			closeAll(logrus.StandardLogger(), conns)
			return nil, fmt.Errorf("failed to listen on %s: %v", opts.Address, err)
		}
		conns = append(conns, conn)
	}
	return conns, nil
}

func closeAll(logger logrus.FieldLogger, conns []net.PacketConn) {
	for _, c := range conns {
		if err := c.Close(); err != nil {
			logger.WithError(err).Warn("error closing socket")
		}
	}
}
