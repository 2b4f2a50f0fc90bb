package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ash2k/stager/wait"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hindenbug/statsd"
	"github.com/hindenbug/statsd/pkg/client"
	"github.com/hindenbug/statsd/pkg/util"
	"github.com/hindenbug/statsd/pkg/web"
)

const (
	// ParamVerbose enables verbose logging.
	ParamVerbose = "verbose"
	// ParamJSON makes logger log in JSON format.
	ParamJSON = "json"
	// ParamConfigPath provides file with configuration.
	ParamConfigPath = "config-path"
	// ParamVersion makes program output its version.
	ParamVersion = "version"
	// ParamCount is the total number of metrics to send.
	ParamCount = "count"
	// ParamWorkers is the number of goroutines sending metrics.
	ParamWorkers = "workers"
	// ParamStat is the stat name, or name prefix with name-cardinality above 1.
	ParamStat = "stat"
	// ParamType is a comma separated list of metric types to send, picked at random.
	ParamType = "type"
	// ParamSampleRate is the sample rate of every metric.
	ParamSampleRate = "sample-rate"
	// ParamNameCardinality is the number of distinct stat names.
	ParamNameCardinality = "name-cardinality"
	// ParamValueLimit is the exclusive upper bound of gauge values and timer milliseconds.
	ParamValueLimit = "value-limit"
	// ParamMetricsAddr serves Prometheus metrics and health checks on the address while running.
	ParamMetricsAddr = "metrics-addr"
)

func main() {
	rand.Seed(time.Now().UnixNano())
	v, version, err := setupConfiguration()
	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		logrus.Fatalf("Error while parsing configuration: %v", err)
	}
	if version {
		fmt.Printf("Version: %s\n", GetVersion())
		return
	}
	if err := run(v); err != nil {
		logrus.Fatalf("%v", err)
	}
}

func run(v *viper.Viper) error {
	logger := logrus.StandardLogger()

	ctx, cancelFunc := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelFunc()

	generators, err := newGeneratorsFromViper(v)
	if err != nil {
		return err
	}

	c, err := client.NewFromViper(ctx, logger, v)
	if err != nil {
		return fmt.Errorf("failed to create client: %v", err)
	}

	var wgWeb wait.Group
	defer wgWeb.Wait()
	ctxWeb, cancelWeb := context.WithCancel(context.Background()) // Separate context!
	defer cancelWeb()
	if addr := v.GetString(ParamMetricsAddr); addr != "" {
		server, err := newMetricsServer(logger, addr, c)
		if err != nil {
			_ = c.Close()
			return err
		}
		wgWeb.StartWithContext(ctxWeb, server.Run)
	}

	logger.WithFields(logrus.Fields{
		"count":      v.GetUint64(ParamCount),
		"workers":    len(generators),
		"batch-size": v.GetInt(statsd.ParamBatchSize),
		"pool-size":  v.GetInt(statsd.ParamPoolSize),
	}).Info("starting")

	start := time.Now()
	var wgWorkers wait.Group
	for _, g := range generators {
		g.sender = c
		wgWorkers.StartWithContext(ctx, g.run)
	}
	chDone := make(chan struct{})
	go func() {
		wgWorkers.Wait()
		close(chDone)
	}()

	statusTicker := time.NewTicker(1 * time.Second)
	defer statusTicker.Stop()
	for running := true; running; {
		select {
		case <-chDone:
			running = false
		case <-statusTicker.C:
			logger.WithField("sent", totalSent(generators)).Info("progress")
		}
	}
	elapsed := time.Since(start)

	if err := c.Close(); err != nil {
		logger.WithError(err).Warn("failed to close client")
	}

	sent := totalSent(generators)
	fields := logrus.Fields{
		"sent":       sent,
		"elapsed":    elapsed,
		"per-second": float64(sent) / elapsed.Seconds(),
	}
	if r := c.Reporter(); r != nil {
		stats := r.Stats()
		fields["enqueued"] = stats.Enqueued
		fields["dropped"] = stats.Dropped
		fields["datagrams"] = stats.Datagrams
		fields["send-errors"] = stats.SendErrors
	}
	logger.WithFields(fields).Info("done")
	return nil
}

func newMetricsServer(logger logrus.FieldLogger, addr string, c *client.Client) (*web.Server, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(prometheus.NewGoCollector()); err != nil {
		return nil, err
	}
	var providers []interface{}
	if r := c.Reporter(); r != nil {
		if err := r.RegisterMetrics(reg, "statsd"); err != nil {
			return nil, err
		}
		providers = append(providers, r)
	}
	return web.NewServer(logger, addr, reg, providers...)
}

func totalSent(generators []*metricGenerator) uint64 {
	sent := uint64(0)
	for _, g := range generators {
		sent += atomic.LoadUint64(&g.sent)
	}
	return sent
}

func setupConfiguration() (*viper.Viper, bool, error) {
	v := util.NewViper()
	defer setupLogger(v) // Apply logging configuration in case of early exit

	var version bool

	cmd := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)

	cmd.BoolVar(&version, ParamVersion, false, "Print the version and exit")
	cmd.Bool(ParamVerbose, false, "Verbose")
	cmd.Bool(ParamJSON, false, "Log in JSON format")
	cmd.String(ParamConfigPath, "", "Path to the configuration file")
	cmd.Uint64(ParamCount, 1000000, "Total number of metrics to send")
	cmd.Int(ParamWorkers, 1, "Number of goroutines sending metrics")
	cmd.String(ParamStat, "loader.count", "Stat name, used as a prefix when name-cardinality is above 1")
	cmd.String(ParamType, "c", "Comma separated metric types to send (c, g, ms), or mixed")
	cmd.Float64(ParamSampleRate, 1, "Sample rate of every metric")
	cmd.Int(ParamNameCardinality, 1, "Number of distinct stat names")
	cmd.Int(ParamValueLimit, 1000, "Upper bound of gauge values and timer milliseconds")
	cmd.String(ParamMetricsAddr, "", "Serve Prometheus metrics and health checks on this address")

	statsd.AddFlags(cmd)
	util.AddRetryFlags(cmd)

	if err := util.BindFlags(v, cmd); err != nil {
		return nil, false, err
	}

	if err := cmd.Parse(os.Args[1:]); err != nil {
		return nil, false, err
	}

	if err := util.ReadConfigFile(v, v.GetString(ParamConfigPath)); err != nil {
		return nil, false, err
	}

	return v, version, nil
}

func setupLogger(v *viper.Viper) {
	if v.GetBool(ParamVerbose) {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if v.GetBool(ParamJSON) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
