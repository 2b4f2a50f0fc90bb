// Package web serves the operational HTTP endpoints of the statsd tools: Prometheus metrics and
// health checks.
package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/hindenbug/statsd/pkg/healthcheck"
	"github.com/hindenbug/statsd/pkg/ready"
	"github.com/hindenbug/statsd/pkg/util"
)

type Server struct {
	logger  logrus.FieldLogger
	address string
	router  *mux.Router
	addr    atomic.Value // string, set once listening
}

type route struct {
	path    string
	handler http.Handler
	method  string
	name    string
}

var done = struct{}{}

// NewServer creates a Server for address. /metrics is served from gatherer when it is not nil,
// /healthcheck and /deepcheck run the checks of every provider implementing
// healthcheck.HealthCheckProvider or healthcheck.DeepCheckProvider.
func NewServer(logger logrus.FieldLogger, address string, gatherer prometheus.Gatherer, providers ...interface{}) (*Server, error) {
	logger = util.LoggerOrNull(logger)
	server := &Server{
		logger:  logger,
		address: address,
	}

	healthChecks, deepChecks := healthcheck.Collect(providers...)
	hc := &healthChecker{
		logger:       logger,
		healthChecks: healthChecks,
		deepChecks:   deepChecks,
	}
	routes := []route{
		{path: "/healthcheck", handler: http.HandlerFunc(hc.healthCheck), method: "GET", name: "healthcheck_get"},
		{path: "/deepcheck", handler: http.HandlerFunc(hc.deepCheck), method: "GET", name: "deepcheck_get"},
	}
	if gatherer != nil {
		routes = append(routes, route{
			path:    "/metrics",
			handler: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{ErrorLog: promLogger{logger}}),
			method:  "GET",
			name:    "metrics_get",
		})
	}

	router, err := createRoutes(routes)
	if err != nil {
		return nil, err
	}
	router.NotFoundHandler = server.logRequest(http.HandlerFunc(server.notFound))
	router.Use(server.logRequest)
	server.router = router

	logger.WithFields(logrus.Fields{
		"address":        address,
		"enable-metrics": gatherer != nil,
		"health-checks":  len(healthChecks),
		"deep-checks":    len(deepChecks),
	}).Info("created server")

	return server, nil
}

// Handler returns the router, for serving without Run.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the address the server is listening on, or "" before Run has started listening.
func (s *Server) Addr() string {
	addr, _ := s.addr.Load().(string)
	return addr
}

func (s *Server) notFound(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("not found"))
}

func createRoutes(routes []route) (*mux.Router, error) {
	router := mux.NewRouter()

	for _, route := range routes {
		r := router.Handle(route.path, route.handler).Methods(route.method).Name(route.name)
		if err := r.GetError(); err != nil {
			return nil, fmt.Errorf("error creating route %s: %v", route.name, err)
		}
	}

	return router, nil
}

func (s *Server) logRequest(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		logFields := logrus.Fields{
			"srcip": strings.Split(req.RemoteAddr, ":")[0],
			"path":  req.URL.Path,
		}
		if route := mux.CurrentRoute(req); route == nil {
			logFields["method"] = req.Method
		} else {
			logFields["route"] = route.GetName()
		}
		if source := req.Header.Get("X-Forwarded-For"); source != "" {
			logFields["forwarded_for"] = source
		}

		start := time.Now()
		handler.ServeHTTP(w, req)
		dur := time.Since(start)

		logFields["duration"] = float64(dur) / float64(time.Millisecond)
		s.logger.WithFields(logFields).Debug("request")
	})
}

// Run serves until ctx is done, then shuts down gracefully. Readiness is signalled through the
// ready package once the listener is open, or failed to open.
func (s *Server) Run(ctx context.Context) {
	listener, err := net.Listen("tcp", s.address)
	ready.SignalReady(ctx)
	if err != nil {
		s.logger.WithError(err).Error("web server failed to listen")
		return
	}
	s.addr.Store(listener.Addr().String())

	server := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	chStopped := make(chan struct{}, 1)
	go s.waitAndStop(ctx, server, chStopped)

	s.logger.WithField("address", listener.Addr().String()).Info("listening")

	err = server.Serve(listener)
	if err != http.ErrServerClosed {
		s.logger.WithError(err).Error("web server failed")
		return
	}

	// Wait for graceful shutdown of existing connections
	select {
	case <-chStopped:
		// happy
	case <-time.After(6 * time.Second):
		s.logger.Info("timeout waiting for web server to stop")
	}
}

// waitAndStop will gracefully shut down the Server when the Context passed is cancelled.  It signals
// on chStopped when it is done.  There is no guarantee that it will actually signal, if the server
// does not shutdown.
func (s *Server) waitAndStop(ctx context.Context, server *http.Server, chStopped chan<- struct{}) {
	<-ctx.Done()

	s.logger.Info("shutting down web server")
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(timeoutCtx); err != nil {
		s.logger.WithError(err).Warn("failed to stop web server")
	}
	chStopped <- done
}

// promLogger adapts a logrus logger to promhttp.Logger.
type promLogger struct {
	logger logrus.FieldLogger
}

func (l promLogger) Println(v ...interface{}) {
	l.logger.Error(v...)
}
