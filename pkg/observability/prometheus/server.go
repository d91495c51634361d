package prometheus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/fluxorio/threadpool/pkg/core"
)

// Server exposes a registry over fasthttp
type Server struct {
	addr    string
	path    string
	srv     *fasthttp.Server
	metrics fasthttp.RequestHandler

	logger core.Logger

	mu       sync.Mutex
	ln       net.Listener
	serveErr error
}

// NewServer creates a metrics server for gatherer at addr, serving path.
// A nil gatherer means DefaultRegistry.
func NewServer(addr, path string, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = DefaultRegistry
	}
	if path == "" {
		path = "/metrics"
	}

	s := &Server{
		addr:    addr,
		path:    path,
		logger:  core.NewDefaultLogger(),
		metrics: fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
	}
	s.srv = &fasthttp.Server{
		Handler:               s.Handler,
		Name:                  "threadpool-metrics",
		NoDefaultServerHeader: true,
	}
	return s
}

// Handler routes the metrics path and a liveness probe
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case s.path:
		s.metrics(ctx)
	case "/live":
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":"up"}`)
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("metrics listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go s.serve(ln)
	return nil
}

// Serve serves on ln until Shutdown
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	return s.serve(ln)
}

// serve records a serve failure so Shutdown can report it
func (s *Server) serve(ln net.Listener) error {
	err := s.srv.Serve(ln)
	if err != nil {
		s.logger.Errorf("metrics server on %s stopped: %v", ln.Addr(), err)
		s.mu.Lock()
		s.serveErr = err
		s.mu.Unlock()
	}
	return err
}

// Addr returns the bound address, or the configured one before Start
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Shutdown stops accepting connections and waits for open ones up to ctx.
// A serve loop that had already failed is reported here as well.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.ShutdownWithContext(ctx)

	s.mu.Lock()
	serveErr := s.serveErr
	s.mu.Unlock()
	if serveErr != nil {
		err = errors.Join(err, fmt.Errorf("metrics serve: %w", serveErr))
	}
	return err
}

// SetLogger replaces the default logger
func (s *Server) SetLogger(logger core.Logger) {
	if logger != nil {
		s.logger = logger
	}
}
