/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/trustbloc/sidetree-gateway-go/internal/log"
	"github.com/trustbloc/sidetree-gateway-go/pkg/restapi/common"
)

var logger = log.New("sidetree-gateway-httpserver")

const (
	unhandledPath     = "unhandled"
	readHeaderTimeout = 10 * time.Second
)

type metricsProvider interface {
	HTTPRequest(method, path string, status int, value time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) HTTPRequest(string, string, int, time.Duration) {}

// Server serves the REST endpoints.
type Server struct {
	httpServer *http.Server
	metrics    metricsProvider

	mutex    sync.Mutex
	listener net.Listener
	done     chan error
}

// Option is a server option.
type Option func(s *Server)

// WithMetrics sets the metrics provider.
func WithMetrics(metrics metricsProvider) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// New returns a new HTTP server listening on the given address. Requests that match no handler
// are answered with 400.
func New(url string, handlers []common.HTTPHandler, opts ...Option) *Server {
	s := &Server{
		metrics: noopMetrics{},
	}

	for _, opt := range opts {
		opt(s)
	}

	// path variables are unescaped by the handlers
	router := mux.NewRouter().UseEncodedPath()

	for _, handler := range handlers {
		logger.Info("Registering handler", log.WithMethod(handler.Method()), log.WithPath(handler.Path()))

		router.HandleFunc(handler.Path(), handler.Handler()).Methods(handler.Method())
	}

	router.NotFoundHandler = http.HandlerFunc(badRequest)
	router.MethodNotAllowedHandler = http.HandlerFunc(badRequest)

	router.Use(s.instrument)

	s.httpServer = &http.Server{
		Addr:              url,
		Handler:           s.instrumentUnhandled(router),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Start starts listening and serves requests in the background.
func (s *Server) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.listener != nil {
		return errors.New("server already started")
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}

	s.listener = ln
	s.done = make(chan error, 1)

	go func() {
		err := s.httpServer.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}

		s.done <- err
	}()

	logger.Info("Started HTTP server", log.WithAddress(ln.Addr().String()))

	return nil
}

// Addr returns the address the server listens on, or an empty string if not started.
func (s *Server) Addr() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Done returns a channel that receives the serve error, or nil, once the server stops.
func (s *Server) Done() <-chan error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.done
}

// Stop stops the server, waiting for active requests until the context is done.
func (s *Server) Stop(ctx context.Context) error {
	s.mutex.Lock()
	started := s.listener != nil
	s.mutex.Unlock()

	if !started {
		return nil
	}

	logger.Info("Stopping HTTP server")

	return s.httpServer.Shutdown(ctx)
}

// instrument records the status code per route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		path := unhandledPath

		if route := mux.CurrentRoute(req); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}

		s.serve(next, rw, req, path)
	})
}

// instrumentUnhandled records requests that no route matched. Middleware only runs for matched routes.
func (s *Server) instrumentUnhandled(router *mux.Router) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		var match mux.RouteMatch
		if router.Match(req, &match) && match.MatchErr == nil {
			router.ServeHTTP(rw, req)

			return
		}

		s.serve(router, rw, req, unhandledPath)
	})
}

func (s *Server) serve(next http.Handler, rw http.ResponseWriter, req *http.Request, path string) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: rw, status: http.StatusOK}

	next.ServeHTTP(sw, req)

	s.metrics.HTTPRequest(req.Method, path, sw.status, time.Since(start))
}

func badRequest(rw http.ResponseWriter, _ *http.Request) {
	rw.WriteHeader(http.StatusBadRequest)
}

type statusWriter struct {
	http.ResponseWriter

	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
