// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	POST /api/layout   arrange a diagram, respond with the laid-out diagram
//	POST /api/preview  arrange a diagram, respond with an SVG preview
//	GET  /healthz      liveness and version
//	GET  /metrics      Prometheus metrics
//
// Each request runs its own layout pass; nothing is shared between
// requests except the metrics registry.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/erdlayout/pkg/buildinfo"
	"github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/pipeline"
	"github.com/matzehuels/erdlayout/pkg/render"
)

const (
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes = 8 << 20

	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":8080"

	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves the layout API.
type Server struct {
	Addr   string
	Logger *log.Logger

	runner   *pipeline.Runner
	registry *prometheus.Registry
	metrics  *Metrics
	router   chi.Router
}

// New creates a server listening on addr. It registers its metrics on a
// private registry; call [Metrics.Install] on [Server.Metrics] to also
// collect pipeline and remote-client events.
func New(addr string, logger *log.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = log.Default()
	}

	reg := prometheus.NewRegistry()
	s := &Server{
		Addr:     addr,
		Logger:   logger,
		runner:   pipeline.NewRunner(logger),
		registry: reg,
		metrics:  NewMetrics(reg),
	}
	s.router = s.routes()
	return s
}

// Metrics returns the server's metric set.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Post("/layout", s.handleLayout)
		r.Post("/preview", s.handlePreview)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", s.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	res, ok := s.arrange(w, r)
	if !ok {
		return
	}
	data, err := pipeline.Encode(res)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode diagram"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Layout-Ranks", strconv.Itoa(res.Stats.Ranks))
	w.Header().Set("X-Layout-Staged", strconv.Itoa(res.Stats.Staged))
	w.Header().Set("X-Layout-Unplaced", strconv.Itoa(res.Stats.Unplaced))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	res, ok := s.arrange(w, r)
	if !ok {
		return
	}
	svg, err := s.runner.Preview(r.Context(), res.Diagram, render.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// arrange decodes the request body and lays it out. On failure it writes
// the error response and returns false.
func (s *Server) arrange(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer body.Close()

	// Read the whole body first so an oversized one surfaces as
	// *http.MaxBytesError whatever decoder would have consumed it.
	data, err := io.ReadAll(body)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "cannot read request body"))
		return nil, false
	}

	ctype := r.Header.Get("Content-Type")
	isYAML := strings.Contains(ctype, "yaml")
	d, err := s.runner.LoadReader(r.Context(), bytes.NewReader(data), "request", isYAML)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}

	opts := pipeline.Options{Strict: r.URL.Query().Get("strict") == "true"}
	res, err := s.runner.Layout(r.Context(), d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return res, true
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.Logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDiagram, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	// Runner stages return the context's own error when cancelled.
	if err == context.Canceled || err == context.DeadlineExceeded {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logRequests logs one line per request and feeds the API metrics.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.observeRequest(route, ww.Status(), time.Since(start))
		s.Logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
