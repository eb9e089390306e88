// Package api serves one edit session over HTTP.
//
// Routes:
//
//	GET  /healthz     liveness probe with build info
//	GET  /graph       current graph as JSON
//	GET  /graph.dot   current graph as Graphviz DOT
//	GET  /graph.svg   current graph rendered to SVG
//	GET  /summary     raw requirements and production steps
//	POST /edits       apply one intent: {"op":"expand","node":2}
//	GET  /metrics     Prometheus metrics
//
// Edits are serialized: the server holds one [editor.Editor] behind a mutex.
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/craftgraph/pkg/buildinfo"
	"github.com/matzehuels/craftgraph/pkg/cache"
	"github.com/matzehuels/craftgraph/pkg/editor"
	"github.com/matzehuels/craftgraph/pkg/errors"
	"github.com/matzehuels/craftgraph/pkg/observability"
	"github.com/matzehuels/craftgraph/pkg/render/nodelink"
)

// SessionHeader carries the editor session ID on every response.
const SessionHeader = "X-Craftgraph-Session"

// maxBodyBytes bounds POST /edits request bodies.
const maxBodyBytes = 1 << 16

// Server holds all HTTP handler dependencies.
type Server struct {
	mu       sync.Mutex
	ed       *editor.Editor
	logger   *log.Logger
	gatherer prometheus.Gatherer
	renders  cache.Cache
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGatherer sets the registry served on /metrics.
// The default is prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithRenderCache sets the cache for SVG renders.
// The default is an in-memory cache of 64 renders.
func WithRenderCache(c cache.Cache) Option {
	return func(s *Server) {
		if c != nil {
			s.renders = c
		}
	}
}

// New creates a server for ed and registers all routes.
func New(ed *editor.Editor, opts ...Option) *Server {
	s := &Server{
		ed:       ed,
		logger:   log.Default(),
		gatherer: prometheus.DefaultGatherer,
		renders:  cache.NewMemoryCache(64),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.healthz)
	r.Get("/graph", s.graph)
	r.Get("/graph.dot", s.graphDOT)
	r.Get("/graph.svg", s.graphSVG)
	r.Get("/summary", s.summary)
	r.Post("/edits", s.applyEdit)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// observe logs each request and reports it to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set(SessionHeader, s.ed.ID())
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, ww.Status(), d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// GET /healthz
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

// GET /graph
func (s *Server) graph(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v := NewGraphView(s.ed.ID(), s.ed.Graph())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, v)
}

// GET /graph.dot
func (s *Server) graphDOT(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	dot := nodelink.ToDOT(s.ed.Graph(), nodelink.Options{Detailed: r.URL.Query().Has("detailed")})
	s.mu.Unlock()
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

// GET /graph.svg
func (s *Server) graphSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	dot := nodelink.ToDOT(s.ed.Graph(), nodelink.Options{Detailed: r.URL.Query().Has("detailed")})
	s.mu.Unlock()
	svg, err := nodelink.RenderSVGCached(r.Context(), s.renders, dot)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render SVG"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// GET /summary
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v := newSummaryView(s.ed.Graph())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, v)
}

// POST /edits
func (s *Server) applyEdit(w http.ResponseWriter, r *http.Request) {
	var in editor.Intent
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid JSON"))
		return
	}
	op, err := editor.ParseOp(string(in.Op))
	if err != nil {
		writeError(w, err)
		return
	}
	in.Op = op

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ed.Apply(r.Context(), in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewGraphView(s.ed.ID(), s.ed.Graph()))
}
