// Package api wires the companies routes, their OpenAPI documentation and the
// shared HTTP middleware onto a gorilla/mux router.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/firmograph/internal/adapters/backend"
	"github.com/okian/firmograph/internal/adapters/http/auth"
	"github.com/okian/firmograph/pkg/logger"
	"github.com/okian/firmograph/pkg/metrics"
)

// Route prefixes and names of the infrastructure routes.
const (
	CompaniesPrefix = "/v1/companies"
	HealthPath      = "/healthz"
	MetricsPath     = "/metrics"
)

// Server wires HTTP routes for the companies API.
type Server struct {
	logger    logger.Logger
	flow      auth.Flow
	health    *HealthHandler
	companies *CompaniesHandler
	routes    []Route
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and failure logs.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAuthFlow documents the OAuth2 authorization-code endpoints.
func WithAuthFlow(flow auth.Flow) Option {
	return func(s *Server) { s.flow = flow }
}

// NewServer creates a new API server forwarding to b.
func NewServer(b backend.Backend, opts ...Option) *Server {
	if b == nil {
		panic("backend is nil")
	}
	s := &Server{logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.health = NewHealthHandler()
	s.companies = NewCompaniesHandler(b, s.logger)
	s.routes = s.companies.Routes()
	return s
}

// Routes returns the documented companies routes.
func (s *Server) Routes() []Route { return s.routes }

// Register attaches all HTTP routes to r. Companies routes sit behind the
// bearer-token middleware; health and metrics are public.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})
	r.Use(RequestIDMiddleware, MetricsMiddleware(s.logger), RecoverMiddleware(s.logger))

	r.HandleFunc(HealthPath, s.health.HandleHealth).Methods(http.MethodGet).Name("healthz")
	r.Handle(MetricsPath, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).
		Methods(http.MethodGet).Name("metrics")

	companies := r.PathPrefix(CompaniesPrefix).Subrouter()
	companies.Use(auth.Middleware(func(w http.ResponseWriter, r *http.Request, err error) {
		respondError(w, r, s.logger, err)
	}))
	for _, rt := range s.routes {
		companies.HandleFunc(rt.Path, rt.Handler).Methods(rt.Method).Name(rt.Name)
	}
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// routeName returns the name of the matched route, or "unmatched".
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if name := route.GetName(); name != "" {
			return name
		}
	}
	return "unmatched"
}
