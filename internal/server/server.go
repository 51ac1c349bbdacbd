// Package server exposes the statement pipeline over HTTP with gin.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/statement-parser/internal/common"
	"github.com/joseph-ayodele/statement-parser/internal/entity"
	"github.com/joseph-ayodele/statement-parser/internal/export"
	"github.com/joseph-ayodele/statement-parser/internal/pipeline"
)

// StatementProcessor is satisfied by *pipeline.Processor.
type StatementProcessor interface {
	Process(ctx context.Context, doc entity.Document) pipeline.PipelineResult
}

type JobReader interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.ExtractJob, error)
}

type JobExporter interface {
	ExportJob(ctx context.Context, id uuid.UUID, format string) (*export.File, error)
}

// Deps are the collaborators behind the routes. Jobs and Exporter may be nil, in
// which case the job routes answer 404.
type Deps struct {
	Processor  StatementProcessor
	Health     HealthSource
	Jobs       JobReader
	Exporter   JobExporter
	Gatherer   prometheus.Gatherer   // default prometheus.DefaultGatherer
	Registerer prometheus.Registerer // nil leaves HTTP metrics unregistered
}

type Server struct {
	cfg     common.ServerConfig
	deps    Deps
	logger  *slog.Logger
	metrics *httpMetrics
}

func New(cfg common.ServerConfig, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{cfg: cfg, deps: deps, logger: logger, metrics: newHTTPMetrics(deps.Registerer)}
}

type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
	public  bool
}

func (s *Server) routes() []route {
	return []route{
		{http.MethodGet, "/health/", s.health, true},
		{http.MethodGet, "/health/detailed", s.detailedHealth, true},
		{http.MethodGet, "/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})), true},
		{http.MethodPost, "/api/process", s.processFile, false},
		{http.MethodPost, "/api/process/text", s.processText, false},
		{http.MethodGet, "/api/jobs/:id", s.getJob, false},
		{http.MethodGet, "/api/jobs/:id/export", s.exportJob, false},
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog(), s.metrics.middleware(), corsMiddleware(s.cfg.AllowedOrigins))

	auth := s.auth()
	for _, rt := range s.routes() {
		handlers := []gin.HandlerFunc{rt.handler}
		if !rt.public {
			handlers = []gin.HandlerFunc{auth, s.withTimeout(), rt.handler}
		}
		r.Handle(rt.method, rt.path, handlers...)
	}
	r.NoRoute(func(c *gin.Context) {
		respondError(c, common.KindNotFound, "route not found")
	})
	return r
}
