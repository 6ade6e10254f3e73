// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/fieldtrials/internal/adapters/ingest"
	service "github.com/okian/fieldtrials/internal/app"
	"github.com/okian/fieldtrials/internal/domain/aggregate"
	"github.com/okian/fieldtrials/internal/domain/headtohead"
	"github.com/okian/fieldtrials/internal/domain/model"
	"github.com/okian/fieldtrials/internal/domain/relative"
	"github.com/okian/fieldtrials/internal/domain/scoring"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the analysis service.
type Dependencies interface {
	SessionDependencies
	AnalysisDependencies
}

// SessionDependencies creates and removes uploaded trial sessions.
type SessionDependencies interface {
	Upload(ctx context.Context, filename string, src io.Reader) (service.UploadResult, error)
	DeleteSession(ctx context.Context, id string) error
}

// AnalysisDependencies exposes the read-only computations over a session.
type AnalysisDependencies interface {
	Weights() scoring.Weights
	Overview(ctx context.Context, id string, filters model.Filters) (aggregate.Overview, error)
	Summaries(ctx context.Context, id string, q service.SummaryQuery) ([]aggregate.GroupSummary, error)
	RelativeToMean(ctx context.Context, id string, filters model.Filters) (aggregate.RelativeTable, error)
	DecisionMatrix(ctx context.Context, id string, filters model.Filters, weights *scoring.Weights) ([]scoring.Row, error)
	ExportDecisionMatrix(ctx context.Context, w io.Writer, id string, filters model.Filters, weights *scoring.Weights) error
	HeadToHead(ctx context.Context, id string, q service.HeadToHeadQuery) (service.HeadToHeadResult, error)
	ExportHeadToHead(ctx context.Context, w io.Writer, id string, q service.HeadToHeadQuery) error
	Candidates(ctx context.Context, id string, filters model.Filters) (headtohead.Candidates, error)
	RelativeProduction(ctx context.Context, id string, filters model.Filters) ([]relative.Row, error)
	Heatmap(ctx context.Context, id string, filters model.Filters) (relative.Heatmap, error)
	Dashboard(ctx context.Context, w io.Writer, id string, q service.DashboardQuery) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionHandler  *SessionHandler
	analysisHandler *AnalysisHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sessionHandler:  NewSessionHandler(deps, o.maxUploadBytes),
		analysisHandler: NewAnalysisHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionHandler.HandleUpload, "sessions_upload"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(s.sessionHandler.HandleDelete, "sessions_delete"))

	a := s.analysisHandler
	for _, r := range []struct {
		pattern  string
		endpoint string
		handler  http.HandlerFunc
	}{
		{"GET /sessions/{id}/overview", "overview", a.HandleOverview},
		{"GET /sessions/{id}/summaries", "summaries", a.HandleSummaries},
		{"GET /sessions/{id}/relative-to-mean", "relative_to_mean", a.HandleRelativeToMean},
		{"GET /sessions/{id}/decision-matrix", "decision_matrix", a.HandleDecisionMatrix},
		{"GET /sessions/{id}/decision-matrix.xlsx", "decision_matrix_xlsx", a.HandleDecisionMatrixExport},
		{"GET /sessions/{id}/head-to-head", "head_to_head", a.HandleHeadToHead},
		{"GET /sessions/{id}/head-to-head.xlsx", "head_to_head_xlsx", a.HandleHeadToHeadExport},
		{"GET /sessions/{id}/head-to-head/candidates", "candidates", a.HandleCandidates},
		{"GET /sessions/{id}/relative-production", "relative_production", a.HandleRelativeProduction},
		{"GET /sessions/{id}/heatmap", "heatmap", a.HandleHeatmap},
		{"GET /sessions/{id}/dashboard", "dashboard", a.HandleDashboard},
	} {
		mux.HandleFunc(r.pattern, MetricsMiddleware(r.handler, r.endpoint))
	}
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	resp := errorResponse{Code: code, Message: http.StatusText(status)}
	if err != nil {
		resp.Message = err.Error()
	}
	var missing *ingest.MissingColumnsError
	if errors.As(err, &missing) {
		resp.Missing = missing.Columns
	}
	writeJSON(w, status, resp)
}
