package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/fieldtrials/internal/adapters/export"
	service "github.com/okian/fieldtrials/internal/app"
)

// AnalysisHandler serves the computations over one session.
type AnalysisHandler struct {
	deps AnalysisDependencies
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps AnalysisDependencies) *AnalysisHandler {
	return &AnalysisHandler{deps: deps}
}

// HandleOverview handles GET /sessions/{id}/overview.
func (h *AnalysisHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Overview(r.Context(), r.PathValue("id"), parseFilters(r.URL.Query()))
	respond(w, out, err)
}

// HandleSummaries handles GET /sessions/{id}/summaries.
func (h *AnalysisHandler) HandleSummaries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.deps.Summaries(r.Context(), r.PathValue("id"), service.SummaryQuery{
		GroupKey: strings.TrimSpace(q.Get(paramGroupKey)),
		ValueKey: strings.TrimSpace(q.Get(paramValueKey)),
		Filters:  parseFilters(q),
	})
	respond(w, out, err)
}

// HandleRelativeToMean handles GET /sessions/{id}/relative-to-mean.
func (h *AnalysisHandler) HandleRelativeToMean(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.RelativeToMean(r.Context(), r.PathValue("id"), parseFilters(r.URL.Query()))
	respond(w, out, err)
}

// HandleDecisionMatrix handles GET /sessions/{id}/decision-matrix.
func (h *AnalysisHandler) HandleDecisionMatrix(w http.ResponseWriter, r *http.Request) {
	const op = "decision_matrix"
	q := r.URL.Query()
	weights, err := parseWeights(q, h.deps.Weights())
	if err != nil {
		writeServiceError(w, WrapKind(op, errInvalidQuery, err))
		return
	}
	out, err := h.deps.DecisionMatrix(r.Context(), r.PathValue("id"), parseFilters(q), weights)
	respond(w, out, err)
}

// HandleDecisionMatrixExport handles GET /sessions/{id}/decision-matrix.xlsx.
func (h *AnalysisHandler) HandleDecisionMatrixExport(w http.ResponseWriter, r *http.Request) {
	const op = "decision_matrix_xlsx"
	q := r.URL.Query()
	weights, err := parseWeights(q, h.deps.Weights())
	if err != nil {
		writeServiceError(w, WrapKind(op, errInvalidQuery, err))
		return
	}
	id := r.PathValue("id")
	writeBuffered(w, export.ContentType, attachment("matriz-decisao", id), func(buf io.Writer) error {
		return h.deps.ExportDecisionMatrix(r.Context(), buf, id, parseFilters(q), weights)
	})
}

// HandleHeadToHead handles GET /sessions/{id}/head-to-head.
func (h *AnalysisHandler) HandleHeadToHead(w http.ResponseWriter, r *http.Request) {
	const op = "head_to_head"
	query, err := h.headToHeadQuery(op, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out, err := h.deps.HeadToHead(r.Context(), r.PathValue("id"), query)
	respond(w, out, err)
}

// HandleHeadToHeadExport handles GET /sessions/{id}/head-to-head.xlsx.
func (h *AnalysisHandler) HandleHeadToHeadExport(w http.ResponseWriter, r *http.Request) {
	const op = "head_to_head_xlsx"
	query, err := h.headToHeadQuery(op, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	id := r.PathValue("id")
	writeBuffered(w, export.ContentType, attachment("head-to-head", id), func(buf io.Writer) error {
		return h.deps.ExportHeadToHead(r.Context(), buf, id, query)
	})
}

// HandleCandidates handles GET /sessions/{id}/head-to-head/candidates.
func (h *AnalysisHandler) HandleCandidates(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Candidates(r.Context(), r.PathValue("id"), parseFilters(r.URL.Query()))
	respond(w, out, err)
}

// HandleRelativeProduction handles GET /sessions/{id}/relative-production.
func (h *AnalysisHandler) HandleRelativeProduction(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.RelativeProduction(r.Context(), r.PathValue("id"), parseFilters(r.URL.Query()))
	respond(w, out, err)
}

// HandleHeatmap handles GET /sessions/{id}/heatmap.
func (h *AnalysisHandler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Heatmap(r.Context(), r.PathValue("id"), parseFilters(r.URL.Query()))
	respond(w, out, err)
}

// HandleDashboard handles GET /sessions/{id}/dashboard.
func (h *AnalysisHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "dashboard"
	q := r.URL.Query()
	weights, err := parseWeights(q, h.deps.Weights())
	if err != nil {
		writeServiceError(w, WrapKind(op, errInvalidQuery, err))
		return
	}
	query := service.DashboardQuery{
		Filters: parseFilters(q),
		Head:    strings.TrimSpace(q.Get(paramHead)),
		Check:   strings.TrimSpace(q.Get(paramCheck)),
		Weights: weights,
	}
	writeBuffered(w, "text/html; charset=utf-8", "", func(buf io.Writer) error {
		return h.deps.Dashboard(r.Context(), buf, r.PathValue("id"), query)
	})
}

func (h *AnalysisHandler) headToHeadQuery(op string, r *http.Request) (service.HeadToHeadQuery, error) {
	query, err := parseHeadToHead(r.URL.Query())
	if err != nil {
		return query, WrapKind(op, errInvalidQuery, err)
	}
	if query.Head == "" || query.Check == "" {
		return query, WrapKind(op, errInvalidQuery, fmt.Errorf("%s and %s are required", paramHead, paramCheck))
	}
	return query, nil
}

func respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// writeBuffered renders into memory before any header is written. A render
// error is reported as a JSON error body.
func writeBuffered(w http.ResponseWriter, contentType, filename string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func attachment(prefix, id string) string {
	return prefix + "-" + id + ".xlsx"
}
