package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/okian/fieldtrials/internal/adapters/charts"
	"github.com/okian/fieldtrials/internal/adapters/export"
	"github.com/okian/fieldtrials/internal/domain/aggregate"
	"github.com/okian/fieldtrials/internal/domain/headtohead"
	"github.com/okian/fieldtrials/internal/domain/model"
	"github.com/okian/fieldtrials/internal/domain/relative"
	"github.com/okian/fieldtrials/internal/domain/scoring"
	"github.com/okian/fieldtrials/pkg/logger"
)

// Computation kinds used in metrics and logs.
const (
	ComputeOverview           = "overview"
	ComputeSummaries          = "summaries"
	ComputeRelativeToMean     = "relative_to_mean"
	ComputeDecisionMatrix     = "decision_matrix"
	ComputeHeadToHead         = "head_to_head"
	ComputeCandidates         = "candidates"
	ComputeRelativeProduction = "relative_production"
	ComputeHeatmap            = "heatmap"
	ComputeDashboard          = "dashboard"
	ComputeExport             = "export"
)

// SummaryQuery selects the columns of an aggregation.
type SummaryQuery struct {
	GroupKey string
	ValueKey string
	Filters  model.Filters
}

// HeadToHeadQuery selects a pair of groups. A nil Threshold uses the configured one.
type HeadToHeadQuery struct {
	Head      string
	Check     string
	Threshold *float64
	Filters   model.Filters
}

// HeadToHeadResult is the paired rows plus their summary.
type HeadToHeadResult struct {
	Rows    []headtohead.Row   `json:"rows"`
	Summary headtohead.Summary `json:"summary"`
}

// DashboardQuery selects what the dashboard draws. Without Head and Check
// the first candidate pair, if any, is compared.
type DashboardQuery struct {
	Filters model.Filters
	Head    string
	Check   string
	Weights *scoring.Weights
}

// Overview counts trials, groups and trials per state.
func (s *Service) Overview(ctx context.Context, id string, filters model.Filters) (out aggregate.Overview, err error) {
	start := time.Now()
	defer func() { err = s.track(ctx, ComputeOverview, id, start, err) }()

	table, err := s.filtered(ctx, id, filters)
	if err != nil {
		return out, err
	}
	return aggregate.Summarize(table)
}

// Summaries aggregates a numeric column per group. Empty keys default to
// group_id and productivity.
func (s *Service) Summaries(ctx context.Context, id string, q SummaryQuery) (out []aggregate.GroupSummary, err error) {
	start := time.Now()
	defer func() { err = s.track(ctx, ComputeSummaries, id, start, err) }()

	if q.GroupKey == "" {
		q.GroupKey = model.ColGroup
	}
	if q.ValueKey == "" {
		q.ValueKey = model.ColProductivity
	}
	table, err := s.filtered(ctx, id, q.Filters)
	if err != nil {
		return nil, err
	}
	s.log().Debug(ctx, "aggregating",
		logger.String("session", id),
		logger.String("groupKey", q.GroupKey),
		logger.String("valueKey", q.ValueKey),
		logger.Int("rows", table.Len()),
	)
	out, err = aggregate.Aggregate(table, q.GroupKey, q.ValueKey)
	if err != nil {
		return nil, asQueryError(err)
	}
	return out, nil
}

// RelativeToMean compares every group mean with the overall and best means.
func (s *Service) RelativeToMean(ctx context.Context, id string, filters model.Filters) (out aggregate.RelativeTable, err error) {
	start := time.Now()
	defer func() { err = s.track(ctx, ComputeRelativeToMean, id, start, err) }()

	summaries, err := s.productivity(ctx, id, filters)
	if err != nil {
		return out, err
	}
	return aggregate.RelativeToMean(summaries)
}

// DecisionMatrix ranks groups by weighted normalized statistics. A nil
// weights pointer uses the configured weights.
func (s *Service) DecisionMatrix(ctx context.Context, id string, filters model.Filters, weights *scoring.Weights) (out []scoring.Row, err error) {
	start := time.Now()
	defer func() { err = s.track(ctx, ComputeDecisionMatrix, id, start, err) }()

	return s.decisionMatrix(ctx, id, filters, weights)
}

func (s *Service) decisionMatrix(ctx context.Context, id string, filters model.Filters, weights *scoring.Weights) ([]scoring.Row, error) {
	w := s.weights
	if weights != nil {
		w = *weights
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	summaries, err := s.productivity(ctx, id, filters)
	if err != nil {
		return nil, err
	}
	return scoring.Score(summaries, w)
}

// HeadToHead pairs two groups location by location.
func (s *Service) HeadToHead(ctx context.Context, id string, q HeadToHeadQuery) (out HeadToHeadResult, err error) {
	start := time.Now()
	defer func() { err = s.track(ctx, ComputeHeadToHead, id, start, err) }()

	return s.headToHead(ctx, id, q)
}

func (s *Service) headToHead(ctx context.Context, id string, q HeadToHeadQuery) (HeadToHeadResult, error) {
	if q.Head == "" || q.Check == "" {
		return HeadToHeadResult{}, fmt.Errorf("%w: head and check are required", ErrInvalidQuery)
	}
	threshold := s.threshold
	if q.Threshold != nil {
		threshold = *q.Threshold
	}
	table, err := s.session(ctx, id, q.Filters)
	if err != nil {
		return HeadToHeadResult{}, err
	}
	s.log().Debug(ctx, "comparing",
		logger.String("session", id),
		logger.String("head", q.Head),
		logger.String("check", q.Check),
		logger.Float64("threshold", threshold),
	)
	rows, sum, err := headtohead.Compare(table, q.Head, q.Check, q.Filters, headtohead.WithThreshold(threshold))
	if err != nil {
		return HeadToHeadResult{}, err
	}
	return HeadToHeadResult{Rows: rows, Summary: sum}, nil
}

// Candidates lists the groups selectable on each side of a comparison.
func (s *Service) Candidates(ctx context.Context, id string, filters model.Filters) (out headtohead.Candidates, err error) {
	start := time.Now()
	defer func() { err = s.track(ctx, ComputeCandidates, id, start, err) }()

	table, err := s.filtered(ctx, id, filters)
	if err != nil {
		return out, err
	}
	return headtohead.ListCandidates(table, s.highlighted), nil
}

// RelativeProduction expresses every observation against the table maximum
// and labels it with its band.
func (s *Service) RelativeProduction(ctx context.Context, id string, filters model.Filters) (out []relative.Row, err error) {
	start := time.Now()
	defer func() { err = s.track(ctx, ComputeRelativeProduction, id, start, err) }()

	return s.relativeProduction(ctx, id, filters)
}

func (s *Service) relativeProduction(ctx context.Context, id string, filters model.Filters) ([]relative.Row, error) {
	table, err := s.filtered(ctx, id, filters)
	if err != nil {
		return nil, err
	}
	rows, err := relative.NormalizeToMax(table, model.ColProductivity)
	if err != nil {
		return nil, err
	}
	s.bands.Apply(rows)
	return rows, nil
}

// Heatmap pivots relative production into a group by location matrix.
func (s *Service) Heatmap(ctx context.Context, id string, filters model.Filters) (out relative.Heatmap, err error) {
	start := time.Now()
	defer func() { err = s.track(ctx, ComputeHeatmap, id, start, err) }()

	rows, err := s.relativeProduction(ctx, id, filters)
	if err != nil {
		return out, err
	}
	return relative.Pivot(rows), nil
}

// Dashboard renders every chart of the session into w.
func (s *Service) Dashboard(ctx context.Context, w io.Writer, id string, q DashboardQuery) (err error) {
	start := time.Now()
	defer func() { err = s.track(ctx, ComputeDashboard, id, start, err) }()

	table, err := s.filtered(ctx, id, q.Filters)
	if err != nil {
		return err
	}
	overview, err := aggregate.Summarize(table)
	if err != nil {
		return err
	}
	summaries, err := aggregate.Aggregate(table, model.ColGroup, model.ColProductivity)
	if err != nil {
		return err
	}
	scores, err := s.decisionMatrix(ctx, id, q.Filters, q.Weights)
	if err != nil {
		return err
	}
	d := charts.Dashboard{Title: "Ensaios de Campo", Overview: &overview, Summaries: summaries, Scores: scores}

	// Degenerate means or a zero maximum only hide the affected charts.
	if rel, relErr := aggregate.RelativeToMean(summaries); relErr == nil {
		d.Relative = &rel
	}
	if rows, relErr := relative.NormalizeToMax(table, model.ColProductivity); relErr == nil {
		h := relative.Pivot(rows)
		d.Heatmap = &h
	}

	head, check := q.Head, q.Check
	if head == "" || check == "" {
		head, check = defaultPair(headtohead.ListCandidates(table, s.highlighted))
	}
	if head != "" && check != "" {
		res, cmpErr := s.headToHead(ctx, id, HeadToHeadQuery{Head: head, Check: check, Filters: q.Filters})
		if cmpErr != nil {
			s.log().Debug(ctx, "dashboard without head-to-head", logger.Error(cmpErr))
		} else {
			d.HeadToHead = &charts.HeadToHead{Rows: res.Rows, Summary: res.Summary}
		}
	}
	return s.charts.Render(w, d)
}

// ExportDecisionMatrix writes the decision matrix as a workbook.
func (s *Service) ExportDecisionMatrix(ctx context.Context, w io.Writer, id string, filters model.Filters, weights *scoring.Weights) (err error) {
	start := time.Now()
	defer func() { err = s.track(ctx, ComputeExport, id, start, err) }()

	rows, err := s.decisionMatrix(ctx, id, filters, weights)
	if err != nil {
		return err
	}
	return export.DecisionMatrix(w, rows)
}

// ExportHeadToHead writes a comparison as a workbook.
func (s *Service) ExportHeadToHead(ctx context.Context, w io.Writer, id string, q HeadToHeadQuery) (err error) {
	start := time.Now()
	defer func() { err = s.track(ctx, ComputeExport, id, start, err) }()

	res, err := s.headToHead(ctx, id, q)
	if err != nil {
		return err
	}
	return export.HeadToHead(w, res.Rows, res.Summary)
}

func (s *Service) productivity(ctx context.Context, id string, filters model.Filters) ([]aggregate.GroupSummary, error) {
	table, err := s.filtered(ctx, id, filters)
	if err != nil {
		return nil, err
	}
	return aggregate.Aggregate(table, model.ColGroup, model.ColProductivity)
}

// defaultPair picks the first head and the first check distinct from it.
func defaultPair(c headtohead.Candidates) (string, string) {
	if len(c.Heads) == 0 {
		return "", ""
	}
	head := c.Heads[0]
	for _, check := range c.Checks {
		if check != head {
			return head, check
		}
	}
	return "", ""
}

// asQueryError marks unknown columns named by the caller as a bad query.
func asQueryError(err error) error {
	if ErrorKind(err) == KindUnknownColumn {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return err
}
