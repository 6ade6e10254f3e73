// Package aggregate computes per-group summary statistics over a trial table.
package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/fieldtrials/internal/domain/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GroupSummary summarizes one distinct value of the group column.
type GroupSummary struct {
	GroupID string  `json:"group_id"`
	Mean    float64 `json:"mean"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
	Count   int     `json:"count"`
	P25     float64 `json:"p25"`
	Median  float64 `json:"median"`
	P75     float64 `json:"p75"`
}

// Aggregate groups table by groupKey and summarizes valueKey for each group.
// Summaries are ordered by group value ascending.
func Aggregate(table *model.Table, groupKey, valueKey string) ([]GroupSummary, error) {
	if table.Len() == 0 {
		return nil, fmt.Errorf("aggregate %s by %s: %w", valueKey, groupKey, ErrEmptyInput)
	}
	if err := table.RequireCategory(groupKey); err != nil {
		return nil, err
	}
	if err := table.RequireMeasure(valueKey); err != nil {
		return nil, err
	}

	values := make(map[string][]float64)
	for _, r := range table.Rows() {
		g, ok := r.Category(groupKey)
		if !ok {
			continue
		}
		v, ok := r.Measure(valueKey)
		if !ok {
			continue
		}
		values[g] = append(values[g], v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("aggregate %s by %s: %w", valueKey, groupKey, ErrEmptyInput)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]GroupSummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, summarize(k, values[k]))
	}
	return out, nil
}

func summarize(group string, vals []float64) GroupSummary {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	lo, hi := floats.Min(sorted), floats.Max(sorted)
	// Summation rounding may push the mean just outside [min, max].
	mean := math.Min(hi, math.Max(lo, stat.Mean(sorted, nil)))

	return GroupSummary{
		GroupID: group,
		Mean:    mean,
		Max:     hi,
		Min:     lo,
		Count:   len(sorted),
		P25:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P75:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
	}
}

// MeanBy is Aggregate reduced to a group -> mean map.
func MeanBy(table *model.Table, groupKey, valueKey string) (map[string]float64, error) {
	summaries, err := Aggregate(table, groupKey, valueKey)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(summaries))
	for _, s := range summaries {
		out[s.GroupID] = s.Mean
	}
	return out, nil
}
