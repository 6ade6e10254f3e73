package aggregate

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RelativeRow compares one group mean against the field of group means.
type RelativeRow struct {
	GroupID          string  `json:"group_id"`
	Mean             float64 `json:"mean"`
	PctOfOverallMean float64 `json:"pct_of_overall_mean"`
	PctOfBest        float64 `json:"pct_of_best"`
}

// RelativeTable holds the per-group rows plus the reference values.
type RelativeTable struct {
	OverallMean float64       `json:"overall_mean"`
	BestMean    float64       `json:"best_mean"`
	Rows        []RelativeRow `json:"rows"`
}

// RelativeToMean expresses each group mean as a percent deviation from the
// mean of group means and from the best group mean. Rows are ordered by mean
// descending; ties keep input order.
func RelativeToMean(summaries []GroupSummary) (RelativeTable, error) {
	if len(summaries) == 0 {
		return RelativeTable{}, fmt.Errorf("relative to mean: %w", ErrEmptyInput)
	}
	means := make([]float64, len(summaries))
	for i, s := range summaries {
		means[i] = s.Mean
	}
	overall := stat.Mean(means, nil)
	best := floats.Max(means)
	if overall == 0 || best == 0 {
		return RelativeTable{}, fmt.Errorf("relative to mean: reference mean is zero: %w", ErrDivisionByZero)
	}

	rows := make([]RelativeRow, len(summaries))
	for i, s := range summaries {
		rows[i] = RelativeRow{
			GroupID:          s.GroupID,
			Mean:             s.Mean,
			PctOfOverallMean: round2((s.Mean - overall) / overall * 100),
			PctOfBest:        round2((s.Mean - best) / best * 100),
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Mean > rows[j].Mean })
	return RelativeTable{OverallMean: overall, BestMean: best, Rows: rows}, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
