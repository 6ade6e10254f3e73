// Package scoring ranks groups with a weighted, min-max normalized decision matrix.
package scoring

import (
	"fmt"
	"sort"

	"github.com/okian/fieldtrials/internal/domain/aggregate"
)

// flatValue is the normalized value used when every group shares one metric value.
const flatValue = 0.5

// Row is one line of the decision matrix. Raw values are carried next to the
// normalized ones so either can be rendered.
type Row struct {
	Rank           int     `json:"rank"`
	GroupID        string  `json:"group_id"`
	Mean           float64 `json:"mean"`
	Max            float64 `json:"max"`
	Min            float64 `json:"min"`
	NormalizedMean float64 `json:"normalized_mean"`
	NormalizedMax  float64 `json:"normalized_max"`
	NormalizedMin  float64 `json:"normalized_min"`
	FinalScore     float64 `json:"final_score"`
}

// Score normalizes mean, max and min across groups to [0, 1], combines them
// with w and returns rows sorted by FinalScore descending. Equal scores keep
// the order of summaries.
func Score(summaries []aggregate.GroupSummary, w Weights) ([]Row, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("score: %w", ErrEmptyInput)
	}

	means := make([]float64, len(summaries))
	maxes := make([]float64, len(summaries))
	mins := make([]float64, len(summaries))
	for i, s := range summaries {
		means[i], maxes[i], mins[i] = s.Mean, s.Max, s.Min
	}
	nMean, nMax, nMin := normalize(means), normalize(maxes), normalize(mins)

	rows := make([]Row, len(summaries))
	for i, s := range summaries {
		rows[i] = Row{
			GroupID:        s.GroupID,
			Mean:           s.Mean,
			Max:            s.Max,
			Min:            s.Min,
			NormalizedMean: nMean[i],
			NormalizedMax:  nMax[i],
			NormalizedMin:  nMin[i],
			FinalScore:     w.Mean*nMean[i] + w.Max*nMax[i] + w.Min*nMin[i],
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].FinalScore > rows[j].FinalScore })
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// normalize rescales xs to [0, 1]. A zero range maps every value to flatValue.
func normalize(xs []float64) []float64 {
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	out := make([]float64, len(xs))
	span := hi - lo
	for i, x := range xs {
		switch {
		case span == 0:
			out[i] = flatValue
		case x == hi:
			out[i] = 1
		default:
			out[i] = (x - lo) / span
		}
	}
	return out
}
