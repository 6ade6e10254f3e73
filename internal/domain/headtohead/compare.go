// Package headtohead compares two groups location by location.
package headtohead

import (
	"fmt"
	"sort"

	"github.com/okian/fieldtrials/internal/domain/aggregate"
	"github.com/okian/fieldtrials/internal/domain/model"
)

// Outcome classifies one paired location from the head group's point of view.
type Outcome string

// Outcomes.
const (
	Win  Outcome = "win"
	Loss Outcome = "loss"
	Tie  Outcome = "tie"
)

// Row is the paired result at one location.
type Row struct {
	LocationID string  `json:"location_id"`
	HeadMean   float64 `json:"head_mean"`
	CheckMean  float64 `json:"check_mean"`
	Difference float64 `json:"difference"`
	Outcome    Outcome `json:"outcome"`
}

// Summary aggregates the rows of one comparison. The win and loss statistics
// are nil when that outcome never occurs.
type Summary struct {
	Head        string   `json:"head"`
	Check       string   `json:"check"`
	Threshold   float64  `json:"threshold"`
	Total       int      `json:"total"`
	Wins        int      `json:"wins"`
	Losses      int      `json:"losses"`
	Ties        int      `json:"ties"`
	BiggestWin  *float64 `json:"biggest_win"`
	MeanWin     *float64 `json:"mean_win"`
	BiggestLoss *float64 `json:"biggest_loss"`
	MeanLoss    *float64 `json:"mean_loss"`
}

// Classify maps a difference onto an outcome.
func Classify(diff, threshold float64) Outcome {
	switch {
	case diff > threshold:
		return Win
	case diff < -threshold:
		return Loss
	default:
		return Tie
	}
}

// Compare restricts table by filters, averages head and check per location
// and pairs the locations both groups were trialled at. Locations seen by
// only one side are dropped. Rows are ordered by location ascending.
func Compare(table *model.Table, head, check string, filters model.Filters, opts ...Option) ([]Row, Summary, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.threshold < 0 {
		return nil, Summary{}, fmt.Errorf("%w: %g", ErrInvalidThreshold, o.threshold)
	}

	filtered := table.Filter(filters)
	headMeans, err := sideMeans(filtered, head, o)
	if err != nil {
		return nil, Summary{}, err
	}
	checkMeans, err := sideMeans(filtered, check, o)
	if err != nil {
		return nil, Summary{}, err
	}

	var rows []Row
	for loc, h := range headMeans {
		c, ok := checkMeans[loc]
		if !ok {
			continue
		}
		diff := h - c
		rows = append(rows, Row{
			LocationID: loc,
			HeadMean:   h,
			CheckMean:  c,
			Difference: diff,
			Outcome:    Classify(diff, o.threshold),
		})
	}
	if len(rows) == 0 {
		return nil, Summary{}, fmt.Errorf("%w: %s and %s share no location", ErrEmptyComparison, head, check)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].LocationID < rows[j].LocationID })

	return rows, summarize(head, check, o.threshold, rows), nil
}

func sideMeans(table *model.Table, group string, o options) (map[string]float64, error) {
	side := table.Where(func(r model.Observation) bool {
		g, ok := r.Category(o.groupKey)
		return ok && g == group
	})
	if side.Len() == 0 {
		return nil, fmt.Errorf("%w: no rows for %s", ErrEmptyComparison, group)
	}
	return aggregate.MeanBy(side, o.locationKey, o.valueKey)
}

func summarize(head, check string, threshold float64, rows []Row) Summary {
	s := Summary{Head: head, Check: check, Threshold: threshold, Total: len(rows)}
	var winSum, lossSum float64
	for _, r := range rows {
		switch r.Outcome {
		case Win:
			s.Wins++
			winSum += r.Difference
			if s.BiggestWin == nil || r.Difference > *s.BiggestWin {
				s.BiggestWin = ptr(r.Difference)
			}
		case Loss:
			s.Losses++
			lossSum += r.Difference
			if s.BiggestLoss == nil || r.Difference < *s.BiggestLoss {
				s.BiggestLoss = ptr(r.Difference)
			}
		case Tie:
			s.Ties++
		}
	}
	if s.Wins > 0 {
		s.MeanWin = ptr(winSum / float64(s.Wins))
	}
	if s.Losses > 0 {
		s.MeanLoss = ptr(lossSum / float64(s.Losses))
	}
	return s
}

func ptr(v float64) *float64 { return &v }
