package aggregate

import (
	"fmt"
	"sort"

	"github.com/okian/fieldtrials/internal/domain/model"
)

// CategoryCount is the number of rows carrying one value of a column.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Overview is the headline view of a trial table.
type Overview struct {
	Trials int             `json:"trials"`
	Groups int             `json:"groups"`
	States []CategoryCount `json:"states"`
}

// CountBy counts rows per value of col, most frequent first, ties by value.
func CountBy(table *model.Table, col string) ([]CategoryCount, error) {
	if table.Len() == 0 {
		return nil, fmt.Errorf("count by %s: %w", col, ErrEmptyInput)
	}
	if err := table.RequireCategory(col); err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, r := range table.Rows() {
		if v, ok := r.Category(col); ok {
			counts[v]++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

// Summarize builds the Overview of table.
func Summarize(table *model.Table) (Overview, error) {
	states, err := CountBy(table, model.ColState)
	if err != nil {
		return Overview{}, err
	}
	return Overview{
		Trials: table.Len(),
		Groups: len(table.Distinct(model.ColGroup)),
		States: states,
	}, nil
}
