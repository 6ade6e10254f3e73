// Package relative expresses productivity against the table-wide maximum.
package relative

import (
	"fmt"

	"github.com/okian/fieldtrials/internal/domain/model"
)

// Row is one observation with its relative productivity attached.
type Row struct {
	GroupID     string  `json:"group_id"`
	LocationID  string  `json:"location_id"`
	State       string  `json:"state"`
	Value       float64 `json:"value"`
	RelativePct float64 `json:"relative_pct"`
	Band        string  `json:"band,omitempty"`
}

// NormalizeToMax computes 100*value/max for every row, max taken over the whole
// table. The output has one row per input row, in input order.
func NormalizeToMax(table *model.Table, valueKey string) ([]Row, error) {
	if table.Len() == 0 {
		return nil, fmt.Errorf("normalize %s: empty table: %w", valueKey, ErrDivisionByZero)
	}
	if err := table.RequireMeasure(valueKey); err != nil {
		return nil, err
	}

	rows := table.Rows()
	values := make([]float64, len(rows))
	present := make([]bool, len(rows))
	var maxVal float64
	seen := false
	for i, r := range rows {
		v, ok := r.Measure(valueKey)
		if !ok {
			continue
		}
		values[i], present[i] = v, true
		if !seen || v > maxVal {
			maxVal, seen = v, true
		}
	}
	if !seen || maxVal == 0 {
		return nil, fmt.Errorf("normalize %s: maximum is zero: %w", valueKey, ErrDivisionByZero)
	}

	out := make([]Row, 0, len(rows))
	for i, r := range rows {
		row := Row{GroupID: r.GroupID, LocationID: r.LocationID, State: r.State}
		if present[i] {
			row.Value = values[i]
			// Dividing first keeps the maximum row at exactly 100.
			row.RelativePct = values[i] / maxVal * 100
		}
		out = append(out, row)
	}
	return out, nil
}
