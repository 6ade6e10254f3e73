package model

import (
	"fmt"
	"sort"
)

// baseCategories and baseMeasures exist on every Table. Every other column
// exists only when at least one row carries a value for it.
var (
	baseCategories = []string{ColGroup, ColLocation, ColState}
	baseMeasures   = []string{ColProductivity}
)

// Table is an immutable set of observations sharing one schema.
// Row order carries no meaning for any computation.
type Table struct {
	rows       []Observation
	categories map[string]struct{}
	measures   map[string]struct{}
}

// NewTable copies rows into a new Table. Optional columns are discovered
// from the Attributes and Measures maps of the rows.
func NewTable(rows []Observation) *Table {
	t := &Table{
		rows:       make([]Observation, len(rows)),
		categories: make(map[string]struct{}),
		measures:   make(map[string]struct{}),
	}
	copy(t.rows, rows)
	for _, c := range baseCategories {
		t.categories[c] = struct{}{}
	}
	for _, m := range baseMeasures {
		t.measures[m] = struct{}{}
	}
	for _, r := range rows {
		for k := range r.Attributes {
			t.categories[k] = struct{}{}
		}
		for k := range r.Measures {
			t.measures[k] = struct{}{}
		}
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Rows returns a copy of the rows. Attribute maps are shared and must be
// treated as read-only.
func (t *Table) Rows() []Observation {
	if t == nil {
		return nil
	}
	out := make([]Observation, len(t.rows))
	copy(out, t.rows)
	return out
}

// HasCategory reports whether col is a categorical column of the table.
func (t *Table) HasCategory(col string) bool {
	_, ok := t.categories[col]
	return ok
}

// HasMeasure reports whether col is a numeric column of the table.
func (t *Table) HasMeasure(col string) bool {
	_, ok := t.measures[col]
	return ok
}

// Categories lists categorical columns in ascending order.
func (t *Table) Categories() []string {
	return sortedKeys(t.categories)
}

// RequireCategory returns ErrUnknownColumn when col is not categorical.
func (t *Table) RequireCategory(col string) error {
	if !t.HasCategory(col) {
		return fmt.Errorf("%w: %q is not a categorical column", ErrUnknownColumn, col)
	}
	return nil
}

// RequireMeasure returns ErrUnknownColumn when col is not numeric.
func (t *Table) RequireMeasure(col string) error {
	if !t.HasMeasure(col) {
		return fmt.Errorf("%w: %q is not a numeric column", ErrUnknownColumn, col)
	}
	return nil
}

// Where returns the rows for which keep returns true.
func (t *Table) Where(keep func(Observation) bool) *Table {
	out := &Table{categories: t.categories, measures: t.measures}
	for _, r := range t.rows {
		if keep(r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Filter applies every filter conjunctively.
func (t *Table) Filter(filters Filters) *Table {
	if len(filters.active()) == 0 {
		return t
	}
	return t.Where(filters.Match)
}

// Distinct returns the distinct values of a categorical column in first-seen order.
func (t *Table) Distinct(col string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.rows {
		v, ok := r.Category(col)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
