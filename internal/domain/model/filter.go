package model

import "strings"

// AllValues is the sentinel meaning "no restriction" for a filter.
const AllValues = "all"

// sentinel the Portuguese select boxes emit.
const allValuesPT = "todos"

// Filter restricts a categorical column to a set of allowed values.
// One value is an equality predicate, several are set membership, none
// (or any sentinel value) leaves the column unrestricted.
type Filter struct {
	Column string
	Values []string
}

// Equals builds a single-value filter.
func Equals(col, value string) Filter {
	return Filter{Column: col, Values: []string{value}}
}

// In builds a set-membership filter.
func In(col string, values ...string) Filter {
	return Filter{Column: col, Values: values}
}

// Unrestricted reports whether the filter accepts every row.
func (f Filter) Unrestricted() bool {
	if len(f.Values) == 0 {
		return true
	}
	for _, v := range f.Values {
		if IsAllValues(v) {
			return true
		}
	}
	return false
}

// Match reports whether o passes the filter. Rows missing the column never match
// a restricted filter.
func (f Filter) Match(o Observation) bool {
	if f.Unrestricted() {
		return true
	}
	v, ok := o.Category(f.Column)
	if !ok {
		return false
	}
	for _, want := range f.Values {
		if v == want {
			return true
		}
	}
	return false
}

// IsAllValues reports whether v is a "no restriction" sentinel.
func IsAllValues(v string) bool {
	v = strings.TrimSpace(v)
	return strings.EqualFold(v, AllValues) || strings.EqualFold(v, allValuesPT)
}

// Filters is a conjunction of filters.
type Filters []Filter

// Match reports whether o passes every filter.
func (fs Filters) Match(o Observation) bool {
	for _, f := range fs {
		if !f.Match(o) {
			return false
		}
	}
	return true
}

func (fs Filters) active() Filters {
	var out Filters
	for _, f := range fs {
		if !f.Unrestricted() {
			out = append(out, f)
		}
	}
	return out
}

// Columns lists the columns restricted by active filters.
func (fs Filters) Columns() []string {
	var out []string
	for _, f := range fs.active() {
		out = append(out, f.Column)
	}
	return out
}
