package relative

import (
	"fmt"
	"strconv"
)

// Bands bins relative percentages by ascending edges. Edges [90, 95] give
// the labels "<90", "90-95" and ">=95".
type Bands struct {
	edges  []float64
	labels []string
}

// NewBands validates edges and precomputes the labels.
func NewBands(edges []float64) (*Bands, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("%w: at least one edge is required", ErrInvalidBands)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, fmt.Errorf("%w: edges must be strictly ascending, got %v", ErrInvalidBands, edges)
		}
	}
	b := &Bands{edges: append([]float64(nil), edges...)}
	b.labels = append(b.labels, "<"+format(edges[0]))
	for i := 1; i < len(edges); i++ {
		b.labels = append(b.labels, format(edges[i-1])+"-"+format(edges[i]))
	}
	b.labels = append(b.labels, ">="+format(edges[len(edges)-1]))
	return b, nil
}

// Labels lists every band from lowest to highest.
func (b *Bands) Labels() []string {
	return append([]string(nil), b.labels...)
}

// Band returns the label of the band containing pct.
func (b *Bands) Band(pct float64) string {
	for i, e := range b.edges {
		if pct < e {
			return b.labels[i]
		}
	}
	return b.labels[len(b.labels)-1]
}

// Apply sets Band on every row in place.
func (b *Bands) Apply(rows []Row) {
	for i := range rows {
		rows[i].Band = b.Band(rows[i].RelativePct)
	}
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
