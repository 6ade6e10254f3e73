package relative

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Heatmap is a group by location matrix of mean relative productivity.
// Cells[i][j] belongs to Groups[i] and Locations[j]; nil marks an untested pairing.
type Heatmap struct {
	Groups    []string     `json:"groups"`
	Locations []string     `json:"locations"`
	Cells     [][]*float64 `json:"cells"`
}

// Pivot averages rows into a Heatmap with both axes sorted ascending.
func Pivot(rows []Row) Heatmap {
	type key struct{ group, location string }
	acc := make(map[key][]float64)
	groups := make(map[string]struct{})
	locations := make(map[string]struct{})
	for _, r := range rows {
		k := key{r.GroupID, r.LocationID}
		acc[k] = append(acc[k], r.RelativePct)
		groups[r.GroupID] = struct{}{}
		locations[r.LocationID] = struct{}{}
	}

	h := Heatmap{Groups: sortedSet(groups), Locations: sortedSet(locations)}
	h.Cells = make([][]*float64, len(h.Groups))
	for i, g := range h.Groups {
		h.Cells[i] = make([]*float64, len(h.Locations))
		for j, l := range h.Locations {
			if vals, ok := acc[key{g, l}]; ok {
				m := stat.Mean(vals, nil)
				h.Cells[i][j] = &m
			}
		}
	}
	return h
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
