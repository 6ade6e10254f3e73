package headtohead

import "github.com/okian/fieldtrials/internal/domain/model"

// Candidates lists the groups offered on each side of a comparison.
type Candidates struct {
	Heads  []string `json:"heads"`
	Checks []string `json:"checks"`
}

// ListCandidates offers the highlighted groups present in table as heads and
// every other group as checks. Without highlighted groups every group is
// offered on both sides.
func ListCandidates(table *model.Table, highlighted []string) Candidates {
	groups := table.Distinct(model.ColGroup)
	if len(highlighted) == 0 {
		return Candidates{Heads: groups, Checks: groups}
	}

	present := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		present[g] = struct{}{}
	}
	own := make(map[string]struct{}, len(highlighted))
	var c Candidates
	for _, h := range highlighted {
		own[h] = struct{}{}
		if _, ok := present[h]; ok {
			c.Heads = append(c.Heads, h)
		}
	}
	for _, g := range groups {
		if _, ok := own[g]; !ok {
			c.Checks = append(c.Checks, g)
		}
	}
	return c
}
