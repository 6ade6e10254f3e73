package api

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	service "github.com/okian/fieldtrials/internal/app"
	"github.com/okian/fieldtrials/internal/domain/model"
	"github.com/okian/fieldtrials/internal/domain/scoring"
)

// Query parameter names.
const (
	paramGroupKey  = "group_key"
	paramValueKey  = "value_key"
	paramHead      = "head"
	paramCheck     = "check"
	paramThreshold = "threshold"
	paramWeightMin = "w_min"
	paramWeightMax = "w_max"
	paramWeightAvg = "w_mean"
)

var errNotFinite = errors.New("value must be finite")

// parseFilters reads one filter per categorical column present in q.
// Repeated or comma separated values become a set-membership predicate.
func parseFilters(q url.Values) model.Filters {
	var out model.Filters
	for _, col := range model.FilterColumns {
		raw, ok := q[col]
		if !ok {
			continue
		}
		var values []string
		for _, v := range raw {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					values = append(values, part)
				}
			}
		}
		out = append(out, model.In(col, values...))
	}
	return out
}

// parseWeights returns nil when no weight is overridden. Omitted weights
// keep the configured value.
func parseWeights(q url.Values, base scoring.Weights) (*scoring.Weights, error) {
	w := base
	found := false
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{paramWeightAvg, &w.Mean},
		{paramWeightMax, &w.Max},
		{paramWeightMin, &w.Min},
	} {
		v, ok, err := parseFloat(q, p.name)
		if err != nil {
			return nil, err
		}
		if ok {
			*p.dst = v
			found = true
		}
	}
	if !found {
		return nil, nil
	}
	return &w, nil
}

func parseHeadToHead(q url.Values) (service.HeadToHeadQuery, error) {
	out := service.HeadToHeadQuery{
		Head:    strings.TrimSpace(q.Get(paramHead)),
		Check:   strings.TrimSpace(q.Get(paramCheck)),
		Filters: parseFilters(q),
	}
	threshold, ok, err := parseFloat(q, paramThreshold)
	if err != nil {
		return out, err
	}
	if ok {
		out.Threshold = &threshold
	}
	return out, nil
}

func parseFloat(q url.Values, name string) (float64, bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("%s: %w", name, errNotFinite)
	}
	return v, true, nil
}
