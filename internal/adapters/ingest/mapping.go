package ingest

import (
	"sort"
	"strings"

	"github.com/okian/fieldtrials/internal/domain/model"
)

// Mapping translates spreadsheet headers into canonical column keys.
// Header matching ignores case and surrounding whitespace.
type Mapping map[string]string

// DefaultMapping returns the headers used by the trial workbooks in circulation.
func DefaultMapping() Mapping {
	return Mapping{
		"hibrido":            model.ColGroup,
		"cidadeUF":           model.ColLocation,
		"estado":             model.ColState,
		"macroRegiao":        model.ColRegionMacro,
		"microRegiao":        model.ColRegionMicro,
		"prod_media_corr_sc": model.ColProductivity,
		"populacao":          model.ColPopulation,
		"latitude":           model.ColLatitude,
		"longitude":          model.ColLongitude,
		"conjuntaGeral":      model.ColTrialType,
		"epoca":              model.ColEpoch,
		"investimento":       model.ColInvestment,
		"time":               model.ColTeam,
		"umidade":            model.ColHumidity,
	}
}

// DefaultRequired lists the canonical columns every upload must carry.
func DefaultRequired() []string {
	return []string{model.ColGroup, model.ColLocation, model.ColState, model.ColProductivity}
}

// canonicalKeys are accepted verbatim as headers.
var canonicalKeys = []string{
	model.ColGroup, model.ColLocation, model.ColState, model.ColRegionMacro, model.ColRegionMicro,
	model.ColProductivity, model.ColPopulation, model.ColLatitude, model.ColLongitude,
	model.ColTrialType, model.ColEpoch, model.ColInvestment, model.ColTeam, model.ColHumidity,
}

// numericKeys are parsed as numbers; every other canonical key is categorical.
var numericKeys = map[string]struct{}{
	model.ColProductivity: {},
	model.ColPopulation:   {},
	model.ColLatitude:     {},
	model.ColLongitude:    {},
	model.ColHumidity:     {},
}

func isNumeric(key string) bool {
	_, ok := numericKeys[key]
	return ok
}

// normalizeHeader drops a UTF-8 byte order mark, which Excel writes at the
// start of "CSV UTF-8" files, before folding case.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// resolve builds a lookup from normalized header to canonical key.
func (m Mapping) resolve() map[string]string {
	out := make(map[string]string, len(m)+len(canonicalKeys))
	for _, k := range canonicalKeys {
		out[k] = k
	}
	for header, key := range m {
		out[normalizeHeader(header)] = key
	}
	return out
}

// headersFor lists the source headers that map onto key, sorted.
func (m Mapping) headersFor(key string) []string {
	var out []string
	for header, k := range m {
		if k == key {
			out = append(out, header)
		}
	}
	sort.Strings(out)
	return out
}
