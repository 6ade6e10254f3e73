package sampletrials

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/okian/fieldtrials/pkg/logger"
)

type site struct {
	city, state, macro, micro string
	lat, lon                  float64
}

var sites = []site{
	{"Rio Verde", "GO", "Centro", "Sudoeste Goiano", -17.79, -50.92},
	{"Sorriso", "MT", "Norte", "Alto Teles Pires", -12.54, -55.71},
	{"Cascavel", "PR", "Sul", "Oeste Paranaense", -24.95, -53.45},
	{"Londrina", "PR", "Sul", "Norte Central", -23.31, -51.16},
	{"Uberlandia", "MG", "Sudeste", "Triangulo Mineiro", -18.91, -48.27},
	{"Dourados", "MS", "Centro", "Sudoeste de MS", -22.22, -54.80},
	{"Chapeco", "SC", "Sul", "Oeste Catarinense", -27.10, -52.61},
	{"Passo Fundo", "RS", "Sul", "Noroeste Rio-grandense", -28.26, -52.40},
	{"Luis Eduardo Magalhaes", "BA", "Nordeste", "Extremo Oeste Baiano", -12.09, -45.79},
	{"Balsas", "MA", "Nordeste", "Sul Maranhense", -7.53, -46.04},
	{"Primavera do Leste", "MT", "Norte", "Sudeste Mato-grossense", -15.56, -54.30},
	{"Jatai", "GO", "Centro", "Sudoeste Goiano", -17.88, -51.71},
}

var (
	trialTypes  = []string{"Conjunta", "Estratégico"}
	epochs      = []string{"Safra", "Safrinha"}
	investments = []string{"Alto", "Médio"}
	teams       = []string{"Time A", "Time B", "Time C"}
)

// Generate builds a deterministic set of trials for cfg. Every hybrid is
// planted at every location, so all head-to-head pairs share locations.
func Generate(ctx context.Context, cfg *Config) ([]Trial, error) {
	if cfg.Groups < 1 || cfg.Locations < 1 || cfg.Reps < 1 {
		return nil, fmt.Errorf("groups, locations and reps must be positive (got %d, %d, %d)",
			cfg.Groups, cfg.Locations, cfg.Reps)
	}
	logger.Get().Info(ctx, "generating trials",
		logger.Int("groups", cfg.Groups),
		logger.Int("locations", cfg.Locations),
		logger.Int("reps", cfg.Reps))

	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	hybrids := make([]string, cfg.Groups)
	hybridEffect := make([]float64, cfg.Groups)
	for i := range hybrids {
		hybrids[i] = hybridName(i)
		hybridEffect[i] = r.NormFloat64() * hybridSpread
	}
	locationEffect := make([]float64, cfg.Locations)
	for i := range locationEffect {
		locationEffect[i] = r.NormFloat64() * locationSpread
	}

	trials := make([]Trial, 0, cfg.Groups*cfg.Locations*cfg.Reps)
	for li := 0; li < cfg.Locations; li++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled: %w", err)
		}
		s := sites[li%len(sites)]
		city := s.city
		if cycle := li / len(sites); cycle > 0 {
			city += " " + strconv.Itoa(cycle+1)
		}
		trialType := pick(r, trialTypes)
		epoch := pick(r, epochs)
		team := pick(r, teams)
		for gi, hybrid := range hybrids {
			for rep := 0; rep < cfg.Reps; rep++ {
				yield := baseYield + hybridEffect[gi] + locationEffect[li] + r.NormFloat64()*plotNoise
				trials = append(trials, Trial{
					Hybrid:       hybrid,
					City:         city + "-" + s.state,
					State:        s.state,
					RegionMacro:  s.macro,
					RegionMicro:  s.micro,
					Productivity: round2(math.Max(yield, 1)),
					Population:   math.Round(populationMin + r.Float64()*populationRange),
					Latitude:     s.lat,
					Longitude:    s.lon,
					TrialType:    trialType,
					Epoch:        epoch,
					Investment:   pick(r, investments),
					Team:         team,
					Humidity:     round2(humidityMin + r.Float64()*humidityRange),
				})
			}
		}
	}

	logger.Get().Debug(ctx, "generated trials", logger.Int("count", len(trials)))
	return trials, nil
}

// hybridName yields names in the style of commercial hybrids, e.g. 9501VIP3.
func hybridName(i int) string {
	suffixes := []string{"VIP3", "TG", "PRO4"}
	return fmt.Sprintf("95%02d%s", i+1, suffixes[i%len(suffixes)])
}

func pick(r *rand.Rand, options []string) string {
	return options[r.IntN(len(options))]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
