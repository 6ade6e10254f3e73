package sampletrials

import "time"

// Defaults used by the CLI.
const (
	DefaultGroups    = 12
	DefaultLocations = 10
	DefaultReps      = 2
	DefaultSeed      = 2024
	DefaultTimeout   = 30 * time.Second
)

// Tolerance for comparing remote and local scores.
const scoreTolerance = 1e-9

// Yield model in sacks per hectare.
const (
	baseYield      = 180.0
	hybridSpread   = 25.0
	locationSpread = 30.0
	plotNoise      = 6.0
)

// Agronomic ranges.
const (
	populationMin   = 55000.0
	populationRange = 20000.0
	humidityMin     = 14.0
	humidityRange   = 10.0
)
