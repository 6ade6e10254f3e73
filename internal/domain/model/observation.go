// Package model contains the trial table passed between layers.
package model

// Canonical column keys. Ingestion maps spreadsheet headers onto these.
const (
	ColGroup        = "group_id"
	ColLocation     = "location_id"
	ColState        = "state"
	ColRegionMacro  = "region_macro"
	ColRegionMicro  = "region_micro"
	ColProductivity = "productivity"
	ColPopulation   = "population_final"
	ColLatitude     = "latitude"
	ColLongitude    = "longitude"

	// Optional categorical dimensions present in some workbooks.
	ColTrialType  = "trial_type"
	ColEpoch      = "epoch"
	ColInvestment = "investment"
	ColTeam       = "team"

	// Optional numeric measure.
	ColHumidity = "humidity"
)

// FilterColumns lists the categorical columns that may be used as filters.
var FilterColumns = []string{
	ColState, ColRegionMacro, ColRegionMicro, ColTrialType, ColEpoch, ColInvestment, ColTeam,
}

// Observation is one trial record. GroupID, LocationID and Productivity are
// always populated for rows that reach a Table.
type Observation struct {
	GroupID      string
	LocationID   string
	State        string
	Productivity float64

	// Attributes holds optional categorical dimensions keyed by canonical
	// column, regions included. A missing key means the cell was empty.
	Attributes map[string]string
	// Measures holds optional numeric columns keyed by canonical column.
	// A missing key means the cell was empty or not a number.
	Measures map[string]float64
}

// Category returns the categorical value stored under col.
func (o Observation) Category(col string) (string, bool) {
	switch col {
	case ColGroup:
		return o.GroupID, true
	case ColLocation:
		return o.LocationID, true
	case ColState:
		return o.State, true
	}
	v, ok := o.Attributes[col]
	return v, ok
}

// Measure returns the numeric value stored under col.
func (o Observation) Measure(col string) (float64, bool) {
	switch col {
	case ColProductivity:
		return o.Productivity, true
	}
	v, ok := o.Measures[col]
	return v, ok
}
