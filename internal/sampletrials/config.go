// Package sampletrials generates synthetic trial workbooks and checks a
// running service against a local computation over the same data.
package sampletrials

import "time"

// Config holds configuration for a sample run.
type Config struct {
	OutFile   string        // Workbook path; empty keeps the workbook in memory
	Groups    int           // Number of hybrids
	Locations int           // Number of trial locations
	Reps      int           // Plots per hybrid and location
	Seed      uint64        // Generator seed
	BaseURL   string        // Service URL; empty skips the remote checks
	Timeout   time.Duration // HTTP request timeout
	Verbose   bool          // Enable debug logging
}

// Trial is one generated plot.
type Trial struct {
	Hybrid       string
	City         string
	State        string
	RegionMacro  string
	RegionMicro  string
	Productivity float64
	Population   float64
	Latitude     float64
	Longitude    float64
	TrialType    string
	Epoch        string
	Investment   string
	Team         string
	Humidity     float64
}

// Stats holds run statistics.
type Stats struct {
	TrialsGenerated int
	RowsAccepted    int
	RowsDropped     int
	GroupsRanked    int
	Comparisons     int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
