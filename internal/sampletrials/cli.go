package sampletrials

import (
	"fmt"
	"os"

	"github.com/okian/fieldtrials/pkg/logger"
)

// SetupLogging initializes the logger; verbose enables debug output.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return fmt.Errorf("failed to set log level: %w", err)
		}
	}
	return nil
}

// ShowHelp prints usage information for the sample trials tool.
func ShowHelp() {
	os.Stdout.WriteString(`Field Trials Sample Tool
========================

Generates a synthetic trial workbook, ranks it locally and optionally checks
a running fieldtrials service against the local results.

Usage:
  go run ./cmd/sample-trials [options]

Options:
  -out string
        Workbook path (default: keep in memory)
  -groups int
        Number of hybrids (default 12)
  -locations int
        Number of trial locations (default 10)
  -reps int
        Plots per hybrid and location (default 2)
  -seed uint
        Generator seed (default 2024)
  -url string
        Base URL of the service; empty skips the remote checks
  -timeout duration
        HTTP request timeout (default 30s)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Write a workbook to upload by hand
  go run ./cmd/sample-trials -out trials.xlsx

  # Check a local service
  go run ./cmd/sample-trials -url http://localhost:9080 -groups 20 -locations 15
`)
}
