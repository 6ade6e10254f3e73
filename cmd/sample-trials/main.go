// Command sample-trials generates trial workbooks and checks a running service.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/fieldtrials/internal/sampletrials"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	var (
		outFile   = flag.String("out", "", "Workbook path (default: keep in memory)")
		groups    = flag.Int("groups", sampletrials.DefaultGroups, "Number of hybrids")
		locations = flag.Int("locations", sampletrials.DefaultLocations, "Number of trial locations")
		reps      = flag.Int("reps", sampletrials.DefaultReps, "Plots per hybrid and location")
		seed      = flag.Uint64("seed", sampletrials.DefaultSeed, "Generator seed")
		baseURL   = flag.String("url", "", "Base URL of the service; empty skips the remote checks")
		timeout   = flag.Duration("timeout", sampletrials.DefaultTimeout, "HTTP request timeout")
		verbose   = flag.Bool("verbose", false, "Enable debug logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sampletrials.ShowHelp()
		return
	}

	if err := sampletrials.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &sampletrials.Config{
		OutFile:   *outFile,
		Groups:    *groups,
		Locations: *locations,
		Reps:      *reps,
		Seed:      *seed,
		BaseURL:   *baseURL,
		Timeout:   *timeout,
		Verbose:   *verbose,
	}
	if _, err := sampletrials.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Sample run failed: " + err.Error() + "\n")
		cancel()
		stop()
		os.Exit(1)
	}
}
