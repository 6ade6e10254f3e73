package sampletrials

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fieldtrials/internal/adapters/ingest"
	"github.com/okian/fieldtrials/internal/domain/aggregate"
	"github.com/okian/fieldtrials/internal/domain/headtohead"
	"github.com/okian/fieldtrials/internal/domain/model"
	"github.com/okian/fieldtrials/internal/domain/scoring"
	"github.com/okian/fieldtrials/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0640
)

// Run generates a workbook, scores it locally and, when BaseURL is set,
// checks the service against the local results.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	runID := uuid.NewString()
	log := logger.Get().Named("sampletrials")
	uploadName := "sample-trials-" + runID + ".xlsx"

	log.Info(ctx, "starting sample trial run",
		logger.String("runID", runID),
		logger.String("baseURL", cfg.BaseURL),
		logger.String("out", cfg.OutFile),
		logger.Int("groups", cfg.Groups),
		logger.Int("locations", cfg.Locations),
		logger.Int("reps", cfg.Reps),
		logger.Any("seed", cfg.Seed))

	trials, err := Generate(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("trial generation failed: %w", err)
	}
	stats.TrialsGenerated = len(trials)

	var workbook bytes.Buffer
	if err := WriteWorkbook(&workbook, trials); err != nil {
		return nil, fmt.Errorf("workbook generation failed: %w", err)
	}
	if cfg.OutFile != "" {
		if err := saveWorkbook(ctx, cfg.OutFile, workbook.Bytes()); err != nil {
			return nil, err
		}
	}

	// The local side reads the same bytes the service receives.
	res, err := ingest.NewReader().Read(ctx, uploadName, bytes.NewReader(workbook.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("local ingest failed: %w", err)
	}
	stats.RowsAccepted, stats.RowsDropped = res.Kept, res.Dropped
	weights := scoring.DefaultWeights()
	local, err := localRanking(res.Table, weights)
	if err != nil {
		return nil, fmt.Errorf("local scoring failed: %w", err)
	}
	stats.GroupsRanked = len(local)

	if cfg.BaseURL != "" {
		if err := verifyRemote(ctx, cfg, uploadName, workbook.Bytes(), res.Table, local, weights, stats); err != nil {
			return nil, err
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats, local)
	return stats, nil
}

func localRanking(table *model.Table, w scoring.Weights) ([]scoring.Row, error) {
	summaries, err := aggregate.Aggregate(table, model.ColGroup, model.ColProductivity)
	if err != nil {
		return nil, err
	}
	return scoring.Score(summaries, w)
}

func verifyRemote(ctx context.Context, cfg *Config, uploadName string, workbook []byte, table *model.Table, local []scoring.Row, w scoring.Weights, stats *Stats) error {
	log := logger.Get().Named("sampletrials")
	client := NewHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}
	up, err := client.Upload(ctx, uploadName, workbook)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	log.Info(ctx, "workbook uploaded", logger.String("session", up.SessionID), logger.Int("rows", up.Rows))
	defer func() {
		if err := client.DeleteSession(context.WithoutCancel(ctx), up.SessionID); err != nil {
			log.Warn(ctx, "failed to delete session", logger.String("session", up.SessionID), logger.Error(err))
		}
	}()

	if up.Rows != stats.RowsAccepted || up.DroppedRows != stats.RowsDropped {
		return fmt.Errorf("%w: service kept %d and dropped %d rows, expected %d and %d",
			ErrRankingMismatch, up.Rows, up.DroppedRows, stats.RowsAccepted, stats.RowsDropped)
	}

	remote, err := client.DecisionMatrix(ctx, up.SessionID, w)
	if err != nil {
		return fmt.Errorf("decision matrix retrieval failed: %w", err)
	}
	if err := VerifyRanking(local, remote); err != nil {
		return err
	}
	log.Info(ctx, "decision matrix verified", logger.Int("groups", len(remote)))

	candidates, err := client.Candidates(ctx, up.SessionID)
	if err != nil {
		return fmt.Errorf("candidate retrieval failed: %w", err)
	}
	head, check := firstPair(candidates)
	if head == "" {
		log.Info(ctx, "no head-to-head pair available")
		return nil
	}
	remoteCmp, err := client.HeadToHead(ctx, up.SessionID, head, check)
	if err != nil {
		return fmt.Errorf("head-to-head retrieval failed: %w", err)
	}
	// The service applies its configured threshold; compare with the same one.
	_, localSum, err := headtohead.Compare(table, head, check, nil, headtohead.WithThreshold(remoteCmp.Summary.Threshold))
	if err != nil {
		return fmt.Errorf("local head-to-head failed: %w", err)
	}
	if err := verifySummary(localSum, remoteCmp.Summary); err != nil {
		return err
	}
	stats.Comparisons++
	log.Info(ctx, "head-to-head verified",
		logger.String("head", head),
		logger.String("check", check),
		logger.Int("wins", localSum.Wins),
		logger.Int("ties", localSum.Ties),
		logger.Int("losses", localSum.Losses))
	return nil
}

// firstPair returns the first head and a different check, if any.
func firstPair(c headtohead.Candidates) (string, string) {
	for _, head := range c.Heads {
		for _, check := range c.Checks {
			if check != head {
				return head, check
			}
		}
	}
	return "", ""
}

func verifySummary(local, remote headtohead.Summary) error {
	if local.Total != remote.Total || local.Wins != remote.Wins || local.Losses != remote.Losses || local.Ties != remote.Ties {
		return fmt.Errorf("%w: head-to-head %s x %s is %d/%d/%d locally and %d/%d/%d remotely",
			ErrRankingMismatch, local.Head, local.Check,
			local.Wins, local.Ties, local.Losses, remote.Wins, remote.Ties, remote.Losses)
	}
	return nil
}

func saveWorkbook(ctx context.Context, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	logger.Get().Info(ctx, "workbook saved", logger.String("filename", path), logger.Int("bytes", len(data)))
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats, ranking []scoring.Row) {
	top := ""
	if len(ranking) > 0 {
		top = ranking[0].GroupID
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("trialsGenerated", stats.TrialsGenerated),
		logger.Int("rowsAccepted", stats.RowsAccepted),
		logger.Int("rowsDropped", stats.RowsDropped),
		logger.Int("groupsRanked", stats.GroupsRanked),
		logger.Int("comparisons", stats.Comparisons),
		logger.String("topGroup", top),
		logger.String("duration", stats.Duration.String()))
}
