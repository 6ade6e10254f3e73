package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/okian/fieldtrials/internal/adapters/repository"
	"github.com/okian/fieldtrials/internal/domain/model"
	"github.com/okian/fieldtrials/pkg/logger"
	"github.com/okian/fieldtrials/pkg/metrics"
)

// UploadResult describes a newly created session.
type UploadResult struct {
	SessionID   string `json:"session_id"`
	Filename    string `json:"filename"`
	Rows        int    `json:"rows"`
	DroppedRows int    `json:"dropped_rows"`
	Groups      int    `json:"groups"`
}

// Upload validates a spreadsheet and stores it as a new session.
func (s *Service) Upload(ctx context.Context, filename string, src io.Reader) (UploadResult, error) {
	store, err := s.components()
	if err != nil {
		return UploadResult{}, err
	}
	log := s.log()
	log.Debug(ctx, "upload received", logger.String("filename", filename))

	res, err := s.reader.Read(ctx, filename, src)
	if err != nil {
		metrics.RecordUpload(metrics.OutcomeError)
		metrics.RecordDomainError(ErrorKind(err))
		log.Warn(ctx, "upload rejected", logger.String("filename", filename), logger.Error(err))
		return UploadResult{}, err
	}
	metrics.RecordRows(res.Kept, res.Dropped)

	sess, err := store.Put(ctx, repository.Session{
		Filename: filename,
		Table:    res.Table,
		Kept:     res.Kept,
		Dropped:  res.Dropped,
	})
	if err != nil {
		metrics.RecordUpload(metrics.OutcomeError)
		return UploadResult{}, fmt.Errorf("store session: %w", err)
	}
	metrics.RecordUpload(metrics.OutcomeOK)

	out := UploadResult{
		SessionID:   sess.ID,
		Filename:    filename,
		Rows:        res.Kept,
		DroppedRows: res.Dropped,
		Groups:      len(res.Table.Distinct(model.ColGroup)),
	}
	log.Info(ctx, "upload accepted",
		logger.String("session", out.SessionID),
		logger.String("filename", filename),
		logger.Int("rows", out.Rows),
		logger.Int("droppedRows", out.DroppedRows),
		logger.Int("groups", out.Groups),
	)
	return out, nil
}

// DeleteSession drops a session and its table.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	store, err := s.components()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	s.log().Info(ctx, "session deleted", logger.String("session", id))
	return nil
}

// session returns the session table after checking that every active filter
// names a categorical column it carries.
func (s *Service) session(ctx context.Context, id string, filters model.Filters) (*model.Table, error) {
	store, err := s.components()
	if err != nil {
		return nil, err
	}
	sess, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, col := range filters.Columns() {
		if err := sess.Table.RequireCategory(col); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
	}
	return sess.Table, nil
}

// filtered is session with filters applied.
func (s *Service) filtered(ctx context.Context, id string, filters model.Filters) (*model.Table, error) {
	table, err := s.session(ctx, id, filters)
	if err != nil {
		return nil, err
	}
	return table.Filter(filters), nil
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get()
	}
	return l
}

// track records the outcome of one computation and logs domain failures.
func (s *Service) track(ctx context.Context, kind, session string, start time.Time, err error) error {
	latency := float64(time.Since(start).Microseconds()) / 1000
	if err == nil {
		metrics.RecordComputation(kind, metrics.OutcomeOK, latency)
		return nil
	}
	metrics.RecordComputation(kind, metrics.OutcomeError, latency)
	errKind := ErrorKind(err)
	metrics.RecordDomainError(errKind)
	s.log().Warn(ctx, "computation failed",
		logger.String("computation", kind),
		logger.String("session", session),
		logger.String("kind", errKind),
		logger.Error(err),
	)
	return err
}
