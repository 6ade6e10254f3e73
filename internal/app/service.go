// Package service orchestrates uploads, sessions and the trial computations
// behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/okian/fieldtrials/internal/adapters/charts"
	"github.com/okian/fieldtrials/internal/adapters/ingest"
	"github.com/okian/fieldtrials/internal/adapters/repository"
	"github.com/okian/fieldtrials/internal/domain/headtohead"
	"github.com/okian/fieldtrials/internal/domain/relative"
	"github.com/okian/fieldtrials/internal/domain/scoring"
	"github.com/okian/fieldtrials/pkg/logger"
	"github.com/okian/fieldtrials/pkg/metrics"
)

// ErrNotStarted is returned by operations called before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for trial analysis.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	reader *ingest.Reader
	charts *charts.Builder
	bands  *relative.Bands

	// Configuration
	weights     scoring.Weights
	threshold   float64
	highlighted []string
	bandEdges   []float64
	mapping     ingest.Mapping
	sessionTTL  time.Duration
	maxSessions int

	// State
	started   bool
	startedAt time.Time
	ownsStore bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWeights sets the default decision matrix weights.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) { s.weights = w }
}

// WithTieThreshold sets the default head-to-head tie threshold.
func WithTieThreshold(t float64) Option {
	return func(s *Service) {
		if t >= 0 {
			s.threshold = t
		}
	}
}

// WithHighlightedGroups sets the groups drawn apart and offered as heads.
func WithHighlightedGroups(groups ...string) Option {
	return func(s *Service) { s.highlighted = append([]string(nil), groups...) }
}

// WithRelativeBands sets the band edges for relative productivity.
func WithRelativeBands(edges ...float64) Option {
	return func(s *Service) {
		if len(edges) > 0 {
			s.bandEdges = append([]float64(nil), edges...)
		}
	}
}

// WithColumnMapping merges header overrides into the ingestion mapping.
func WithColumnMapping(m ingest.Mapping) Option {
	return func(s *Service) { s.mapping = m }
}

// WithSessionTTL sets the idle lifetime of sessions.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithMaxSessions caps live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithStore replaces the session store. The caller keeps ownership.
func WithStore(store repository.Store) Option {
	return func(s *Service) { s.store = store }
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		weights:     scoring.DefaultWeights(),
		threshold:   headtohead.DefaultThreshold,
		bandEdges:   []float64{90, 95},
		sessionTTL:  repository.DefaultTTL,
		maxSessions: repository.DefaultMaxSessions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates configuration and initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if err := s.weights.Validate(); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	bands, err := relative.NewBands(s.bandEdges)
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	s.logger.Info(ctx, "starting trial analysis service...")

	s.bands = bands
	s.reader = ingest.NewReader(ingest.WithMapping(s.mapping))
	s.charts = charts.NewBuilder(charts.WithHighlighted(s.highlighted...))
	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx,
			repository.WithTTL(s.sessionTTL),
			repository.WithMaxSessions(s.maxSessions),
		)
		s.ownsStore = true
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "trial analysis service started",
		logger.Float64("weightMean", s.weights.Mean),
		logger.Float64("weightMax", s.weights.Max),
		logger.Float64("weightMin", s.weights.Min),
		logger.Float64("tieThreshold", s.threshold),
		logger.Duration("sessionTTL", s.sessionTTL),
		logger.Int("maxSessions", s.maxSessions),
	)
	return nil
}

// Stop releases the session store when the service created it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping trial analysis service...")

	if s.ownsStore {
		if closer, ok := s.store.(io.Closer); ok {
			_ = closer.Close()
		}
		s.store = nil
		s.ownsStore = false
	}
	s.started = false
	s.logger.Info(context.Background(), "trial analysis service stopped")
}

// Weights returns the configured decision matrix weights.
func (s *Service) Weights() scoring.Weights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":            s.started,
		"maxSessions":        s.maxSessions,
		"sessionTTLSeconds":  int(s.sessionTTL.Seconds()),
		"tieThreshold":       s.threshold,
		"weights":            s.weights,
		"highlightedGroups":  s.highlighted,
		"relativeBandLabels": nil,
	}
	if s.started {
		active := s.store.Count(context.Background())
		stats["activeSessions"] = active
		stats["uptimeSeconds"] = int(time.Since(s.startedAt).Seconds())
		stats["relativeBandLabels"] = s.bands.Labels()
		metrics.UpdateSessionsActive(active)
	}
	return stats
}

// components returns the started components or ErrNotStarted.
func (s *Service) components() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}
