package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cinelog-io/cinelog-engine/pkg/apperrors"
	"github.com/cinelog-io/cinelog-engine/pkg/config"
)

// Scheduler runs the periodic sync chain: primary sync for the
// configured account, then enrichment. Enrichment only runs when the
// primary sync succeeded and the enrichment source is configured.
type Scheduler struct {
	cfg          config.SchedulerConfig
	username     string
	fetchDetails bool
	sync         SyncService
	enrichment   EnrichmentService
	logger       *zap.Logger
	stop         chan struct{}
}

// NewScheduler creates a Scheduler for the configured sync account.
func NewScheduler(cfg config.SchedulerConfig, lbCfg config.LetterboxdConfig, sync SyncService, enrichment EnrichmentService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		username:     lbCfg.Username,
		fetchDetails: lbCfg.FetchDetails,
		sync:         sync,
		enrichment:   enrichment,
		logger:       logger.Named("scheduler"),
	}
}

// Start begins the periodic sync loop. Returns immediately; the loop
// runs until the context is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info("Scheduler disabled")
		return
	}
	if s.username == "" {
		s.logger.Warn("No sync username configured, scheduler disabled")
		return
	}
	if s.stop != nil {
		return
	}

	s.stop = make(chan struct{})
	s.logger.Info("Scheduler started",
		zap.String("username", s.username),
		zap.Duration("interval", s.cfg.Interval),
		zap.Bool("run_on_start", s.cfg.RunOnStart))

	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		if s.cfg.RunOnStart {
			s.runSyncChain(ctx)
		}

		for {
			select {
			case <-ticker.C:
				s.runSyncChain(ctx)
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the scheduler loop.
func (s *Scheduler) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
}

func (s *Scheduler) runSyncChain(ctx context.Context) {
	s.logger.Info("Scheduled sync starting", zap.String("username", s.username))

	result, err := s.sync.RunPrimarySync(ctx, s.username, s.fetchDetails)
	if err != nil {
		if errors.Is(err, apperrors.ErrSyncInProgress) {
			s.logger.Warn("Skipping scheduled sync, another run is in progress")
			return
		}
		s.logger.Error("Scheduled primary sync failed", zap.Error(err))
		return
	}

	s.logger.Info("Scheduled primary sync completed",
		zap.Int("diary_created", result.DiaryCreated),
		zap.Int("watchlist_added", result.WatchlistAdded))

	enrichResult, err := s.enrichment.RunEnrichmentSync(ctx, 0, false)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotConfigured) {
			s.logger.Info("Enrichment source not configured, skipping enrichment")
			return
		}
		s.logger.Error("Scheduled enrichment sync failed", zap.Error(err))
		return
	}

	s.logger.Info("Scheduled enrichment sync completed",
		zap.Int("enriched", enrichResult.Enriched),
		zap.Int("failed", enrichResult.Failed))
}
