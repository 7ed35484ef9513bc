package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cinelog-io/cinelog-engine/pkg/apperrors"
	"github.com/cinelog-io/cinelog-engine/pkg/models"
	"github.com/cinelog-io/cinelog-engine/pkg/repositories"
	"github.com/cinelog-io/cinelog-engine/pkg/tmdb"
)

// TMDBClient is the slice of the enrichment source client the
// orchestrator needs.
type TMDBClient interface {
	IsConfigured() bool
	FetchMovie(ctx context.Context, tmdbID int64) (*tmdb.MovieRecord, error)
}

// enrichmentRunSubject labels enrichment ledger rows; enrichment runs
// are system-level, not tied to a username.
const enrichmentRunSubject = "system"

// EnrichmentSyncResult summarizes one enrichment run.
type EnrichmentSyncResult struct {
	RunID         uuid.UUID `json:"run_id"`
	TotalFilms    int       `json:"total_films"`
	FilmsToEnrich int       `json:"films_to_enrich"`
	Enriched      int       `json:"enriched"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
}

// SingleEnrichmentResult is the outcome of enriching one film by id.
type SingleEnrichmentResult struct {
	Status   string    `json:"status"`
	FilmID   uuid.UUID `json:"film_id"`
	FilmSlug string    `json:"film_slug"`
	TMDBID   string    `json:"tmdb_id"`
}

// EnrichmentService fetches metadata from the enrichment source for
// films that carry a source id.
type EnrichmentService interface {
	// RunEnrichmentSync enriches all eligible films. limit caps how
	// many are processed (0 means all); force re-fetches films that
	// already have an enrichment record. Only one enrichment run
	// executes at a time.
	RunEnrichmentSync(ctx context.Context, limit int, force bool) (*EnrichmentSyncResult, error)

	// EnrichSingle enriches one film by its id.
	EnrichSingle(ctx context.Context, filmID uuid.UUID, force bool) (*SingleEnrichmentResult, error)

	// Status reports enrichment coverage over the catalogue.
	Status(ctx context.Context) (*models.EnrichmentStatus, error)
}

type enrichmentService struct {
	locker     repositories.AdvisoryLocker
	client     TMDBClient
	upsert     UpsertService
	films      repositories.FilmRepository
	enrichment repositories.EnrichmentRepository
	runs       repositories.RunRepository
	logger     *zap.Logger
}

// NewEnrichmentService creates a new EnrichmentService.
func NewEnrichmentService(
	locker repositories.AdvisoryLocker,
	client TMDBClient,
	upsert UpsertService,
	films repositories.FilmRepository,
	enrichment repositories.EnrichmentRepository,
	runs repositories.RunRepository,
	logger *zap.Logger,
) EnrichmentService {
	return &enrichmentService{
		locker:     locker,
		client:     client,
		upsert:     upsert,
		films:      films,
		enrichment: enrichment,
		runs:       runs,
		logger:     logger.Named("enrichment-service"),
	}
}

var _ EnrichmentService = (*enrichmentService)(nil)

func (s *enrichmentService) RunEnrichmentSync(ctx context.Context, limit int, force bool) (*EnrichmentSyncResult, error) {
	if !s.client.IsConfigured() {
		return nil, apperrors.ErrNotConfigured
	}

	lock, err := s.locker.Acquire(ctx, repositories.EnrichmentLockKey())
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	run, err := s.runs.Begin(ctx, models.RunKindEnrichment, enrichmentRunSubject)
	if err != nil {
		return nil, fmt.Errorf("begin enrichment run: %w", err)
	}

	result := &EnrichmentSyncResult{RunID: run.ID}

	if err := s.runEnrichmentSync(ctx, limit, force, result); err != nil {
		s.logger.Error("Enrichment sync failed", zap.Error(err))
		s.finishRun(run.ID, models.RunStatusFailed, result.Enriched, err)
		return result, err
	}

	status := models.RunStatusCompleted
	if result.Failed > 0 {
		status = models.RunStatusCompletedWithErrors
	}
	s.finishRun(run.ID, status, result.Enriched, nil)

	s.logger.Info("Enrichment sync complete",
		zap.Int("enriched", result.Enriched),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))

	return result, nil
}

func (s *enrichmentService) runEnrichmentSync(ctx context.Context, limit int, force bool, result *EnrichmentSyncResult) error {
	total, err := s.films.CountWithSourceID(ctx)
	if err != nil {
		return err
	}
	result.TotalFilms = total

	films, err := s.films.ListEnrichable(ctx, force, limit)
	if err != nil {
		return err
	}
	result.FilmsToEnrich = len(films)

	s.logger.Info("Enrichment sync started",
		zap.Int("films_to_enrich", len(films)),
		zap.Int("total_with_source_id", total),
		zap.Bool("force", force))

	for i, film := range films {
		if err := ctx.Err(); err != nil {
			return err
		}

		if (i+1)%10 == 0 {
			s.logger.Info("Enrichment progress",
				zap.Int("processed", i+1),
				zap.Int("total", len(films)))
		}

		outcome, err := s.enrichFilm(ctx, film, force)
		if err != nil {
			return err
		}
		switch outcome {
		case "enriched":
			result.Enriched++
		case "skipped":
			result.Skipped++
		case "failed":
			result.Failed++
		}
	}

	return nil
}

// enrichFilm processes one film. Fetch and data problems are isolated
// to the film and reported through the outcome; only persistence
// errors abort the run.
func (s *enrichmentService) enrichFilm(ctx context.Context, film *models.Film, force bool) (string, error) {
	if film.TMDBID == nil || *film.TMDBID == "" {
		return "skipped", nil
	}

	if !force {
		_, err := s.enrichment.GetByFilmID(ctx, film.ID)
		if err == nil {
			return "skipped", nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return "", err
		}
	}

	tmdbID, err := strconv.ParseInt(*film.TMDBID, 10, 64)
	if err != nil {
		s.logger.Error("Invalid enrichment source id",
			zap.String("slug", film.Slug),
			zap.String("tmdb_id", *film.TMDBID))
		return "failed", nil
	}

	record, err := s.client.FetchMovie(ctx, tmdbID)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.logger.Error("Failed to fetch enrichment data",
			zap.String("slug", film.Slug),
			zap.Int64("tmdb_id", tmdbID),
			zap.Error(err))
		return "failed", nil
	}
	if record == nil {
		s.logger.Warn("No enrichment data found",
			zap.String("slug", film.Slug),
			zap.Int64("tmdb_id", tmdbID))
		return "failed", nil
	}

	if err := s.upsert.UpsertEnrichment(ctx, film.ID, record); err != nil {
		return "", err
	}

	return "enriched", nil
}

func (s *enrichmentService) EnrichSingle(ctx context.Context, filmID uuid.UUID, force bool) (*SingleEnrichmentResult, error) {
	if !s.client.IsConfigured() {
		return nil, apperrors.ErrNotConfigured
	}

	film, err := s.films.GetByID(ctx, filmID)
	if err != nil {
		return nil, err
	}
	if film.TMDBID == nil || *film.TMDBID == "" {
		return nil, apperrors.ErrMissingExternalID
	}

	outcome, err := s.enrichFilm(ctx, film, force)
	if err != nil {
		return nil, err
	}

	return &SingleEnrichmentResult{
		Status:   outcome,
		FilmID:   film.ID,
		FilmSlug: film.Slug,
		TMDBID:   *film.TMDBID,
	}, nil
}

func (s *enrichmentService) Status(ctx context.Context) (*models.EnrichmentStatus, error) {
	total, err := s.films.Count(ctx)
	if err != nil {
		return nil, err
	}
	withID, err := s.films.CountWithSourceID(ctx)
	if err != nil {
		return nil, err
	}
	enriched, err := s.enrichment.Count(ctx)
	if err != nil {
		return nil, err
	}
	lastSynced, err := s.enrichment.LastSyncedAt(ctx)
	if err != nil {
		return nil, err
	}

	status := &models.EnrichmentStatus{
		Configured:      s.client.IsConfigured(),
		TotalFilms:      total,
		WithSourceID:    withID,
		WithoutSourceID: total - withID,
		Enriched:        enriched,
		Pending:         withID - enriched,
		LastSyncedAt:    lastSynced,
	}
	// Guard the percentage against an empty catalogue.
	if withID > 0 {
		status.PercentDone = float64(enriched) / float64(withID) * 100
	}

	return status, nil
}

func (s *enrichmentService) finishRun(runID uuid.UUID, status string, itemsProcessed int, runErr error) {
	var message *string
	if runErr != nil {
		text := runErr.Error()
		message = &text
	}

	if err := s.runs.Finish(context.Background(), runID, status, itemsProcessed, message); err != nil {
		s.logger.Error("Failed to finalize enrichment run",
			zap.String("run_id", runID.String()),
			zap.Error(err))
	}
}
