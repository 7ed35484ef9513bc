package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cinelog-io/cinelog-engine/pkg/letterboxd"
	"github.com/cinelog-io/cinelog-engine/pkg/models"
	"github.com/cinelog-io/cinelog-engine/pkg/repositories"
)

// LetterboxdClient is the slice of the primary source client the sync
// orchestrator needs.
type LetterboxdClient interface {
	FetchAccount(ctx context.Context, username string) (*letterboxd.AccountRecord, error)
	FetchDiary(ctx context.Context, username string, year int) ([]letterboxd.DiaryEntryRecord, error)
	FetchWatchlist(ctx context.Context, username string) ([]letterboxd.FilmRef, error)
	FetchFilmDetail(ctx context.Context, slug string) (*letterboxd.FilmDetailRecord, error)
}

// PrimarySyncResult summarizes one primary sync run.
type PrimarySyncResult struct {
	RunID          uuid.UUID `json:"run_id"`
	Username       string    `json:"username"`
	AccountSynced  bool      `json:"account_synced"`
	DiaryCreated   int       `json:"diary_created"`
	DiaryUpdated   int       `json:"diary_updated"`
	DiaryUnchanged int       `json:"diary_unchanged"`
	WatchlistAdded int       `json:"watchlist_added"`
	FilmsCreated   int       `json:"films_created"`
	SkippedNoSlug  int       `json:"skipped_no_slug"`
	ItemsProcessed int       `json:"items_processed"`
}

// SyncService runs primary syncs: account profile, diary and watchlist
// for one username, into the local store.
type SyncService interface {
	// RunPrimarySync executes a full sync for username. At most one
	// primary sync per username runs at a time; a second caller gets
	// apperrors.ErrSyncInProgress.
	RunPrimarySync(ctx context.Context, username string, fetchDetails bool) (*PrimarySyncResult, error)

	// RefreshFilm force-refreshes one film's details from the source.
	RefreshFilm(ctx context.Context, slug string) (*models.Film, error)
}

type syncService struct {
	locker repositories.AdvisoryLocker
	client LetterboxdClient
	upsert UpsertService
	runs   repositories.RunRepository
	films  repositories.FilmRepository
	logger *zap.Logger
}

// NewSyncService creates a new SyncService.
func NewSyncService(
	locker repositories.AdvisoryLocker,
	client LetterboxdClient,
	upsert UpsertService,
	runs repositories.RunRepository,
	films repositories.FilmRepository,
	logger *zap.Logger,
) SyncService {
	return &syncService{
		locker: locker,
		client: client,
		upsert: upsert,
		runs:   runs,
		films:  films,
		logger: logger.Named("sync-service"),
	}
}

var _ SyncService = (*syncService)(nil)

func (s *syncService) RunPrimarySync(ctx context.Context, username string, fetchDetails bool) (*PrimarySyncResult, error) {
	lock, err := s.locker.Acquire(ctx, repositories.PrimarySyncLockKey(username))
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	run, err := s.runs.Begin(ctx, models.RunKindPrimary, username)
	if err != nil {
		return nil, fmt.Errorf("begin sync run: %w", err)
	}

	s.logger.Info("Primary sync started",
		zap.String("username", username),
		zap.String("run_id", run.ID.String()),
		zap.Bool("fetch_details", fetchDetails))

	result := &PrimarySyncResult{RunID: run.ID, Username: username}

	if err := s.runPrimarySync(ctx, username, fetchDetails, result); err != nil {
		s.logger.Error("Primary sync failed",
			zap.String("username", username),
			zap.Error(err))
		s.finishRun(run.ID, models.RunStatusFailed, result.ItemsProcessed, err)
		return result, err
	}

	result.ItemsProcessed = result.DiaryCreated + result.WatchlistAdded
	s.finishRun(run.ID, models.RunStatusCompleted, result.ItemsProcessed, nil)

	s.logger.Info("Primary sync completed",
		zap.String("username", username),
		zap.Int("diary_created", result.DiaryCreated),
		zap.Int("diary_updated", result.DiaryUpdated),
		zap.Int("watchlist_added", result.WatchlistAdded),
		zap.Int("films_created", result.FilmsCreated))

	return result, nil
}

func (s *syncService) runPrimarySync(ctx context.Context, username string, fetchDetails bool, result *PrimarySyncResult) error {
	account, err := s.syncAccount(ctx, username)
	if err != nil {
		return err
	}
	result.AccountSynced = true

	if err := s.syncDiary(ctx, account, fetchDetails, result); err != nil {
		return err
	}

	return s.syncWatchlist(ctx, account, fetchDetails, result)
}

func (s *syncService) syncAccount(ctx context.Context, username string) (*models.Account, error) {
	record, err := s.client.FetchAccount(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetch account %s: %w", username, err)
	}

	account, err := s.upsert.UpsertAccount(ctx, record)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *syncService) syncDiary(ctx context.Context, account *models.Account, fetchDetails bool, result *PrimarySyncResult) error {
	// Year 0 means the full diary; sync always mirrors everything.
	entries, err := s.client.FetchDiary(ctx, account.Username, 0)
	if err != nil {
		return fmt.Errorf("fetch diary for %s: %w", account.Username, err)
	}

	fetcher := s.detailFetcher(fetchDetails)

	for i := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry := &entries[i]
		if entry.FilmSlug == "" {
			result.SkippedNoSlug++
			continue
		}

		film, filmOutcome, err := s.upsert.GetOrCreateFilm(ctx, entry.FilmSlug, FilmAcquireOnce, fetcher)
		if err != nil {
			return err
		}
		if filmOutcome == OutcomeCreated {
			result.FilmsCreated++
		}

		outcome, err := s.upsert.UpsertWatchEvent(ctx, account.ID, film.ID, entry)
		if err != nil {
			return err
		}
		switch outcome {
		case OutcomeCreated:
			result.DiaryCreated++
		case OutcomeUpdated:
			result.DiaryUpdated++
		default:
			result.DiaryUnchanged++
		}
	}

	return nil
}

func (s *syncService) syncWatchlist(ctx context.Context, account *models.Account, fetchDetails bool, result *PrimarySyncResult) error {
	refs, err := s.client.FetchWatchlist(ctx, account.Username)
	if err != nil {
		return fmt.Errorf("fetch watchlist for %s: %w", account.Username, err)
	}

	fetcher := s.detailFetcher(fetchDetails)

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if ref.Slug == "" {
			result.SkippedNoSlug++
			continue
		}

		film, filmOutcome, err := s.upsert.GetOrCreateFilm(ctx, ref.Slug, FilmAcquireOnce, fetcher)
		if err != nil {
			return err
		}
		if filmOutcome == OutcomeCreated {
			result.FilmsCreated++
		}

		outcome, err := s.upsert.AddWatchlistEntry(ctx, account.ID, film.ID)
		if err != nil {
			return err
		}
		if outcome == OutcomeCreated {
			result.WatchlistAdded++
		}
	}

	return nil
}

func (s *syncService) detailFetcher(fetchDetails bool) FilmDetailFetcher {
	if !fetchDetails {
		return nil
	}
	return s.client.FetchFilmDetail
}

func (s *syncService) RefreshFilm(ctx context.Context, slug string) (*models.Film, error) {
	film, err := s.films.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	detail, err := s.client.FetchFilmDetail(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("fetch film %s: %w", slug, err)
	}

	if err := s.upsert.RefreshFilmDetails(ctx, film, detail); err != nil {
		return nil, err
	}
	return film, nil
}

// finishRun finalizes the ledger row on a background context so a
// cancelled sync still records its terminal status.
func (s *syncService) finishRun(runID uuid.UUID, status string, itemsProcessed int, runErr error) {
	var message *string
	if runErr != nil {
		text := runErr.Error()
		message = &text
	}

	if err := s.runs.Finish(context.Background(), runID, status, itemsProcessed, message); err != nil {
		s.logger.Error("Failed to finalize sync run",
			zap.String("run_id", runID.String()),
			zap.Error(err))
	}
}
