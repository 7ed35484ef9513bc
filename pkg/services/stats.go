package services

import (
	"context"

	"github.com/cinelog-io/cinelog-engine/pkg/models"
	"github.com/cinelog-io/cinelog-engine/pkg/repositories"
)

// StatsService reports store-level counts and the run ledger.
type StatsService interface {
	CatalogueStats(ctx context.Context) (*models.CatalogueStats, error)
	ListRuns(ctx context.Context, limit int) ([]*models.SyncRun, error)
}

type statsService struct {
	accounts  repositories.AccountRepository
	films     repositories.FilmRepository
	events    repositories.WatchEventRepository
	watchlist repositories.WatchlistRepository
	runs      repositories.RunRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	accounts repositories.AccountRepository,
	films repositories.FilmRepository,
	events repositories.WatchEventRepository,
	watchlist repositories.WatchlistRepository,
	runs repositories.RunRepository,
) StatsService {
	return &statsService{
		accounts:  accounts,
		films:     films,
		events:    events,
		watchlist: watchlist,
		runs:      runs,
	}
}

var _ StatsService = (*statsService)(nil)

func (s *statsService) CatalogueStats(ctx context.Context) (*models.CatalogueStats, error) {
	stats := &models.CatalogueStats{}
	var err error

	if stats.Accounts, err = s.accounts.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Films, err = s.films.Count(ctx); err != nil {
		return nil, err
	}
	if stats.WatchEvents, err = s.events.Count(ctx); err != nil {
		return nil, err
	}
	if stats.WatchlistEntries, err = s.watchlist.Count(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *statsService) ListRuns(ctx context.Context, limit int) ([]*models.SyncRun, error) {
	return s.runs.List(ctx, limit)
}
