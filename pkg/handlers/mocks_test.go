package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/cinelog-io/cinelog-engine/pkg/models"
	"github.com/cinelog-io/cinelog-engine/pkg/services"
)

// mockSyncServiceForHandler implements services.SyncService for handler tests.
type mockSyncServiceForHandler struct {
	result       *services.PrimarySyncResult
	syncErr      error
	film         *models.Film
	refreshErr   error
	lastUsername string
	lastFetch    bool
}

func (m *mockSyncServiceForHandler) RunPrimarySync(ctx context.Context, username string, fetchDetails bool) (*services.PrimarySyncResult, error) {
	m.lastUsername = username
	m.lastFetch = fetchDetails
	if m.syncErr != nil {
		return nil, m.syncErr
	}
	return m.result, nil
}

func (m *mockSyncServiceForHandler) RefreshFilm(ctx context.Context, slug string) (*models.Film, error) {
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.film, nil
}

// mockEnrichmentServiceForHandler implements services.EnrichmentService for handler tests.
type mockEnrichmentServiceForHandler struct {
	result     *services.EnrichmentSyncResult
	syncErr    error
	single     *services.SingleEnrichmentResult
	singleErr  error
	status     *models.EnrichmentStatus
	statusErr  error
	lastLimit  int
	lastForce  bool
	lastFilmID uuid.UUID
}

func (m *mockEnrichmentServiceForHandler) RunEnrichmentSync(ctx context.Context, limit int, force bool) (*services.EnrichmentSyncResult, error) {
	m.lastLimit = limit
	m.lastForce = force
	if m.syncErr != nil {
		return nil, m.syncErr
	}
	return m.result, nil
}

func (m *mockEnrichmentServiceForHandler) EnrichSingle(ctx context.Context, filmID uuid.UUID, force bool) (*services.SingleEnrichmentResult, error) {
	m.lastFilmID = filmID
	m.lastForce = force
	if m.singleErr != nil {
		return nil, m.singleErr
	}
	return m.single, nil
}

func (m *mockEnrichmentServiceForHandler) Status(ctx context.Context) (*models.EnrichmentStatus, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return m.status, nil
}

// mockStatsServiceForHandler implements services.StatsService for handler tests.
type mockStatsServiceForHandler struct {
	stats     *models.CatalogueStats
	statsErr  error
	runs      []*models.SyncRun
	runsErr   error
	lastLimit int
}

func (m *mockStatsServiceForHandler) CatalogueStats(ctx context.Context) (*models.CatalogueStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}

func (m *mockStatsServiceForHandler) ListRuns(ctx context.Context, limit int) ([]*models.SyncRun, error) {
	m.lastLimit = limit
	if m.runsErr != nil {
		return nil, m.runsErr
	}
	return m.runs, nil
}
