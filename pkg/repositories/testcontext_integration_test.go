//go:build integration

package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cinelog-io/cinelog-engine/pkg/models"
	"github.com/cinelog-io/cinelog-engine/pkg/testhelpers"
)

// repoTestContext holds the shared testcontainer and one repository of
// each kind.
type repoTestContext struct {
	t          *testing.T
	accounts   AccountRepository
	films      FilmRepository
	events     WatchEventRepository
	watchlist  WatchlistRepository
	enrichment EnrichmentRepository
	runs       RunRepository
	locker     AdvisoryLocker
}

func setupRepoTest(t *testing.T) *repoTestContext {
	testDB := testhelpers.GetTestDB(t)
	return &repoTestContext{
		t:          t,
		accounts:   NewAccountRepository(testDB.DB),
		films:      NewFilmRepository(testDB.DB),
		events:     NewWatchEventRepository(testDB.DB),
		watchlist:  NewWatchlistRepository(testDB.DB),
		enrichment: NewEnrichmentRepository(testDB.DB),
		runs:       NewRunRepository(testDB.DB),
		locker:     NewAdvisoryLocker(testDB.DB),
	}
}

// createAccount inserts a uniquely named account for this test.
func (tc *repoTestContext) createAccount() *models.Account {
	tc.t.Helper()
	account := &models.Account{
		Username: fmt.Sprintf("user-%s", uuid.New().String()[:8]),
		Stats:    models.JSONBMap{"films": float64(100)},
	}
	require.NoError(tc.t, tc.accounts.Upsert(context.Background(), account))
	return account
}

// createFilm inserts a uniquely slugged film for this test.
func (tc *repoTestContext) createFilm(tmdbID *string) *models.Film {
	tc.t.Helper()
	film := &models.Film{
		Slug:   fmt.Sprintf("film-%s", uuid.New().String()[:8]),
		Title:  "Test Film",
		TMDBID: tmdbID,
	}
	require.NoError(tc.t, tc.films.Create(context.Background(), film))
	return film
}
