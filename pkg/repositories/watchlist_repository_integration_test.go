//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelog-io/cinelog-engine/pkg/models"
)

func TestWatchlistRepository_AddIsIdempotent(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	account := tc.createAccount()
	film := tc.createFilm(nil)

	created, err := tc.watchlist.Add(ctx, &models.WatchlistEntry{AccountID: account.ID, FilmID: film.ID})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = tc.watchlist.Add(ctx, &models.WatchlistEntry{AccountID: account.ID, FilmID: film.ID})
	require.NoError(t, err)
	assert.False(t, created)

	entries, err := tc.watchlist.ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
