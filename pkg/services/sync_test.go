package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cinelog-io/cinelog-engine/pkg/apperrors"
	"github.com/cinelog-io/cinelog-engine/pkg/letterboxd"
	"github.com/cinelog-io/cinelog-engine/pkg/models"
)

type syncFixture struct {
	upsertFixture

	locker  *mockLocker
	client  *mockLetterboxdClient
	runs    *mockRunRepo
	service SyncService
}

func newSyncFixture(client *mockLetterboxdClient) *syncFixture {
	f := &syncFixture{
		upsertFixture: *newUpsertFixture(),
		locker:        &mockLocker{},
		client:        client,
		runs:          &mockRunRepo{},
	}
	f.service = NewSyncService(f.locker, f.client, f.upsertFixture.service, f.runs, f.films, zap.NewNop())
	return f
}

func testDiaryEntry(id, slug string, rating *float64) letterboxd.DiaryEntryRecord {
	watched := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	return letterboxd.DiaryEntryRecord{
		ExternalID:  id,
		FilmSlug:    slug,
		FilmName:    slug,
		WatchedDate: &watched,
		Rating:      rating,
	}
}

func TestRunPrimarySync_FullFlow(t *testing.T) {
	client := &mockLetterboxdClient{
		account: &letterboxd.AccountRecord{Username: "moviefan", DisplayName: strPtr("Movie Fan")},
		diary: []letterboxd.DiaryEntryRecord{
			testDiaryEntry("100", "the-godfather", floatPtr(4.5)),
			testDiaryEntry("101", "parasite", nil),
		},
		watchlist: []letterboxd.FilmRef{
			{Slug: "dune-part-two", Name: "Dune: Part Two"},
		},
		details: map[string]*letterboxd.FilmDetailRecord{
			"the-godfather": {Slug: "the-godfather", Title: "The Godfather", Year: intPtr(1972)},
		},
	}
	f := newSyncFixture(client)

	result, err := f.service.RunPrimarySync(context.Background(), "moviefan", true)
	require.NoError(t, err)

	assert.True(t, result.AccountSynced)
	assert.Equal(t, 2, result.DiaryCreated)
	assert.Equal(t, 0, result.DiaryUpdated)
	assert.Equal(t, 1, result.WatchlistAdded)
	assert.Equal(t, 3, result.FilmsCreated)
	assert.Equal(t, 3, result.ItemsProcessed)

	// One film per slug; the diary slugs and the watchlist slug.
	count, err := f.films.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.Len(t, f.runs.runs, 1)
	run := f.runs.runs[0]
	assert.Equal(t, models.RunKindPrimary, run.Kind)
	assert.Equal(t, "moviefan", run.Subject)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 3, run.ItemsProcessed)
	assert.NotNil(t, run.CompletedAt)
	assert.Nil(t, run.ErrorMessage)
}

func TestRunPrimarySync_SecondRunIsIdempotent(t *testing.T) {
	client := &mockLetterboxdClient{
		account: &letterboxd.AccountRecord{Username: "moviefan"},
		diary: []letterboxd.DiaryEntryRecord{
			testDiaryEntry("100", "the-godfather", floatPtr(4.5)),
		},
		watchlist: []letterboxd.FilmRef{
			{Slug: "dune-part-two"},
		},
	}
	f := newSyncFixture(client)
	ctx := context.Background()

	_, err := f.service.RunPrimarySync(ctx, "moviefan", false)
	require.NoError(t, err)

	result, err := f.service.RunPrimarySync(ctx, "moviefan", false)
	require.NoError(t, err)

	assert.Equal(t, 0, result.DiaryCreated)
	assert.Equal(t, 1, result.DiaryUnchanged)
	assert.Equal(t, 0, result.WatchlistAdded)
	assert.Equal(t, 0, result.FilmsCreated)
	assert.Equal(t, 0, result.ItemsProcessed)

	events, err := f.events.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, events)
}

func TestRunPrimarySync_MutableDiaryFieldsUpdated(t *testing.T) {
	client := &mockLetterboxdClient{
		account: &letterboxd.AccountRecord{Username: "moviefan"},
		diary: []letterboxd.DiaryEntryRecord{
			testDiaryEntry("100", "the-godfather", floatPtr(3.0)),
		},
	}
	f := newSyncFixture(client)
	ctx := context.Background()

	_, err := f.service.RunPrimarySync(ctx, "moviefan", false)
	require.NoError(t, err)

	// The account re-rated the viewing between syncs.
	client.diary[0].Rating = floatPtr(4.5)
	client.diary[0].Liked = true

	result, err := f.service.RunPrimarySync(ctx, "moviefan", false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.DiaryUpdated)

	stored, err := f.events.GetByExternalID(ctx, "100")
	require.NoError(t, err)
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 4.5, *stored.Rating)
	assert.True(t, stored.Liked)
}

func TestRunPrimarySync_DetailFailureIsolatedToFilm(t *testing.T) {
	client := &mockLetterboxdClient{
		account: &letterboxd.AccountRecord{Username: "moviefan"},
		diary: []letterboxd.DiaryEntryRecord{
			testDiaryEntry("100", "first-film", nil),
			testDiaryEntry("101", "broken-film", nil),
			testDiaryEntry("102", "third-film", nil),
		},
		details: map[string]*letterboxd.FilmDetailRecord{
			"first-film": {Slug: "first-film", Title: "First Film"},
			"third-film": {Slug: "third-film", Title: "Third Film"},
		},
		detailErrs: map[string]error{
			"broken-film": errors.New("source returned 500 Internal Server Error"),
		},
	}
	f := newSyncFixture(client)
	ctx := context.Background()

	result, err := f.service.RunPrimarySync(ctx, "moviefan", true)
	require.NoError(t, err, "one broken film page must not fail the run")

	assert.Equal(t, 3, result.DiaryCreated)
	assert.Equal(t, 3, result.FilmsCreated)

	placeholder, err := f.films.GetBySlug(ctx, "broken-film")
	require.NoError(t, err)
	assert.Equal(t, "broken-film", placeholder.Title)
	assert.False(t, placeholder.DetailsFetched)

	third, err := f.films.GetBySlug(ctx, "third-film")
	require.NoError(t, err)
	assert.True(t, third.DetailsFetched)

	require.Len(t, f.runs.runs, 1)
	assert.Equal(t, models.RunStatusCompleted, f.runs.runs[0].Status)
}

func TestRunPrimarySync_SkipsEntriesWithoutSlug(t *testing.T) {
	client := &mockLetterboxdClient{
		account: &letterboxd.AccountRecord{Username: "moviefan"},
		diary: []letterboxd.DiaryEntryRecord{
			testDiaryEntry("100", "", nil),
			testDiaryEntry("101", "real-film", nil),
		},
	}
	f := newSyncFixture(client)

	result, err := f.service.RunPrimarySync(context.Background(), "moviefan", false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.SkippedNoSlug)
	assert.Equal(t, 1, result.DiaryCreated)
}

func TestRunPrimarySync_AccountFetchFailureRecordsFailedRun(t *testing.T) {
	client := &mockLetterboxdClient{
		accountErr: errors.New("source returned 404 Not Found"),
	}
	f := newSyncFixture(client)

	_, err := f.service.RunPrimarySync(context.Background(), "nobody", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	require.Len(t, f.runs.runs, 1)
	run := f.runs.runs[0]
	assert.Equal(t, models.RunStatusFailed, run.Status)
	require.NotNil(t, run.ErrorMessage)
	assert.Contains(t, *run.ErrorMessage, "404")
	assert.NotNil(t, run.CompletedAt)
}

func TestRunPrimarySync_ConcurrentRunRejected(t *testing.T) {
	f := newSyncFixture(&mockLetterboxdClient{
		account: &letterboxd.AccountRecord{Username: "moviefan"},
	})
	f.locker.held = true

	_, err := f.service.RunPrimarySync(context.Background(), "moviefan", false)
	require.ErrorIs(t, err, apperrors.ErrSyncInProgress)

	// No ledger row when the lock was never held.
	assert.Empty(t, f.runs.runs)
}

func TestRunPrimarySync_CancelledContextFailsRun(t *testing.T) {
	client := &mockLetterboxdClient{
		account: &letterboxd.AccountRecord{Username: "moviefan"},
		diary: []letterboxd.DiaryEntryRecord{
			testDiaryEntry("100", "the-godfather", nil),
		},
	}
	f := newSyncFixture(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.RunPrimarySync(ctx, "moviefan", false)
	require.ErrorIs(t, err, context.Canceled)

	// The run row is still finalized even though the context is gone.
	require.Len(t, f.runs.runs, 1)
	assert.Equal(t, models.RunStatusFailed, f.runs.runs[0].Status)
}

func TestRefreshFilm(t *testing.T) {
	client := &mockLetterboxdClient{
		details: map[string]*letterboxd.FilmDetailRecord{
			"the-godfather": {Slug: "the-godfather", Title: "The Godfather", Year: intPtr(1972)},
		},
	}
	f := newSyncFixture(client)
	ctx := context.Background()

	_, _, err := f.upsertFixture.service.GetOrCreateFilm(ctx, "the-godfather", FilmAcquireOnce, nil)
	require.NoError(t, err)

	film, err := f.service.RefreshFilm(ctx, "the-godfather")
	require.NoError(t, err)
	assert.Equal(t, "The Godfather", film.Title)
	assert.True(t, film.DetailsFetched)
}

func TestRefreshFilm_UnknownSlug(t *testing.T) {
	f := newSyncFixture(&mockLetterboxdClient{})

	_, err := f.service.RefreshFilm(context.Background(), "never-seen")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
