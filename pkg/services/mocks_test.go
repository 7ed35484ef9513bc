package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cinelog-io/cinelog-engine/pkg/apperrors"
	"github.com/cinelog-io/cinelog-engine/pkg/letterboxd"
	"github.com/cinelog-io/cinelog-engine/pkg/models"
	"github.com/cinelog-io/cinelog-engine/pkg/repositories"
	"github.com/cinelog-io/cinelog-engine/pkg/tmdb"
)

// In-memory repository mocks shared by the service tests.

type mockAccountRepo struct {
	accounts map[string]*models.Account
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: map[string]*models.Account{}}
}

func (m *mockAccountRepo) Upsert(ctx context.Context, account *models.Account) error {
	now := time.Now()
	if existing, ok := m.accounts[account.Username]; ok {
		account.ID = existing.ID
		account.CreatedAt = existing.CreatedAt
	} else {
		account.ID = uuid.New()
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	stored := *account
	m.accounts[account.Username] = &stored
	return nil
}

func (m *mockAccountRepo) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	account, ok := m.accounts[username]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

func (m *mockAccountRepo) Count(ctx context.Context) (int, error) {
	return len(m.accounts), nil
}

type mockFilmRepo struct {
	bySlug     map[string]*models.Film
	enrichment *mockEnrichmentRepo
}

func newMockFilmRepo(enrichment *mockEnrichmentRepo) *mockFilmRepo {
	return &mockFilmRepo{bySlug: map[string]*models.Film{}, enrichment: enrichment}
}

func (m *mockFilmRepo) Create(ctx context.Context, film *models.Film) error {
	if _, ok := m.bySlug[film.Slug]; ok {
		return apperrors.ErrConflict
	}
	film.ID = uuid.New()
	film.CreatedAt = time.Now()
	film.UpdatedAt = film.CreatedAt
	stored := *film
	m.bySlug[film.Slug] = &stored
	return nil
}

func (m *mockFilmRepo) Update(ctx context.Context, film *models.Film) error {
	existing, ok := m.bySlug[film.Slug]
	if !ok || existing.ID != film.ID {
		return apperrors.ErrNotFound
	}
	film.UpdatedAt = time.Now()
	stored := *film
	m.bySlug[film.Slug] = &stored
	return nil
}

func (m *mockFilmRepo) GetBySlug(ctx context.Context, slug string) (*models.Film, error) {
	film, ok := m.bySlug[slug]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *film
	return &copied, nil
}

func (m *mockFilmRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Film, error) {
	for _, film := range m.bySlug {
		if film.ID == id {
			copied := *film
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockFilmRepo) ListEnrichable(ctx context.Context, force bool, limit int) ([]*models.Film, error) {
	var films []*models.Film
	for _, film := range m.bySlug {
		if film.TMDBID == nil {
			continue
		}
		if !force {
			if _, enriched := m.enrichment.byFilm[film.ID]; enriched {
				continue
			}
		}
		copied := *film
		films = append(films, &copied)
	}
	// Deterministic order for assertions.
	for i := 0; i < len(films); i++ {
		for j := i + 1; j < len(films); j++ {
			if films[j].Slug < films[i].Slug {
				films[i], films[j] = films[j], films[i]
			}
		}
	}
	if limit > 0 && len(films) > limit {
		films = films[:limit]
	}
	return films, nil
}

func (m *mockFilmRepo) Count(ctx context.Context) (int, error) {
	return len(m.bySlug), nil
}

func (m *mockFilmRepo) CountWithSourceID(ctx context.Context) (int, error) {
	count := 0
	for _, film := range m.bySlug {
		if film.TMDBID != nil {
			count++
		}
	}
	return count, nil
}

type mockWatchEventRepo struct {
	byExternal map[string]*models.WatchEvent
}

func newMockWatchEventRepo() *mockWatchEventRepo {
	return &mockWatchEventRepo{byExternal: map[string]*models.WatchEvent{}}
}

func (m *mockWatchEventRepo) Create(ctx context.Context, event *models.WatchEvent) error {
	if _, ok := m.byExternal[event.ExternalEventID]; ok {
		return apperrors.ErrConflict
	}
	event.ID = uuid.New()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	stored := *event
	m.byExternal[event.ExternalEventID] = &stored
	return nil
}

func (m *mockWatchEventRepo) UpdateMutable(ctx context.Context, event *models.WatchEvent) error {
	existing, ok := m.byExternal[event.ExternalEventID]
	if !ok {
		return apperrors.ErrNotFound
	}
	existing.Rating = event.Rating
	existing.Rewatch = event.Rewatch
	existing.Liked = event.Liked
	existing.ReviewText = event.ReviewText
	existing.ReviewSpoilers = event.ReviewSpoilers
	existing.UpdatedAt = time.Now()
	return nil
}

func (m *mockWatchEventRepo) GetByExternalID(ctx context.Context, externalID string) (*models.WatchEvent, error) {
	event, ok := m.byExternal[externalID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *event
	return &copied, nil
}

func (m *mockWatchEventRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.WatchEvent, error) {
	var events []*models.WatchEvent
	for _, event := range m.byExternal {
		if event.AccountID == accountID {
			events = append(events, event)
		}
	}
	return events, nil
}

func (m *mockWatchEventRepo) Count(ctx context.Context) (int, error) {
	return len(m.byExternal), nil
}

type mockWatchlistRepo struct {
	entries map[string]*models.WatchlistEntry
}

func newMockWatchlistRepo() *mockWatchlistRepo {
	return &mockWatchlistRepo{entries: map[string]*models.WatchlistEntry{}}
}

func watchlistKey(accountID, filmID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", accountID, filmID)
}

func (m *mockWatchlistRepo) Add(ctx context.Context, entry *models.WatchlistEntry) (bool, error) {
	key := watchlistKey(entry.AccountID, entry.FilmID)
	if _, ok := m.entries[key]; ok {
		return false, nil
	}
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	stored := *entry
	m.entries[key] = &stored
	return true, nil
}

func (m *mockWatchlistRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.WatchlistEntry, error) {
	var entries []*models.WatchlistEntry
	for _, entry := range m.entries {
		if entry.AccountID == accountID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (m *mockWatchlistRepo) Count(ctx context.Context) (int, error) {
	return len(m.entries), nil
}

type mockEnrichmentRepo struct {
	byFilm map[uuid.UUID]*models.EnrichmentRecord
}

func newMockEnrichmentRepo() *mockEnrichmentRepo {
	return &mockEnrichmentRepo{byFilm: map[uuid.UUID]*models.EnrichmentRecord{}}
}

func (m *mockEnrichmentRepo) Upsert(ctx context.Context, record *models.EnrichmentRecord) error {
	now := time.Now()
	if existing, ok := m.byFilm[record.FilmID]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		record.ID = uuid.New()
		record.CreatedAt = now
	}
	record.LastSyncedAt = now
	record.UpdatedAt = now
	stored := *record
	m.byFilm[record.FilmID] = &stored
	return nil
}

func (m *mockEnrichmentRepo) GetByFilmID(ctx context.Context, filmID uuid.UUID) (*models.EnrichmentRecord, error) {
	record, ok := m.byFilm[filmID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *mockEnrichmentRepo) Count(ctx context.Context) (int, error) {
	return len(m.byFilm), nil
}

func (m *mockEnrichmentRepo) LastSyncedAt(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	for _, record := range m.byFilm {
		if last == nil || record.LastSyncedAt.After(*last) {
			t := record.LastSyncedAt
			last = &t
		}
	}
	return last, nil
}

type mockRunRepo struct {
	runs []*models.SyncRun
}

func (m *mockRunRepo) Begin(ctx context.Context, kind, subject string) (*models.SyncRun, error) {
	run := &models.SyncRun{
		ID:        uuid.New(),
		Kind:      kind,
		Subject:   subject,
		Status:    models.RunStatusRunning,
		StartedAt: time.Now(),
	}
	m.runs = append(m.runs, run)
	copied := *run
	return &copied, nil
}

func (m *mockRunRepo) Finish(ctx context.Context, id uuid.UUID, status string, itemsProcessed int, errorMessage *string) error {
	for _, run := range m.runs {
		if run.ID == id {
			now := time.Now()
			run.Status = status
			run.ItemsProcessed = itemsProcessed
			run.ErrorMessage = errorMessage
			run.CompletedAt = &now
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SyncRun, error) {
	for _, run := range m.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockRunRepo) List(ctx context.Context, limit int) ([]*models.SyncRun, error) {
	runs := make([]*models.SyncRun, len(m.runs))
	copy(runs, m.runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

type mockLocker struct {
	held     bool
	acquired int
}

func (m *mockLocker) Acquire(ctx context.Context, key int64) (*repositories.SessionLock, error) {
	if m.held {
		return nil, apperrors.ErrSyncInProgress
	}
	m.acquired++
	return &repositories.SessionLock{}, nil
}

type mockLetterboxdClient struct {
	account      *letterboxd.AccountRecord
	accountErr   error
	diary        []letterboxd.DiaryEntryRecord
	diaryErr     error
	watchlist    []letterboxd.FilmRef
	watchlistErr error
	details      map[string]*letterboxd.FilmDetailRecord
	detailErrs   map[string]error
	detailCalls  []string
}

func (m *mockLetterboxdClient) FetchAccount(ctx context.Context, username string) (*letterboxd.AccountRecord, error) {
	if m.accountErr != nil {
		return nil, m.accountErr
	}
	return m.account, nil
}

func (m *mockLetterboxdClient) FetchDiary(ctx context.Context, username string, year int) ([]letterboxd.DiaryEntryRecord, error) {
	if m.diaryErr != nil {
		return nil, m.diaryErr
	}
	return m.diary, nil
}

func (m *mockLetterboxdClient) FetchWatchlist(ctx context.Context, username string) ([]letterboxd.FilmRef, error) {
	if m.watchlistErr != nil {
		return nil, m.watchlistErr
	}
	return m.watchlist, nil
}

func (m *mockLetterboxdClient) FetchFilmDetail(ctx context.Context, slug string) (*letterboxd.FilmDetailRecord, error) {
	m.detailCalls = append(m.detailCalls, slug)
	if err, ok := m.detailErrs[slug]; ok {
		return nil, err
	}
	if detail, ok := m.details[slug]; ok {
		return detail, nil
	}
	return &letterboxd.FilmDetailRecord{Slug: slug, Title: slug}, nil
}

type mockTMDBClient struct {
	configured bool
	movies     map[int64]*tmdb.MovieRecord
	fetchErrs  map[int64]error
	calls      []int64
}

func (m *mockTMDBClient) IsConfigured() bool {
	return m.configured
}

func (m *mockTMDBClient) FetchMovie(ctx context.Context, tmdbID int64) (*tmdb.MovieRecord, error) {
	m.calls = append(m.calls, tmdbID)
	if err, ok := m.fetchErrs[tmdbID]; ok {
		return nil, err
	}
	// Missing ids behave like a 404.
	return m.movies[tmdbID], nil
}
