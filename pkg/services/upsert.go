// Package services contains the sync and enrichment orchestration for
// cinelog-engine.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cinelog-io/cinelog-engine/pkg/apperrors"
	"github.com/cinelog-io/cinelog-engine/pkg/letterboxd"
	"github.com/cinelog-io/cinelog-engine/pkg/models"
	"github.com/cinelog-io/cinelog-engine/pkg/repositories"
	"github.com/cinelog-io/cinelog-engine/pkg/tmdb"
)

// Outcome classifies what an upsert did to the store.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

// FilmWritePolicy controls whether an existing film's details are
// refreshed from the source.
type FilmWritePolicy int

const (
	// FilmAcquireOnce fetches details only for films the store has
	// never completed. Existing detail data is never overwritten.
	FilmAcquireOnce FilmWritePolicy = iota

	// FilmForceRefresh re-fetches and overwrites details even when
	// the film already has them.
	FilmForceRefresh
)

// FilmDetailFetcher fetches full details for a film slug. A nil
// fetcher means details are not wanted for this operation.
type FilmDetailFetcher func(ctx context.Context, slug string) (*letterboxd.FilmDetailRecord, error)

// UpsertService is the write path for everything the sync
// orchestrators persist. Each method is idempotent: re-running it with
// the same input leaves the store unchanged.
type UpsertService interface {
	// UpsertAccount replaces the account's profile wholesale.
	UpsertAccount(ctx context.Context, record *letterboxd.AccountRecord) (*models.Account, error)

	// GetOrCreateFilm returns the film for slug, creating it when
	// unknown. Detail fetch failures degrade to a placeholder film
	// (title equals slug) instead of failing the operation.
	GetOrCreateFilm(ctx context.Context, slug string, policy FilmWritePolicy, fetch FilmDetailFetcher) (*models.Film, Outcome, error)

	// RefreshFilmDetails overwrites a film's detail fields.
	RefreshFilmDetails(ctx context.Context, film *models.Film, detail *letterboxd.FilmDetailRecord) error

	// UpsertWatchEvent creates the diary entry or updates its
	// mutable fields when the viewing id is already known.
	UpsertWatchEvent(ctx context.Context, accountID, filmID uuid.UUID, entry *letterboxd.DiaryEntryRecord) (Outcome, error)

	// AddWatchlistEntry records the film on the account's watchlist
	// unless it is already there.
	AddWatchlistEntry(ctx context.Context, accountID, filmID uuid.UUID) (Outcome, error)

	// UpsertEnrichment writes the enrichment record for a film,
	// overwriting any previous one.
	UpsertEnrichment(ctx context.Context, filmID uuid.UUID, record *tmdb.MovieRecord) error
}

type upsertService struct {
	accounts   repositories.AccountRepository
	films      repositories.FilmRepository
	events     repositories.WatchEventRepository
	watchlist  repositories.WatchlistRepository
	enrichment repositories.EnrichmentRepository
	logger     *zap.Logger
}

// NewUpsertService creates a new UpsertService.
func NewUpsertService(
	accounts repositories.AccountRepository,
	films repositories.FilmRepository,
	events repositories.WatchEventRepository,
	watchlist repositories.WatchlistRepository,
	enrichment repositories.EnrichmentRepository,
	logger *zap.Logger,
) UpsertService {
	return &upsertService{
		accounts:   accounts,
		films:      films,
		events:     events,
		watchlist:  watchlist,
		enrichment: enrichment,
		logger:     logger.Named("upsert-service"),
	}
}

var _ UpsertService = (*upsertService)(nil)

func (s *upsertService) UpsertAccount(ctx context.Context, record *letterboxd.AccountRecord) (*models.Account, error) {
	account := &models.Account{
		Username:    record.Username,
		DisplayName: record.DisplayName,
		Bio:         record.Bio,
		Location:    record.Location,
		Website:     record.Website,
		Favorites:   models.StringList(record.Favorites),
		Stats:       models.JSONBMap(record.Stats),
	}

	if err := s.accounts.Upsert(ctx, account); err != nil {
		return nil, fmt.Errorf("upsert account %s: %w", record.Username, err)
	}

	return account, nil
}

func (s *upsertService) GetOrCreateFilm(ctx context.Context, slug string, policy FilmWritePolicy, fetch FilmDetailFetcher) (*models.Film, Outcome, error) {
	film, err := s.films.GetBySlug(ctx, slug)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, OutcomeUnchanged, fmt.Errorf("get film %s: %w", slug, err)
	}

	if film != nil {
		return s.maybeRefreshExisting(ctx, film, policy, fetch)
	}

	film = &models.Film{
		Slug:  slug,
		Title: slug,
	}

	if fetch != nil {
		detail, fetchErr := fetch(ctx, slug)
		if fetchErr != nil {
			// Placeholder film: the entry is still recorded and the
			// missing details can be completed by a later sync.
			s.logger.Warn("Failed to fetch film details, storing placeholder",
				zap.String("slug", slug),
				zap.Error(fetchErr))
		} else {
			applyFilmDetail(film, detail)
		}
	}

	if err := s.films.Create(ctx, film); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Lost a race with a concurrent insert; the existing row wins.
			existing, getErr := s.films.GetBySlug(ctx, slug)
			if getErr != nil {
				return nil, OutcomeUnchanged, fmt.Errorf("get film %s after conflict: %w", slug, getErr)
			}
			return existing, OutcomeUnchanged, nil
		}
		return nil, OutcomeUnchanged, fmt.Errorf("create film %s: %w", slug, err)
	}

	return film, OutcomeCreated, nil
}

func (s *upsertService) maybeRefreshExisting(ctx context.Context, film *models.Film, policy FilmWritePolicy, fetch FilmDetailFetcher) (*models.Film, Outcome, error) {
	if fetch == nil {
		return film, OutcomeUnchanged, nil
	}
	if policy == FilmAcquireOnce && film.DetailsFetched {
		return film, OutcomeUnchanged, nil
	}

	// Either a forced refresh or a placeholder whose details were
	// never completed.
	detail, err := fetch(ctx, film.Slug)
	if err != nil {
		s.logger.Warn("Failed to fetch film details, keeping stored record",
			zap.String("slug", film.Slug),
			zap.Error(err))
		return film, OutcomeUnchanged, nil
	}

	if err := s.RefreshFilmDetails(ctx, film, detail); err != nil {
		return nil, OutcomeUnchanged, err
	}
	return film, OutcomeUpdated, nil
}

func (s *upsertService) RefreshFilmDetails(ctx context.Context, film *models.Film, detail *letterboxd.FilmDetailRecord) error {
	applyFilmDetail(film, detail)
	if err := s.films.Update(ctx, film); err != nil {
		return fmt.Errorf("update film %s: %w", film.Slug, err)
	}
	return nil
}

func (s *upsertService) UpsertWatchEvent(ctx context.Context, accountID, filmID uuid.UUID, entry *letterboxd.DiaryEntryRecord) (Outcome, error) {
	existing, err := s.events.GetByExternalID(ctx, entry.ExternalID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return OutcomeUnchanged, fmt.Errorf("get watch event %s: %w", entry.ExternalID, err)
	}

	if existing == nil {
		event := &models.WatchEvent{
			AccountID:       accountID,
			FilmID:          filmID,
			ExternalEventID: entry.ExternalID,
			WatchedDate:     entry.WatchedDate,
			Rating:          entry.Rating,
			Rewatch:         entry.Rewatch,
			Liked:           entry.Liked,
			ReviewText:      entry.ReviewText,
			ReviewSpoilers:  entry.ReviewSpoilers,
		}
		if err := s.events.Create(ctx, event); err != nil {
			return OutcomeUnchanged, fmt.Errorf("create watch event %s: %w", entry.ExternalID, err)
		}
		return OutcomeCreated, nil
	}

	if !watchEventChanged(existing, entry) {
		return OutcomeUnchanged, nil
	}

	existing.Rating = entry.Rating
	existing.Rewatch = entry.Rewatch
	existing.Liked = entry.Liked
	existing.ReviewText = entry.ReviewText
	existing.ReviewSpoilers = entry.ReviewSpoilers

	if err := s.events.UpdateMutable(ctx, existing); err != nil {
		return OutcomeUnchanged, fmt.Errorf("update watch event %s: %w", entry.ExternalID, err)
	}
	return OutcomeUpdated, nil
}

func (s *upsertService) AddWatchlistEntry(ctx context.Context, accountID, filmID uuid.UUID) (Outcome, error) {
	entry := &models.WatchlistEntry{
		AccountID: accountID,
		FilmID:    filmID,
	}

	created, err := s.watchlist.Add(ctx, entry)
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("add watchlist entry: %w", err)
	}
	if created {
		return OutcomeCreated, nil
	}
	return OutcomeUnchanged, nil
}

func (s *upsertService) UpsertEnrichment(ctx context.Context, filmID uuid.UUID, record *tmdb.MovieRecord) error {
	enrichment := &models.EnrichmentRecord{
		FilmID:              filmID,
		TMDBID:              record.TMDBID,
		Budget:              record.Budget,
		Revenue:             record.Revenue,
		VoteAverage:         record.VoteAverage,
		VoteCount:           record.VoteCount,
		Popularity:          record.Popularity,
		Certification:       record.Certification,
		Status:              record.Status,
		ReleaseDate:         record.ReleaseDate,
		Homepage:            record.Homepage,
		CollectionID:        record.CollectionID,
		CollectionName:      record.CollectionName,
		CollectionPosterURL: record.CollectionPosterURL,
		Keywords:            models.StringList(record.Keywords),
		WatchProviders:      models.JSONBMap(record.WatchProviders),
		Videos:              models.JSONBList(record.Videos),
		CastCredits:         models.JSONBList(record.CastCredits),
		CrewCredits:         models.JSONBList(record.CrewCredits),
		ProductionCompanies: models.JSONBList(record.ProductionCompanies),
		IMDBID:              record.IMDBID,
		WikidataID:          record.WikidataID,
		FacebookID:          record.FacebookID,
		InstagramID:         record.InstagramID,
		TwitterID:           record.TwitterID,
	}

	if err := s.enrichment.Upsert(ctx, enrichment); err != nil {
		return fmt.Errorf("upsert enrichment for film %s: %w", filmID, err)
	}
	return nil
}

// applyFilmDetail copies a fetched detail record onto the film and
// marks the details complete.
func applyFilmDetail(film *models.Film, detail *letterboxd.FilmDetailRecord) {
	film.Title = detail.Title
	if film.Title == "" {
		film.Title = film.Slug
	}
	film.Year = detail.Year
	film.Rating = detail.Rating
	film.RuntimeMinutes = detail.RuntimeMinutes
	film.Tagline = detail.Tagline
	film.Description = detail.Description
	film.PosterURL = detail.PosterURL
	film.Genres = models.StringList(detail.Genres)
	film.Countries = models.StringList(detail.Countries)
	film.Languages = models.StringList(detail.Languages)
	film.Studios = models.StringList(detail.Studios)
	film.Directors = models.CreditList(detail.Directors)
	film.Cast = models.CreditList(detail.Cast)
	film.SourceURL = detail.URL
	film.TMDBID = detail.TMDBID
	film.IMDBID = detail.IMDBID
	film.DetailsFetched = true
}

// watchEventChanged compares the fields the source can change on an
// existing diary entry.
func watchEventChanged(existing *models.WatchEvent, entry *letterboxd.DiaryEntryRecord) bool {
	return !floatPtrEqual(existing.Rating, entry.Rating) ||
		existing.Rewatch != entry.Rewatch ||
		existing.Liked != entry.Liked ||
		!stringPtrEqual(existing.ReviewText, entry.ReviewText) ||
		existing.ReviewSpoilers != entry.ReviewSpoilers
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
