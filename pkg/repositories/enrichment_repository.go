package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cinelog-io/cinelog-engine/pkg/apperrors"
	"github.com/cinelog-io/cinelog-engine/pkg/database"
	"github.com/cinelog-io/cinelog-engine/pkg/models"
)

// EnrichmentRepository provides data access for per-film enrichment
// records. There is at most one record per film; re-enrichment
// overwrites it in place.
type EnrichmentRepository interface {
	Upsert(ctx context.Context, record *models.EnrichmentRecord) error

	GetByFilmID(ctx context.Context, filmID uuid.UUID) (*models.EnrichmentRecord, error)

	Count(ctx context.Context) (int, error)

	// LastSyncedAt returns the most recent enrichment timestamp, or
	// nil when no film has been enriched yet.
	LastSyncedAt(ctx context.Context) (*time.Time, error)
}

type enrichmentRepository struct {
	db *database.DB
}

// NewEnrichmentRepository creates a new EnrichmentRepository.
func NewEnrichmentRepository(db *database.DB) EnrichmentRepository {
	return &enrichmentRepository{db: db}
}

var _ EnrichmentRepository = (*enrichmentRepository)(nil)

func (r *enrichmentRepository) Upsert(ctx context.Context, record *models.EnrichmentRecord) error {
	now := time.Now()

	keywordsValue, err := record.Keywords.Value()
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}
	providersValue, err := record.WatchProviders.Value()
	if err != nil {
		return fmt.Errorf("failed to marshal watch providers: %w", err)
	}
	videosValue, err := record.Videos.Value()
	if err != nil {
		return fmt.Errorf("failed to marshal videos: %w", err)
	}
	castValue, err := record.CastCredits.Value()
	if err != nil {
		return fmt.Errorf("failed to marshal cast credits: %w", err)
	}
	crewValue, err := record.CrewCredits.Value()
	if err != nil {
		return fmt.Errorf("failed to marshal crew credits: %w", err)
	}
	companiesValue, err := record.ProductionCompanies.Value()
	if err != nil {
		return fmt.Errorf("failed to marshal production companies: %w", err)
	}

	query := `
		INSERT INTO film_enrichment (
			film_id, tmdb_id, budget, revenue, vote_average, vote_count,
			popularity, certification, status, release_date, homepage,
			collection_id, collection_name, collection_poster_url,
			keywords, watch_providers, videos, cast_credits, crew_credits,
			production_companies, imdb_id, wikidata_id, facebook_id,
			instagram_id, twitter_id, last_synced_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $26, $26
		)
		ON CONFLICT (film_id)
		DO UPDATE SET
			tmdb_id = EXCLUDED.tmdb_id,
			budget = EXCLUDED.budget,
			revenue = EXCLUDED.revenue,
			vote_average = EXCLUDED.vote_average,
			vote_count = EXCLUDED.vote_count,
			popularity = EXCLUDED.popularity,
			certification = EXCLUDED.certification,
			status = EXCLUDED.status,
			release_date = EXCLUDED.release_date,
			homepage = EXCLUDED.homepage,
			collection_id = EXCLUDED.collection_id,
			collection_name = EXCLUDED.collection_name,
			collection_poster_url = EXCLUDED.collection_poster_url,
			keywords = EXCLUDED.keywords,
			watch_providers = EXCLUDED.watch_providers,
			videos = EXCLUDED.videos,
			cast_credits = EXCLUDED.cast_credits,
			crew_credits = EXCLUDED.crew_credits,
			production_companies = EXCLUDED.production_companies,
			imdb_id = EXCLUDED.imdb_id,
			wikidata_id = EXCLUDED.wikidata_id,
			facebook_id = EXCLUDED.facebook_id,
			instagram_id = EXCLUDED.instagram_id,
			twitter_id = EXCLUDED.twitter_id,
			last_synced_at = EXCLUDED.last_synced_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, last_synced_at, created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		record.FilmID,
		record.TMDBID,
		record.Budget,
		record.Revenue,
		record.VoteAverage,
		record.VoteCount,
		record.Popularity,
		record.Certification,
		record.Status,
		record.ReleaseDate,
		record.Homepage,
		record.CollectionID,
		record.CollectionName,
		record.CollectionPosterURL,
		keywordsValue,
		providersValue,
		videosValue,
		castValue,
		crewValue,
		companiesValue,
		record.IMDBID,
		record.WikidataID,
		record.FacebookID,
		record.InstagramID,
		record.TwitterID,
		now,
	).Scan(&record.ID, &record.LastSyncedAt, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert enrichment record: %w", err)
	}

	return nil
}

func (r *enrichmentRepository) GetByFilmID(ctx context.Context, filmID uuid.UUID) (*models.EnrichmentRecord, error) {
	query := `
		SELECT id, film_id, tmdb_id, budget, revenue, vote_average,
		       vote_count, popularity, certification, status, release_date,
		       homepage, collection_id, collection_name, collection_poster_url,
		       keywords, watch_providers, videos, cast_credits, crew_credits,
		       production_companies, imdb_id, wikidata_id, facebook_id,
		       instagram_id, twitter_id, last_synced_at, created_at, updated_at
		FROM film_enrichment
		WHERE film_id = $1`

	record := &models.EnrichmentRecord{}
	err := r.db.QueryRow(ctx, query, filmID).Scan(
		&record.ID,
		&record.FilmID,
		&record.TMDBID,
		&record.Budget,
		&record.Revenue,
		&record.VoteAverage,
		&record.VoteCount,
		&record.Popularity,
		&record.Certification,
		&record.Status,
		&record.ReleaseDate,
		&record.Homepage,
		&record.CollectionID,
		&record.CollectionName,
		&record.CollectionPosterURL,
		&record.Keywords,
		&record.WatchProviders,
		&record.Videos,
		&record.CastCredits,
		&record.CrewCredits,
		&record.ProductionCompanies,
		&record.IMDBID,
		&record.WikidataID,
		&record.FacebookID,
		&record.InstagramID,
		&record.TwitterID,
		&record.LastSyncedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get enrichment record: %w", err)
	}

	return record, nil
}

func (r *enrichmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM film_enrichment`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count enrichment records: %w", err)
	}
	return count, nil
}

func (r *enrichmentRepository) LastSyncedAt(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	query := `SELECT MAX(last_synced_at) FROM film_enrichment`
	if err := r.db.QueryRow(ctx, query).Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to get last enrichment time: %w", err)
	}
	return last, nil
}
