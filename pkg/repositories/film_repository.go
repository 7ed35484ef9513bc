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

// FilmRepository provides data access for catalogue films. Films are
// keyed by their slug on the primary source.
type FilmRepository interface {
	Create(ctx context.Context, film *models.Film) error

	// Update replaces the film's detail fields. Identity fields
	// (id, slug) never change.
	Update(ctx context.Context, film *models.Film) error

	GetBySlug(ctx context.Context, slug string) (*models.Film, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Film, error)

	// ListEnrichable returns films that carry an enrichment source
	// id. Without force, films that already have an enrichment
	// record are excluded. A limit of 0 means no limit.
	ListEnrichable(ctx context.Context, force bool, limit int) ([]*models.Film, error)

	Count(ctx context.Context) (int, error)
	CountWithSourceID(ctx context.Context) (int, error)
}

type filmRepository struct {
	db *database.DB
}

// NewFilmRepository creates a new FilmRepository.
func NewFilmRepository(db *database.DB) FilmRepository {
	return &filmRepository{db: db}
}

var _ FilmRepository = (*filmRepository)(nil)

const filmColumns = `id, slug, title, year, rating, runtime_minutes, tagline,
	description, poster_url, genres, countries, languages, studios,
	directors, cast_members, source_url, tmdb_id, imdb_id,
	details_fetched, created_at, updated_at`

func (r *filmRepository) Create(ctx context.Context, film *models.Film) error {
	now := time.Now()

	values, err := filmJSONValues(film)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO films (
			slug, title, year, rating, runtime_minutes, tagline,
			description, poster_url, genres, countries, languages,
			studios, directors, cast_members, source_url, tmdb_id,
			imdb_id, details_fetched, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		film.Slug,
		film.Title,
		film.Year,
		film.Rating,
		film.RuntimeMinutes,
		film.Tagline,
		film.Description,
		film.PosterURL,
		values.genres,
		values.countries,
		values.languages,
		values.studios,
		values.directors,
		values.cast,
		film.SourceURL,
		film.TMDBID,
		film.IMDBID,
		film.DetailsFetched,
		now,
	).Scan(&film.ID, &film.CreatedAt, &film.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create film: %w", err)
	}

	return nil
}

func (r *filmRepository) Update(ctx context.Context, film *models.Film) error {
	now := time.Now()

	values, err := filmJSONValues(film)
	if err != nil {
		return err
	}

	query := `
		UPDATE films SET
			title = $2, year = $3, rating = $4, runtime_minutes = $5,
			tagline = $6, description = $7, poster_url = $8,
			genres = $9, countries = $10, languages = $11, studios = $12,
			directors = $13, cast_members = $14, source_url = $15,
			tmdb_id = $16, imdb_id = $17, details_fetched = $18,
			updated_at = $19
		WHERE id = $1
		RETURNING updated_at`

	err = r.db.QueryRow(ctx, query,
		film.ID,
		film.Title,
		film.Year,
		film.Rating,
		film.RuntimeMinutes,
		film.Tagline,
		film.Description,
		film.PosterURL,
		values.genres,
		values.countries,
		values.languages,
		values.studios,
		values.directors,
		values.cast,
		film.SourceURL,
		film.TMDBID,
		film.IMDBID,
		film.DetailsFetched,
		now,
	).Scan(&film.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update film: %w", err)
	}

	return nil
}

func (r *filmRepository) GetBySlug(ctx context.Context, slug string) (*models.Film, error) {
	query := `SELECT ` + filmColumns + ` FROM films WHERE slug = $1`
	return r.scanFilm(r.db.QueryRow(ctx, query, slug))
}

func (r *filmRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Film, error) {
	query := `SELECT ` + filmColumns + ` FROM films WHERE id = $1`
	return r.scanFilm(r.db.QueryRow(ctx, query, id))
}

func (r *filmRepository) ListEnrichable(ctx context.Context, force bool, limit int) ([]*models.Film, error) {
	query := `
		SELECT ` + filmColumns + `
		FROM films f
		WHERE f.tmdb_id IS NOT NULL`
	if !force {
		query += `
		AND NOT EXISTS (
			SELECT 1 FROM film_enrichment e WHERE e.film_id = f.id
		)`
	}
	query += `
		ORDER BY f.created_at`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrichable films: %w", err)
	}
	defer rows.Close()

	var films []*models.Film
	for rows.Next() {
		film, err := r.scanFilm(rows)
		if err != nil {
			return nil, err
		}
		films = append(films, film)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate films: %w", err)
	}

	return films, nil
}

func (r *filmRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM films`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count films: %w", err)
	}
	return count, nil
}

func (r *filmRepository) CountWithSourceID(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM films WHERE tmdb_id IS NOT NULL`
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count enrichable films: %w", err)
	}
	return count, nil
}

type filmJSONB struct {
	genres, countries, languages, studios, directors, cast interface{}
}

func filmJSONValues(film *models.Film) (*filmJSONB, error) {
	values := &filmJSONB{}
	var err error
	if values.genres, err = film.Genres.Value(); err != nil {
		return nil, fmt.Errorf("failed to marshal genres: %w", err)
	}
	if values.countries, err = film.Countries.Value(); err != nil {
		return nil, fmt.Errorf("failed to marshal countries: %w", err)
	}
	if values.languages, err = film.Languages.Value(); err != nil {
		return nil, fmt.Errorf("failed to marshal languages: %w", err)
	}
	if values.studios, err = film.Studios.Value(); err != nil {
		return nil, fmt.Errorf("failed to marshal studios: %w", err)
	}
	if values.directors, err = film.Directors.Value(); err != nil {
		return nil, fmt.Errorf("failed to marshal directors: %w", err)
	}
	if values.cast, err = film.Cast.Value(); err != nil {
		return nil, fmt.Errorf("failed to marshal cast: %w", err)
	}
	return values, nil
}

func (r *filmRepository) scanFilm(row pgx.Row) (*models.Film, error) {
	film := &models.Film{}
	err := row.Scan(
		&film.ID,
		&film.Slug,
		&film.Title,
		&film.Year,
		&film.Rating,
		&film.RuntimeMinutes,
		&film.Tagline,
		&film.Description,
		&film.PosterURL,
		&film.Genres,
		&film.Countries,
		&film.Languages,
		&film.Studios,
		&film.Directors,
		&film.Cast,
		&film.SourceURL,
		&film.TMDBID,
		&film.IMDBID,
		&film.DetailsFetched,
		&film.CreatedAt,
		&film.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan film: %w", err)
	}
	return film, nil
}
