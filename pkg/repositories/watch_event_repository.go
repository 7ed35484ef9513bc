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

// WatchEventRepository provides data access for diary entries. Events
// are deduplicated by the primary source's viewing id.
type WatchEventRepository interface {
	Create(ctx context.Context, event *models.WatchEvent) error

	// UpdateMutable updates only the fields the source can change on
	// an existing diary entry. Identity and the watch date are left
	// untouched.
	UpdateMutable(ctx context.Context, event *models.WatchEvent) error

	GetByExternalID(ctx context.Context, externalID string) (*models.WatchEvent, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.WatchEvent, error)

	Count(ctx context.Context) (int, error)
}

type watchEventRepository struct {
	db *database.DB
}

// NewWatchEventRepository creates a new WatchEventRepository.
func NewWatchEventRepository(db *database.DB) WatchEventRepository {
	return &watchEventRepository{db: db}
}

var _ WatchEventRepository = (*watchEventRepository)(nil)

const watchEventColumns = `id, account_id, film_id, external_event_id, watched_date,
	rating, rewatch, liked, review_text, review_spoilers, created_at, updated_at`

func (r *watchEventRepository) Create(ctx context.Context, event *models.WatchEvent) error {
	now := time.Now()

	query := `
		INSERT INTO watch_events (
			account_id, film_id, external_event_id, watched_date,
			rating, rewatch, liked, review_text, review_spoilers,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		event.AccountID,
		event.FilmID,
		event.ExternalEventID,
		event.WatchedDate,
		event.Rating,
		event.Rewatch,
		event.Liked,
		event.ReviewText,
		event.ReviewSpoilers,
		now,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create watch event: %w", err)
	}

	return nil
}

func (r *watchEventRepository) UpdateMutable(ctx context.Context, event *models.WatchEvent) error {
	now := time.Now()

	query := `
		UPDATE watch_events SET
			rating = $2, rewatch = $3, liked = $4,
			review_text = $5, review_spoilers = $6, updated_at = $7
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		event.ID,
		event.Rating,
		event.Rewatch,
		event.Liked,
		event.ReviewText,
		event.ReviewSpoilers,
		now,
	).Scan(&event.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update watch event: %w", err)
	}

	return nil
}

func (r *watchEventRepository) GetByExternalID(ctx context.Context, externalID string) (*models.WatchEvent, error) {
	query := `SELECT ` + watchEventColumns + ` FROM watch_events WHERE external_event_id = $1`

	event := &models.WatchEvent{}
	err := r.db.QueryRow(ctx, query, externalID).Scan(
		&event.ID,
		&event.AccountID,
		&event.FilmID,
		&event.ExternalEventID,
		&event.WatchedDate,
		&event.Rating,
		&event.Rewatch,
		&event.Liked,
		&event.ReviewText,
		&event.ReviewSpoilers,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get watch event: %w", err)
	}

	return event, nil
}

func (r *watchEventRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.WatchEvent, error) {
	query := `
		SELECT ` + watchEventColumns + `
		FROM watch_events
		WHERE account_id = $1
		ORDER BY watched_date DESC NULLS LAST, created_at DESC`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watch events: %w", err)
	}
	defer rows.Close()

	var events []*models.WatchEvent
	for rows.Next() {
		event := &models.WatchEvent{}
		err := rows.Scan(
			&event.ID,
			&event.AccountID,
			&event.FilmID,
			&event.ExternalEventID,
			&event.WatchedDate,
			&event.Rating,
			&event.Rewatch,
			&event.Liked,
			&event.ReviewText,
			&event.ReviewSpoilers,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watch event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watch events: %w", err)
	}

	return events, nil
}

func (r *watchEventRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM watch_events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count watch events: %w", err)
	}
	return count, nil
}
