package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cinelog-io/cinelog-engine/pkg/database"
	"github.com/cinelog-io/cinelog-engine/pkg/models"
)

// WatchlistRepository provides data access for watchlist entries. The
// (account, film) pair is the structural identity of an entry.
type WatchlistRepository interface {
	// Add inserts the entry unless the account already has the film
	// on its watchlist. Returns true when a new row was created.
	Add(ctx context.Context, entry *models.WatchlistEntry) (bool, error)

	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.WatchlistEntry, error)

	Count(ctx context.Context) (int, error)
}

type watchlistRepository struct {
	db *database.DB
}

// NewWatchlistRepository creates a new WatchlistRepository.
func NewWatchlistRepository(db *database.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

var _ WatchlistRepository = (*watchlistRepository)(nil)

func (r *watchlistRepository) Add(ctx context.Context, entry *models.WatchlistEntry) (bool, error) {
	now := time.Now()

	query := `
		INSERT INTO watchlist_entries (account_id, film_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, film_id) DO NOTHING
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, entry.AccountID, entry.FilmID, now).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Conflict: the entry already exists.
			return false, nil
		}
		return false, fmt.Errorf("failed to add watchlist entry: %w", err)
	}

	return true, nil
}

func (r *watchlistRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.WatchlistEntry, error) {
	query := `
		SELECT id, account_id, film_id, created_at
		FROM watchlist_entries
		WHERE account_id = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.WatchlistEntry
	for rows.Next() {
		entry := &models.WatchlistEntry{}
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.FilmID, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watchlist entries: %w", err)
	}

	return entries, nil
}

func (r *watchlistRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM watchlist_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count watchlist entries: %w", err)
	}
	return count, nil
}
