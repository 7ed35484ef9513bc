// Package repositories provides data access for the film catalogue.
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cinelog-io/cinelog-engine/pkg/apperrors"
	"github.com/cinelog-io/cinelog-engine/pkg/database"
	"github.com/cinelog-io/cinelog-engine/pkg/models"
)

// AccountRepository provides data access for tracked accounts.
type AccountRepository interface {
	// Upsert creates the account or replaces its profile fields
	// wholesale. Keyed by username.
	Upsert(ctx context.Context, account *models.Account) error

	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	Count(ctx context.Context) (int, error)
}

type accountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *database.DB) AccountRepository {
	return &accountRepository{db: db}
}

var _ AccountRepository = (*accountRepository)(nil)

func (r *accountRepository) Upsert(ctx context.Context, account *models.Account) error {
	now := time.Now()

	favoritesValue, err := account.Favorites.Value()
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}
	statsValue, err := account.Stats.Value()
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	query := `
		INSERT INTO accounts (
			username, display_name, bio, location, website,
			favorites, stats, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (username)
		DO UPDATE SET
			display_name = EXCLUDED.display_name,
			bio = EXCLUDED.bio,
			location = EXCLUDED.location,
			website = EXCLUDED.website,
			favorites = EXCLUDED.favorites,
			stats = EXCLUDED.stats,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		account.Username,
		account.DisplayName,
		account.Bio,
		account.Location,
		account.Website,
		favoritesValue,
		statsValue,
		now,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}

	return nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT id, username, display_name, bio, location, website,
		       favorites, stats, created_at, updated_at
		FROM accounts
		WHERE username = $1`

	account := &models.Account{}
	err := r.db.QueryRow(ctx, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.DisplayName,
		&account.Bio,
		&account.Location,
		&account.Website,
		&account.Favorites,
		&account.Stats,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

func (r *accountRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}
