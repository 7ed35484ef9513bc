package models

import (
	"time"

	"github.com/google/uuid"
)

// WatchlistEntry records that an account currently has a film on its
// watchlist. The (account, film) pair is unique; re-syncing an entry
// that already exists is a no-op.
type WatchlistEntry struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	FilmID    uuid.UUID `json:"film_id"`
	CreatedAt time.Time `json:"created_at"`
}
