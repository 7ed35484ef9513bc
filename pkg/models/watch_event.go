package models

import (
	"time"

	"github.com/google/uuid"
)

// WatchEvent is a single diary entry: one viewing of a film by an
// account. ExternalEventID is the primary source's viewing id and is
// the deduplication key; an entry seen again on a later sync updates
// the mutable fields in place rather than creating a second row.
type WatchEvent struct {
	ID              uuid.UUID  `json:"id"`
	AccountID       uuid.UUID  `json:"account_id"`
	FilmID          uuid.UUID  `json:"film_id"`
	ExternalEventID string     `json:"external_event_id"`
	WatchedDate     *time.Time `json:"watched_date,omitempty"`
	Rating          *float64   `json:"rating,omitempty"`
	Rewatch         bool       `json:"rewatch"`
	Liked           bool       `json:"liked"`
	ReviewText      *string    `json:"review_text,omitempty"`
	ReviewSpoilers  bool       `json:"review_spoilers"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
