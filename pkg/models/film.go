package models

import (
	"time"

	"github.com/google/uuid"
)

// Film is the catalogue record for a single film, keyed by its slug on
// the primary source. Detail fields stay nil until a detail fetch has
// succeeded, which is recorded in DetailsFetched.
type Film struct {
	ID             uuid.UUID  `json:"id"`
	Slug           string     `json:"slug"`
	Title          string     `json:"title"`
	Year           *int       `json:"year,omitempty"`
	Rating         *float64   `json:"rating,omitempty"`
	RuntimeMinutes *int       `json:"runtime_minutes,omitempty"`
	Tagline        *string    `json:"tagline,omitempty"`
	Description    *string    `json:"description,omitempty"`
	PosterURL      *string    `json:"poster_url,omitempty"`
	Genres         StringList `json:"genres"`
	Countries      StringList `json:"countries"`
	Languages      StringList `json:"languages"`
	Studios        StringList `json:"studios"`
	Directors      CreditList `json:"directors"`
	Cast           CreditList `json:"cast"`
	SourceURL      *string    `json:"source_url,omitempty"`
	TMDBID         *string    `json:"tmdb_id,omitempty"`
	IMDBID         *string    `json:"imdb_id,omitempty"`
	DetailsFetched bool       `json:"details_fetched"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
