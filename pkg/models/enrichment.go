package models

import (
	"time"

	"github.com/google/uuid"
)

// EnrichmentRecord holds the TMDB-sourced metadata for a film. One row
// per film; re-enrichment overwrites the row in place and bumps
// LastSyncedAt.
type EnrichmentRecord struct {
	ID     uuid.UUID `json:"id"`
	FilmID uuid.UUID `json:"film_id"`
	TMDBID int64     `json:"tmdb_id"`

	Budget        *int64   `json:"budget,omitempty"`
	Revenue       *int64   `json:"revenue,omitempty"`
	VoteAverage   *float64 `json:"vote_average,omitempty"`
	VoteCount     *int     `json:"vote_count,omitempty"`
	Popularity    *float64 `json:"popularity,omitempty"`
	Certification *string  `json:"certification,omitempty"`
	Status        *string  `json:"status,omitempty"`
	ReleaseDate   *string  `json:"release_date,omitempty"`
	Homepage      *string  `json:"homepage,omitempty"`

	CollectionID        *int64  `json:"collection_id,omitempty"`
	CollectionName      *string `json:"collection_name,omitempty"`
	CollectionPosterURL *string `json:"collection_poster_url,omitempty"`

	Keywords            StringList `json:"keywords"`
	WatchProviders      JSONBMap   `json:"watch_providers"`
	Videos              JSONBList  `json:"videos"`
	CastCredits         JSONBList  `json:"cast_credits"`
	CrewCredits         JSONBList  `json:"crew_credits"`
	ProductionCompanies JSONBList  `json:"production_companies"`

	IMDBID      *string `json:"imdb_id,omitempty"`
	WikidataID  *string `json:"wikidata_id,omitempty"`
	FacebookID  *string `json:"facebook_id,omitempty"`
	InstagramID *string `json:"instagram_id,omitempty"`
	TwitterID   *string `json:"twitter_id,omitempty"`

	LastSyncedAt time.Time `json:"last_synced_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
