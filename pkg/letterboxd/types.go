package letterboxd

import (
	"time"

	"github.com/cinelog-io/cinelog-engine/pkg/models"
)

// AccountRecord is a profile page as scraped from the primary source.
type AccountRecord struct {
	Username    string
	DisplayName *string
	Bio         *string
	Location    *string
	Website     *string
	Favorites   []string
	Stats       map[string]interface{}
}

// DiaryEntryRecord is one row of the diary table. ExternalID is the
// source's viewing id. Rating is already converted to the 0.5-5.0
// scale; nil means unrated.
type DiaryEntryRecord struct {
	ExternalID     string
	FilmSlug       string
	FilmName       string
	WatchedDate    *time.Time
	Rating         *float64
	Rewatch        bool
	Liked          bool
	ReviewText     *string
	ReviewSpoilers bool
}

// WatchedFilmRecord is one poster from the watched-films grid,
// including the account's own rating for the film.
type WatchedFilmRecord struct {
	Slug   string
	Name   string
	Year   *int
	Rating *float64
	Liked  bool
}

// FilmRef is a bare film reference from a poster grid such as the
// watchlist.
type FilmRef struct {
	Slug string
	Name string
	Year *int
}

// FilmDetailRecord is a scraped film page. Optional fields are nil
// when the page does not carry them.
type FilmDetailRecord struct {
	Slug           string
	Title          string
	Year           *int
	Rating         *float64
	RuntimeMinutes *int
	Tagline        *string
	Description    *string
	PosterURL      *string
	Genres         []string
	Countries      []string
	Languages      []string
	Studios        []string
	Directors      []models.CreditEntry
	Cast           []models.CreditEntry
	URL            *string
	TMDBID         *string
	IMDBID         *string
}
