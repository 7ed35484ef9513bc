package models

import "time"

// CatalogueStats summarizes the primary-sync side of the store.
type CatalogueStats struct {
	Accounts         int `json:"accounts"`
	Films            int `json:"films"`
	WatchEvents      int `json:"watch_events"`
	WatchlistEntries int `json:"watchlist_entries"`
}

// EnrichmentStatus summarizes enrichment coverage over the catalogue.
type EnrichmentStatus struct {
	Configured      bool       `json:"configured"`
	TotalFilms      int        `json:"total_films"`
	WithSourceID    int        `json:"with_source_id"`
	WithoutSourceID int        `json:"without_source_id"`
	Enriched        int        `json:"enriched"`
	Pending         int        `json:"pending"`
	PercentDone     float64    `json:"percent_done"`
	LastSyncedAt    *time.Time `json:"last_synced_at,omitempty"`
}
