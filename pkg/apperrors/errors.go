package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrNotConfigured     = errors.New("enrichment source not configured")
	ErrSyncInProgress    = errors.New("a sync run is already in progress")
	ErrMissingExternalID = errors.New("film has no enrichment source id")
)
