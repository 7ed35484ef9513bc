// Package models contains domain types for cinelog-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a tracked film-diary account on the primary source.
// There is one row per username; a sync run replaces the profile
// fields wholesale with what the source currently shows.
type Account struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	DisplayName *string    `json:"display_name,omitempty"`
	Bio         *string    `json:"bio,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Website     *string    `json:"website,omitempty"`
	Favorites   StringList `json:"favorites"`
	Stats       JSONBMap   `json:"stats"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
