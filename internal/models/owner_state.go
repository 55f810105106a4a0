package models

import (
	"time"
)

// OwnerState is the per-owner control flag. When IsPaused is true, mutating
// clipboard operations for that owner are rejected; reads remain allowed.
type OwnerState struct {
	OwnerID   string    `json:"owner_id"`
	IsPaused  bool      `json:"is_paused"`
	UpdatedAt time.Time `json:"updated_at"`
}
