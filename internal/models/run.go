package models

import (
	"time"

	"github.com/google/uuid"
)

// Run is a dated occasion photos are organized around. The vault keeps
// a system-managed folder for every run; folder creation is best-effort,
// so a run may exist without one.
type Run struct {
	ID          uuid.UUID `json:"id"`
	RunDate     time.Time `json:"run_date"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RunCard is a run as shown in the timeline listing: photo count plus a
// handful of preview photos with signed URLs.
type RunCard struct {
	Run
	PhotoCount int     `json:"photo_count"`
	Photos     []Photo `json:"photos"`
}

// RunWithDetails is a run with its full ordered photo set.
type RunWithDetails struct {
	Run
	Photos []Photo `json:"photos"`
}
