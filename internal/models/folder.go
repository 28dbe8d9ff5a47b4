package models

import (
	"time"

	"github.com/google/uuid"
)

// Folder types. Exactly one root folder exists; run folders are
// system-managed and tied 1:1 to a run; custom folders are user-managed.
const (
	FolderTypeRoot   = "root"
	FolderTypeRun    = "run"
	FolderTypeCustom = "custom"
)

// Folder is a node in the vault hierarchy. The tree is stored flat:
// every node references its parent by ID, and (parent_id, slug) is
// unique so sibling slugs never collide.
type Folder struct {
	ID        uuid.UUID  `json:"id"`
	ParentID  *uuid.UUID `json:"parent_id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Type      string     `json:"folder_type"`
	RunID     *uuid.UUID `json:"run_id"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FolderWithMeta is a folder enriched with listing metadata: how many
// items it holds and a representative preview image, when one exists.
type FolderWithMeta struct {
	Folder
	ItemCount  int    `json:"item_count"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// Breadcrumb is a read-only projection of one ancestor in a folder's
// chain, ordered root-first. Never persisted.
type Breadcrumb struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
	Type string    `json:"folder_type"`
}

// FolderContents is everything needed to render one folder view.
type FolderContents struct {
	Folder     Folder           `json:"folder"`
	Subfolders []FolderWithMeta `json:"subfolders"`
	Photos     []Photo          `json:"photos"`
}
