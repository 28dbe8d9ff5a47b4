package models

import (
	"time"

	"github.com/google/uuid"
)

// Photo is a single media item. A photo starts out pending (no run, no
// folder) when its upload URL is issued, and is linked to a run and/or
// folder afterwards. The bytes live in object storage under StoragePath.
type Photo struct {
	ID           uuid.UUID  `json:"id"`
	RunID        *uuid.UUID `json:"run_id"`
	FolderID     *uuid.UUID `json:"folder_id"`
	StoragePath  string     `json:"storage_path"`
	FileName     *string    `json:"file_name"`
	FileSize     *int64     `json:"file_size"`
	MimeType     *string    `json:"mime_type"`
	DisplayOrder int        `json:"display_order"`
	UploadedBy   uuid.UUID  `json:"uploaded_by"`
	CreatedAt    time.Time  `json:"created_at"`

	// Virtual fields populated by services.
	URL      string    `json:"url,omitempty"`
	Uploader *Uploader `json:"uploader,omitempty"`
}

// Uploader is the slice of a user shown next to a photo.
type Uploader struct {
	ID        uuid.UUID `json:"id"`
	Name      *string   `json:"name"`
	AvatarURL *string   `json:"avatar_url"`
}

// PendingUpload is returned when upload URLs are issued: the created
// photo row, a presigned write URL, and the storage key the client must
// upload to.
type PendingUpload struct {
	PhotoID     uuid.UUID `json:"photo_id"`
	UploadURL   string    `json:"upload_url"`
	StoragePath string    `json:"storage_path"`
}
