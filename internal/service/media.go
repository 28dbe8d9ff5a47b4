package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"runvault/internal/cache"
	"runvault/internal/models"
	"runvault/internal/store"
)

// UploadRequest describes one file a client wants to upload.
type UploadRequest struct {
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// MediaService issues upload URLs and links photos to runs and folders.
type MediaService struct {
	photos  *store.PhotoStore
	runs    *store.RunStore
	folders *store.FolderStore
	objects ObjectStore
	urls    *cache.URLCache
}

// NewMediaService returns a new MediaService.
func NewMediaService(photos *store.PhotoStore, runs *store.RunStore, folders *store.FolderStore, objects ObjectStore, urls *cache.URLCache) *MediaService {
	return &MediaService{photos: photos, runs: runs, folders: folders, objects: objects, urls: urls}
}

// RegisterUploads creates a pending photo row per file and returns a
// presigned PUT URL for each. The photos belong to no run or folder
// until a later attach call.
func (s *MediaService) RegisterUploads(ctx context.Context, uploader uuid.UUID, files []UploadRequest) ([]models.PendingUpload, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files: %w", ErrInvalidOperation)
	}

	pending := make([]models.PendingUpload, 0, len(files))
	for _, f := range files {
		path := storagePathFor(f.FileName)

		name := f.FileName
		size := f.FileSize
		mime := f.MimeType
		created, err := s.photos.Create(&models.Photo{
			StoragePath: path,
			FileName:    &name,
			FileSize:    &size,
			MimeType:    &mime,
			UploadedBy:  uploader,
		})
		if err != nil {
			return nil, err
		}

		uploadURL, err := s.objects.UploadURL(ctx, path, f.MimeType)
		if err != nil {
			return nil, fmt.Errorf("upload url for %s: %w", path, err)
		}

		pending = append(pending, models.PendingUpload{
			PhotoID:     created.ID,
			UploadURL:   uploadURL,
			StoragePath: path,
		})
	}
	return pending, nil
}

// storagePathFor derives the object key for an upload. The original file
// name contributes only its extension; the key itself is a fresh UUID so
// uploads never collide.
func storagePathFor(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("runs/pending/%s%s", uuid.NewString(), ext)
}

// AttachToRun links pending photos to a run, continuing the run's
// display order. When the run has a folder, the photos join it in the
// same update.
func (s *MediaService) AttachToRun(ctx context.Context, runID uuid.UUID, photoIDs []uuid.UUID) error {
	if len(photoIDs) == 0 {
		return nil
	}

	run, err := s.runs.FindByID(runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}

	maxOrder, err := s.photos.MaxDisplayOrder(runID)
	if err != nil {
		return err
	}

	var folderID *uuid.UUID
	folder, err := s.folders.FindByRunID(runID)
	if err != nil {
		return err
	}
	if folder != nil {
		folderID = &folder.ID
	}

	return s.photos.AttachToRun(photoIDs, runID, folderID, maxOrder)
}

// AttachToFolder links photos to a folder without touching their run
// membership.
func (s *MediaService) AttachToFolder(ctx context.Context, folderID uuid.UUID, photoIDs []uuid.UUID) error {
	if len(photoIDs) == 0 {
		return nil
	}

	folder, err := s.folders.FindByID(folderID)
	if err != nil {
		return err
	}
	if folder == nil {
		return fmt.Errorf("folder %s: %w", folderID, ErrNotFound)
	}

	return s.photos.AttachToFolder(photoIDs, folderID)
}

// DeletePhoto removes a single photo: storage object first, then the
// row. Allowed for the uploader, the creator of the photo's run, and
// admins.
func (s *MediaService) DeletePhoto(ctx context.Context, photoID uuid.UUID, requester *models.User) error {
	photo, err := s.photos.FindByID(photoID)
	if err != nil {
		return err
	}
	if photo == nil {
		return fmt.Errorf("photo %s: %w", photoID, ErrNotFound)
	}

	if !s.canDeletePhoto(photo, requester) {
		return fmt.Errorf("photo %s belongs to another user: %w", photoID, ErrForbidden)
	}

	if err := s.objects.Delete(ctx, photo.StoragePath); err != nil {
		return fmt.Errorf("delete storage object %s: %w", photo.StoragePath, err)
	}
	s.urls.Invalidate(ctx, photo.StoragePath)

	return s.photos.Delete(photoID)
}

func (s *MediaService) canDeletePhoto(photo *models.Photo, requester *models.User) bool {
	if requester.IsAdmin() || photo.UploadedBy == requester.ID {
		return true
	}
	if photo.RunID == nil {
		return false
	}
	creator, err := s.photos.RunCreator(photo.ID)
	if err != nil || creator == nil {
		return false
	}
	return *creator == requester.ID
}

// RecentPhotos returns the newest photos living in custom folders, each
// with a download URL.
func (s *MediaService) RecentPhotos(ctx context.Context, limit int) ([]models.Photo, error) {
	if limit <= 0 {
		limit = 20
	}
	photos, err := s.photos.ListRecentInCustomFolders(limit)
	if err != nil {
		return nil, err
	}
	for i := range photos {
		url, err := resolveDownloadURL(ctx, s.objects, s.urls, photos[i].StoragePath)
		if err != nil {
			return nil, fmt.Errorf("download url for %s: %w", photos[i].StoragePath, err)
		}
		photos[i].URL = url
	}
	return photos, nil
}
