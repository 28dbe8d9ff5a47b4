package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"runvault/internal/cache"
	"runvault/internal/models"
	"runvault/internal/store"
)

// runCardPreviewCount is how many photos a timeline card carries.
const runCardPreviewCount = 4

// RunInput is the payload for creating or updating a run.
type RunInput struct {
	RunDate     time.Time  `json:"run_date"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	PhotoIDs    []uuid.UUID `json:"photo_ids"`
}

// RunService owns the run lifecycle and keeps the vault's run folders in
// step with it.
type RunService struct {
	runs    *store.RunStore
	photos  *store.PhotoStore
	vault   *VaultService
	objects ObjectStore
	urls    *cache.URLCache
}

// NewRunService returns a new RunService.
func NewRunService(runs *store.RunStore, photos *store.PhotoStore, vault *VaultService, objects ObjectStore, urls *cache.URLCache) *RunService {
	return &RunService{runs: runs, photos: photos, vault: vault, objects: objects, urls: urls}
}

// Create inserts a run, links its initial photos, and creates the run's
// vault folder. Folder creation is best-effort: a failure is logged and
// the run still exists, repairable later by the folder backfill.
func (s *RunService) Create(ctx context.Context, input RunInput, creator *models.User) (*models.Run, error) {
	if input.RunDate.IsZero() {
		return nil, fmt.Errorf("run date is required: %w", ErrInvalidOperation)
	}

	run, err := s.runs.Create(&models.Run{
		RunDate:     input.RunDate,
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		CreatedBy:   creator.ID,
	})
	if err != nil {
		return nil, err
	}

	if len(input.PhotoIDs) > 0 {
		if err := s.photos.AttachToRun(input.PhotoIDs, run.ID, nil, 0); err != nil {
			return nil, fmt.Errorf("attach initial photos: %w", err)
		}
	}

	s.createFolderBestEffort(run, creator.ID)
	return run, nil
}

// createFolderBestEffort builds the run's vault folder and points the
// run's photos at it. Failures are logged and swallowed.
func (s *RunService) createFolderBestEffort(run *models.Run, ownerID uuid.UUID) {
	root, err := s.vault.EnsureRoot(ownerID)
	if err != nil {
		slog.Error("run folder skipped, root unavailable", "run_id", run.ID, "error", err)
		return
	}

	title := ""
	if run.Title != nil {
		title = *run.Title
	}
	folderID, err := s.vault.CreateRunFolder(root.ID, run.ID, title, run.RunDate, ownerID)
	if err != nil {
		slog.Error("run folder creation failed", "run_id", run.ID, "error", err)
		return
	}
	if err := s.photos.LinkRunPhotosToFolder(run.ID, folderID); err != nil {
		slog.Error("run folder photo link failed", "run_id", run.ID, "folder_id", folderID, "error", err)
	}
}

// Get returns a run with its full ordered photo set.
func (s *RunService) Get(ctx context.Context, runID uuid.UUID) (*models.RunWithDetails, error) {
	run, err := s.runs.FindByID(runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}

	photos, err := s.photos.ListByRun(runID)
	if err != nil {
		return nil, err
	}
	if err := s.attachURLs(ctx, photos); err != nil {
		return nil, err
	}

	return &models.RunWithDetails{Run: *run, Photos: photos}, nil
}

// List returns a page of timeline cards, newest run date first.
func (s *RunService) List(ctx context.Context, limit, offset int) ([]models.RunCard, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := s.runs.List(limit, offset)
	if err != nil {
		return nil, err
	}

	cards := make([]models.RunCard, 0, len(runs))
	for _, run := range runs {
		count, err := s.photos.CountByRun(run.ID)
		if err != nil {
			return nil, err
		}
		photos, err := s.photos.ListByRun(run.ID)
		if err != nil {
			return nil, err
		}
		if len(photos) > runCardPreviewCount {
			photos = photos[:runCardPreviewCount]
		}
		if err := s.attachURLs(ctx, photos); err != nil {
			return nil, err
		}
		cards = append(cards, models.RunCard{Run: run, PhotoCount: count, Photos: photos})
	}
	return cards, nil
}

// Update modifies a run's editable fields. Only the creator may edit.
func (s *RunService) Update(ctx context.Context, runID uuid.UUID, input RunInput, requester *models.User) (*models.Run, error) {
	run, err := s.runs.FindByID(runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if run.CreatedBy != requester.ID {
		return nil, fmt.Errorf("run %s belongs to another user: %w", runID, ErrForbidden)
	}

	run.Title = input.Title
	run.Description = input.Description
	run.Location = input.Location
	if err := s.runs.Update(run); err != nil {
		return nil, err
	}
	return run, nil
}

// Delete removes a run, its photos' storage objects, and its vault
// folder. Only the creator may delete. Ordering: objects (best-effort),
// then the folder, then the run row; a folder delete failure aborts so
// the run remains visible and the delete retryable.
func (s *RunService) Delete(ctx context.Context, runID uuid.UUID, requester *models.User) error {
	run, err := s.runs.FindByID(runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if run.CreatedBy != requester.ID {
		return fmt.Errorf("run %s belongs to another user: %w", runID, ErrForbidden)
	}

	paths, err := s.photos.ListStoragePathsByRun(runID)
	if err != nil {
		return err
	}
	if failed := deleteObjects(ctx, s.objects, s.urls, paths); failed > 0 {
		slog.Warn("some run storage objects were not deleted",
			"run_id", runID, "failed", failed, "total", len(paths))
	}

	if err := s.vault.DeleteRunFolder(ctx, runID); err != nil {
		return fmt.Errorf("delete run folder: %w", err)
	}

	return s.runs.Delete(runID)
}

func (s *RunService) attachURLs(ctx context.Context, photos []models.Photo) error {
	for i := range photos {
		url, err := resolveDownloadURL(ctx, s.objects, s.urls, photos[i].StoragePath)
		if err != nil {
			return fmt.Errorf("download url for %s: %w", photos[i].StoragePath, err)
		}
		photos[i].URL = url
	}
	return nil
}
