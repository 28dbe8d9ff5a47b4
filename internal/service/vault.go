package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"runvault/internal/cache"
	"runvault/internal/models"
	"runvault/internal/slug"
	"runvault/internal/store"
)

const (
	// maxPreviewProbes bounds how many subfolders of a custom folder are
	// probed for a preview photo. One level deep only.
	maxPreviewProbes = 5

	// enrichLimit bounds concurrent enrichment of sibling folders.
	enrichLimit = 4

	// maxSlugAttempts bounds the run-folder suffix retry loop when the
	// uniqueness constraint keeps rejecting candidates.
	maxSlugAttempts = 100
)

// VaultService owns the folder hierarchy: bootstrap, breadcrumbs, content
// aggregation, and the folder side of the run lifecycle, including
// cascading deletes.
type VaultService struct {
	folders *store.FolderStore
	photos  *store.PhotoStore
	runs    *store.RunStore
	tree    store.TreeWalker
	objects ObjectStore
	urls    *cache.URLCache
}

// NewVaultService returns a new VaultService.
func NewVaultService(folders *store.FolderStore, photos *store.PhotoStore, runs *store.RunStore, tree store.TreeWalker, objects ObjectStore, urls *cache.URLCache) *VaultService {
	return &VaultService{folders: folders, photos: photos, runs: runs, tree: tree, objects: objects, urls: urls}
}

// Root returns the root folder, or ErrNotFound when the vault has never
// been bootstrapped.
func (s *VaultService) Root() (*models.Folder, error) {
	root, err := s.folders.FindRoot()
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("root folder: %w", ErrNotFound)
	}
	return root, nil
}

// EnsureRoot returns the root folder, creating it on first access.
// Idempotent and safe under racing bootstrap calls.
func (s *VaultService) EnsureRoot(ownerID uuid.UUID) (*models.Folder, error) {
	return s.folders.CreateRoot(ownerID)
}

// Breadcrumbs returns the ancestor chain for a folder, root first, ending
// with the folder itself.
func (s *VaultService) Breadcrumbs(folderID uuid.UUID) ([]models.Breadcrumb, error) {
	crumbs, err := s.tree.Ancestors(folderID)
	if err != nil {
		return nil, err
	}
	if len(crumbs) == 0 {
		return nil, fmt.Errorf("folder %s: %w", folderID, ErrNotFound)
	}
	return crumbs, nil
}

// FolderContents returns a folder with its sorted, enriched subfolders
// and its direct photos carrying download URLs.
func (s *VaultService) FolderContents(ctx context.Context, folderID uuid.UUID) (*models.FolderContents, error) {
	folder, err := s.folders.FindByID(folderID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, fmt.Errorf("folder %s: %w", folderID, ErrNotFound)
	}

	children, err := s.folders.ListChildren(folderID)
	if err != nil {
		return nil, err
	}
	photos, err := s.photos.ListByFolder(folderID)
	if err != nil {
		return nil, err
	}
	if err := s.attachDownloadURLs(ctx, photos); err != nil {
		return nil, err
	}

	sortSubfolders(children, folder.Type)
	enriched, err := s.enrichSubfolders(ctx, children)
	if err != nil {
		return nil, err
	}

	return &models.FolderContents{
		Folder:     *folder,
		Subfolders: enriched,
		Photos:     photos,
	}, nil
}

// FolderChildren returns a folder's enriched children only, sorted by
// the sibling ordering rules.
func (s *VaultService) FolderChildren(ctx context.Context, folderID uuid.UUID) ([]models.FolderWithMeta, error) {
	folder, err := s.folders.FindByID(folderID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, fmt.Errorf("folder %s: %w", folderID, ErrNotFound)
	}

	children, err := s.folders.ListChildren(folderID)
	if err != nil {
		return nil, err
	}
	sortSubfolders(children, folder.Type)
	return s.enrichSubfolders(ctx, children)
}

// CreateCustomFolder creates a user-managed folder under parentID.
// Sibling slug collisions surface as ErrConflict; the caller picks a new
// name. Custom folders never nest under run folders.
func (s *VaultService) CreateCustomFolder(parentID uuid.UUID, name string, ownerID uuid.UUID) (*models.Folder, error) {
	folderSlug := slug.Normalize(name)
	if folderSlug == "" {
		return nil, fmt.Errorf("folder name %q yields an empty slug: %w", name, ErrInvalidOperation)
	}

	parent, err := s.folders.FindByID(parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf("parent folder %s: %w", parentID, ErrNotFound)
	}
	if parent.Type == models.FolderTypeRun {
		return nil, fmt.Errorf("cannot create folders inside a run folder: %w", ErrInvalidOperation)
	}

	created, err := s.folders.Create(&models.Folder{
		ParentID:  &parentID,
		Name:      name,
		Slug:      folderSlug,
		Type:      models.FolderTypeCustom,
		CreatedBy: ownerID,
	})
	if errors.Is(err, store.ErrDuplicateSlug) {
		return nil, fmt.Errorf("folder %q already exists here: %w", name, ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateRunFolder creates the system-managed folder for a run under the
// root, resolving date collisions with numeric suffixes: run_2025-02-15,
// run_2025-02-15_1, and so on. Only run-type siblings with the same date
// prefix participate in the collision check, so a custom folder with an
// identical slug never blocks a run folder. The suffix probe minimizes
// retries; the (parent_id, slug) constraint is the actual safety net, and
// losing that race advances to the next suffix.
func (s *VaultService) CreateRunFolder(rootID, runID uuid.UUID, title string, date time.Time, ownerID uuid.UUID) (uuid.UUID, error) {
	base := slug.ForDate(date)
	name := slug.RunFolderName(date, title)

	existing, err := s.folders.ListRunSlugs(rootID, base)
	if err != nil {
		return uuid.Nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, used := range existing {
		taken[used] = true
	}

	candidate := base
	suffix := 1
	for taken[candidate] {
		candidate = fmt.Sprintf("%s_%d", base, suffix)
		suffix++
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		created, err := s.folders.Create(&models.Folder{
			ParentID:  &rootID,
			Name:      name,
			Slug:      candidate,
			Type:      models.FolderTypeRun,
			RunID:     &runID,
			CreatedBy: ownerID,
		})
		if errors.Is(err, store.ErrDuplicateSlug) {
			// Lost a concurrent race for this suffix; try the next one.
			candidate = fmt.Sprintf("%s_%d", base, suffix)
			suffix++
			continue
		}
		if err != nil {
			return uuid.Nil, err
		}
		return created.ID, nil
	}
	return uuid.Nil, fmt.Errorf("run folder slug for %s: %w", base, ErrConflict)
}

// DeleteRunFolder removes a run's folder, if it has one. Run folders are
// childless leaves in normal operation, but the generic descendant
// cascade runs anyway in case the data says otherwise.
func (s *VaultService) DeleteRunFolder(ctx context.Context, runID uuid.UUID) error {
	folder, err := s.folders.FindByRunID(runID)
	if err != nil {
		return err
	}
	if folder == nil {
		// Folder creation is best-effort, so absence is a normal history.
		return nil
	}
	return s.cascadeDelete(ctx, folder.ID)
}

// DeleteFolder recursively deletes a custom folder: every descendant
// folder, every photo in the set, and every photo's storage object.
// Only the folder's creator or an admin may delete; root and run folders
// are not deletable through this path.
func (s *VaultService) DeleteFolder(ctx context.Context, folderID uuid.UUID, requester *models.User) error {
	folder, err := s.folders.FindByID(folderID)
	if err != nil {
		return err
	}
	if folder == nil {
		return fmt.Errorf("folder %s: %w", folderID, ErrNotFound)
	}
	if folder.Type != models.FolderTypeCustom {
		return fmt.Errorf("only custom folders can be deleted: %w", ErrInvalidOperation)
	}
	if folder.CreatedBy != requester.ID && !requester.IsAdmin() {
		return fmt.Errorf("folder %s belongs to another user: %w", folderID, ErrForbidden)
	}

	return s.cascadeDelete(ctx, folderID)
}

// cascadeDelete is the shared descendant cascade. Ordering is the whole
// point: storage objects first, then photo rows, then folder rows. A
// failure partway leaves metadata intact and the operation retryable;
// storage deletes are idempotent.
func (s *VaultService) cascadeDelete(ctx context.Context, folderID uuid.UUID) error {
	ids, err := s.tree.Descendants(folderID)
	if err != nil {
		return err
	}

	paths, err := s.photos.ListStoragePathsByFolders(ids)
	if err != nil {
		return err
	}

	if failed := deleteObjects(ctx, s.objects, s.urls, paths); failed > 0 {
		slog.Warn("some storage objects were not deleted",
			"folder_id", folderID, "failed", failed, "total", len(paths))
	}

	if err := s.photos.DeleteByFolders(ids); err != nil {
		return err
	}
	return s.folders.DeleteSet(ids)
}

// BackfillRunFolders creates a run folder for every run missing one and
// points the run's photos at it. Admin-triggered repair for histories
// where best-effort folder creation failed. Returns how many runs were
// migrated and how many already had folders.
func (s *VaultService) BackfillRunFolders(requester *models.User) (migrated, skipped int, err error) {
	if !requester.IsAdmin() {
		return 0, 0, fmt.Errorf("folder backfill: %w", ErrForbidden)
	}

	root, err := s.EnsureRoot(requester.ID)
	if err != nil {
		return 0, 0, err
	}

	total, err := s.runs.Count()
	if err != nil {
		return 0, 0, err
	}

	missing, err := s.runs.ListWithoutFolder()
	if err != nil {
		return 0, 0, err
	}
	skipped = total - len(missing)

	for _, run := range missing {
		title := ""
		if run.Title != nil {
			title = *run.Title
		}
		folderID, err := s.CreateRunFolder(root.ID, run.ID, title, run.RunDate, run.CreatedBy)
		if err != nil {
			return migrated, skipped, fmt.Errorf("backfill run %s: %w", run.ID, err)
		}
		if err := s.photos.LinkRunPhotosToFolder(run.ID, folderID); err != nil {
			return migrated, skipped, fmt.Errorf("backfill link photos for run %s: %w", run.ID, err)
		}
		migrated++
	}
	return migrated, skipped, nil
}

// attachDownloadURLs fills the URL virtual field on every photo.
func (s *VaultService) attachDownloadURLs(ctx context.Context, photos []models.Photo) error {
	for i := range photos {
		url, err := resolveDownloadURL(ctx, s.objects, s.urls, photos[i].StoragePath)
		if err != nil {
			return fmt.Errorf("download url for %s: %w", photos[i].StoragePath, err)
		}
		photos[i].URL = url
	}
	return nil
}

// sortSubfolders applies the sibling ordering rules in place. Under the
// root, run folders come first, newest date first (descending slug
// compare works because date slugs sort lexicographically), then custom
// folders alphabetically. Everywhere else, plain alphabetical by name.
func sortSubfolders(folders []models.Folder, parentType string) {
	sort.SliceStable(folders, func(i, j int) bool {
		a, b := folders[i], folders[j]
		if parentType == models.FolderTypeRoot {
			aRun := a.Type == models.FolderTypeRun
			bRun := b.Type == models.FolderTypeRun
			if aRun && bRun {
				return a.Slug > b.Slug
			}
			if aRun != bRun {
				return aRun
			}
		}
		return a.Name < b.Name
	})
}

// enrichSubfolders computes item counts and preview URLs for a sorted
// sibling list, fanning out with a bounded group.
func (s *VaultService) enrichSubfolders(ctx context.Context, folders []models.Folder) ([]models.FolderWithMeta, error) {
	enriched := make([]models.FolderWithMeta, len(folders))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichLimit)

	for i := range folders {
		i := i
		g.Go(func() error {
			meta, err := s.enrichFolder(ctx, folders[i])
			if err != nil {
				return err
			}
			enriched[i] = *meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enriched, nil
}

// enrichFolder computes one folder's item count (child folders plus
// direct photos) and preview URL.
func (s *VaultService) enrichFolder(ctx context.Context, folder models.Folder) (*models.FolderWithMeta, error) {
	subfolderCount, err := s.folders.CountChildren(folder.ID)
	if err != nil {
		return nil, err
	}
	photoCount, err := s.photos.CountByFolder(folder.ID)
	if err != nil {
		return nil, err
	}

	preview, err := s.previewURL(ctx, folder)
	if err != nil {
		return nil, err
	}

	return &models.FolderWithMeta{
		Folder:     folder,
		ItemCount:  subfolderCount + photoCount,
		PreviewURL: preview,
	}, nil
}

// previewURL picks a representative image for a folder: its first photo
// by display order. Custom folders without direct photos fall back to
// the newest photo of the first subfolder that has any, probing at most
// maxPreviewProbes subfolders one level deep. Empty string means no
// preview, which is a normal displayable state, not an error.
func (s *VaultService) previewURL(ctx context.Context, folder models.Folder) (string, error) {
	photo, err := s.photos.FirstInFolder(folder.ID)
	if err != nil {
		return "", err
	}
	if photo != nil {
		return resolveDownloadURL(ctx, s.objects, s.urls, photo.StoragePath)
	}

	if folder.Type != models.FolderTypeCustom {
		return "", nil
	}

	children, err := s.folders.ListChildren(folder.ID)
	if err != nil {
		return "", err
	}
	if len(children) > maxPreviewProbes {
		children = children[:maxPreviewProbes]
	}

	for _, child := range children {
		childPhoto, err := s.photos.LatestInFolder(child.ID)
		if err != nil {
			return "", err
		}
		if childPhoto != nil {
			return resolveDownloadURL(ctx, s.objects, s.urls, childPhoto.StoragePath)
		}
	}
	return "", nil
}
