package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"runvault/internal/models"
)

// PhotoStore manages photo metadata rows. The bytes live in object
// storage; this store only ever touches metadata.
type PhotoStore struct {
	db *sql.DB
}

// NewPhotoStore returns a new PhotoStore.
func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

const photoColumns = `id, run_id, folder_id, storage_path, file_name, file_size,
	mime_type, display_order, uploaded_by, created_at`

// scanPhoto scans a photo row from the result set.
func scanPhoto(scanner interface{ Scan(...any) error }) (*models.Photo, error) {
	var p models.Photo
	err := scanner.Scan(
		&p.ID, &p.RunID, &p.FolderID, &p.StoragePath, &p.FileName, &p.FileSize,
		&p.MimeType, &p.DisplayOrder, &p.UploadedBy, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a pending photo row (no run, no folder) and returns it
// with the generated ID.
func (s *PhotoStore) Create(p *models.Photo) (*models.Photo, error) {
	row := s.db.QueryRow(`
		INSERT INTO photos (storage_path, file_name, file_size, mime_type, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+photoColumns,
		p.StoragePath, p.FileName, p.FileSize, p.MimeType, p.UploadedBy,
	)
	created, err := scanPhoto(row)
	if err != nil {
		return nil, fmt.Errorf("create photo: %w", err)
	}
	return created, nil
}

// FindByID retrieves a photo by ID. Returns nil if not found.
func (s *PhotoStore) FindByID(id uuid.UUID) (*models.Photo, error) {
	row := s.db.QueryRow(`SELECT `+photoColumns+` FROM photos WHERE id = $1`, id)
	p, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find photo by id: %w", err)
	}
	return p, nil
}

// RunCreator returns the creator of the run a photo belongs to, or nil
// when the photo is not attached to a run. Used for delete permission
// checks without a second round trip.
func (s *PhotoStore) RunCreator(photoID uuid.UUID) (*uuid.UUID, error) {
	var creator *uuid.UUID
	err := s.db.QueryRow(`
		SELECT r.created_by
		FROM photos p
		LEFT JOIN runs r ON r.id = p.run_id
		WHERE p.id = $1
	`, photoID).Scan(&creator)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find run creator for photo: %w", err)
	}
	return creator, nil
}

// ListByFolder returns a folder's direct photos ordered by display_order,
// with uploader details joined in.
func (s *PhotoStore) ListByFolder(folderID uuid.UUID) ([]models.Photo, error) {
	return s.listWithUploader(`p.folder_id = $1`, `p.display_order, p.created_at`, folderID)
}

// ListByRun returns a run's photos ordered by display_order, with
// uploader details joined in.
func (s *PhotoStore) ListByRun(runID uuid.UUID) ([]models.Photo, error) {
	return s.listWithUploader(`p.run_id = $1`, `p.display_order, p.created_at`, runID)
}

// ListRecentInCustomFolders returns the newest photos living in custom
// folders, newest first.
func (s *PhotoStore) ListRecentInCustomFolders(limit int) ([]models.Photo, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.run_id, p.folder_id, p.storage_path, p.file_name, p.file_size,
			p.mime_type, p.display_order, p.uploaded_by, p.created_at,
			u.id, u.name, u.avatar_url
		FROM photos p
		JOIN folders f ON f.id = p.folder_id AND f.folder_type = 'custom'
		LEFT JOIN users u ON u.id = p.uploaded_by
		ORDER BY p.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent photos: %w", err)
	}
	defer rows.Close()
	return collectPhotosWithUploader(rows)
}

// listWithUploader is the shared shape for folder/run photo listings.
func (s *PhotoStore) listWithUploader(where, order string, arg any) ([]models.Photo, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.run_id, p.folder_id, p.storage_path, p.file_name, p.file_size,
			p.mime_type, p.display_order, p.uploaded_by, p.created_at,
			u.id, u.name, u.avatar_url
		FROM photos p
		LEFT JOIN users u ON u.id = p.uploaded_by
		WHERE `+where+`
		ORDER BY `+order,
		arg)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()
	return collectPhotosWithUploader(rows)
}

func collectPhotosWithUploader(rows *sql.Rows) ([]models.Photo, error) {
	var items []models.Photo
	for rows.Next() {
		var p models.Photo
		var uploaderID *uuid.UUID
		var uploaderName, uploaderAvatar *string
		err := rows.Scan(
			&p.ID, &p.RunID, &p.FolderID, &p.StoragePath, &p.FileName, &p.FileSize,
			&p.MimeType, &p.DisplayOrder, &p.UploadedBy, &p.CreatedAt,
			&uploaderID, &uploaderName, &uploaderAvatar,
		)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		if uploaderID != nil {
			p.Uploader = &models.Uploader{ID: *uploaderID, Name: uploaderName, AvatarURL: uploaderAvatar}
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// CountByFolder returns the number of photos directly in a folder.
func (s *PhotoStore) CountByFolder(folderID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM photos WHERE folder_id = $1`, folderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count photos by folder: %w", err)
	}
	return count, nil
}

// CountByRun returns the number of photos attached to a run.
func (s *PhotoStore) CountByRun(runID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM photos WHERE run_id = $1`, runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count photos by run: %w", err)
	}
	return count, nil
}

// MaxDisplayOrder returns the highest display_order among a run's photos,
// or 0 when the run has none.
func (s *PhotoStore) MaxDisplayOrder(runID uuid.UUID) (int, error) {
	var max int
	err := s.db.QueryRow(`
		SELECT COALESCE(MAX(display_order), 0) FROM photos WHERE run_id = $1
	`, runID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max display order: %w", err)
	}
	return max, nil
}

// FirstInFolder returns the folder's first photo by display order, or nil
// when the folder holds none. Used for folder previews.
func (s *PhotoStore) FirstInFolder(folderID uuid.UUID) (*models.Photo, error) {
	row := s.db.QueryRow(`
		SELECT `+photoColumns+` FROM photos
		WHERE folder_id = $1
		ORDER BY display_order, created_at
		LIMIT 1
	`, folderID)
	p, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first photo in folder: %w", err)
	}
	return p, nil
}

// LatestInFolder returns the folder's most recently created photo, or nil.
func (s *PhotoStore) LatestInFolder(folderID uuid.UUID) (*models.Photo, error) {
	row := s.db.QueryRow(`
		SELECT `+photoColumns+` FROM photos
		WHERE folder_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, folderID)
	p, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest photo in folder: %w", err)
	}
	return p, nil
}

// AttachToRun links photos to a run with sequential display orders
// starting after startOrder, and sets folder_id to the run's folder in
// the same update. folderID may be nil when the run has no folder yet;
// those photos are reconciled later by the folder backfill.
func (s *PhotoStore) AttachToRun(photoIDs []uuid.UUID, runID uuid.UUID, folderID *uuid.UUID, startOrder int) error {
	if len(photoIDs) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		UPDATE photos SET run_id = $1, folder_id = $2, display_order = $3
		WHERE id = $4`)
	if err != nil {
		return fmt.Errorf("prepare attach: %w", err)
	}
	defer stmt.Close()

	for i, photoID := range photoIDs {
		if _, err := stmt.Exec(runID, folderID, startOrder+i+1, photoID); err != nil {
			return fmt.Errorf("attach photo %s to run: %w", photoID, err)
		}
	}

	return tx.Commit()
}

// AttachToFolder sets folder_id on the listed photos. Run membership is
// untouched.
func (s *PhotoStore) AttachToFolder(photoIDs []uuid.UUID, folderID uuid.UUID) error {
	if len(photoIDs) == 0 {
		return nil
	}
	query := `UPDATE photos SET folder_id = $1 WHERE id IN (` + placeholders(2, len(photoIDs)) + `)`
	args := append([]any{folderID}, idArgs(photoIDs)...)
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("attach photos to folder: %w", err)
	}
	return nil
}

// LinkRunPhotosToFolder points every photo of a run at the run's folder.
func (s *PhotoStore) LinkRunPhotosToFolder(runID, folderID uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE photos SET folder_id = $1 WHERE run_id = $2`, folderID, runID)
	if err != nil {
		return fmt.Errorf("link run photos to folder: %w", err)
	}
	return nil
}

// ListStoragePathsByFolders returns the storage paths of every photo in
// the given folder set, for object cleanup before the rows go away.
func (s *PhotoStore) ListStoragePathsByFolders(folderIDs []uuid.UUID) ([]string, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}
	query := `SELECT storage_path FROM photos WHERE folder_id IN (` + placeholders(1, len(folderIDs)) + `)`
	rows, err := s.db.Query(query, idArgs(folderIDs)...)
	if err != nil {
		return nil, fmt.Errorf("list storage paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan storage path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// ListStoragePathsByRun returns the storage paths of a run's photos.
func (s *PhotoStore) ListStoragePathsByRun(runID uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(`SELECT storage_path FROM photos WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run storage paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan storage path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// DeleteByFolders removes every photo row in the given folder set.
func (s *PhotoStore) DeleteByFolders(folderIDs []uuid.UUID) error {
	if len(folderIDs) == 0 {
		return nil
	}
	query := `DELETE FROM photos WHERE folder_id IN (` + placeholders(1, len(folderIDs)) + `)`
	if _, err := s.db.Exec(query, idArgs(folderIDs)...); err != nil {
		return fmt.Errorf("delete photos by folders: %w", err)
	}
	return nil
}

// Delete removes a single photo row.
func (s *PhotoStore) Delete(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM photos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}
