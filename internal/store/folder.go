package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"runvault/internal/models"
)

// FolderStore manages the vault folder tree in the database.
type FolderStore struct {
	db *sql.DB
}

// NewFolderStore returns a new FolderStore.
func NewFolderStore(db *sql.DB) *FolderStore {
	return &FolderStore{db: db}
}

const folderColumns = `id, parent_id, name, slug, folder_type, run_id, created_by, created_at, updated_at`

// scanFolder scans a folder row from the result set.
func scanFolder(scanner interface{ Scan(...any) error }) (*models.Folder, error) {
	var f models.Folder
	err := scanner.Scan(
		&f.ID, &f.ParentID, &f.Name, &f.Slug, &f.Type,
		&f.RunID, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// FindByID retrieves a folder by ID. Returns nil if not found.
func (s *FolderStore) FindByID(id uuid.UUID) (*models.Folder, error) {
	row := s.db.QueryRow(`SELECT `+folderColumns+` FROM folders WHERE id = $1`, id)
	f, err := scanFolder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find folder by id: %w", err)
	}
	return f, nil
}

// FindRoot retrieves the singleton root folder. Returns nil if the vault
// has never been bootstrapped.
func (s *FolderStore) FindRoot() (*models.Folder, error) {
	row := s.db.QueryRow(`SELECT ` + folderColumns + ` FROM folders WHERE folder_type = 'root'`)
	f, err := scanFolder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find root folder: %w", err)
	}
	return f, nil
}

// CreateRoot creates the root folder if it does not exist yet and returns
// it. Idempotent: a concurrent bootstrap losing the insert race re-reads
// the winner's row, so both callers get the same folder.
func (s *FolderStore) CreateRoot(createdBy uuid.UUID) (*models.Folder, error) {
	if existing, err := s.FindRoot(); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	row := s.db.QueryRow(`
		INSERT INTO folders (parent_id, name, slug, folder_type, created_by)
		VALUES (NULL, 'Vault', 'vault', 'root', $1)
		RETURNING `+folderColumns, createdBy)
	f, err := scanFolder(row)
	if isUniqueViolation(err) {
		// Lost the bootstrap race; the root now exists.
		return s.FindRoot()
	}
	if err != nil {
		return nil, fmt.Errorf("create root folder: %w", err)
	}
	return f, nil
}

// Create inserts a new folder node. The parent must already exist, which
// keeps the tree acyclic by construction. A sibling slug collision is
// reported as ErrDuplicateSlug.
func (s *FolderStore) Create(f *models.Folder) (*models.Folder, error) {
	row := s.db.QueryRow(`
		INSERT INTO folders (parent_id, name, slug, folder_type, run_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+folderColumns,
		f.ParentID, f.Name, f.Slug, f.Type, f.RunID, f.CreatedBy,
	)
	created, err := scanFolder(row)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create folder %q under %v: %w", f.Slug, f.ParentID, ErrDuplicateSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	return created, nil
}

// ListChildren returns the direct children of a folder ordered by name.
// Type-aware sibling ordering is applied by the vault service, not here.
func (s *FolderStore) ListChildren(parentID uuid.UUID) ([]models.Folder, error) {
	rows, err := s.db.Query(`
		SELECT `+folderColumns+`
		FROM folders
		WHERE parent_id = $1
		ORDER BY name
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list folder children: %w", err)
	}
	defer rows.Close()

	var items []models.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// CountChildren returns the number of direct child folders.
func (s *FolderStore) CountChildren(parentID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM folders WHERE parent_id = $1`, parentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count folder children: %w", err)
	}
	return count, nil
}

// ListRunSlugs returns the slugs of run-type children of parentID whose
// slug starts with prefix. Used to resolve suffix collisions when two
// runs share a date; custom folders never participate, so an identically
// named custom folder does not block a run folder.
func (s *FolderStore) ListRunSlugs(parentID uuid.UUID, prefix string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT slug FROM folders
		WHERE parent_id = $1 AND folder_type = 'run' AND slug LIKE $2 || '%'
	`, parentID, prefix)
	if err != nil {
		return nil, fmt.Errorf("list run slugs: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan run slug: %w", err)
		}
		slugs = append(slugs, s)
	}
	return slugs, rows.Err()
}

// FindByRunID retrieves the run folder for a run. Returns nil if the run
// never got one (folder creation is best-effort).
func (s *FolderStore) FindByRunID(runID uuid.UUID) (*models.Folder, error) {
	row := s.db.QueryRow(`
		SELECT `+folderColumns+` FROM folders
		WHERE run_id = $1 AND folder_type = 'run'
	`, runID)
	f, err := scanFolder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find folder by run id: %w", err)
	}
	return f, nil
}

// DeleteByRunID removes the run folder for a run. A run without a folder
// is a no-op, not an error.
func (s *FolderStore) DeleteByRunID(runID uuid.UUID) error {
	_, err := s.db.Exec(`
		DELETE FROM folders WHERE run_id = $1 AND folder_type = 'run'
	`, runID)
	if err != nil {
		return fmt.Errorf("delete folder by run id: %w", err)
	}
	return nil
}

// DeleteSet removes all folders in the given id set. Callers pass a full
// descendant set; deleting photos rows first is their responsibility.
func (s *FolderStore) DeleteSet(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM folders WHERE id IN (` + placeholders(1, len(ids)) + `)`
	if _, err := s.db.Exec(query, idArgs(ids)...); err != nil {
		return fmt.Errorf("delete folder set: %w", err)
	}
	return nil
}
