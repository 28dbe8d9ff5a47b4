package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"runvault/internal/models"
)

// RunStore manages run rows. Runs are the external "event" entity the
// vault organizes folders around; only the surface the vault needs is
// implemented here.
type RunStore struct {
	db *sql.DB
}

// NewRunStore returns a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

const runColumns = `id, run_date, title, description, location, created_by, created_at, updated_at`

// scanRun scans a run row from the result set.
func scanRun(scanner interface{ Scan(...any) error }) (*models.Run, error) {
	var r models.Run
	err := scanner.Scan(
		&r.ID, &r.RunDate, &r.Title, &r.Description, &r.Location,
		&r.CreatedBy, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a new run and returns it with the generated ID.
func (s *RunStore) Create(r *models.Run) (*models.Run, error) {
	row := s.db.QueryRow(`
		INSERT INTO runs (run_date, title, description, location, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+runColumns,
		r.RunDate, r.Title, r.Description, r.Location, r.CreatedBy,
	)
	created, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return created, nil
}

// FindByID retrieves a run by ID. Returns nil if not found.
func (s *RunStore) FindByID(id uuid.UUID) (*models.Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = $1`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find run by id: %w", err)
	}
	return r, nil
}

// List returns runs newest first, with pagination.
func (s *RunStore) List(limit, offset int) ([]models.Run, error) {
	rows, err := s.db.Query(`
		SELECT `+runColumns+`
		FROM runs
		ORDER BY run_date DESC, created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var items []models.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}

// Count returns the total number of runs.
func (s *RunStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// ListWithoutFolder returns runs that have no run folder, oldest run
// date first. Used by the folder backfill.
func (s *RunStore) ListWithoutFolder() ([]models.Run, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.run_date, r.title, r.description, r.location,
			r.created_by, r.created_at, r.updated_at
		FROM runs r
		LEFT JOIN folders f ON f.run_id = r.id AND f.folder_type = 'run'
		WHERE f.id IS NULL
		ORDER BY r.run_date
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs without folder: %w", err)
	}
	defer rows.Close()

	var items []models.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}

// Update modifies a run's editable fields.
func (s *RunStore) Update(r *models.Run) error {
	_, err := s.db.Exec(`
		UPDATE runs SET
			title = $1, description = $2, location = $3, updated_at = NOW()
		WHERE id = $4
	`, r.Title, r.Description, r.Location, r.ID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// Delete removes a run. Its photos cascade at the database level; the
// run folder must already be gone (the service deletes it first so a
// failed folder delete keeps the run retryable).
func (s *RunStore) Delete(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM runs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
