package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"runvault/internal/models"
)

// maxTreeDepth caps iterative walks. The tree is acyclic by construction
// (nodes are only created with an existing parent), so hitting the cap
// means the data is corrupted, not that the vault is that deep.
const maxTreeDepth = 1000

// TreeWalker resolves ancestor chains and descendant sets for folders.
// Two strategies exist: a single recursive CTE round trip, and an
// iterative walk for stores that cannot execute recursive queries.
type TreeWalker interface {
	// Ancestors returns the chain from the root down to (and including)
	// the given folder. An unknown id yields an empty chain.
	Ancestors(folderID uuid.UUID) ([]models.Breadcrumb, error)

	// Descendants returns the folder itself plus every folder reachable
	// through child links.
	Descendants(folderID uuid.UUID) ([]uuid.UUID, error)
}

// NewTreeWalker returns the default walker: recursive CTE first, with an
// automatic fallback to the iterative walk when the CTE errors.
func NewTreeWalker(db *sql.DB) TreeWalker {
	return &fallbackWalker{
		primary:  &cteWalker{db: db},
		fallback: &iterativeWalker{db: db},
	}
}

// cteWalker resolves walks with a single WITH RECURSIVE query.
type cteWalker struct {
	db *sql.DB
}

func (w *cteWalker) Ancestors(folderID uuid.UUID) ([]models.Breadcrumb, error) {
	rows, err := w.db.Query(`
		WITH RECURSIVE breadcrumbs AS (
			SELECT id, parent_id, name, slug, folder_type, 0 AS level
			FROM folders
			WHERE id = $1

			UNION ALL

			SELECT f.id, f.parent_id, f.name, f.slug, f.folder_type, b.level + 1
			FROM folders f
			JOIN breadcrumbs b ON f.id = b.parent_id
		)
		SELECT id, name, slug, folder_type
		FROM breadcrumbs
		ORDER BY level DESC
	`, folderID)
	if err != nil {
		return nil, fmt.Errorf("ancestors cte: %w", err)
	}
	defer rows.Close()

	var crumbs []models.Breadcrumb
	for rows.Next() {
		var b models.Breadcrumb
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Type); err != nil {
			return nil, fmt.Errorf("scan breadcrumb: %w", err)
		}
		crumbs = append(crumbs, b)
	}
	return crumbs, rows.Err()
}

func (w *cteWalker) Descendants(folderID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := w.db.Query(`
		WITH RECURSIVE descendants AS (
			SELECT id FROM folders WHERE id = $1
			UNION ALL
			SELECT f.id FROM folders f JOIN descendants d ON f.parent_id = d.id
		)
		SELECT id FROM descendants
	`, folderID)
	if err != nil {
		return nil, fmt.Errorf("descendants cte: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan descendant id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// iterativeWalker resolves walks one row at a time. Byte-identical output
// to the CTE strategy for the same tree state.
type iterativeWalker struct {
	db *sql.DB
}

func (w *iterativeWalker) Ancestors(folderID uuid.UUID) ([]models.Breadcrumb, error) {
	var crumbs []models.Breadcrumb
	currentID := &folderID

	for depth := 0; currentID != nil; depth++ {
		if depth >= maxTreeDepth {
			return nil, fmt.Errorf("ancestors of %s: %w", folderID, ErrCorruptTree)
		}

		var b models.Breadcrumb
		var parentID *uuid.UUID
		err := w.db.QueryRow(`
			SELECT id, parent_id, name, slug, folder_type
			FROM folders WHERE id = $1
		`, *currentID).Scan(&b.ID, &parentID, &b.Name, &b.Slug, &b.Type)
		if err == sql.ErrNoRows {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ancestors walk: %w", err)
		}

		crumbs = append([]models.Breadcrumb{b}, crumbs...)
		currentID = parentID
	}
	return crumbs, nil
}

func (w *iterativeWalker) Descendants(folderID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{folderID}
	level := []uuid.UUID{folderID}

	// Level-order walk, one level per iteration, capped by depth.
	for depth := 0; len(level) > 0; depth++ {
		if depth >= maxTreeDepth {
			return nil, fmt.Errorf("descendants of %s: %w", folderID, ErrCorruptTree)
		}

		var next []uuid.UUID
		for _, parentID := range level {
			children, err := w.listChildIDs(parentID)
			if err != nil {
				return nil, err
			}
			ids = append(ids, children...)
			next = append(next, children...)
		}
		level = next
	}
	return ids, nil
}

func (w *iterativeWalker) listChildIDs(parentID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := w.db.Query(`SELECT id FROM folders WHERE parent_id = $1`, parentID)
	if err != nil {
		return nil, fmt.Errorf("descendants walk: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan child id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// fallbackWalker tries the primary strategy and falls back on error.
// Corruption errors from the fallback still propagate; only transport and
// capability failures of the primary are absorbed.
type fallbackWalker struct {
	primary  TreeWalker
	fallback TreeWalker
}

func (w *fallbackWalker) Ancestors(folderID uuid.UUID) ([]models.Breadcrumb, error) {
	crumbs, err := w.primary.Ancestors(folderID)
	if err != nil {
		slog.Warn("recursive ancestor query failed, using iterative walk", "folder_id", folderID, "error", err)
		return w.fallback.Ancestors(folderID)
	}
	return crumbs, nil
}

func (w *fallbackWalker) Descendants(folderID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := w.primary.Descendants(folderID)
	if err != nil {
		slog.Warn("recursive descendant query failed, using iterative walk", "folder_id", folderID, "error", err)
		return w.fallback.Descendants(folderID)
	}
	return ids, nil
}
