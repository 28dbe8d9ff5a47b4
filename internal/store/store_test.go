// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"runvault/internal/database"
	"runvault/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "runvault")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "runvault")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testUserID inserts a throwaway user and registers its cleanup.
func testUserID(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	email := "store-test-" + uuid.NewString()[:8] + "@example.com"
	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO users (email, name, role) VALUES ($1, 'Store Test', $2)
		RETURNING id
	`, email, models.RoleMember).Scan(&id)
	if err != nil {
		t.Fatalf("insert test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", id) })
	return id
}

// testRunID inserts a run for folder/photo tests and registers its cleanup.
func testRunID(t *testing.T, db *sql.DB, createdBy uuid.UUID) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO runs (run_date, title, created_by)
		VALUES ('2091-06-15', 'Store Test Run', $1)
		RETURNING id
	`, createdBy).Scan(&id)
	if err != nil {
		t.Fatalf("insert test run: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM runs WHERE id = $1", id) })
	return id
}

// cleanFolders removes test folders by ID. Call in t.Cleanup().
func cleanFolders(t *testing.T, db *sql.DB, ids ...uuid.UUID) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM folders WHERE id = $1", id)
	}
}

// cleanPhotos removes test photos by storage path. Call in t.Cleanup().
func cleanPhotos(t *testing.T, db *sql.DB, paths ...string) {
	t.Helper()
	for _, path := range paths {
		db.Exec("DELETE FROM photos WHERE storage_path = $1", path)
	}
}

// testRoot fetches or creates the singleton root folder. When this test
// created the root, it is removed again on cleanup so the throwaway
// owner can be deleted too.
func testRoot(t *testing.T, db *sql.DB, ownerID uuid.UUID) *models.Folder {
	t.Helper()
	root, err := NewFolderStore(db).CreateRoot(ownerID)
	if err != nil {
		t.Fatalf("CreateRoot: %v", err)
	}
	if root.CreatedBy == ownerID {
		id := root.ID
		t.Cleanup(func() { db.Exec("DELETE FROM folders WHERE id = $1", id) })
	}
	return root
}
