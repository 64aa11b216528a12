package persist

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hayeah/goo"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Import SQLite driver

	"github.com/hayeah/aicontent/internal/pathindex"
)

// Migrations create the selection schema. They are applied with
// goo.DBMigrator, which records each name so a migration runs once per
// database.
var Migrations = []goo.Migration{
	{
		Name: "create_selections_table",
		Up: `
			CREATE TABLE IF NOT EXISTS selections (
				root_hash TEXT NOT NULL,
				path TEXT NOT NULL,
				position INTEGER NOT NULL,
				PRIMARY KEY (root_hash, path)
			);
		`,
	},
}

// OpenDB opens (creating if needed) the selection database in stateDir.
// The schema is applied separately with Migrate.
func OpenDB(stateDir string) (*sqlx.DB, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	db, err := sqlx.Open("sqlite3", DatabaseFile(filepath.Clean(stateDir)))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Migrate applies Migrations through m.
func Migrate(m *goo.DBMigrator) error {
	if err := m.Up(Migrations); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SQLStore keeps the selections of many roots in one SQLite table, keyed by
// RootKey.
type SQLStore struct {
	DB      *sqlx.DB
	RootKey string
	Logger  *slog.Logger
}

// NewSQLStore returns the store for root in db.
func NewSQLStore(db *sqlx.DB, root string, logger *slog.Logger) (*SQLStore, error) {
	key, err := RootKey(root)
	if err != nil {
		return nil, err
	}
	s := &SQLStore{DB: db, RootKey: key}
	s.Logger = goo.TypedLogger(logger, s)
	return s, nil
}

// Load returns the saved paths in the order they were saved. A query error
// is logged and treated as an empty selection.
func (s *SQLStore) Load() ([]pathindex.Path, error) {
	var list []string
	err := s.DB.Select(&list, "SELECT path FROM selections WHERE root_hash = ? ORDER BY position", s.RootKey)
	if err != nil {
		s.Logger.Warn("ignoring unreadable selection", "root_hash", s.RootKey, "err", err)
		return nil, nil
	}
	return fromStrings(list), nil
}

// Save replaces the selection of the root in one transaction.
func (s *SQLStore) Save(paths []pathindex.Path) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM selections WHERE root_hash = ?", s.RootKey); err != nil {
		return fmt.Errorf("failed to clear selection: %w", err)
	}
	for i, p := range paths {
		_, err := tx.Exec(
			"INSERT OR IGNORE INTO selections (root_hash, path, position) VALUES (?, ?, ?)",
			s.RootKey, string(p), i,
		)
		if err != nil {
			return fmt.Errorf("failed to save selection: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit selection: %w", err)
	}
	return nil
}

// Clear removes the saved selection of the root.
func (s *SQLStore) Clear() error {
	if _, err := s.DB.Exec("DELETE FROM selections WHERE root_hash = ?", s.RootKey); err != nil {
		return fmt.Errorf("failed to clear selection: %w", err)
	}
	return nil
}
