package notes

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB tracks which notes files have been processed so unchanged files
// are not sent or imported again.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/name.
func OpenStateDB(dir, name string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS processed_files (
		path         TEXT PRIMARY KEY,
		size         INTEGER NOT NULL,
		hash         TEXT NOT NULL,
		workouts     INTEGER NOT NULL DEFAULT 0,
		processed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsProcessed reports whether f was already processed with the same size and hash.
func (s *StateDB) IsProcessed(f File) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM processed_files WHERE path = ? AND size = ? AND hash = ?`,
		f.RelPath, f.Size, f.Hash,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking state for %s: %w", f.RelPath, err)
	}
	return count > 0, nil
}

// MarkProcessed records that f was processed and how many workouts it held.
func (s *StateDB) MarkProcessed(f File, workouts int) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO processed_files (path, size, hash, workouts) VALUES (?, ?, ?, ?)`,
		f.RelPath, f.Size, f.Hash, workouts,
	)
	if err != nil {
		return fmt.Errorf("marking %s processed: %w", f.RelPath, err)
	}
	return nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}
