package upload

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB tracks which files have been pushed so unchanged files are not
// sent (and saved as templates) twice.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/push-state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "push-state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS pushed_files (
		path       TEXT PRIMARY KEY,
		hash       TEXT NOT NULL,
		workout_id TEXT NOT NULL,
		pushed_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsPushed reports whether relPath was pushed with this content hash.
func (s *StateDB) IsPushed(relPath, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM pushed_files WHERE path = ? AND hash = ?`,
		relPath, hash,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkPushed records that a file was saved on the server as workoutID.
// A later edit of the same path replaces the record.
func (s *StateDB) MarkPushed(relPath, hash, workoutID string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO pushed_files (path, hash, workout_id) VALUES (?, ?, ?)`,
		relPath, hash, workoutID,
	)
	return err
}

// WorkoutID returns the server template id recorded for relPath.
func (s *StateDB) WorkoutID(relPath string) (string, bool, error) {
	var id string
	err := s.db.QueryRow(`SELECT workout_id FROM pushed_files WHERE path = ?`, relPath).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
