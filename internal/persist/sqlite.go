package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/iishyfishyy/trigramdb/internal/entrystore"
	"github.com/iishyfishyy/trigramdb/internal/logger"
	"github.com/iishyfishyy/trigramdb/internal/trigram"
)

// SQLiteBackend stores snapshots in a SQLite database
type SQLiteBackend struct {
	db     *sql.DB
	dbPath string
	logger *log.Logger
}

// NewSQLiteBackend opens (or creates) the database at dbPath
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	backend := &SQLiteBackend{
		db:     db,
		dbPath: dbPath,
		logger: logger.New("persist"),
	}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return backend, nil
}

// initSchema creates the database schema
func (s *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		raw_text TEXT NOT NULL,
		model_json TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save replaces every stored entry and the metadata in one transaction
func (s *SQLiteBackend) Save(ctx context.Context, snap *Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	weightsJSON, err := json.Marshal(snap.Weights)
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	meta := map[string]string{
		"version":    strconv.Itoa(snap.Version),
		"iterations": strconv.Itoa(snap.Iterations),
		"weights":    string(weightsJSON),
		"saved_at":   time.Now().Format(time.RFC3339),
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO metadata (key, value)
			VALUES (?, ?)
		`, key, value); err != nil {
			return fmt.Errorf("failed to write metadata %s: %w", key, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}

	now := time.Now().Unix()
	for id, entry := range snap.Entries {
		modelJSON, err := json.Marshal(entry.Model)
		if err != nil {
			return fmt.Errorf("failed to encode model for %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO entries (id, raw_text, model_json, updated_at)
			VALUES (?, ?, ?, ?)
		`, id, entry.RawText, string(modelJSON), now); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.logger.Debug("saved snapshot", "path", s.dbPath, "entries", len(snap.Entries))
	return nil
}

// Load reads the metadata and every entry. A database that was never saved
// to yields an empty snapshot.
func (s *SQLiteBackend) Load(ctx context.Context) (*Snapshot, error) {
	versionStr, ok, err := s.getMetadata(ctx, "version")
	if err != nil {
		return nil, fmt.Errorf("failed to read version metadata: %w", err)
	}
	if !ok {
		return NewSnapshot(), nil
	}

	version, err := strconv.Atoi(versionStr)
	if err != nil {
		return nil, fmt.Errorf("invalid version metadata %q: %w", versionStr, err)
	}
	if version != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrSchemaVersion, version)
	}

	snap := NewSnapshot()

	if iterStr, ok, err := s.getMetadata(ctx, "iterations"); err != nil {
		return nil, fmt.Errorf("failed to read iterations metadata: %w", err)
	} else if ok {
		if snap.Iterations, err = strconv.Atoi(iterStr); err != nil {
			return nil, fmt.Errorf("invalid iterations metadata %q: %w", iterStr, err)
		}
	}

	if weightsStr, ok, err := s.getMetadata(ctx, "weights"); err != nil {
		return nil, fmt.Errorf("failed to read weights metadata: %w", err)
	} else if ok {
		if err := json.Unmarshal([]byte(weightsStr), &snap.Weights); err != nil {
			return nil, fmt.Errorf("invalid weights metadata: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, raw_text, model_json FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, rawText, modelJSON string
		if err := rows.Scan(&id, &rawText, &modelJSON); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		var model trigram.Model
		if err := json.Unmarshal([]byte(modelJSON), &model); err != nil {
			return nil, fmt.Errorf("failed to decode model for %s: %w", id, err)
		}
		snap.Entries[id] = entrystore.Entry{RawText: rawText, Model: model}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database %s: %w", s.dbPath, err)
	}

	s.logger.Debug("loaded snapshot", "path", s.dbPath, "entries", len(snap.Entries))
	return snap, nil
}

// Close closes the database connection
func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}

// getMetadata retrieves a metadata value; ok is false when the key is absent
func (s *SQLiteBackend) getMetadata(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
