// Package store handles SQLite persistence and JSON export.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tapcount/internal/log"
	"github.com/verte-zerg/tapcount/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Record keys.
const (
	RecordAppData = "counterAppData"
	RecordTheme   = "counterAppTheme"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store wraps SQLite access for saved counter data.
type Store struct {
	db        *sql.DB
	exportDir string
}

// Option configures a Store.
type Option func(*Store)

// WithExportDir sets the directory ExportState writes into.
func WithExportDir(dir string) Option {
	return func(s *Store) { s.exportDir = dir }
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, exportDir: "."}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS saves (
			id INTEGER PRIMARY KEY,
			saved_at TEXT NOT NULL,
			count INTEGER NOT NULL,
			total_clicks INTEGER NOT NULL,
			highest_value INTEGER NOT NULL,
			lowest_value INTEGER NOT NULL,
			achievements INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_saves_saved_at ON saves(saved_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// PutRecord writes value under key, replacing any previous value.
func (s *Store) PutRecord(ctx context.Context, key, value string) error {
	return putRecord(ctx, s.db, key, value, time.Now())
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putRecord(ctx context.Context, db execer, key, value string, at time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, at.UTC().Format(time.RFC3339Nano))
	return err
}

// GetRecord returns the value stored under key or ErrNotFound.
func (s *Store) GetRecord(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// DeleteRecords removes the given keys. Missing keys are ignored.
func (s *Store) DeleteRecords(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, key := range keys {
		placeholders[i] = "?"
		args[i] = key
	}
	query := fmt.Sprintf(`DELETE FROM records WHERE key IN (%s)`, strings.Join(placeholders, ","))
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// SaveState stores the full state as the app-data record and logs the save.
func (s *Store) SaveState(ctx context.Context, st model.State, savedAt time.Time) (err error) {
	doc := toJSON(st)
	doc.SavedAt = savedAt.UTC().Format(time.RFC3339Nano)
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if err = putRecord(ctx, tx, RecordAppData, string(data), savedAt); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO saves (saved_at, count, total_clicks, highest_value, lowest_value, achievements)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		savedAt.UTC().Format(time.RFC3339Nano),
		st.Count,
		st.TotalClicks,
		st.HighestValue,
		st.LowestValue,
		len(st.Achievements),
	); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	log.Debug(log.CatStore, "state saved", "count", st.Count, "clicks", st.TotalClicks)
	return nil
}

// LoadState merges the saved app-data record over base. found is false when
// nothing has been saved. Fields with the wrong type keep their base value and
// are logged.
func (s *Store) LoadState(ctx context.Context, base model.State) (model.State, bool, error) {
	raw, err := s.GetRecord(ctx, RecordAppData)
	if errors.Is(err, ErrNotFound) {
		return base, false, nil
	}
	if err != nil {
		return base, false, err
	}
	st, rejected, err := decodeState([]byte(raw), base)
	if err != nil {
		return base, false, err
	}
	for _, field := range rejected {
		log.Warn(log.CatStore, "saved field rejected", "field", field)
	}
	return st, true, nil
}

// ClearAll removes the app-data and theme records. The save log is kept.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.DeleteRecords(ctx, RecordAppData, RecordTheme)
}

// SaveTheme stores the theme name.
func (s *Store) SaveTheme(ctx context.Context, name string) error {
	return s.PutRecord(ctx, RecordTheme, name)
}

// LoadTheme returns the stored theme name or ErrNotFound.
func (s *Store) LoadTheme(ctx context.Context) (string, error) {
	return s.GetRecord(ctx, RecordTheme)
}

// ListSaves returns the most recent saves, oldest first. limit <= 0 returns all.
func (s *Store) ListSaves(ctx context.Context, limit int) ([]model.SaveSummary, error) {
	query := `SELECT id, saved_at, count, total_clicks, highest_value, lowest_value, achievements
		FROM saves ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var saves []model.SaveSummary
	for rows.Next() {
		var sum model.SaveSummary
		var savedAt string
		if err := rows.Scan(&sum.ID, &savedAt, &sum.Count, &sum.TotalClicks, &sum.HighestValue, &sum.LowestValue, &sum.Achievements); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, savedAt)
		if err != nil {
			return nil, err
		}
		sum.SavedAt = parsed
		saves = append(saves, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(saves)-1; i < j; i, j = i+1, j-1 {
		saves[i], saves[j] = saves[j], saves[i]
	}
	return saves, nil
}
