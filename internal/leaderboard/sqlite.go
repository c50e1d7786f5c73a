package leaderboard

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// SQLite persists entries in a local SQLite database.
type SQLite struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure leaderboard directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLite{db: db, path: path, now: time.Now}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset the leaderboard)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *SQLite) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *SQLite) Add(ctx context.Context, entry Entry) (bool, error) {
	entry = prepare(entry, s.now)

	// The conditional upsert leaves zero changed rows when the stored result
	// is at least as good.
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO leaderboard_entries (
            user_id, username, first_name, mode, score, total, percentage, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            username = excluded.username,
            first_name = excluded.first_name,
            mode = excluded.mode,
            score = excluded.score,
            total = excluded.total,
            percentage = excluded.percentage,
            recorded_at = excluded.recorded_at
        WHERE excluded.percentage > leaderboard_entries.percentage
           OR (excluded.percentage = leaderboard_entries.percentage
               AND excluded.score > leaderboard_entries.score)`,
		entry.UserID,
		entry.Username,
		entry.FirstName,
		entry.Mode,
		entry.Score,
		entry.Total,
		entry.Percentage,
		entry.RecordedAt.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("upsert leaderboard entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

const selectColumns = `user_id, username, first_name, mode, score, total, percentage, recorded_at`

const rankOrder = `ORDER BY percentage DESC, score DESC, recorded_at ASC, user_id ASC`

func (s *SQLite) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM leaderboard_entries "+rankOrder+" LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return entries, nil
}

func (s *SQLite) Position(ctx context.Context, userID int64) (int, *Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM leaderboard_entries WHERE user_id = ?", userID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return -1, nil, nil
	}
	if err != nil {
		return -1, nil, err
	}

	ts := entry.RecordedAt.UnixNano()
	var ahead int
	err = s.db.QueryRowContext(ctx, `
        SELECT COUNT(1) FROM leaderboard_entries
        WHERE percentage > ?1
           OR (percentage = ?1 AND score > ?2)
           OR (percentage = ?1 AND score = ?2 AND recorded_at < ?3)
           OR (percentage = ?1 AND score = ?2 AND recorded_at = ?3 AND user_id < ?4)`,
		entry.Percentage, entry.Score, ts, entry.UserID,
	).Scan(&ahead)
	if err != nil {
		return -1, nil, fmt.Errorf("count leaderboard rank: %w", err)
	}
	return ahead + 1, &entry, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry      Entry
		recordedAt int64
	)
	if err := row.Scan(
		&entry.UserID,
		&entry.Username,
		&entry.FirstName,
		&entry.Mode,
		&entry.Score,
		&entry.Total,
		&entry.Percentage,
		&recordedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan leaderboard entry: %w", err)
	}
	entry.RecordedAt = time.Unix(0, recordedAt).UTC()
	return entry, nil
}
