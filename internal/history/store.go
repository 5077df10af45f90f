package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	lockRetryDelay          = 25 * time.Millisecond
	defaultListLimit        = 50

	entryColumns = `id, local_path, file_name, folder, outcome, file_id, url, file_path,
        size_bytes, request_id, error_message, tags, started_at, duration_ms`
)

// ErrLocked is returned when another process holds the migration lock past
// the open deadline.
var ErrLocked = errors.New("history: database is locked by another process")

// Entry is one recorded upload attempt.
type Entry struct {
	ID        int64         `json:"id"`
	LocalPath string        `json:"localPath"`
	FileName  string        `json:"fileName"`
	Folder    string        `json:"folder,omitempty"`
	Outcome   string        `json:"outcome"`
	FileID    string        `json:"fileId,omitempty"`
	URL       string        `json:"url,omitempty"`
	FilePath  string        `json:"filePath,omitempty"`
	Size      int64         `json:"size,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
	Error     string        `json:"error,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// Store manages the upload ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger at path and applies migrations.
// Migrations run under an exclusive file lock so parallel CLI invocations do
// not race on a fresh database.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history: database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: ensure directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrLocked, err)
		}
		return nil, fmt.Errorf("history: acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	defer func() {
		_ = lock.Unlock()
	}()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("history: apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: %w", err)
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Record inserts entry and returns its ID.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now()
	}
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO uploads (
                local_path, file_name, folder, outcome, file_id, url, file_path,
                size_bytes, request_id, error_message, tags, started_at, duration_ms
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.LocalPath,
			entry.FileName,
			nullableString(entry.Folder),
			entry.Outcome,
			nullableString(entry.FileID),
			nullableString(entry.URL),
			nullableString(entry.FilePath),
			entry.Size,
			nullableString(entry.RequestID),
			nullableString(entry.Error),
			nullableString(strings.Join(entry.Tags, ",")),
			entry.StartedAt.UTC().Format(time.RFC3339Nano),
			entry.Duration.Milliseconds(),
		)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("history: insert upload: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: last insert id: %w", err)
	}
	return id, nil
}

// Recent returns the newest entries first. A non-positive limit uses a
// default page size.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM uploads ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list uploads: %w", err)
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
	return entries, rows.Err()
}

// FindByFileID returns the latest entry for a remote file ID, or nil.
func (s *Store) FindByFileID(ctx context.Context, fileID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM uploads WHERE file_id = ? ORDER BY id DESC LIMIT 1`, fileID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Counts returns the number of entries per outcome.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(1) FROM uploads GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("history: count uploads: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			outcome string
			count   int
		)
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("history: scan count: %w", err)
		}
		counts[outcome] = count
	}
	return counts, rows.Err()
}

// Prune deletes entries that started before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, `DELETE FROM uploads WHERE started_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("history: prune uploads: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		entry                                    Entry
		folder, fileID, url, filePath, requestID sql.NullString
		errorMessage, tags                       sql.NullString
		startedAt                                string
		durationMillis                           int64
	)
	if err := row.Scan(
		&entry.ID,
		&entry.LocalPath,
		&entry.FileName,
		&folder,
		&entry.Outcome,
		&fileID,
		&url,
		&filePath,
		&entry.Size,
		&requestID,
		&errorMessage,
		&tags,
		&startedAt,
		&durationMillis,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("history: scan upload: %w", err)
	}
	entry.Folder = folder.String
	entry.FileID = fileID.String
	entry.URL = url.String
	entry.FilePath = filePath.String
	entry.RequestID = requestID.String
	entry.Error = errorMessage.String
	if tags.String != "" {
		entry.Tags = strings.Split(tags.String, ",")
	}
	started, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("history: parse started_at %q: %w", startedAt, err)
	}
	entry.StartedAt = started
	entry.Duration = time.Duration(durationMillis) * time.Millisecond
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
