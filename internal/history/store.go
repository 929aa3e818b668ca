// Package history keeps an append-only SQLite log of appearance installs.
// The log is for inspection only; the registry never reloads from it.
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

	"github.com/google/uuid"
	"github.com/opencode-ai/appearances/internal/appearance"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// History errors.
var (
	ErrRecordNotFound = errors.New("history record not found")
	ErrInvalidRecord  = errors.New("invalid history record")
)

const schema = `
CREATE TABLE IF NOT EXISTS installs (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	source           TEXT NOT NULL,
	is_dark          INTEGER NOT NULL,
	is_high_contrast INTEGER NOT NULL,
	color_count      INTEGER NOT NULL,
	raw_text         TEXT NOT NULL,
	installed_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_installs_name ON installs(name, installed_at);
`

// timeLayout has fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one logged install.
type Record struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Source         string    `json:"source"`
	IsDark         bool      `json:"is_dark"`
	IsHighContrast bool      `json:"is_high_contrast"`
	ColorCount     int       `json:"color_count"`
	RawText        string    `json:"raw_text"`
	InstalledAt    time.Time `json:"installed_at"`
}

// Query filters List results.
type Query struct {
	Name  string // exact appearance name, empty for all
	Limit int    // max results, 0 for 50
}

// Store is the SQLite-backed install log.
type Store struct {
	db *sql.DB
}

// Open opens (and creates) the log at path. Use ":memory:" for a private
// in-memory log.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the schema if needed.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordFromInstall converts a registry install into a log record.
func RecordFromInstall(rec appearance.InstallRecord) *Record {
	snap := rec.Snapshot
	return &Record{
		Name:           snap.Name(),
		Source:         rec.Source,
		IsDark:         snap.IsDark(),
		IsHighContrast: snap.IsHighContrast(),
		ColorCount:     snap.Len(),
		RawText:        snap.RawText(),
		InstalledAt:    rec.InstalledAt,
	}
}

// Append adds a record, assigning an ID and timestamp when missing.
func (s *Store) Append(ctx context.Context, rec *Record) error {
	if rec == nil || strings.TrimSpace(rec.Name) == "" || rec.Source == "" {
		return ErrInvalidRecord
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.InstalledAt.IsZero() {
		rec.InstalledAt = time.Now().UTC()
	} else {
		rec.InstalledAt = rec.InstalledAt.UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO installs (
			id, name, source, is_dark, is_high_contrast, color_count, raw_text, installed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Name,
		rec.Source,
		boolToInt(rec.IsDark),
		boolToInt(rec.IsHighContrast),
		rec.ColorCount,
		rec.RawText,
		rec.InstalledAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, source, is_dark, is_high_contrast, color_count, raw_text, installed_at
		FROM installs WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return rec, err
}

// List returns records newest first.
func (s *Store) List(ctx context.Context, q Query) ([]*Record, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, name, source, is_dark, is_high_contrast, color_count, raw_text, installed_at
		FROM installs`
	args := []any{}
	if q.Name != "" {
		query += " WHERE name = ?"
		args = append(args, q.Name)
	}
	query += " ORDER BY installed_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		rec          Record
		dark, hc     int
		installedStr string
	)
	if err := sc.Scan(&rec.ID, &rec.Name, &rec.Source, &dark, &hc, &rec.ColorCount, &rec.RawText, &installedStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan history record: %w", err)
	}
	installedAt, err := time.Parse(timeLayout, installedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse installed_at: %w", err)
	}
	rec.IsDark = dark != 0
	rec.IsHighContrast = hc != 0
	rec.InstalledAt = installedAt
	return &rec, nil
}

// Hook returns a registry install hook that appends every install to the
// log. Write failures are logged and otherwise ignored.
func (s *Store) Hook(logger zerolog.Logger) func(appearance.InstallRecord) {
	return func(rec appearance.InstallRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Append(ctx, RecordFromInstall(rec)); err != nil {
			logger.Warn().Err(err).Str("name", rec.Snapshot.Name()).Msg("failed to record install")
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
