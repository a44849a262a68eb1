package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shandysiswandi/exportviz/internal/activity/entity"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkgerror"
)

const sessionTable = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	revision INTEGER NOT NULL,
	blob BLOB NOT NULL,
	file_count INTEGER NOT NULL,
	row_count INTEGER NOT NULL,
	column_count INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLiteStore keeps snapshots in a SQLite database so sessions survive a
// restart.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(ctx context.Context, path string, ttl time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// Single connection so ":memory:" databases and writes stay consistent.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, sessionTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap entity.Snapshot) error {
	if snap.SessionID == "" {
		return pkgerror.NewBusiness("session id is required", pkgerror.CodeInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, revision, blob, file_count, row_count, column_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			revision = excluded.revision,
			blob = excluded.blob,
			file_count = excluded.file_count,
			row_count = excluded.row_count,
			column_count = excluded.column_count,
			updated_at = excluded.updated_at`,
		snap.SessionID, snap.Revision, snap.Blob, snap.Files, snap.Rows, snap.Columns, snap.UpdatedAt)

	return err
}

func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (entity.Snapshot, error) {
	snap := entity.Snapshot{SessionID: sessionID}

	err := s.db.QueryRowContext(ctx, `
		SELECT revision, blob, file_count, row_count, column_count, updated_at
		FROM sessions WHERE id = ?`, sessionID).
		Scan(&snap.Revision, &snap.Blob, &snap.Files, &snap.Rows, &snap.Columns, &snap.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Snapshot{}, pkgerror.ErrNotFound
	}
	if err != nil {
		return entity.Snapshot{}, err
	}

	if expired(snap.UpdatedAt, s.ttl, s.now()) {
		return entity.Snapshot{}, pkgerror.ErrExpired
	}

	return snap, nil
}

// Sweep deletes every expired snapshot and reports how many were removed.
func (s *SQLiteStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	// Rows at exactly the cutoff are still valid, matching expired().
	cutoff := now.Add(-s.ttl).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
