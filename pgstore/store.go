// Package pgstore provides a PostgreSQL-backed implementation of the
// goSession Database collaborator. The sessions table is the system of
// record: its version column is the source version compared at refresh
// commit time, and Cleanup is the external deletion retried by the sweep.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/session"
)

// ErrPostgresUnavailable is an exported constant or variable used by the session manager.
var ErrPostgresUnavailable = errors.New("postgres unavailable")

// ErrNotFound is returned by Fetch when the sessions table has no row for
// the session id.
var ErrNotFound = errors.New("session not in backing store")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id    TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	username      TEXT NOT NULL,
	authenticated BOOLEAN NOT NULL DEFAULT TRUE,
	metadata      JSONB NOT NULL DEFAULT '{}',
	access_count  BIGINT NOT NULL DEFAULT 0,
	version       BIGINT NOT NULL DEFAULT 0,
	login_time    TIMESTAMPTZ NOT NULL,
	last_activity TIMESTAMPTZ NOT NULL
)`

type sessionRow struct {
	SessionID     string    `db:"session_id"`
	UserID        string    `db:"user_id"`
	Username      string    `db:"username"`
	Authenticated bool      `db:"authenticated"`
	Metadata      []byte    `db:"metadata"`
	AccessCount   int64     `db:"access_count"`
	Version       int64     `db:"version"`
	LoginTime     time.Time `db:"login_time"`
	LastActivity  time.Time `db:"last_activity"`
}

// Store is a PostgreSQL-backed [goSession.Database].
type Store struct {
	db *sqlx.DB
}

var _ goSession.Database = (*Store)(nil)

// New wraps an existing sqlx handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL with the given DSN and verifies the
// connection before returning.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPostgresUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrPostgresUnavailable, err)
	}
	return &Store{db: db}, nil
}

// EnsureSchema creates the sessions table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: %v", ErrPostgresUnavailable, err)
	}
	return nil
}

// Save upserts a record at the given version. The version column is
// overwritten unconditionally: the caller decides what the authoritative
// version is, the cache decides at commit time whether to take it.
func (s *Store) Save(ctx context.Context, rec session.Record, version uint64) error {
	meta := rec.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO sessions
			(session_id, user_id, username, authenticated, metadata,
			 access_count, version, login_time, last_activity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id) DO UPDATE SET
			user_id       = EXCLUDED.user_id,
			username      = EXCLUDED.username,
			authenticated = EXCLUDED.authenticated,
			metadata      = EXCLUDED.metadata,
			access_count  = EXCLUDED.access_count,
			version       = EXCLUDED.version,
			login_time    = EXCLUDED.login_time,
			last_activity = EXCLUDED.last_activity`

	_, err = s.db.ExecContext(ctx, q,
		rec.SessionID, rec.UserID, rec.Username, rec.IsAuthenticated,
		metaJSON, int64(rec.AccessCount), int64(version),
		rec.LoginTime, rec.LastActivity)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPostgresUnavailable, err)
	}
	return nil
}

// Fetch retrieves the record and source version for a session id.
func (s *Store) Fetch(ctx context.Context, sessionID string) (goSession.FetchResult, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row,
		`SELECT session_id, user_id, username, authenticated, metadata,
		        access_count, version, login_time, last_activity
		   FROM sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return goSession.FetchResult{}, ErrNotFound
		}
		return goSession.FetchResult{}, fmt.Errorf("%w: %v", ErrPostgresUnavailable, err)
	}

	meta := map[string]string{}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &meta); err != nil {
			return goSession.FetchResult{}, fmt.Errorf("decode metadata: %w", err)
		}
	}

	return goSession.FetchResult{
		Record: session.Record{
			SessionID:       row.SessionID,
			UserID:          row.UserID,
			Username:        row.Username,
			IsAuthenticated: row.Authenticated,
			Metadata:        meta,
			AccessCount:     uint64(row.AccessCount),
			LoginTime:       row.LoginTime,
			LastActivity:    row.LastActivity,
		},
		Version: uint64(row.Version),
	}, nil
}

// Cleanup deletes the row. A row that is already gone is a success so
// retried sweeps converge.
func (s *Store) Cleanup(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrPostgresUnavailable, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
