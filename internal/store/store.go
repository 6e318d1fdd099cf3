// Package store is the local persistence layer: a SQLite-backed blob store
// holding each user's cached entity sets, sync bookkeeping and conflict
// history. Every operation takes an explicit Scope naming the user
// namespace, so cross-user isolation is a property of the call signature
// rather than of hidden process-wide state.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/mvolkova/classkeeper/internal/dbx"
	"github.com/mvolkova/classkeeper/internal/logging"
	"github.com/mvolkova/classkeeper/internal/store/migrations"
)

var (
	// ErrEmptyScope is returned when a caller passes a scope without a
	// user id. The Session layer turns this situation into no-ops; at the
	// Store layer it is a programming error worth surfacing.
	ErrEmptyScope = errors.New("empty user scope")
)

// Scope names the per-user namespace a persistence call operates in.
type Scope struct {
	UserID string
}

// Valid reports whether the scope names a user.
func (s Scope) Valid() bool { return s.UserID != "" }

// Blob keys beyond the five synced entity kinds.
const (
	keyMetadata        = "metadata"
	keyConflictHistory = "conflict_history"
	keySyncResult      = "sync_result"
	keyGradeWeights    = "grade_weights"
)

// Store is the SQLite-backed local persistence store.
type Store struct {
	db  *sql.DB
	log logging.Logger
}

// New wraps an already-open database handle. The schema must be in place.
func New(db *sql.DB, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{db: db, log: log}
}

// Open opens (creating if needed) the cache database at dsn and applies
// pending migrations.
func Open(ctx context.Context, dsn string, log logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, log), nil
}

// RunMigrations applies the embedded goose migrations. Safe to call
// repeatedly.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the handle for callers that need transactional composition.
func (s *Store) DB() *sql.DB { return s.db }

// saveJSON marshals v and replaces the blob stored under (scope, key).
// Saves are full-set replacements; there is no partial merge at this layer.
func saveJSON(ctx context.Context, db dbx.DBTX, scope Scope, key string, v any) error {
	if !scope.Valid() {
		return ErrEmptyScope
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	query := `INSERT INTO cache_blobs (user_id, kind, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, kind) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`
	if _, err := db.ExecContext(ctx, query, scope.UserID, key, payload, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// loadJSON unmarshals the blob stored under (scope, key) into out. The
// second return is false when nothing is stored; that is not an error.
func loadJSON[T any](ctx context.Context, db dbx.DBTX, scope Scope, key string, out *T) (bool, error) {
	if !scope.Valid() {
		return false, ErrEmptyScope
	}
	var payload []byte
	row := db.QueryRowContext(ctx,
		`SELECT payload FROM cache_blobs WHERE user_id = ? AND kind = ?`, scope.UserID, key)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("loading %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// loadSlice is loadJSON for the common slice-valued blobs, normalizing
// absence to an empty slice.
func loadSlice[T any](ctx context.Context, db dbx.DBTX, scope Scope, key string) ([]T, error) {
	var items []T
	if _, err := loadJSON(ctx, db, scope, key, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
