package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mvolkova/classkeeper/internal/dbx"
)

// LastSync returns the time of the user's last successful sync pass, nil if
// none has completed.
func (s *Store) LastSync(ctx context.Context, scope Scope) (*time.Time, error) {
	if !scope.Valid() {
		return nil, ErrEmptyScope
	}
	var ns sql.NullInt64
	row := s.db.QueryRowContext(ctx, `SELECT last_sync FROM sync_state WHERE user_id = ?`, scope.UserID)
	if err := row.Scan(&ns); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading last sync: %w", err)
	}
	if !ns.Valid {
		return nil, nil
	}
	t := time.Unix(0, ns.Int64).UTC()
	return &t, nil
}

// SetLastSync stamps the user's last successful sync time.
func (s *Store) SetLastSync(ctx context.Context, scope Scope, t time.Time) error {
	if !scope.Valid() {
		return ErrEmptyScope
	}
	query := `INSERT INTO sync_state (user_id, last_sync) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET last_sync = excluded.last_sync`
	if _, err := s.db.ExecContext(ctx, query, scope.UserID, t.UnixNano()); err != nil {
		return fmt.Errorf("saving last sync: %w", err)
	}
	return nil
}

// PendingConsent returns the durable undelivered consent decision for this
// user. When pending is true, granted is the exact value the user chose;
// it lives in sync_state, outside the synced entity cache, so no sync pass
// can overwrite it. Both survive process restarts.
func (s *Store) PendingConsent(ctx context.Context, scope Scope) (granted bool, pending bool, err error) {
	if !scope.Valid() {
		return false, false, ErrEmptyScope
	}
	var retry, value int
	row := s.db.QueryRowContext(ctx,
		`SELECT consent_retry, consent_value FROM sync_state WHERE user_id = ?`, scope.UserID)
	if err := row.Scan(&retry, &value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("loading pending consent: %w", err)
	}
	return value != 0, retry != 0, nil
}

// SetPendingConsent records an undelivered consent decision: the retry flag
// and the chosen value, together.
func (s *Store) SetPendingConsent(ctx context.Context, scope Scope, granted bool) error {
	if !scope.Valid() {
		return ErrEmptyScope
	}
	v := 0
	if granted {
		v = 1
	}
	query := `INSERT INTO sync_state (user_id, consent_retry, consent_value) VALUES (?, 1, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			consent_retry = 1,
			consent_value = excluded.consent_value`
	if _, err := s.db.ExecContext(ctx, query, scope.UserID, v); err != nil {
		return fmt.Errorf("saving pending consent: %w", err)
	}
	return nil
}

// ClearPendingConsent drops the retry flag after the server has confirmed
// the write.
func (s *Store) ClearPendingConsent(ctx context.Context, scope Scope) error {
	if !scope.Valid() {
		return ErrEmptyScope
	}
	query := `INSERT INTO sync_state (user_id, consent_retry) VALUES (?, 0)
		ON CONFLICT(user_id) DO UPDATE SET consent_retry = 0`
	if _, err := s.db.ExecContext(ctx, query, scope.UserID); err != nil {
		return fmt.Errorf("clearing pending consent: %w", err)
	}
	return nil
}

// ClearAll deletes everything persisted for the user. Other users' data is
// untouched. Calling it with nothing stored is a no-op.
func (s *Store) ClearAll(ctx context.Context, scope Scope) error {
	if !scope.Valid() {
		return ErrEmptyScope
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cache_blobs WHERE user_id = ?`, scope.UserID); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sync_state WHERE user_id = ?`, scope.UserID); err != nil {
			return fmt.Errorf("clearing sync state: %w", err)
		}
		return nil
	})
}

// CachedDataSize is the byte count of all blobs persisted for the user.
func (s *Store) CachedDataSize(ctx context.Context, scope Scope) (int64, error) {
	if !scope.Valid() {
		return 0, ErrEmptyScope
	}
	var size sql.NullInt64
	row := s.db.QueryRowContext(ctx,
		`SELECT SUM(LENGTH(payload)) FROM cache_blobs WHERE user_id = ?`, scope.UserID)
	if err := row.Scan(&size); err != nil {
		return 0, fmt.Errorf("measuring cache: %w", err)
	}
	if !size.Valid {
		return 0, nil
	}
	return size.Int64, nil
}

// FormattedCacheSize renders CachedDataSize for display, e.g. "34 kB".
func (s *Store) FormattedCacheSize(ctx context.Context, scope Scope) (string, error) {
	n, err := s.CachedDataSize(ctx, scope)
	if err != nil {
		return "", err
	}
	return humanize.Bytes(uint64(n)), nil
}
