// Package syncer coordinates the offline sync pass: it fetches entity sets
// from the remote API, detects conflicts with pending local edits, applies
// the per-kind resolution policy and persists the merged outcome.
package syncer

import (
	"time"

	"github.com/mvolkova/classkeeper/internal/models"
)

// State is the position of one entity comparison in the sync state
// machine. An entity starts Unmodified, moves to LocallyModified on a
// local edit, and at sync time lands on NoConflict or Conflict before a
// terminal resolution.
type State int

const (
	StateUnmodified State = iota
	StateLocallyModified
	StateNoConflict
	StateConflict
)

func (s State) String() string {
	switch s {
	case StateLocallyModified:
		return "locally_modified"
	case StateNoConflict:
		return "no_conflict"
	case StateConflict:
		return "conflict"
	default:
		return "unmodified"
	}
}

// Detect classifies one entity comparison using only its metadata record.
// A conflict requires both sides to have changed: the local copy carries a
// pending edit and the server copy moved since the last successful sync.
// With no recorded last sync, any server timestamp counts as moved.
func Detect(local models.ItemMetadata, serverModifiedAt *time.Time, lastSync *time.Time) State {
	if !local.LocallyModified {
		return StateUnmodified
	}
	if serverModifiedAt == nil {
		return StateNoConflict
	}
	if lastSync != nil && !serverModifiedAt.After(*lastSync) {
		return StateNoConflict
	}
	return StateConflict
}
