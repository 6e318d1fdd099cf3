package models

import (
	"time"

	"github.com/google/uuid"
)

// Resolution is the terminal decision applied to a conflict.
type Resolution string

const (
	ResolutionServerWins Resolution = "server_wins"
	ResolutionLocalWins  Resolution = "local_wins"
	ResolutionMerged     Resolution = "merged"
)

// SyncConflict records one detected divergence between a locally modified
// entity and its server counterpart. Entries are append-only audit records:
// once written to history they are never mutated.
type SyncConflict struct {
	Kind             EntityKind `json:"kind"`
	EntityID         uuid.UUID  `json:"entity_id"`
	EntityName       string     `json:"entity_name"`
	LocalModifiedAt  time.Time  `json:"local_modified_at"`
	ServerModifiedAt time.Time  `json:"server_modified_at"`
	Resolution       Resolution `json:"resolution"`
	DetectedAt       time.Time  `json:"detected_at"`
}

// SyncResult summarizes one sync pass. A fresh value is produced per run;
// only the most recent run is persisted.
type SyncResult struct {
	ItemsSynced       int       `json:"items_synced"`
	ConflictsFound    int       `json:"conflicts_found"`
	ConflictsResolved int       `json:"conflicts_resolved"`
	Errors            []string  `json:"errors"`
	CompletedAt       time.Time `json:"completed_at"`
}

// IsSuccess reports whether the pass completed with no errors.
func (r SyncResult) IsSuccess() bool {
	return len(r.Errors) == 0
}
