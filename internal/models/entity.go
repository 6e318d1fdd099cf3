// Package models defines the domain records cached locally and synced with
// the remote API, plus the envelope and bookkeeping types the sync layer
// operates on.
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EntityKind classifies a category of domain record persisted and synced as
// a unit.
type EntityKind string

const (
	KindCourse       EntityKind = "course"
	KindAssignment   EntityKind = "assignment"
	KindGrade        EntityKind = "grade"
	KindProfile      EntityKind = "profile"
	KindConversation EntityKind = "conversation"
)

// AllKinds lists every tracked entity kind in sync order.
func AllKinds() []EntityKind {
	return []EntityKind{KindCourse, KindAssignment, KindGrade, KindProfile, KindConversation}
}

var ErrModifiedAtMissing = errors.New("locally modified entity without modification timestamp")

// Cached wraps a domain record in the local cache. Payload is treated as an
// immutable value; edits replace the whole payload and stamp ModifiedAt.
type Cached[T any] struct {
	// ID is the globally unique identifier of the wrapped record.
	ID uuid.UUID `json:"id"`

	// Payload is the domain record itself.
	Payload T `json:"payload"`

	// ModifiedAt is the time of the last local mutation, nil if the entity
	// has never been edited locally.
	ModifiedAt *time.Time `json:"modified_at,omitempty"`

	// LocallyModified distinguishes a pristine cache entry from a pending
	// local edit awaiting sync.
	LocallyModified bool `json:"locally_modified"`
}

// MarkModified replaces the payload and flags the entry as a pending local
// edit. It is the only sanctioned way to set LocallyModified, which keeps
// the ModifiedAt invariant intact.
func (c *Cached[T]) MarkModified(payload T, now time.Time) {
	c.Payload = payload
	c.ModifiedAt = &now
	c.LocallyModified = true
}

// MarkSynced clears the pending-edit flag after a successful sync.
func (c *Cached[T]) MarkSynced() {
	c.LocallyModified = false
}

// Validate checks the envelope invariant: a locally modified entry must
// carry a modification timestamp.
func (c *Cached[T]) Validate() error {
	if c.LocallyModified && c.ModifiedAt == nil {
		return ErrModifiedAtMissing
	}
	return nil
}

// ItemMetadata is the side record kept per cached entity so conflict
// detection can compare timestamps without deserializing full payloads.
type ItemMetadata struct {
	Kind            EntityKind `json:"kind"`
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	ModifiedAt      *time.Time `json:"modified_at,omitempty"`
	LocallyModified bool       `json:"locally_modified"`
}
