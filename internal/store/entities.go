package store

import (
	"context"

	"github.com/mvolkova/classkeeper/internal/dbx"
	"github.com/mvolkova/classkeeper/internal/grading"
	"github.com/mvolkova/classkeeper/internal/models"
)

// Per-kind typed save/load pairs. Saves replace the whole cached set for
// the user; loads return an empty set when nothing is cached.

func (s *Store) SaveCourses(ctx context.Context, scope Scope, items []models.Cached[models.Course]) error {
	return saveJSON(ctx, s.db, scope, string(models.KindCourse), items)
}

func (s *Store) LoadCourses(ctx context.Context, scope Scope) ([]models.Cached[models.Course], error) {
	return loadSlice[models.Cached[models.Course]](ctx, s.db, scope, string(models.KindCourse))
}

func (s *Store) SaveAssignments(ctx context.Context, scope Scope, items []models.Cached[models.Assignment]) error {
	return saveJSON(ctx, s.db, scope, string(models.KindAssignment), items)
}

func (s *Store) LoadAssignments(ctx context.Context, scope Scope) ([]models.Cached[models.Assignment], error) {
	return loadSlice[models.Cached[models.Assignment]](ctx, s.db, scope, string(models.KindAssignment))
}

func (s *Store) SaveGrades(ctx context.Context, scope Scope, items []models.Cached[models.Grade]) error {
	return saveJSON(ctx, s.db, scope, string(models.KindGrade), items)
}

func (s *Store) LoadGrades(ctx context.Context, scope Scope) ([]models.Cached[models.Grade], error) {
	return loadSlice[models.Cached[models.Grade]](ctx, s.db, scope, string(models.KindGrade))
}

func (s *Store) SaveConversations(ctx context.Context, scope Scope, items []models.Cached[models.Conversation]) error {
	return saveJSON(ctx, s.db, scope, string(models.KindConversation), items)
}

func (s *Store) LoadConversations(ctx context.Context, scope Scope) ([]models.Cached[models.Conversation], error) {
	return loadSlice[models.Cached[models.Conversation]](ctx, s.db, scope, string(models.KindConversation))
}

// SaveProfile stores the user's single profile record.
func (s *Store) SaveProfile(ctx context.Context, scope Scope, profile models.Cached[models.Profile]) error {
	return saveJSON(ctx, s.db, scope, string(models.KindProfile), profile)
}

// LoadProfile returns nil when no profile is cached.
func (s *Store) LoadProfile(ctx context.Context, scope Scope) (*models.Cached[models.Profile], error) {
	var p models.Cached[models.Profile]
	ok, err := loadJSON(ctx, s.db, scope, string(models.KindProfile), &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SaveMetadata(ctx context.Context, scope Scope, items []models.ItemMetadata) error {
	return saveJSON(ctx, s.db, scope, keyMetadata, items)
}

func (s *Store) LoadMetadata(ctx context.Context, scope Scope) ([]models.ItemMetadata, error) {
	return loadSlice[models.ItemMetadata](ctx, s.db, scope, keyMetadata)
}

// AppendConflicts adds entries to the user's conflict history. History is
// append-only: existing entries are never rewritten, and the read-append-
// write runs in one transaction so concurrent passes cannot drop entries.
func (s *Store) AppendConflicts(ctx context.Context, scope Scope, conflicts []models.SyncConflict) error {
	if len(conflicts) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		history, err := loadSlice[models.SyncConflict](ctx, tx, scope, keyConflictHistory)
		if err != nil {
			return err
		}
		history = append(history, conflicts...)
		return saveJSON(ctx, tx, scope, keyConflictHistory, history)
	})
}

func (s *Store) LoadConflictHistory(ctx context.Context, scope Scope) ([]models.SyncConflict, error) {
	return loadSlice[models.SyncConflict](ctx, s.db, scope, keyConflictHistory)
}

// SaveSyncResult overwrites the record of the most recent sync pass.
func (s *Store) SaveSyncResult(ctx context.Context, scope Scope, result models.SyncResult) error {
	return saveJSON(ctx, s.db, scope, keySyncResult, result)
}

// LoadSyncResult returns nil when no pass has been recorded.
func (s *Store) LoadSyncResult(ctx context.Context, scope Scope) (*models.SyncResult, error) {
	var r models.SyncResult
	ok, err := loadJSON(ctx, s.db, scope, keySyncResult, &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *Store) SaveGradeWeights(ctx context.Context, scope Scope, w grading.Weights) error {
	return saveJSON(ctx, s.db, scope, keyGradeWeights, w)
}

// LoadGradeWeights falls back to the default split when none are stored.
func (s *Store) LoadGradeWeights(ctx context.Context, scope Scope) (grading.Weights, error) {
	var w grading.Weights
	ok, err := loadJSON(ctx, s.db, scope, keyGradeWeights, &w)
	if err != nil {
		return grading.Weights{}, err
	}
	if !ok {
		return grading.DefaultWeights(), nil
	}
	return w, nil
}
