package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/mvolkova/classkeeper/internal/grading"
	"github.com/mvolkova/classkeeper/internal/logging"
	"github.com/mvolkova/classkeeper/internal/models"
)

// Session is the caller-facing surface of the local store. It tracks the
// active user and turns saves into queued, fire-and-forget writes: a single
// worker goroutine applies them in submission order, so the last full-set
// replacement for a kind always wins and no interleaving is possible.
//
// Saves never fail from the caller's point of view; failures are logged at
// debug level and handed back in bulk by Flush. Callers that need a
// durability guarantee call Flush before reading.
//
// With no active user, saves are no-ops and loads return empty results.
type Session struct {
	store *Store
	log   logging.Logger

	mu    sync.RWMutex
	scope Scope

	jobs chan func(ctx context.Context) error

	errMu sync.Mutex
	errs  []error

	closeOnce sync.Once
}

const sessionQueueDepth = 64

// NewSession starts the write worker. Call Close when done.
func NewSession(store *Store, log logging.Logger) *Session {
	if log == nil {
		log = logging.Nop()
	}
	s := &Session{
		store: store,
		log:   log,
		jobs:  make(chan func(ctx context.Context) error, sessionQueueDepth),
	}
	go s.run()
	return s
}

func (s *Session) run() {
	for job := range s.jobs {
		if err := job(context.Background()); err != nil {
			s.log.Debug(context.Background(), "queued write failed", "err", err)
			s.errMu.Lock()
			s.errs = append(s.errs, err)
			s.errMu.Unlock()
		}
	}
}

// SetCurrentUser activates a user namespace. All subsequent operations
// read and write only within it.
func (s *Session) SetCurrentUser(userID string) {
	s.mu.Lock()
	s.scope = Scope{UserID: userID}
	s.mu.Unlock()
}

// ClearCurrentUser deactivates the namespace: loads return empty and saves
// become no-ops until a user is set again. Writes already queued keep the
// scope they were submitted under.
func (s *Session) ClearCurrentUser() {
	s.mu.Lock()
	s.scope = Scope{}
	s.mu.Unlock()
}

// CurrentScope returns the active scope and whether a user is set.
func (s *Session) CurrentScope() (Scope, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope, s.scope.Valid()
}

func (s *Session) enqueue(job func(ctx context.Context) error) {
	s.jobs <- job
}

// Flush waits until every queued write submitted so far has been applied,
// then reports their accumulated errors (nil when all succeeded). The
// error list resets on each call. The wait rides the queue itself: a
// barrier job is enqueued, and since the worker applies jobs in submission
// order, the barrier running means every earlier write has run.
func (s *Session) Flush(ctx context.Context) error {
	done := make(chan struct{})
	s.enqueue(func(context.Context) error {
		close(done)
		return nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	s.errMu.Lock()
	errs := s.errs
	s.errs = nil
	s.errMu.Unlock()
	return multierr.Combine(errs...)
}

// Close drains the queue and stops the worker. The session must not be
// used afterwards.
func (s *Session) Close() error {
	err := s.Flush(context.Background())
	s.closeOnce.Do(func() { close(s.jobs) })
	return err
}

// SaveCourses queues a full replacement of the cached course set.
func (s *Session) SaveCourses(items []models.Cached[models.Course]) {
	scope, ok := s.CurrentScope()
	if !ok {
		return
	}
	s.enqueue(func(ctx context.Context) error { return s.store.SaveCourses(ctx, scope, items) })
}

func (s *Session) LoadCourses(ctx context.Context) ([]models.Cached[models.Course], error) {
	scope, ok := s.CurrentScope()
	if !ok {
		return []models.Cached[models.Course]{}, nil
	}
	return s.store.LoadCourses(ctx, scope)
}

func (s *Session) SaveAssignments(items []models.Cached[models.Assignment]) {
	scope, ok := s.CurrentScope()
	if !ok {
		return
	}
	s.enqueue(func(ctx context.Context) error { return s.store.SaveAssignments(ctx, scope, items) })
}

func (s *Session) LoadAssignments(ctx context.Context) ([]models.Cached[models.Assignment], error) {
	scope, ok := s.CurrentScope()
	if !ok {
		return []models.Cached[models.Assignment]{}, nil
	}
	return s.store.LoadAssignments(ctx, scope)
}

func (s *Session) SaveGrades(items []models.Cached[models.Grade]) {
	scope, ok := s.CurrentScope()
	if !ok {
		return
	}
	s.enqueue(func(ctx context.Context) error { return s.store.SaveGrades(ctx, scope, items) })
}

func (s *Session) LoadGrades(ctx context.Context) ([]models.Cached[models.Grade], error) {
	scope, ok := s.CurrentScope()
	if !ok {
		return []models.Cached[models.Grade]{}, nil
	}
	return s.store.LoadGrades(ctx, scope)
}

func (s *Session) SaveConversations(items []models.Cached[models.Conversation]) {
	scope, ok := s.CurrentScope()
	if !ok {
		return
	}
	s.enqueue(func(ctx context.Context) error { return s.store.SaveConversations(ctx, scope, items) })
}

func (s *Session) LoadConversations(ctx context.Context) ([]models.Cached[models.Conversation], error) {
	scope, ok := s.CurrentScope()
	if !ok {
		return []models.Cached[models.Conversation]{}, nil
	}
	return s.store.LoadConversations(ctx, scope)
}

func (s *Session) SaveProfile(profile models.Cached[models.Profile]) {
	scope, ok := s.CurrentScope()
	if !ok {
		return
	}
	s.enqueue(func(ctx context.Context) error { return s.store.SaveProfile(ctx, scope, profile) })
}

func (s *Session) LoadProfile(ctx context.Context) (*models.Cached[models.Profile], error) {
	scope, ok := s.CurrentScope()
	if !ok {
		return nil, nil
	}
	return s.store.LoadProfile(ctx, scope)
}

func (s *Session) SaveMetadata(items []models.ItemMetadata) {
	scope, ok := s.CurrentScope()
	if !ok {
		return
	}
	s.enqueue(func(ctx context.Context) error { return s.store.SaveMetadata(ctx, scope, items) })
}

func (s *Session) LoadMetadata(ctx context.Context) ([]models.ItemMetadata, error) {
	scope, ok := s.CurrentScope()
	if !ok {
		return []models.ItemMetadata{}, nil
	}
	return s.store.LoadMetadata(ctx, scope)
}

// SaveConflictHistory appends to the user's conflict history.
func (s *Session) SaveConflictHistory(conflicts []models.SyncConflict) {
	scope, ok := s.CurrentScope()
	if !ok {
		return
	}
	s.enqueue(func(ctx context.Context) error { return s.store.AppendConflicts(ctx, scope, conflicts) })
}

func (s *Session) LoadConflictHistory(ctx context.Context) ([]models.SyncConflict, error) {
	scope, ok := s.CurrentScope()
	if !ok {
		return []models.SyncConflict{}, nil
	}
	return s.store.LoadConflictHistory(ctx, scope)
}

func (s *Session) SaveSyncResult(result models.SyncResult) {
	scope, ok := s.CurrentScope()
	if !ok {
		return
	}
	s.enqueue(func(ctx context.Context) error { return s.store.SaveSyncResult(ctx, scope, result) })
}

func (s *Session) LoadSyncResult(ctx context.Context) (*models.SyncResult, error) {
	scope, ok := s.CurrentScope()
	if !ok {
		return nil, nil
	}
	return s.store.LoadSyncResult(ctx, scope)
}

func (s *Session) SaveGradeWeights(w grading.Weights) {
	scope, ok := s.CurrentScope()
	if !ok {
		return
	}
	s.enqueue(func(ctx context.Context) error { return s.store.SaveGradeWeights(ctx, scope, w) })
}

func (s *Session) LoadGradeWeights(ctx context.Context) (grading.Weights, error) {
	scope, ok := s.CurrentScope()
	if !ok {
		return grading.DefaultWeights(), nil
	}
	return s.store.LoadGradeWeights(ctx, scope)
}

// LastSyncDate returns the active user's last successful sync time, nil
// when absent or no user is active.
func (s *Session) LastSyncDate(ctx context.Context) (*time.Time, error) {
	scope, ok := s.CurrentScope()
	if !ok {
		return nil, nil
	}
	return s.store.LastSync(ctx, scope)
}

func (s *Session) SetLastSyncDate(ctx context.Context, t time.Time) error {
	scope, ok := s.CurrentScope()
	if !ok {
		return nil
	}
	return s.store.SetLastSync(ctx, scope, t)
}

// ClearAllData drains pending writes, then deletes everything stored for
// the active user. A second call in a row is a no-op. Without an active
// user nothing happens.
func (s *Session) ClearAllData(ctx context.Context) error {
	scope, ok := s.CurrentScope()
	if !ok {
		return nil
	}
	if err := s.Flush(ctx); err != nil {
		return err
	}
	return s.store.ClearAll(ctx, scope)
}

// CachedDataSize reports bytes stored for the active user, 0 without one.
func (s *Session) CachedDataSize(ctx context.Context) (int64, error) {
	scope, ok := s.CurrentScope()
	if !ok {
		return 0, nil
	}
	return s.store.CachedDataSize(ctx, scope)
}

func (s *Session) FormattedCacheSize(ctx context.Context) (string, error) {
	scope, ok := s.CurrentScope()
	if !ok {
		return "0 B", nil
	}
	return s.store.FormattedCacheSize(ctx, scope)
}
