package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/mvolkova/classkeeper/internal/models"
)

func setupSession(t *testing.T) *Session {
	t.Helper()
	sess := NewSession(setupStore(t), nil)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestSession_SaveLoadAfterFlush(t *testing.T) {
	sess := setupSession(t)
	ctx := context.Background()

	sess.SetCurrentUser("u1")
	items := []models.Cached[models.Course]{cachedCourse("Algebra")}
	sess.SaveCourses(items)

	require.NoError(t, sess.Flush(ctx))

	got, err := sess.LoadCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestSession_NoActiveUser(t *testing.T) {
	sess := setupSession(t)
	ctx := context.Background()

	// saves are no-ops, loads come back empty, nothing errors
	sess.SaveCourses([]models.Cached[models.Course]{cachedCourse("Algebra")})
	require.NoError(t, sess.Flush(ctx))

	courses, err := sess.LoadCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)

	profile, err := sess.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, profile)

	n, err := sess.CachedDataSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, sess.ClearAllData(ctx))
	require.NoError(t, sess.SetLastSyncDate(ctx, time.Now()))

	// data saved while no user was active must not appear once one is
	sess.SetCurrentUser("u1")
	courses, err = sess.LoadCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestSession_SwitchingUsersSwitchesData(t *testing.T) {
	sess := setupSession(t)
	ctx := context.Background()

	sess.SetCurrentUser("u1")
	mine := []models.Cached[models.Course]{cachedCourse("Algebra")}
	sess.SaveCourses(mine)
	require.NoError(t, sess.Flush(ctx))

	sess.SetCurrentUser("u2")
	got, err := sess.LoadCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "u2 must not see u1's data")

	theirs := []models.Cached[models.Course]{cachedCourse("Latin")}
	sess.SaveCourses(theirs)
	require.NoError(t, sess.Flush(ctx))

	require.NoError(t, sess.ClearAllData(ctx))

	sess.SetCurrentUser("u1")
	got, err = sess.LoadCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, mine, got, "clearing u2 must not touch u1")
}

func TestSession_ClearCurrentUserDeactivates(t *testing.T) {
	sess := setupSession(t)
	ctx := context.Background()

	sess.SetCurrentUser("u1")
	sess.SaveCourses([]models.Cached[models.Course]{cachedCourse("Algebra")})
	require.NoError(t, sess.Flush(ctx))

	sess.ClearCurrentUser()

	got, err := sess.LoadCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	// reselecting the user brings the data back
	sess.SetCurrentUser("u1")
	got, err = sess.LoadCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSession_QueuedWritesKeepSubmissionScope(t *testing.T) {
	sess := setupSession(t)
	ctx := context.Background()

	sess.SetCurrentUser("u1")
	sess.SaveCourses([]models.Cached[models.Course]{cachedCourse("Algebra")})
	// switching before the queue drains must not redirect the write
	sess.SetCurrentUser("u2")
	require.NoError(t, sess.Flush(ctx))

	got, err := sess.LoadCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "write submitted under u1 must not land in u2")

	sess.SetCurrentUser("u1")
	got, err = sess.LoadCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSession_LastWriteWinsPerKind(t *testing.T) {
	sess := setupSession(t)
	ctx := context.Background()
	sess.SetCurrentUser("u1")

	var last []models.Cached[models.Course]
	for i := 0; i < 10; i++ {
		last = []models.Cached[models.Course]{cachedCourse(fmt.Sprintf("Course %d", i))}
		sess.SaveCourses(last)
	}
	require.NoError(t, sess.Flush(ctx))

	got, err := sess.LoadCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, last, got)
}

func TestSession_ConcurrentSavesAndFlushes(t *testing.T) {
	sess := setupSession(t)
	ctx := context.Background()
	sess.SetCurrentUser("u1")

	// saves and flushes racing from several goroutines: each flush must
	// observe the writes submitted before it without tripping over the
	// others
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess.SaveCourses([]models.Cached[models.Course]{cachedCourse(fmt.Sprintf("Course %d", i))})
			assert.NoError(t, sess.Flush(ctx))
		}(i)
	}
	wg.Wait()

	require.NoError(t, sess.Flush(ctx))
	got, err := sess.LoadCourses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1, "full-set replacement: exactly one write is final")
}

func TestSession_FlushReportsStorageErrors(t *testing.T) {
	sess := setupSession(t)
	sess.SetCurrentUser("u1")

	// closing the underlying DB makes the queued write fail
	require.NoError(t, sess.store.Close())

	sess.SaveCourses([]models.Cached[models.Course]{cachedCourse("Algebra")})
	err := sess.Flush(context.Background())
	require.Error(t, err)

	// errors are handed over once, then reset
	sess.SaveMetadata(nil)
	_ = sess.Flush(context.Background())
}

func TestSession_ConflictHistoryViaSession(t *testing.T) {
	sess := setupSession(t)
	ctx := context.Background()
	sess.SetCurrentUser("u1")
	now := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 3; i++ {
		sess.SaveConflictHistory([]models.SyncConflict{{
			Kind: models.KindGrade, EntityID: uuid.New(), EntityName: "Algebra",
			LocalModifiedAt: now, ServerModifiedAt: now,
			Resolution: models.ResolutionServerWins, DetectedAt: now,
		}})
	}
	require.NoError(t, sess.Flush(ctx))

	history, err := sess.LoadConflictHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}
