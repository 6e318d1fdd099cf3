package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mvolkova/classkeeper/internal/logging"
	"github.com/mvolkova/classkeeper/internal/models"
	"github.com/mvolkova/classkeeper/internal/remote"
	"github.com/mvolkova/classkeeper/internal/store"
)

// Orchestrator runs the sync pass for one user at a time. Concurrent Sync
// calls for the same user coalesce into a single pass via singleflight.
type Orchestrator struct {
	client   remote.Client
	store    *store.Store
	resolver *Resolver
	log      logging.Logger
	now      func() time.Time
	sf       singleflight.Group
}

func New(client remote.Client, st *store.Store, resolver *Resolver, log logging.Logger) *Orchestrator {
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Orchestrator{
		client:   client,
		store:    st,
		resolver: resolver,
		log:      log,
		now:      time.Now,
	}
}

// Sync runs one full pass for the user: fetch every tracked entity kind,
// resolve conflicts against pending local edits, push surviving local
// changes, persist the merged sets and stamp the last-sync time. A failure
// on one kind is recorded in the result and does not abort the others.
func (o *Orchestrator) Sync(ctx context.Context, scope store.Scope) (models.SyncResult, error) {
	if !scope.Valid() {
		return models.SyncResult{}, store.ErrEmptyScope
	}
	v, err, shared := o.sf.Do(scope.UserID, func() (any, error) {
		return o.syncPass(ctx, scope), nil
	})
	if err != nil {
		return models.SyncResult{}, err
	}
	if shared {
		o.log.Debug(ctx, "sync pass coalesced", "user", scope.UserID)
	}
	return v.(models.SyncResult), nil
}

// kindOps bundles the per-kind plumbing so one generic pass handles every
// entity kind. merge may be nil for kinds whose policy never merges; draft
// may be nil for kinds that have no locally composed state.
type kindOps[T any] struct {
	kind  models.EntityKind
	fetch func(context.Context) ([]models.Cached[T], error)
	load  func(context.Context, store.Scope) ([]models.Cached[T], error)
	save  func(context.Context, store.Scope, []models.Cached[T]) error
	name  func(T) string
	merge func(local, server T) T
	draft func(T) bool
}

func (o *Orchestrator) syncPass(ctx context.Context, scope store.Scope) models.SyncResult {
	res := models.SyncResult{Errors: []string{}}

	lastSync, err := o.store.LastSync(ctx, scope)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("last sync: %v", err))
	}

	var conflicts []models.SyncConflict
	var metadata []models.ItemMetadata

	syncKind(ctx, o, scope, kindOps[models.Course]{
		kind:  models.KindCourse,
		fetch: o.client.FetchCourses,
		load:  o.store.LoadCourses,
		save:  o.store.SaveCourses,
		name:  func(c models.Course) string { return c.Name },
	}, lastSync, &res, &conflicts, &metadata)

	syncKind(ctx, o, scope, kindOps[models.Assignment]{
		kind:  models.KindAssignment,
		fetch: o.client.FetchAssignments,
		load:  o.store.LoadAssignments,
		save:  o.store.SaveAssignments,
		name:  func(a models.Assignment) string { return a.Title },
		draft: func(a models.Assignment) bool { return a.InProgress },
	}, lastSync, &res, &conflicts, &metadata)

	syncKind(ctx, o, scope, kindOps[models.Grade]{
		kind:  models.KindGrade,
		fetch: o.client.FetchGrades,
		load:  o.store.LoadGrades,
		save:  o.store.SaveGrades,
		name:  func(g models.Grade) string { return g.CourseID.String() },
	}, lastSync, &res, &conflicts, &metadata)

	syncKind(ctx, o, scope, kindOps[models.Profile]{
		kind:  models.KindProfile,
		fetch: o.fetchProfileSet,
		load:  o.loadProfileSet,
		save:  o.saveProfileSet,
		name:  func(p models.Profile) string { return p.DisplayName },
	}, lastSync, &res, &conflicts, &metadata)

	syncKind(ctx, o, scope, kindOps[models.Conversation]{
		kind:  models.KindConversation,
		fetch: o.client.FetchConversations,
		load:  o.store.LoadConversations,
		save:  o.store.SaveConversations,
		name:  func(c models.Conversation) string { return c.Subject },
		merge: func(local, server models.Conversation) models.Conversation { return local.MergeMessages(server) },
	}, lastSync, &res, &conflicts, &metadata)

	if len(conflicts) > 0 {
		if err := o.store.AppendConflicts(ctx, scope, conflicts); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("conflict history: %v", err))
		}
	}
	if err := o.store.SaveMetadata(ctx, scope, metadata); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("metadata: %v", err))
	}

	now := o.now()
	res.CompletedAt = now
	if err := o.store.SetLastSync(ctx, scope, now); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("last sync: %v", err))
	}
	if err := o.store.SaveSyncResult(ctx, scope, res); err != nil {
		o.log.Warn(ctx, "saving sync result failed", "user", scope.UserID, "err", err)
	}

	o.log.Info(ctx, "sync pass finished",
		"user", scope.UserID,
		"items", res.ItemsSynced,
		"conflicts", res.ConflictsFound,
		"errors", len(res.Errors),
	)
	return res
}

func syncKind[T any](
	ctx context.Context,
	o *Orchestrator,
	scope store.Scope,
	ops kindOps[T],
	lastSync *time.Time,
	res *models.SyncResult,
	conflicts *[]models.SyncConflict,
	metadata *[]models.ItemMetadata,
) {
	server, err := ops.fetch(ctx)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: fetch: %v", ops.kind, err))
		return
	}
	local, err := ops.load(ctx, scope)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: load: %v", ops.kind, err))
		return
	}

	merged, kindConflicts := mergeSets(ops, local, server, lastSync, o.resolver, o.now())

	// push local winners back; a failed push leaves the entity pending for
	// the next pass
	for i := range merged {
		if !merged[i].LocallyModified {
			continue
		}
		if err := o.client.Update(ctx, ops.kind, merged[i].ID, merged[i].Payload); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: push %s: %v", ops.kind, merged[i].ID, err))
			continue
		}
		merged[i].MarkSynced()
	}

	if err := ops.save(ctx, scope, merged); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: save: %v", ops.kind, err))
		return
	}

	res.ItemsSynced += len(merged)
	res.ConflictsFound += len(kindConflicts)
	res.ConflictsResolved += len(kindConflicts)
	*conflicts = append(*conflicts, kindConflicts...)
	for _, m := range merged {
		*metadata = append(*metadata, models.ItemMetadata{
			Kind:            ops.kind,
			ID:              m.ID,
			Name:            ops.name(m.Payload),
			ModifiedAt:      m.ModifiedAt,
			LocallyModified: m.LocallyModified,
		})
	}
}

// mergeSets produces the post-sync entity set for one kind. Server items
// without a pending local edit replace the cache; pending edits either
// survive untouched (no conflict) or go through the resolver. Local-only
// pending edits are kept; local-only pristine entries are dropped, since
// the server fetch is the authoritative full set.
func mergeSets[T any](
	ops kindOps[T],
	local, server []models.Cached[T],
	lastSync *time.Time,
	r *Resolver,
	now time.Time,
) ([]models.Cached[T], []models.SyncConflict) {
	localByID := make(map[uuid.UUID]models.Cached[T], len(local))
	for _, l := range local {
		localByID[l.ID] = l
	}

	out := make([]models.Cached[T], 0, len(server))
	var conflicts []models.SyncConflict
	seen := make(map[uuid.UUID]struct{}, len(server))

	for _, sv := range server {
		seen[sv.ID] = struct{}{}
		l, ok := localByID[sv.ID]
		if !ok || !l.LocallyModified {
			sv.LocallyModified = false
			out = append(out, sv)
			continue
		}

		meta := models.ItemMetadata{
			Kind:            ops.kind,
			ID:              l.ID,
			Name:            ops.name(l.Payload),
			ModifiedAt:      l.ModifiedAt,
			LocallyModified: true,
		}
		if Detect(meta, sv.ModifiedAt, lastSync) != StateConflict {
			out = append(out, l)
			continue
		}

		draft := ops.draft != nil && ops.draft(l.Payload)
		resolution := r.Resolve(ops.kind, draft)
		if resolution == models.ResolutionMerged && ops.merge == nil {
			resolution = models.ResolutionServerWins
		}
		conflicts = append(conflicts, models.SyncConflict{
			Kind:             ops.kind,
			EntityID:         l.ID,
			EntityName:       meta.Name,
			LocalModifiedAt:  derefTime(l.ModifiedAt),
			ServerModifiedAt: derefTime(sv.ModifiedAt),
			Resolution:       resolution,
			DetectedAt:       now,
		})

		switch resolution {
		case models.ResolutionLocalWins:
			out = append(out, l)
		case models.ResolutionMerged:
			m := l
			m.Payload = ops.merge(l.Payload, sv.Payload)
			out = append(out, m)
		default:
			sv.LocallyModified = false
			out = append(out, sv)
		}
	}

	for _, l := range local {
		if _, ok := seen[l.ID]; !ok && l.LocallyModified {
			out = append(out, l)
		}
	}

	return out, conflicts
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Profile is a single record; these adapters let it ride the same generic
// pass as the slice-valued kinds.

func (o *Orchestrator) fetchProfileSet(ctx context.Context) ([]models.Cached[models.Profile], error) {
	p, err := o.client.FetchProfile(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return []models.Cached[models.Profile]{*p}, nil
}

func (o *Orchestrator) loadProfileSet(ctx context.Context, scope store.Scope) ([]models.Cached[models.Profile], error) {
	p, err := o.store.LoadProfile(ctx, scope)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return []models.Cached[models.Profile]{*p}, nil
}

func (o *Orchestrator) saveProfileSet(ctx context.Context, scope store.Scope, items []models.Cached[models.Profile]) error {
	if len(items) == 0 {
		return nil
	}
	return o.store.SaveProfile(ctx, scope, items[0])
}
