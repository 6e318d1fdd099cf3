package syncer

import "github.com/mvolkova/classkeeper/internal/models"

// Policy maps each entity kind to its conflict resolution. The server is
// the authority for enrollment, coursework and compliance records; only
// content that originates on the device gets local-wins or merge
// treatment.
type Policy map[models.EntityKind]models.Resolution

// DefaultPolicy: server wins everywhere except conversations, whose
// message threads merge so unsent drafts survive.
func DefaultPolicy() Policy {
	return Policy{
		models.KindCourse:       models.ResolutionServerWins,
		models.KindAssignment:   models.ResolutionServerWins,
		models.KindGrade:        models.ResolutionServerWins,
		models.KindProfile:      models.ResolutionServerWins,
		models.KindConversation: models.ResolutionMerged,
	}
}

// Resolver decides the outcome of detected conflicts.
type Resolver struct {
	policy Policy
}

func NewResolver(policy Policy) *Resolver {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Resolver{policy: policy}
}

// Resolve picks the resolution for a conflict on the given kind. draft
// marks content still being composed locally (an in-progress submission);
// drafts always resolve local-wins regardless of the kind's policy.
func (r *Resolver) Resolve(kind models.EntityKind, draft bool) models.Resolution {
	if draft {
		return models.ResolutionLocalWins
	}
	if res, ok := r.policy[kind]; ok {
		return res
	}
	return models.ResolutionServerWins
}
