package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mvolkova/classkeeper/internal/models"
)

func TestDetect(t *testing.T) {
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	localEdit := base.Add(-time.Hour)
	lastSync := base.Add(-30 * time.Minute)
	serverOld := base.Add(-2 * time.Hour)
	serverNew := base.Add(-10 * time.Minute)

	pristine := models.ItemMetadata{Kind: models.KindCourse}
	edited := models.ItemMetadata{Kind: models.KindCourse, ModifiedAt: &localEdit, LocallyModified: true}

	tests := []struct {
		name     string
		local    models.ItemMetadata
		server   *time.Time
		lastSync *time.Time
		want     State
	}{
		{"pristine local is unmodified", pristine, &serverNew, &lastSync, StateUnmodified},
		{"server without timestamp cannot conflict", edited, nil, &lastSync, StateNoConflict},
		{"server unchanged since last sync", edited, &serverOld, &lastSync, StateNoConflict},
		{"both sides changed", edited, &serverNew, &lastSync, StateConflict},
		{"no recorded sync treats server change as new", edited, &serverOld, nil, StateConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.local, tt.server, tt.lastSync))
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unmodified", StateUnmodified.String())
	assert.Equal(t, "locally_modified", StateLocallyModified.String())
	assert.Equal(t, "no_conflict", StateNoConflict.String())
	assert.Equal(t, "conflict", StateConflict.String())
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(nil)

	assert.Equal(t, models.ResolutionServerWins, r.Resolve(models.KindGrade, false))
	assert.Equal(t, models.ResolutionServerWins, r.Resolve(models.KindProfile, false))
	assert.Equal(t, models.ResolutionMerged, r.Resolve(models.KindConversation, false))

	// drafts always stay local
	assert.Equal(t, models.ResolutionLocalWins, r.Resolve(models.KindAssignment, true))
	assert.Equal(t, models.ResolutionLocalWins, r.Resolve(models.KindConversation, true))

	// unknown kinds fall back to server wins
	assert.Equal(t, models.ResolutionServerWins, r.Resolve(models.EntityKind("widget"), false))
}

func TestResolver_CustomPolicy(t *testing.T) {
	r := NewResolver(Policy{models.KindAssignment: models.ResolutionLocalWins})
	assert.Equal(t, models.ResolutionLocalWins, r.Resolve(models.KindAssignment, false))
}
