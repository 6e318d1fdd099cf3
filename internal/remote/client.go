// Package remote defines the interface to the hosted LMS data API and its
// HTTP implementation. Authentication, session refresh and row-level
// authorization are the backend's business; this client only forwards an
// opaque bearer token.
package remote

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvolkova/classkeeper/internal/models"
)

// Client is the consumed surface of the remote data API. Fetches return
// full entity sets with the server's last-modified stamp carried in the
// envelope's ModifiedAt; LocallyModified is always false on fetched data.
type Client interface {
	FetchCourses(ctx context.Context) ([]models.Cached[models.Course], error)
	FetchAssignments(ctx context.Context) ([]models.Cached[models.Assignment], error)
	FetchGrades(ctx context.Context) ([]models.Cached[models.Grade], error)
	FetchProfile(ctx context.Context) (*models.Cached[models.Profile], error)
	FetchConversations(ctx context.Context) ([]models.Cached[models.Conversation], error)

	// Update upserts one entity's payload by kind and id. The profile is a
	// singleton resource addressed without its id.
	Update(ctx context.Context, kind models.EntityKind, id uuid.UUID, payload any) error

	// UpdateConsent writes the server-authoritative COPPA consent record.
	UpdateConsent(ctx context.Context, userID string, granted bool) error
}
