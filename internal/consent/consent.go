// Package consent handles the one write that must never fail silently: the
// server-authoritative COPPA consent record. A failed write leaves the
// user's decision, together with a retry flag, in durable per-user state
// outside the synced entity cache, so the exact chosen value reaches the
// server eventually even across process restarts and intervening sync
// passes.
package consent

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mvolkova/classkeeper/internal/logging"
	"github.com/mvolkova/classkeeper/internal/models"
	"github.com/mvolkova/classkeeper/internal/remote"
	"github.com/mvolkova/classkeeper/internal/store"
)

// Recorder writes consent decisions and drives the retry path.
type Recorder struct {
	client remote.Client
	store  *store.Store
	log    logging.Logger

	// retry schedule for RetryPending
	baseDelay   time.Duration
	maxAttempts uint64
}

func NewRecorder(client remote.Client, st *store.Store, log logging.Logger) *Recorder {
	if log == nil {
		log = logging.Nop()
	}
	return &Recorder{
		client:      client,
		store:       st,
		log:         log,
		baseDelay:   time.Second,
		maxAttempts: 5,
	}
}

// Record stores the decision in the local profile cache, then writes it to
// the server. On a failed server write the decision and a retry flag are
// persisted in sync state before the error is returned, so a later retry
// delivers the user's choice even if a sync pass has since replaced the
// cached profile with the server's copy.
func (r *Recorder) Record(ctx context.Context, scope store.Scope, granted bool) error {
	if err := r.cacheDecision(ctx, scope, granted); err != nil {
		return err
	}

	if err := r.client.UpdateConsent(ctx, scope.UserID, granted); err != nil {
		if flagErr := r.store.SetPendingConsent(ctx, scope, granted); flagErr != nil {
			return fmt.Errorf("consent write failed (%v) and retry state could not be saved: %w", err, flagErr)
		}
		return fmt.Errorf("consent write failed, retry flagged: %w", err)
	}

	return r.store.ClearPendingConsent(ctx, scope)
}

// RetryPending checks the durable flag and, when set, retries the stored
// decision with exponential backoff. Call it on app launch and on
// connectivity changes.
func (r *Recorder) RetryPending(ctx context.Context, scope store.Scope) error {
	granted, pending, err := r.store.PendingConsent(ctx, scope)
	if err != nil {
		return err
	}
	if !pending {
		return nil
	}

	backoff := retry.WithMaxRetries(r.maxAttempts, retry.NewExponential(r.baseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := r.client.UpdateConsent(ctx, scope.UserID, granted); err != nil {
			r.log.Debug(ctx, "consent retry attempt failed", "user", scope.UserID, "err", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		// flag stays set for the next launch
		return fmt.Errorf("consent retry exhausted: %w", err)
	}

	r.log.Info(ctx, "pending consent write delivered", "user", scope.UserID)
	return r.store.ClearPendingConsent(ctx, scope)
}

func (r *Recorder) cacheDecision(ctx context.Context, scope store.Scope, granted bool) error {
	profile, err := r.store.LoadProfile(ctx, scope)
	if err != nil {
		return err
	}
	if profile == nil {
		profile = &models.Cached[models.Profile]{}
	}
	payload := profile.Payload
	payload.ConsentGranted = granted
	profile.MarkModified(payload, time.Now())
	return r.store.SaveProfile(ctx, scope, *profile)
}
