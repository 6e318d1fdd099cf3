// Package app wires the sync core into a runnable command: config, local
// store, remote client, orchestrator and consent recorder.
package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mvolkova/classkeeper/internal/config"
	"github.com/mvolkova/classkeeper/internal/consent"
	"github.com/mvolkova/classkeeper/internal/filex"
	"github.com/mvolkova/classkeeper/internal/flagx"
	"github.com/mvolkova/classkeeper/internal/grading"
	"github.com/mvolkova/classkeeper/internal/logging"
	"github.com/mvolkova/classkeeper/internal/models"
	"github.com/mvolkova/classkeeper/internal/netx"
	"github.com/mvolkova/classkeeper/internal/remote"
	"github.com/mvolkova/classkeeper/internal/store"
	"github.com/mvolkova/classkeeper/internal/syncer"
)

// App runs one sync cycle for a user and prints a grade dashboard.
type App struct {
	config  *config.Config
	store   *store.Store
	session *store.Session
	syncer  *syncer.Orchestrator
	consent *consent.Recorder
	log     logging.Logger
	out     io.Writer

	userID string
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewText(os.Stderr, slog.LevelInfo)

	userID := parseUserFlag()
	if userID == "" {
		return nil, fmt.Errorf("no user selected, pass -u <user-id>")
	}

	if _, err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.DatabasePath, log)
	if err != nil {
		return nil, fmt.Errorf("opening local cache: %w", err)
	}

	client := remote.NewHTTPClient(cfg.APIBaseURL, cfg.APIToken, cfg.RequestTimeout)

	return &App{
		config:  cfg,
		store:   st,
		session: store.NewSession(st, log),
		syncer:  syncer.New(client, st, syncer.NewResolver(syncer.DefaultPolicy()), log),
		consent: consent.NewRecorder(client, st, log),
		log:     log,
		out:     os.Stdout,
		userID:  userID,
	}, nil
}

// Run performs one launch cycle: deliver any pending consent write, sync,
// then render the dashboard from the (now fresh, or stale-but-cached)
// local data. A failed sync degrades to the cached view instead of
// aborting.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	a.session.SetCurrentUser(a.userID)
	scope := store.Scope{UserID: a.userID}

	if netx.Reachable(ctx, a.config.APIBaseURL, a.config.RequestTimeout) {
		if err := a.consent.RetryPending(ctx, scope); err != nil {
			a.log.Warn(ctx, "pending consent write not delivered", "err", err)
		}
	}

	result, err := a.syncer.Sync(ctx, scope)
	if err != nil {
		a.log.Warn(ctx, "sync failed, showing cached data", "err", err)
	} else {
		fmt.Fprintf(a.out, "Synced %d items", result.ItemsSynced)
		if result.ConflictsFound > 0 {
			fmt.Fprintf(a.out, ", resolved %d of %d conflicts", result.ConflictsResolved, result.ConflictsFound)
		}
		fmt.Fprintln(a.out)
		for _, msg := range result.Errors {
			fmt.Fprintf(a.out, "  partial: %s\n", msg)
		}
	}

	return a.printDashboard(ctx, scope)
}

func (a *App) printDashboard(ctx context.Context, scope store.Scope) error {
	courses, err := a.store.LoadCourses(ctx, scope)
	if err != nil {
		return err
	}
	grades, err := a.store.LoadGrades(ctx, scope)
	if err != nil {
		return err
	}
	weights, err := a.store.LoadGradeWeights(ctx, scope)
	if err != nil {
		return err
	}

	payloads := make([]models.Grade, 0, len(grades))
	for _, g := range grades {
		payloads = append(payloads, g.Payload)
	}

	var results []grading.CourseGrade
	for _, c := range courses {
		cg := grading.CourseGradeFor(payloads, weights, c.Payload.ID, c.Payload.Name)
		if a.config.TrendMinSamples != grading.DefaultTrendMinSamples {
			cg.Trend = grading.TrendOf(courseRecords(payloads, c.Payload.ID), a.config.TrendMinSamples)
		}
		fmt.Fprintf(a.out, "%-24s %6.1f%%  %-2s (%s)\n", cg.CourseName, cg.Overall, cg.Letter, cg.Trend)
		results = append(results, cg)
	}
	if len(results) > 0 {
		fmt.Fprintf(a.out, "GPA: %.2f\n", grading.GPA(results))
	}

	size, err := a.session.FormattedCacheSize(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Cache: %s\n", size)
	return nil
}

func (a *App) Close() {
	ctx := context.Background()
	if err := a.session.Flush(ctx); err != nil {
		a.log.Error(ctx, "flushing pending writes", "err", err)
	}
	if err := a.session.Close(); err != nil {
		a.log.Error(ctx, "closing session", "err", err)
	}
	if err := a.store.Close(); err != nil {
		a.log.Error(ctx, "closing local cache", "err", err)
	}
}

func courseRecords(grades []models.Grade, courseID uuid.UUID) []models.AssignmentGrade {
	var records []models.AssignmentGrade
	for _, g := range grades {
		if g.CourseID == courseID {
			records = append(records, g.Records...)
		}
	}
	return records
}

// parseUserFlag reads -u from os.Args, leaving config-owned flags alone.
func parseUserFlag() string {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u"})
	fs := flag.NewFlagSet("app", flag.ContinueOnError)
	userID := fs.String("u", "", "user id to sync")
	if err := fs.Parse(args); err != nil {
		return ""
	}
	return *userID
}
