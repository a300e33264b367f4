// Package importer loads a YAML workout catalog, and optionally a plan for a
// user, into the database.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/myplan/internal/models"
	"github.com/meltforce/myplan/internal/storage"
)

// Store is the part of *storage.DB the importer writes to.
type Store interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
	UpsertWorkout(ctx context.Context, w models.WorkoutDetail) (bool, error)
	CreatePlan(ctx context.Context, userID int, planType models.PlanType, currentDay int, days []storage.NewPlanDay) (uuid.UUID, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
}

var _ Store = (*storage.DB)(nil)

// Stats tracks import progress.
type Stats struct {
	WorkoutsReceived int
	WorkoutsInserted int
	WorkoutsUpdated  int
	DaysReceived     int
	PlanID           string
}

// Importer writes catalogs into the store.
type Importer struct {
	db     Store
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(db Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, log: log, dryRun: dryRun}
}

// ImportFile reads the catalog at path and imports it for the user with the
// given login. The outcome is recorded in import_logs unless dry-running.
func (imp *Importer) ImportFile(ctx context.Context, path, login string) (*Stats, error) {
	start := time.Now()

	userID, err := imp.db.GetOrCreateUser(ctx, login, login)
	if err != nil {
		return &imp.stats, fmt.Errorf("resolving user %q: %w", login, err)
	}

	err = imp.importFile(ctx, path, userID)
	if imp.dryRun {
		return &imp.stats, err
	}

	entry := storage.ImportLog{
		UserID:           userID,
		Source:           filepath.Base(path),
		Status:           "success",
		WorkoutsReceived: imp.stats.WorkoutsReceived,
		WorkoutsInserted: imp.stats.WorkoutsInserted,
		DaysReceived:     imp.stats.DaysReceived,
	}
	ms := int(time.Since(start).Milliseconds())
	entry.DurationMs = &ms
	if err != nil {
		msg := err.Error()
		entry.Status = "error"
		entry.ErrorMessage = &msg
	}
	if _, logErr := imp.db.InsertImportLog(ctx, entry); logErr != nil {
		imp.log.Warn("failed to record import", "error", logErr)
	}
	return &imp.stats, err
}

func (imp *Importer) importFile(ctx context.Context, path string, userID int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	cat, err := ParseCatalog(f)
	if err != nil {
		return err
	}
	return imp.Import(ctx, cat, userID)
}

// Import writes the workouts of cat and, if present, creates its plan as the
// user's active plan.
func (imp *Importer) Import(ctx context.Context, cat *Catalog, userID int) error {
	imp.stats.WorkoutsReceived += len(cat.Workouts)

	ids := make(map[string]string, len(cat.Workouts))
	for _, w := range cat.Workouts {
		detail := w.detail()
		ids[w.Key] = detail.ID

		if imp.dryRun {
			imp.stats.WorkoutsInserted++
			continue
		}
		inserted, err := imp.db.UpsertWorkout(ctx, detail)
		if err != nil {
			return fmt.Errorf("storing workout %q: %w", w.Key, err)
		}
		if inserted {
			imp.stats.WorkoutsInserted++
		} else {
			imp.stats.WorkoutsUpdated++
		}
	}
	imp.log.Info("workouts imported",
		"received", len(cat.Workouts),
		"inserted", imp.stats.WorkoutsInserted,
		"updated", imp.stats.WorkoutsUpdated,
	)

	if cat.Plan == nil {
		return nil
	}

	days := planDays(cat.Plan, ids)
	imp.stats.DaysReceived += len(days)
	if imp.dryRun {
		return nil
	}

	planID, err := imp.db.CreatePlan(ctx, userID, cat.Plan.Type, cat.Plan.CurrentDay, days)
	if err != nil {
		return fmt.Errorf("creating plan: %w", err)
	}
	imp.stats.PlanID = planID.String()
	imp.log.Info("plan created", "plan_id", imp.stats.PlanID, "user_id", userID, "days", len(days))
	return nil
}

func planDays(p *CatalogPlan, ids map[string]string) []storage.NewPlanDay {
	days := make([]storage.NewPlanDay, 0, len(p.Days))
	for _, d := range p.Days {
		nd := storage.NewPlanDay{Day: d.Day, Status: models.StatusNotPassed}
		if d.DayOff {
			nd.Status = models.StatusDayOff
		} else {
			nd.WorkoutID = ids[d.Workout]
			nd.AltWorkoutID = ids[d.Alternate]
		}
		days = append(days, nd)
	}
	return days
}
