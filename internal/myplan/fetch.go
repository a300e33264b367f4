package myplan

import (
	"context"
	"log/slog"

	"github.com/meltforce/myplan/internal/models"
	"golang.org/x/sync/errgroup"
)

// WorkoutGetter fetches a single workout.
type WorkoutGetter interface {
	GetWorkout(ctx context.Context, id string) (*models.WorkoutDetail, error)
}

// WorkoutPair is the joined result of fetching a day's two workouts.
// A nil slot means the fetch failed or the day has no such workout.
type WorkoutPair struct {
	Primary   *models.WorkoutDetail
	Alternate *models.WorkoutDetail
}

// FetchPair fetches the primary and alternate workouts concurrently and
// returns once both calls finished. Failures are logged and leave the slot nil.
func FetchPair(ctx context.Context, api WorkoutGetter, primaryID, altID string, log *slog.Logger) WorkoutPair {
	var pair WorkoutPair
	var g errgroup.Group

	g.Go(func() error {
		pair.Primary = fetchWorkout(ctx, api, primaryID, log)
		return nil
	})
	g.Go(func() error {
		pair.Alternate = fetchWorkout(ctx, api, altID, log)
		return nil
	})

	_ = g.Wait()
	return pair
}

func fetchWorkout(ctx context.Context, api WorkoutGetter, id string, log *slog.Logger) *models.WorkoutDetail {
	if id == "" {
		return nil
	}
	w, err := api.GetWorkout(ctx, id)
	if err != nil {
		log.Warn("workout fetch failed", "workout_id", id, "error", err)
		return nil
	}
	return w
}
