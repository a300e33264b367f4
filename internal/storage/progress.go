package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meltforce/myplan/internal/models"
)

// Rating bounds accepted by RateWorkout.
const (
	MinRating = 1
	MaxRating = 5
)

// RateActionFor returns the suggestion shown after a workout was rated:
// the easiest rating suggests a harder plan, the hardest an easier one.
func RateActionFor(rating int) models.RateAction {
	switch {
	case rating <= MinRating:
		return models.RateActionShowIncrease
	case rating >= MaxRating:
		return models.RateActionShowDecrease
	default:
		return models.RateActionNone
	}
}

// GetProgress returns the progress of all the user's plans, active plan first.
func (db *DB) GetProgress(ctx context.Context, userID int) ([]models.ProgressRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT p.id, pr.day, pr.workout_id, pr.status, pr.percent, pr.rating, pr.viewed_sec
		 FROM plans p
		 JOIN progress pr ON pr.plan_id = p.id
		 WHERE p.user_id = $1
		 ORDER BY p.active DESC, p.created_at DESC, pr.day ASC, pr.updated_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying progress: %w", err)
	}
	defer rows.Close()

	var records []models.ProgressRecord
	for rows.Next() {
		var planID, workoutID uuid.UUID
		var e models.ProgressEntry
		var status string
		if err := rows.Scan(&planID, &e.Day, &workoutID, &status, &e.Percent, &e.Rating, &e.ViewedSec); err != nil {
			return nil, fmt.Errorf("scanning progress: %w", err)
		}
		e.WorkoutID = workoutID.String()
		e.Status = models.DayStatus(status)

		pid := planID.String()
		if n := len(records); n == 0 || records[n-1].PlanID != pid {
			records = append(records, models.ProgressRecord{PlanID: pid})
		}
		last := &records[len(records)-1]
		last.Entries = append(last.Entries, e)
	}
	return records, rows.Err()
}

// SaveProgress records req.Time complete plays of a workout on a day of the
// active plan. The entry and the day become PASSED.
func (db *DB) SaveProgress(ctx context.Context, userID int, req models.SaveProgressRequest) error {
	workoutID, err := uuid.Parse(req.WorkoutID)
	if err != nil {
		return fmt.Errorf("parsing workout id %q: %w", req.WorkoutID, err)
	}
	if req.Time < 1 {
		req.Time = 1
	}
	planID, _, err := db.activePlan(ctx, userID)
	if err != nil {
		return err
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`UPDATE plan_days SET status = $3, completed_date = COALESCE(completed_date, CURRENT_DATE)
		 WHERE plan_id = $1 AND day = $2`,
		planID, req.Day, string(models.StatusPassed))
	if err != nil {
		return fmt.Errorf("updating day %d: %w", req.Day, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("day %d of active plan: %w", req.Day, ErrNotFound)
	}

	if err := upsertDayProgress(ctx, tx, planID, req.Day, workoutID, req.Time); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing progress: %w", err)
	}
	return nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// upsertDayProgress writes the passed entry for one of the day's two
// workouts. Any other workout, or one missing from the catalog, is
// ErrNotFound.
func upsertDayProgress(ctx context.Context, q execer, planID uuid.UUID, day int, workoutID uuid.UUID, plays int) error {
	tag, err := q.Exec(ctx,
		`INSERT INTO progress (plan_id, day, workout_id, status, percent, viewed_sec)
		 SELECT pd.plan_id, pd.day, w.id, $4, 100, w.video_duration_sec * $5
		 FROM plan_days pd
		 JOIN workouts w ON w.id IN (pd.workout_id, pd.alt_workout_id)
		 WHERE pd.plan_id = $1 AND pd.day = $2 AND w.id = $3
		 ON CONFLICT (plan_id, day, workout_id) DO UPDATE SET
			status = EXCLUDED.status, percent = 100,
			viewed_sec = progress.viewed_sec + EXCLUDED.viewed_sec,
			updated_at = NOW()`,
		planID, day, workoutID, string(models.StatusPassed), plays)
	if err != nil {
		return fmt.Errorf("saving progress for day %d: %w", day, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("workout %s on day %d: %w", workoutID, day, ErrNotFound)
	}
	return nil
}

// RateWorkout stores the user's rating of a workout on a day of the active
// plan and returns the suggested difficulty action.
func (db *DB) RateWorkout(ctx context.Context, userID int, req models.RateRequest) (models.RateAction, error) {
	if req.Rating < MinRating || req.Rating > MaxRating {
		return "", fmt.Errorf("rating %d out of range %d-%d", req.Rating, MinRating, MaxRating)
	}
	workoutID, err := uuid.Parse(req.WorkoutID)
	if err != nil {
		return "", fmt.Errorf("parsing workout id %q: %w", req.WorkoutID, err)
	}
	planID, _, err := db.activePlan(ctx, userID)
	if err != nil {
		return "", err
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO progress (plan_id, day, workout_id, status, rating)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (plan_id, day, workout_id) DO UPDATE SET
			rating = EXCLUDED.rating, updated_at = NOW()`,
		planID, req.Day, workoutID, string(models.StatusNotPassed), req.Rating)
	if err != nil {
		return "", fmt.Errorf("rating workout %s: %w", workoutID, err)
	}
	return RateActionFor(req.Rating), nil
}
