package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/myplan/internal/models"
)

// Difficulty bounds of a plan.
const (
	MinDifficulty = -2
	MaxDifficulty = 2
)

// NewPlanDay is one day of a plan being created.
type NewPlanDay struct {
	Day          int
	Status       models.DayStatus
	WorkoutID    string
	AltWorkoutID string
}

// CreatePlan stores a new plan for the user and makes it the active one.
// Earlier plans stay in place for the progress history.
func (db *DB) CreatePlan(ctx context.Context, userID int, planType models.PlanType, currentDay int, days []NewPlanDay) (uuid.UUID, error) {
	planID := uuid.New()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `UPDATE plans SET active = FALSE WHERE user_id = $1 AND active`, userID); err != nil {
		return uuid.Nil, fmt.Errorf("deactivating previous plans: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO plans (id, user_id, plan_type, current_day, active) VALUES ($1,$2,$3,$4,TRUE)`,
		planID, userID, string(planType), currentDay); err != nil {
		return uuid.Nil, fmt.Errorf("inserting plan: %w", err)
	}

	for _, d := range days {
		status := d.Status
		if status == "" {
			status = models.StatusNotPassed
		}
		workoutID, err := optionalUUID(d.WorkoutID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("day %d: %w", d.Day, err)
		}
		altID, err := optionalUUID(d.AltWorkoutID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("day %d: %w", d.Day, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO plan_days (plan_id, day, status, workout_id, alt_workout_id) VALUES ($1,$2,$3,$4,$5)`,
			planID, d.Day, string(status), workoutID, altID); err != nil {
			return uuid.Nil, fmt.Errorf("inserting plan day %d: %w", d.Day, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing plan: %w", err)
	}
	return planID, nil
}

// GetPlan returns the user's active plan with its week.
func (db *DB) GetPlan(ctx context.Context, userID int) (*models.Plan, error) {
	planID, currentDay, err := db.activePlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT day, status, workout_id, alt_workout_id, completed_date
		 FROM plan_days
		 WHERE plan_id = $1
		 ORDER BY day ASC`,
		planID)
	if err != nil {
		return nil, fmt.Errorf("querying plan days: %w", err)
	}
	defer rows.Close()

	plan := &models.Plan{PlanID: planID.String(), CurrentDay: currentDay, Week: []models.Day{}}
	for rows.Next() {
		var d models.Day
		var status string
		var workoutID, altID *uuid.UUID
		var completed *time.Time
		if err := rows.Scan(&d.Day, &status, &workoutID, &altID, &completed); err != nil {
			return nil, fmt.Errorf("scanning plan day: %w", err)
		}
		d.Status = models.DayStatus(status)
		d.CurrentDay = d.Day == currentDay
		if workoutID != nil {
			d.WorkoutID = workoutID.String()
		}
		if altID != nil {
			d.AltWorkoutID = altID.String()
		}
		if completed != nil {
			d.CompletedDate = completed.Format(time.DateOnly)
		}
		plan.Week = append(plan.Week, d)
	}
	return plan, rows.Err()
}

// GetPlanType returns the type of any plan by id.
func (db *DB) GetPlanType(ctx context.Context, planID string) (models.PlanType, error) {
	id, err := uuid.Parse(planID)
	if err != nil {
		return "", fmt.Errorf("parsing plan id %q: %w", planID, ErrNotFound)
	}
	var planType string
	err = db.Pool.QueryRow(ctx, `SELECT plan_type FROM plans WHERE id = $1`, id).Scan(&planType)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("querying plan type: %w", err)
	}
	return models.PlanType(planType), nil
}

// ChangeDate moves the current day of the user's active plan. The day must be
// part of the plan.
func (db *DB) ChangeDate(ctx context.Context, userID, day int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE plans SET current_day = $2
		 WHERE user_id = $1 AND active
		   AND EXISTS (SELECT 1 FROM plan_days WHERE plan_id = plans.id AND day = $2)`,
		userID, day)
	if err != nil {
		return fmt.Errorf("changing current day: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("day %d of active plan: %w", day, ErrNotFound)
	}
	return nil
}

// ChangeDifficulty applies INCREASE or DECREASE to the active plan's
// difficulty, clamped to [MinDifficulty, MaxDifficulty].
func (db *DB) ChangeDifficulty(ctx context.Context, userID int, action models.RateAction) error {
	var delta int
	switch action {
	case models.RateActionIncrease:
		delta = 1
	case models.RateActionDecrease:
		delta = -1
	default:
		return fmt.Errorf("unsupported difficulty action %q", action)
	}

	tag, err := db.Pool.Exec(ctx,
		`UPDATE plans SET difficulty = LEAST(GREATEST(difficulty + $2, $3), $4)
		 WHERE user_id = $1 AND active`,
		userID, delta, MinDifficulty, MaxDifficulty)
	if err != nil {
		return fmt.Errorf("changing difficulty: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("active plan: %w", ErrNotFound)
	}
	return nil
}

func (db *DB) activePlan(ctx context.Context, userID int) (uuid.UUID, int, error) {
	var id uuid.UUID
	var currentDay int
	err := db.Pool.QueryRow(ctx,
		`SELECT id, current_day FROM plans
		 WHERE user_id = $1 AND active
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID).Scan(&id, &currentDay)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, 0, fmt.Errorf("active plan of user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("querying active plan: %w", err)
	}
	return id, currentDay, nil
}

func optionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parsing workout id %q: %w", s, err)
	}
	return &id, nil
}
