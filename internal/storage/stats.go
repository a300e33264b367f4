package storage

import (
	"context"
	"fmt"
	"time"
)

// PlanStats holds aggregate statistics about a user's training history.
type PlanStats struct {
	TotalWorkouts   int64         `json:"total_workouts"`
	Plans           int64         `json:"plans"`
	CompletedDays   int64         `json:"completed_days"`
	TotalViewedSec  int64         `json:"total_viewed_sec"`
	RatedWorkouts   int64         `json:"rated_workouts"`
	AverageRating   *float64      `json:"average_rating"`
	FirstCompletion *time.Time    `json:"first_completion"`
	LastCompletion  *time.Time    `json:"last_completion"`
	ByWorkout       []WorkoutStat `json:"by_workout"`
}

// WorkoutStat holds summary stats for a single workout.
type WorkoutStat struct {
	WorkoutID string `json:"workout_id"`
	Title     string `json:"title"`
	Count     int64  `json:"count"`
	ViewedSec int64  `json:"viewed_sec"`
}

// GetPlanStats returns aggregate statistics over all of a user's plans.
func (db *DB) GetPlanStats(ctx context.Context, userID int) (*PlanStats, error) {
	stats := &PlanStats{}

	// Catalog size
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&stats.TotalWorkouts)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	// Plans and completed days
	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT p.id),
		        COUNT(d.day) FILTER (WHERE d.status = 'PASSED'),
		        MIN(d.completed_date), MAX(d.completed_date)
		 FROM plans p
		 LEFT JOIN plan_days d ON d.plan_id = p.id
		 WHERE p.user_id = $1`, userID,
	).Scan(&stats.Plans, &stats.CompletedDays, &stats.FirstCompletion, &stats.LastCompletion)
	if err != nil {
		return nil, fmt.Errorf("counting plan days: %w", err)
	}

	// Watch time and ratings
	err = db.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(pr.viewed_sec), 0), COUNT(pr.rating), AVG(pr.rating)::float8
		 FROM progress pr
		 JOIN plans p ON p.id = pr.plan_id
		 WHERE p.user_id = $1`, userID,
	).Scan(&stats.TotalViewedSec, &stats.RatedWorkouts, &stats.AverageRating)
	if err != nil {
		return nil, fmt.Errorf("summing progress: %w", err)
	}

	// Completions by workout
	rows, err := db.Pool.Query(ctx,
		`SELECT w.id::text, w.title, COUNT(*), COALESCE(SUM(pr.viewed_sec), 0)
		 FROM progress pr
		 JOIN plans p ON p.id = pr.plan_id
		 JOIN workouts w ON w.id = pr.workout_id
		 WHERE p.user_id = $1 AND pr.status = 'PASSED'
		 GROUP BY w.id, w.title
		 ORDER BY COUNT(*) DESC, w.title`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying completions by workout: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s WorkoutStat
		if err := rows.Scan(&s.WorkoutID, &s.Title, &s.Count, &s.ViewedSec); err != nil {
			return nil, fmt.Errorf("scanning workout stat: %w", err)
		}
		stats.ByWorkout = append(stats.ByWorkout, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
