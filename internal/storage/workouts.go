package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/myplan/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// UpsertWorkout inserts or replaces a catalog workout. Returns true if the
// workout was new.
func (db *DB) UpsertWorkout(ctx context.Context, w models.WorkoutDetail) (bool, error) {
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return false, fmt.Errorf("parsing workout id %q: %w", w.ID, err)
	}
	equipment := w.Equipment
	if equipment == nil {
		equipment = []string{}
	}

	var inserted bool
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO workouts (id, title, video_link, video_thumbnail, video_duration_sec, equipment, calories)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, video_link = EXCLUDED.video_link,
			video_thumbnail = EXCLUDED.video_thumbnail, video_duration_sec = EXCLUDED.video_duration_sec,
			equipment = EXCLUDED.equipment, calories = EXCLUDED.calories
		 RETURNING (xmax = 0)`,
		id, w.Title, w.VideoLink, w.VideoThumbnail, w.VideoDuration, equipment, w.Calories,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upserting workout %s: %w", id, err)
	}
	return inserted, nil
}

// GetWorkout retrieves a single catalog workout.
func (db *DB) GetWorkout(ctx context.Context, workoutID string) (*models.WorkoutDetail, error) {
	id, err := uuid.Parse(workoutID)
	if err != nil {
		return nil, fmt.Errorf("parsing workout id %q: %w", workoutID, ErrNotFound)
	}

	var w models.WorkoutDetail
	var wid uuid.UUID
	err = db.Pool.QueryRow(ctx,
		`SELECT id, title, video_link, video_thumbnail, video_duration_sec, equipment, calories
		 FROM workouts
		 WHERE id = $1`,
		id,
	).Scan(&wid, &w.Title, &w.VideoLink, &w.VideoThumbnail, &w.VideoDuration, &w.Equipment, &w.Calories)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	w.ID = wid.String()
	return &w, nil
}

// ListWorkouts returns the whole catalog ordered by title.
func (db *DB) ListWorkouts(ctx context.Context) ([]models.WorkoutDetail, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, title, video_link, video_thumbnail, video_duration_sec, equipment, calories
		 FROM workouts
		 ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutDetail
	for rows.Next() {
		var w models.WorkoutDetail
		var id uuid.UUID
		if err := rows.Scan(&id, &w.Title, &w.VideoLink, &w.VideoThumbnail, &w.VideoDuration, &w.Equipment, &w.Calories); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		w.ID = id.String()
		result = append(result, w)
	}
	return result, rows.Err()
}
