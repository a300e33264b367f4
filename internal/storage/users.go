package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/myplan/internal/models"
)

// GetOrCreateUser finds or creates a user by Tailscale login name.
// Returns the user ID. Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	return id, err
}

// GetProfile returns the name and onboarding state of a user.
func (db *DB) GetProfile(ctx context.Context, userID int) (models.Profile, error) {
	p := models.Profile{UserID: userID}
	err := db.Pool.QueryRow(ctx,
		`SELECT display_name, quiz_completed FROM users WHERE id = $1`,
		userID).Scan(&p.Name, &p.QuizCompleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Profile{}, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// SetQuizCompleted records that the user finished onboarding.
func (db *DB) SetQuizCompleted(ctx context.Context, userID int, done bool) error {
	if _, err := db.Pool.Exec(ctx, `UPDATE users SET quiz_completed = $2 WHERE id = $1`, userID, done); err != nil {
		return fmt.Errorf("updating quiz state: %w", err)
	}
	return nil
}
