// Package profile keeps the terminal client's local state: who the user is on
// each server and which day and variant they were looking at.
package profile

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meltforce/myplan/internal/models"
	_ "modernc.org/sqlite"
)

// Store is a small SQLite database under the user's config directory.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the state database at dir/state.db.
func OpenStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS profiles (
		server         TEXT PRIMARY KEY,
		user_id        INTEGER NOT NULL,
		name           TEXT NOT NULL,
		quiz_completed INTEGER NOT NULL DEFAULT 0,
		updated_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS selections (
		server       TEXT PRIMARY KEY,
		plan_id      TEXT NOT NULL,
		selected_day INTEGER NOT NULL,
		variant      TEXT NOT NULL DEFAULT 'primary',
		updated_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the state database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveProfile remembers the profile the server reported for this user.
func (s *Store) SaveProfile(server string, p models.Profile) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO profiles (server, user_id, name, quiz_completed) VALUES (?, ?, ?, ?)`,
		server, p.UserID, p.Name, p.QuizCompleted,
	)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// LoadProfile returns the remembered profile. ok is false if none was saved.
func (s *Store) LoadProfile(server string) (p models.Profile, ok bool, err error) {
	err = s.db.QueryRow(
		`SELECT user_id, name, quiz_completed FROM profiles WHERE server = ?`, server,
	).Scan(&p.UserID, &p.Name, &p.QuizCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, fmt.Errorf("loading profile: %w", err)
	}
	return p, true, nil
}

// LastView is the day and variant the user was looking at.
type LastView struct {
	PlanID  string
	Day     int
	Variant models.Variant
}

// SaveLastView records what the user was looking at when the client exited.
func (s *Store) SaveLastView(server string, v LastView) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO selections (server, plan_id, selected_day, variant) VALUES (?, ?, ?, ?)`,
		server, v.PlanID, v.Day, v.Variant.String(),
	)
	if err != nil {
		return fmt.Errorf("saving last view: %w", err)
	}
	return nil
}

// LoadLastView returns the last view for the server, if any.
func (s *Store) LoadLastView(server string) (LastView, bool, error) {
	var v LastView
	var variant string
	err := s.db.QueryRow(
		`SELECT plan_id, selected_day, variant FROM selections WHERE server = ?`, server,
	).Scan(&v.PlanID, &v.Day, &variant)
	if errors.Is(err, sql.ErrNoRows) {
		return LastView{}, false, nil
	}
	if err != nil {
		return LastView{}, false, fmt.Errorf("loading last view: %w", err)
	}
	if err := v.Variant.UnmarshalText([]byte(variant)); err != nil {
		return LastView{}, false, err
	}
	return v, true, nil
}
