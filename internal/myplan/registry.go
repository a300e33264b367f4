package myplan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meltforce/myplan/internal/models"
)

// ProfileLoader looks up who a user is.
type ProfileLoader interface {
	GetProfile(ctx context.Context, userID int) (models.Profile, error)
}

// Entry pairs a user's Session with the Screen it renders into.
type Entry struct {
	Session *Session
	Screen  *Screen
}

// Registry keeps one Session per user for the lifetime of the process.
type Registry struct {
	api      Backend
	profiles ProfileLoader
	log      *slog.Logger
	opts     Options

	mu      sync.Mutex
	entries map[int]*Entry
}

// NewRegistry creates an empty Registry.
func NewRegistry(api Backend, profiles ProfileLoader, log *slog.Logger, opts Options) *Registry {
	return &Registry{
		api:      api,
		profiles: profiles,
		log:      log,
		opts:     opts,
		entries:  make(map[int]*Entry),
	}
}

// Get returns the user's entry, creating and loading it on first use.
func (r *Registry) Get(ctx context.Context, userID int) (*Entry, error) {
	r.mu.Lock()
	e, ok := r.entries[userID]
	r.mu.Unlock()
	if ok {
		return e, nil
	}

	profile, err := r.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile for user %d: %w", userID, err)
	}

	r.mu.Lock()
	if existing, ok := r.entries[userID]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	screen := &Screen{}
	e = &Entry{
		Session: NewSession(r.api, screen, profile, r.log, r.opts),
		Screen:  screen,
	}
	r.entries[userID] = e
	r.mu.Unlock()

	if err := e.Session.Reload(ctx); err != nil {
		r.log.Warn("initial plan load failed", "user_id", userID, "error", err)
	}
	return e, nil
}

// Forget drops the user's session so the next Get starts over with a freshly
// loaded profile.
func (r *Registry) Forget(userID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
}
