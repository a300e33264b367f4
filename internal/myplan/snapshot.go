package myplan

import (
	"sync/atomic"

	"github.com/meltforce/myplan/internal/models"
)

// Snapshot is everything one plan session knows about the user's plan.
// It is never modified after being stored; a reload stores a new one.
type Snapshot struct {
	Plan     *models.Plan
	Progress []models.ProgressRecord
}

// Loaded reports whether a plan has been fetched.
func (s *Snapshot) Loaded() bool {
	return s != nil && s.Plan != nil
}

// SnapshotStore holds the current Snapshot and swaps it as a whole, so readers
// never observe a half-updated plan.
type SnapshotStore struct {
	cur atomic.Pointer[Snapshot]
}

var emptySnapshot = &Snapshot{}

// Load returns the current snapshot. It never returns nil.
func (s *SnapshotStore) Load() *Snapshot {
	if snap := s.cur.Load(); snap != nil {
		return snap
	}
	return emptySnapshot
}

// Swap stores next and returns the previous snapshot.
func (s *SnapshotStore) Swap(next *Snapshot) *Snapshot {
	prev := s.cur.Swap(next)
	if prev == nil {
		return emptySnapshot
	}
	return prev
}
