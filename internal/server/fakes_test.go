package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/meltforce/myplan/internal/models"
	"github.com/meltforce/myplan/internal/myplan"
	"github.com/meltforce/myplan/internal/storage"
)

// fakeStore is an in-memory Store with a single three-day plan.
type fakeStore struct {
	mu sync.Mutex

	noPlan        bool
	changeDateErr error
	plan          models.Plan
	workouts      map[string]models.WorkoutDetail
	users         map[string]int
	rated         []models.RateRequest
	saved         []models.SaveProgressRequest
	quiz          map[int]bool
	pingErr       error
	logLimit      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		plan: models.Plan{PlanID: "p1", CurrentDay: 2, Week: []models.Day{
			{Day: 1, Status: models.StatusPassed, WorkoutID: "w1", AltWorkoutID: "w2", CompletedDate: "2026-10-15"},
			{Day: 2, Status: models.StatusNotPassed, CurrentDay: true, WorkoutID: "w1", AltWorkoutID: "w2"},
			{Day: 3, Status: models.StatusDayOff},
		}},
		workouts: map[string]models.WorkoutDetail{
			"w1": {ID: "w1", Title: "Full Body", VideoLink: "https://v/w1", VideoDuration: 1500, Calories: 320},
			"w2": {ID: "w2", Title: "Low Impact", VideoLink: "https://v/w2", VideoDuration: 1200, Calories: 210},
		},
		users: map[string]int{},
		quiz:  map[int]bool{},
	}
}

func (f *fakeStore) GetPlan(_ context.Context, _ int) (*models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.noPlan {
		return nil, fmt.Errorf("active plan: %w", storage.ErrNotFound)
	}
	p := f.plan
	p.Week = append([]models.Day(nil), f.plan.Week...)
	return &p, nil
}

func (f *fakeStore) GetProgress(_ context.Context, _ int) ([]models.ProgressRecord, error) {
	return nil, nil
}

func (f *fakeStore) GetWorkout(_ context.Context, id string) (*models.WorkoutDetail, error) {
	w, ok := f.workouts[id]
	if !ok {
		return nil, fmt.Errorf("workout %s: %w", id, storage.ErrNotFound)
	}
	return &w, nil
}

func (f *fakeStore) GetPlanType(_ context.Context, planID string) (models.PlanType, error) {
	if planID != f.plan.PlanID {
		return "", storage.ErrNotFound
	}
	return models.PlanTypeMyPlan, nil
}

func (f *fakeStore) ChangeDate(_ context.Context, _ int, day int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.changeDateErr != nil {
		return f.changeDateErr
	}
	f.plan.CurrentDay = day
	for i := range f.plan.Week {
		f.plan.Week[i].CurrentDay = f.plan.Week[i].Day == day
	}
	return nil
}

func (f *fakeStore) RateWorkout(_ context.Context, _ int, req models.RateRequest) (models.RateAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rated = append(f.rated, req)
	return storage.RateActionFor(req.Rating), nil
}

func (f *fakeStore) SaveProgress(_ context.Context, _ int, req models.SaveProgressRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, req)
	return nil
}

func (f *fakeStore) ChangeDifficulty(_ context.Context, _ int, _ models.RateAction) error {
	return nil
}

func (f *fakeStore) GetProfile(_ context.Context, userID int) (models.Profile, error) {
	return models.Profile{UserID: userID, Name: "Ana", QuizCompleted: true}, nil
}

func (f *fakeStore) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if login == "broken@example.com" {
		return 0, errors.New("db down")
	}
	if id, ok := f.users[login]; ok {
		return id, nil
	}
	id := len(f.users) + 10
	f.users[login] = id
	return id, nil
}

func (f *fakeStore) QueryImportLogs(_ context.Context, userID, limit int) ([]storage.ImportLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logLimit = limit
	return []storage.ImportLog{{ID: 1, UserID: userID, Source: "catalog.yaml", Status: "success"}}, nil
}

func (f *fakeStore) GetPlanStats(_ context.Context, _ int) (*storage.PlanStats, error) {
	return &storage.PlanStats{
		CompletedDays: 3,
		ByWorkout:     []storage.WorkoutStat{{WorkoutID: "w1", Title: "Full Body", Count: 2}},
	}, nil
}

func (f *fakeStore) ListWorkouts(_ context.Context) ([]models.WorkoutDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return []models.WorkoutDetail{f.workouts["w1"], f.workouts["w2"]}, nil
}

func (f *fakeStore) SetQuizCompleted(_ context.Context, userID int, done bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quiz[userID] = done
	return nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(store *fakeStore) *Server {
	log := testLogger()
	return New(store, myplan.NewRegistry(store, store, log, myplan.Options{}), "test-key", log)
}
