package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/meltforce/myplan/internal/models"
	"github.com/meltforce/myplan/internal/storage"
)

const testCatalog = `
workouts:
  - key: full-body
    title: Full Body
    video_link: https://v/full-body.m3u8
    video_thumbnail: https://i/full-body.jpg
    video_duration_sec: 1500
    equipment: [mat, dumbbells]
    calories: 320
  - key: low-impact
    id: 1b4e28ba-2fa1-11d2-883f-0016d3cca427
    title: Low Impact
    video_link: https://v/low-impact.m3u8
    video_duration_sec: 1200
plan:
  current_day: 2
  days:
    - day: 1
      workout: full-body
    - day: 2
      workout: full-body
      alternate: low-impact
    - day: 3
      day_off: true
`

type fakeStore struct {
	existing  map[string]bool
	upserted  []models.WorkoutDetail
	plans     [][]storage.NewPlanDay
	planType  models.PlanType
	current   int
	logs      []storage.ImportLog
	upsertErr error
}

func (f *fakeStore) GetOrCreateUser(context.Context, string, string) (int, error) { return 7, nil }

func (f *fakeStore) UpsertWorkout(_ context.Context, w models.WorkoutDetail) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	f.upserted = append(f.upserted, w)
	return !f.existing[w.ID], nil
}

func (f *fakeStore) CreatePlan(_ context.Context, _ int, pt models.PlanType, current int, days []storage.NewPlanDay) (uuid.UUID, error) {
	f.plans = append(f.plans, days)
	f.planType, f.current = pt, current
	return uuid.MustParse("00000000-0000-0000-0000-000000000001"), nil
}

func (f *fakeStore) InsertImportLog(_ context.Context, l storage.ImportLog) (int64, error) {
	f.logs = append(f.logs, l)
	return int64(len(f.logs)), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseCatalog(t *testing.T) {
	cat, err := ParseCatalog(strings.NewReader(testCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if len(cat.Workouts) != 2 || cat.Plan == nil {
		t.Fatalf("catalog = %+v", cat)
	}
	if cat.Plan.Type != models.PlanTypeMyPlan {
		t.Errorf("plan type = %q, want default MY_PLAN", cat.Plan.Type)
	}
	if got := cat.Workouts[1].workoutID(); got != "1b4e28ba-2fa1-11d2-883f-0016d3cca427" {
		t.Errorf("explicit id = %q", got)
	}
}

func TestWorkoutIDStable(t *testing.T) {
	w := CatalogWorkout{Key: "full-body"}
	if w.workoutID() != w.workoutID() {
		t.Error("derived id changes between calls")
	}
	if w.workoutID() == (CatalogWorkout{Key: "core"}).workoutID() {
		t.Error("different keys share an id")
	}
	if _, err := uuid.Parse(w.workoutID()); err != nil {
		t.Errorf("derived id is not a UUID: %v", err)
	}
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "empty"},
		{"no workouts", "workouts: []", "no workouts"},
		{"unknown field", "workouts:\n  - key: a\n    title: A\n    video_link: x\n    colour: red", "colour"},
		{"missing key", "workouts:\n  - title: A\n    video_link: x", "key is required"},
		{"duplicate key", "workouts:\n  - {key: a, title: A, video_link: x}\n  - {key: a, title: B, video_link: y}", "duplicate"},
		{"missing title", "workouts:\n  - {key: a, video_link: x}", "title"},
		{"bad id", "workouts:\n  - {key: a, id: nope, title: A, video_link: x}", "invalid id"},
		{"unknown plan type", "workouts:\n  - {key: a, title: A, video_link: x}\nplan:\n  type: WEEKLY\n  days: [{day: 1, workout: a}]", "unknown type"},
		{"unknown workout", "workouts:\n  - {key: a, title: A, video_link: x}\nplan:\n  days: [{day: 1, workout: b}]", "unknown workout"},
		{"duplicate day", "workouts:\n  - {key: a, title: A, video_link: x}\nplan:\n  days: [{day: 1, workout: a}, {day: 1, workout: a}]", "twice"},
		{"day off with workout", "workouts:\n  - {key: a, title: A, video_link: x}\nplan:\n  days: [{day: 1, day_off: true, workout: a}]", "day off"},
		{"current day missing", "workouts:\n  - {key: a, title: A, video_link: x}\nplan:\n  current_day: 4\n  days: [{day: 1, workout: a}]", "current_day"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestImport(t *testing.T) {
	cat, err := ParseCatalog(strings.NewReader(testCatalog))
	if err != nil {
		t.Fatal(err)
	}
	lowImpact := "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	store := &fakeStore{existing: map[string]bool{lowImpact: true}}

	imp := New(store, testLogger(), false)
	if err := imp.Import(context.Background(), cat, 7); err != nil {
		t.Fatal(err)
	}

	fullBody := cat.Workouts[0].workoutID()
	want := []storage.NewPlanDay{
		{Day: 1, Status: models.StatusNotPassed, WorkoutID: fullBody},
		{Day: 2, Status: models.StatusNotPassed, WorkoutID: fullBody, AltWorkoutID: lowImpact},
		{Day: 3, Status: models.StatusDayOff},
	}
	if len(store.plans) != 1 {
		t.Fatalf("plans created = %d, want 1", len(store.plans))
	}
	if diff := cmp.Diff(want, store.plans[0]); diff != "" {
		t.Errorf("plan days mismatch (-want +got):\n%s", diff)
	}
	if store.current != 2 {
		t.Errorf("current day = %d, want 2", store.current)
	}

	wantStats := Stats{
		WorkoutsReceived: 2,
		WorkoutsInserted: 1,
		WorkoutsUpdated:  1,
		DaysReceived:     3,
		PlanID:           "00000000-0000-0000-0000-000000000001",
	}
	if diff := cmp.Diff(wantStats, imp.stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestImportDryRun(t *testing.T) {
	cat, _ := ParseCatalog(strings.NewReader(testCatalog))
	store := &fakeStore{}

	imp := New(store, testLogger(), true)
	if err := imp.Import(context.Background(), cat, 7); err != nil {
		t.Fatal(err)
	}
	if len(store.upserted) != 0 || len(store.plans) != 0 {
		t.Errorf("dry run wrote data: %d workouts, %d plans", len(store.upserted), len(store.plans))
	}
	if imp.stats.WorkoutsInserted != 2 || imp.stats.DaysReceived != 3 {
		t.Errorf("stats = %+v", imp.stats)
	}
}

func TestImportFileRecordsLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	store := &fakeStore{}

	if _, err := New(store, testLogger(), false).ImportFile(context.Background(), path, "ada"); err != nil {
		t.Fatal(err)
	}
	if len(store.logs) != 1 {
		t.Fatalf("import logs = %d, want 1", len(store.logs))
	}
	l := store.logs[0]
	if l.Status != "success" || l.Source != "catalog.yaml" || l.UserID != 7 || l.WorkoutsInserted != 2 || l.DaysReceived != 3 {
		t.Errorf("log = %+v", l)
	}
}

func TestImportFileRecordsFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	os.WriteFile(path, []byte(testCatalog), 0o644)
	store := &fakeStore{upsertErr: errors.New("db down")}

	_, err := New(store, testLogger(), false).ImportFile(context.Background(), path, "ada")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.logs) != 1 || store.logs[0].Status != "error" || store.logs[0].ErrorMessage == nil {
		t.Errorf("logs = %+v", store.logs)
	}
}
