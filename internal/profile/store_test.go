package profile

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/meltforce/myplan/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProfileRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, ok, err := s.LoadProfile("https://myplan.example"); err != nil || ok {
		t.Fatalf("LoadProfile on empty store = ok %v, err %v", ok, err)
	}

	want := models.Profile{UserID: 3, Name: "Ada", QuizCompleted: true}
	if err := s.SaveProfile("https://myplan.example", want); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.LoadProfile("https://myplan.example")
	if err != nil || !ok {
		t.Fatalf("LoadProfile = ok %v, err %v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}

	// Profiles are kept per server.
	if _, ok, _ := s.LoadProfile("http://localhost:8080"); ok {
		t.Error("profile leaked to another server")
	}
}

func TestSaveProfileReplaces(t *testing.T) {
	s := openTestStore(t)
	s.SaveProfile("srv", models.Profile{UserID: 1, Name: "Old"})
	s.SaveProfile("srv", models.Profile{UserID: 1, Name: "New", QuizCompleted: true})

	got, _, err := s.LoadProfile("srv")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "New" || !got.QuizCompleted {
		t.Errorf("profile = %+v, want replaced", got)
	}
}

func TestLastViewRoundTrip(t *testing.T) {
	s := openTestStore(t)

	want := LastView{PlanID: "plan-1", Day: 4, Variant: models.VariantAlternate}
	if err := s.SaveLastView("srv", want); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.LoadLastView("srv")
	if err != nil || !ok {
		t.Fatalf("LoadLastView = ok %v, err %v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("last view mismatch (-want +got):\n%s", diff)
	}
}

func TestReopenKeepsState(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	s.SaveLastView("srv", LastView{PlanID: "p", Day: 2})
	s.Close()

	s, err = OpenStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	v, ok, err := s.LoadLastView("srv")
	if err != nil || !ok || v.Day != 2 {
		t.Errorf("after reopen = %+v ok %v err %v", v, ok, err)
	}
}
