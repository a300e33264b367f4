package myplan

import (
	"testing"

	"github.com/meltforce/myplan/internal/models"
)

// TestSelectorSelect verifies that unknown days fall back to the current day
// and that selecting resets the transient flags.
func TestSelectorSelect(t *testing.T) {
	plan := testWeek()
	var s Selector
	s.Adopt(plan, true)

	if got := s.Select(plan, 3); got != 3 {
		t.Errorf("Select(3) = %d, want 3", got)
	}
	if got := s.Select(plan, 9); got != 2 {
		t.Errorf("Select(9) = %d, want current day 2", got)
	}

	s.MarkCompleted("w1")
	s.ExpireCelebration()
	if s.RatePromptPending() {
		t.Error("rate prompt still pending after celebration expired")
	}
	s.MarkCompleted("w1")
	s.Select(plan, 1)
	if s.JustCompleted() != "" {
		t.Errorf("JustCompleted = %q after Select, want empty", s.JustCompleted())
	}
	if !s.RatePromptPending() {
		t.Error("rate prompt not reset by Select")
	}
}

// TestSelectorAdopt verifies when a reloaded plan keeps the user's selection.
func TestSelectorAdopt(t *testing.T) {
	tests := []struct {
		name        string
		selected    int
		planChanged bool
		want        int
	}{
		{name: "nothing selected", selected: 0, want: 2},
		{name: "same plan keeps selection", selected: 3, want: 3},
		{name: "new plan resets selection", selected: 3, planChanged: true, want: 2},
		{name: "selected day gone", selected: 6, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Selector{sel: models.Selection{SelectedDay: tt.selected}}
			s.Adopt(testWeek(), tt.planChanged)
			sel := s.Selection()
			if sel.SelectedDay != tt.want {
				t.Errorf("selected = %d, want %d", sel.SelectedDay, tt.want)
			}
			if sel.CurrentDay != 2 {
				t.Errorf("current = %d, want 2", sel.CurrentDay)
			}
		})
	}
}

func TestSelectorConfirmDateChange(t *testing.T) {
	plan := testWeek()
	var s Selector
	s.Adopt(plan, true)
	s.Select(plan, 1)
	s.ConfirmDateChange()
	if got := s.Selection().CurrentDay; got != 1 {
		t.Errorf("current = %d, want 1", got)
	}
}
