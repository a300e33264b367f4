package models

import (
	"encoding/json"
	"testing"
)

// TestDayStatusValid verifies the wire values and that anything else is
// treated as unknown.
func TestDayStatusValid(t *testing.T) {
	for _, s := range []DayStatus{StatusNotPassed, StatusPassed, StatusSkipped, StatusDayOff} {
		if !s.Valid() {
			t.Errorf("%q.Valid() = false", s)
		}
	}
	for _, s := range []DayStatus{"", "DAY_OFF", "passed"} {
		if s.Valid() {
			t.Errorf("%q.Valid() = true", s)
		}
	}
}

// TestPlanFindDay verifies lookup by day number, including on a nil plan.
func TestPlanFindDay(t *testing.T) {
	p := &Plan{Week: []Day{{Day: 1, WorkoutID: "a"}, {Day: 3, WorkoutID: "c"}}}
	if d, ok := p.FindDay(3); !ok || d.WorkoutID != "c" {
		t.Errorf("FindDay(3) = %+v, %v", d, ok)
	}
	if _, ok := p.FindDay(2); ok {
		t.Error("FindDay(2) found a day that is not in the week")
	}
	var nilPlan *Plan
	if _, ok := nilPlan.FindDay(1); ok {
		t.Error("FindDay on nil plan reported ok")
	}
}

// TestSelectionJSON verifies the variant is written by name.
func TestSelectionJSON(t *testing.T) {
	b, err := json.Marshal(Selection{SelectedDay: 2, CurrentDay: 3, Variant: VariantAlternate})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"selected_day":2,"current_day":3,"variant":"alternate"}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}

	var sel Selection
	if err := json.Unmarshal([]byte(`{"variant":"sideways"}`), &sel); err == nil {
		t.Error("unknown variant decoded without error")
	}
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in     string
		want   Variant
		wantOK bool
	}{
		{"", VariantPrimary, true},
		{"primary", VariantPrimary, true},
		{"alt", VariantAlternate, true},
		{"alternate", VariantAlternate, true},
		{"ALT", VariantPrimary, false},
	}
	for _, tt := range tests {
		got, ok := ParseVariant(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseVariant(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
