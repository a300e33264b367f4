package myplan

import "github.com/meltforce/myplan/internal/models"

// Selector tracks which day is selected versus current, the chosen workout
// variant and the per-day transient flags.
type Selector struct {
	sel models.Selection

	// justCompleted is the workout that was just finished on the selected day.
	// While set and matching, the day renders the celebration instead of the
	// summary.
	justCompleted string
	// ratePromptShown suppresses the rating prompt for the selected day.
	ratePromptShown bool
}

// Selection returns the current selection state.
func (s *Selector) Selection() models.Selection {
	return s.sel
}

// Select moves the selection to day if the plan contains it, otherwise to the
// current day. Both transient flags are reset. Returns the effective day.
func (s *Selector) Select(plan *models.Plan, day int) int {
	if _, ok := plan.FindDay(day); ok {
		s.sel.SelectedDay = day
	} else {
		s.sel.SelectedDay = s.sel.CurrentDay
	}
	s.justCompleted = ""
	s.ratePromptShown = false
	return s.sel.SelectedDay
}

// Adopt applies a freshly fetched plan. The selection falls back to the plan's
// current day when nothing was selected, the plan changed, or the selected
// day is no longer part of the week.
func (s *Selector) Adopt(plan *models.Plan, planChanged bool) {
	s.sel.CurrentDay = plan.CurrentDay
	if _, ok := plan.FindDay(s.sel.SelectedDay); s.sel.SelectedDay == 0 || planChanged || !ok {
		s.sel.SelectedDay = s.sel.CurrentDay
	}
}

// ConfirmDateChange makes the selected day the current one. Call only after
// the backend acknowledged the change.
func (s *Selector) ConfirmDateChange() {
	s.sel.CurrentDay = s.sel.SelectedDay
}

// SetVariant chooses the primary or alternate workout.
func (s *Selector) SetVariant(v models.Variant) {
	s.sel.Variant = v
}

// MarkCompleted records the workout that was just finished.
func (s *Selector) MarkCompleted(workoutID string) {
	s.justCompleted = workoutID
}

// JustCompleted returns the workout id set by MarkCompleted, if any.
func (s *Selector) JustCompleted() string {
	return s.justCompleted
}

// ExpireCelebration ends the celebration state once its timer fired.
func (s *Selector) ExpireCelebration() {
	s.justCompleted = ""
	s.ratePromptShown = true
}

// RatePromptPending reports whether the rating prompt may still be shown for
// the selected day.
func (s *Selector) RatePromptPending() bool {
	return !s.ratePromptShown
}
