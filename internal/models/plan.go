package models

import "fmt"

// DayStatus is the progress state of a plan day as reported by the backend.
type DayStatus string

const (
	StatusNotPassed DayStatus = "NO_PASSED"
	StatusPassed    DayStatus = "PASSED"
	StatusSkipped   DayStatus = "SKIPPED"
	StatusDayOff    DayStatus = "DAY_OF"
)

// Valid reports whether s is one of the known statuses.
func (s DayStatus) Valid() bool {
	switch s {
	case StatusNotPassed, StatusPassed, StatusSkipped, StatusDayOff:
		return true
	}
	return false
}

// Day is one entry of the active week.
type Day struct {
	Day           int       `json:"day"`
	Status        DayStatus `json:"status"`
	CurrentDay    bool      `json:"current_day"`
	WorkoutID     string    `json:"workout_id,omitempty"`
	AltWorkoutID  string    `json:"alt_workout_id,omitempty"`
	CompletedDate string    `json:"completed_date,omitempty"`
}

// Plan is the backend's view of the user's active week.
type Plan struct {
	PlanID     string `json:"plan_id"`
	CurrentDay int    `json:"current_day"`
	Week       []Day  `json:"week"`
}

// FindDay returns the day with the given number.
func (p *Plan) FindDay(day int) (Day, bool) {
	if p == nil {
		return Day{}, false
	}
	for _, d := range p.Week {
		if d.Day == day {
			return d, true
		}
	}
	return Day{}, false
}

// PlanType classifies a plan.
type PlanType string

const (
	PlanTypeChallenge PlanType = "CHALLENGE"
	PlanTypeMyPlan    PlanType = "MY_PLAN"
	PlanTypeQuiz      PlanType = "quiz"
)

// WorkoutDetail is the video and equipment data of a single workout.
type WorkoutDetail struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	VideoLink      string   `json:"video_link"`
	VideoThumbnail string   `json:"video_thumbnail"`
	VideoDuration  int      `json:"video_duration_sec"`
	Equipment      []string `json:"equipment"`
	Calories       int      `json:"calories"`
}

// ProgressEntry is the recorded result of one workout on one plan day.
type ProgressEntry struct {
	Day       int       `json:"day"`
	WorkoutID string    `json:"workout_id"`
	Status    DayStatus `json:"status"`
	Percent   int       `json:"percent"`
	Rating    *int      `json:"rating,omitempty"`
	ViewedSec int       `json:"viewed_sec"`
}

// ProgressRecord holds the progress history of one plan.
type ProgressRecord struct {
	PlanID  string          `json:"plan_id"`
	Entries []ProgressEntry `json:"entries"`
}

// Variant selects between the primary and the alternate workout of a day.
type Variant int

const (
	VariantPrimary Variant = iota
	VariantAlternate
)

func (v Variant) String() string {
	if v == VariantAlternate {
		return "alternate"
	}
	return "primary"
}

// ParseVariant accepts "primary" or "alternate" ("alt" for short).
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case "primary", "":
		return VariantPrimary, true
	case "alternate", "alt":
		return VariantAlternate, true
	}
	return VariantPrimary, false
}

func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(b []byte) error {
	parsed, ok := ParseVariant(string(b))
	if !ok {
		return fmt.Errorf("unknown variant %q", b)
	}
	*v = parsed
	return nil
}

// Selection is the day/variant the user is looking at.
type Selection struct {
	SelectedDay int     `json:"selected_day"`
	CurrentDay  int     `json:"current_day"`
	Variant     Variant `json:"variant"`
}

// RateAction is the backend's suggestion after a workout was rated.
type RateAction string

const (
	RateActionNone         RateAction = "NONE"
	RateActionShowIncrease RateAction = "SHOW_INCREASE"
	RateActionShowDecrease RateAction = "SHOW_DECREASE"
	RateActionIncrease     RateAction = "INCREASE"
	RateActionDecrease     RateAction = "DECREASE"
)

// RateRequest rates a completed workout.
type RateRequest struct {
	Rating    int    `json:"user_rate"`
	WorkoutID string `json:"workout_id"`
	Day       int    `json:"day"`
}

// SaveProgressRequest records that a workout of a day was watched.
type SaveProgressRequest struct {
	Day       int    `json:"day"`
	Time      int    `json:"time"`
	WorkoutID string `json:"workout_id"`
}

// RateResponse carries the suggestion returned for a rating.
type RateResponse struct {
	Action RateAction `json:"action"`
}

// ChangeDateRequest moves the current day of the plan.
type ChangeDateRequest struct {
	Day int `json:"day"`
}

// DifficultyRequest applies INCREASE or DECREASE to the plan.
type DifficultyRequest struct {
	Action RateAction `json:"action"`
}

// PlanTypeResponse is the body of the plan type lookup.
type PlanTypeResponse struct {
	PlanType PlanType `json:"plan_type"`
}

// Profile replaces the app-wide configuration: who is looking at the plan.
type Profile struct {
	UserID        int    `json:"user_id"`
	Name          string `json:"name"`
	QuizCompleted bool   `json:"quiz_completed"`
}
