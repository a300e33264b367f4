package myplan

import (
	"time"

	"github.com/meltforce/myplan/internal/models"
)

// Kind tags rows and the sections built from them.
type Kind string

const (
	KindGreeting         Kind = "greeting"
	KindDayStrip         Kind = "day-strip"
	KindVideoPair        Kind = "video-pair"
	KindActionButton     Kind = "action-button"
	KindCompletedSummary Kind = "completed-summary"
	KindInfo             Kind = "info"
	KindDifficulty       Kind = "difficulty"
	KindItem             Kind = "item"
	KindImage            Kind = "image"
	KindEmptyState       Kind = "empty-state"
	KindPrompt           Kind = "prompt"
	KindCelebration      Kind = "celebration"
	KindDayNumberHeader  Kind = "day-number-header"
)

// Row is one semantic row produced by Reconcile.
type Row interface {
	Kind() Kind
}

// GreetingRow greets the user; DayOff switches to the rest-day text.
type GreetingRow struct {
	Name   string
	DayOff bool
}

// DayCell is one day of the week strip.
type DayCell struct {
	Number   int
	Selected bool
	Today    bool
	Status   models.DayStatus
}

// DayStripRow lists every day of the week.
type DayStripRow struct {
	Days []DayCell
}

// VideoPairRow shows both workouts of the day. Either may be nil.
type VideoPairRow struct {
	Primary   *models.WorkoutDetail
	Alternate *models.WorkoutDetail
}

// ActionButtonRow starts the workout of Day.
type ActionButtonRow struct {
	Day int
}

type CompletedSummaryRow struct{}

// InfoRow summarizes a completed day.
type InfoRow struct {
	ViewedSec int
	Workouts  int
	Calories  int
}

// DifficultyRow carries the user's rating of the completed workout.
type DifficultyRow struct {
	Rating *int
}

// ItemRow shows the completed workout and how much of it was done.
type ItemRow struct {
	WorkoutID string
	Title     string
	Thumbnail string
	Percent   int
}

type ImageRow struct{}

type EmptyStateRow struct{}

// PromptRow asks the user to finish the onboarding questions.
type PromptRow struct {
	Name string
}

// CelebrationRow replaces the summary right after a workout was finished.
type CelebrationRow struct {
	WorkoutID string
}

// DayNumberHeaderRow titles the celebration view.
type DayNumberHeaderRow struct {
	Day int
}

func (GreetingRow) Kind() Kind         { return KindGreeting }
func (DayStripRow) Kind() Kind         { return KindDayStrip }
func (VideoPairRow) Kind() Kind        { return KindVideoPair }
func (ActionButtonRow) Kind() Kind     { return KindActionButton }
func (CompletedSummaryRow) Kind() Kind { return KindCompletedSummary }
func (InfoRow) Kind() Kind             { return KindInfo }
func (DifficultyRow) Kind() Kind       { return KindDifficulty }
func (ItemRow) Kind() Kind             { return KindItem }
func (ImageRow) Kind() Kind            { return KindImage }
func (EmptyStateRow) Kind() Kind       { return KindEmptyState }
func (PromptRow) Kind() Kind           { return KindPrompt }
func (CelebrationRow) Kind() Kind      { return KindCelebration }
func (DayNumberHeaderRow) Kind() Kind  { return KindDayNumberHeader }

// TopInfo is the header above the sections.
type TopInfo struct {
	Date    string `json:"date"`
	IsToday bool   `json:"is_today"`
	// RatePromptPending is set on a completed day whose rating prompt has not
	// been shown yet.
	RatePromptPending bool `json:"rate_prompt_pending,omitempty"`
}

// DisplayDateLayout formats TopInfo.Date.
const DisplayDateLayout = "January 2, 2006"

// Input is everything a reconciliation pass depends on.
type Input struct {
	Plan          *models.Plan
	Selection     models.Selection
	Workouts      WorkoutPair
	Progress      []models.ProgressRecord
	JustCompleted string
	UserName      string
	Now           time.Time
}

// Result is the outcome of a reconciliation pass.
type Result struct {
	Day    models.Day
	Status models.DayStatus
	Top    TopInfo
	Rows   []Row
	// Celebrating is set when Rows contain the celebration row.
	Celebrating bool
}

// Reconcile merges plan, progress and fetched workouts into the rows for the
// selected day. It returns false, and no rows, when the selected day is not
// part of the plan.
func Reconcile(in Input) (Result, bool) {
	day, ok := in.Plan.FindDay(in.Selection.SelectedDay)
	if !ok {
		return Result{}, false
	}

	status := day.Status
	if !status.Valid() {
		status = models.StatusNotPassed
	}

	res := Result{Day: day, Status: status}
	strip := dayStrip(in.Plan, in.Selection.SelectedDay)
	primary, alt := in.Workouts.Primary, in.Workouts.Alternate

	switch status {
	case models.StatusNotPassed, models.StatusSkipped:
		res.Rows = []Row{
			GreetingRow{Name: in.UserName},
			strip,
			VideoPairRow{Primary: primary, Alternate: alt},
			ActionButtonRow{Day: day.Day},
		}

	case models.StatusPassed:
		if matchesWorkout(in.JustCompleted, primary, alt) {
			res.Celebrating = true
			res.Rows = []Row{
				DayNumberHeaderRow{Day: day.Day},
				strip,
				CelebrationRow{WorkoutID: in.JustCompleted},
			}
			break
		}

		entry := CompletedEntry(in.Progress, day)
		res.Rows = []Row{
			CompletedSummaryRow{},
			strip,
			infoRow(entry, primary),
			difficultyRow(entry),
			itemRow(entry, day, in.Workouts),
		}

	case models.StatusDayOff:
		res.Rows = []Row{
			GreetingRow{Name: in.UserName, DayOff: true},
			strip,
			ImageRow{},
		}
	}

	res.Top = TopInfo{
		Date:    displayDate(day.CompletedDate, in.Now),
		IsToday: status != models.StatusPassed,
	}
	return res, true
}

// CompletedEntry finds the progress entry of the workout that was completed on
// day. Records are searched in order; within the first record that has a
// passed entry for the day, the primary workout wins over the alternate.
func CompletedEntry(progress []models.ProgressRecord, day models.Day) *models.ProgressEntry {
	for _, rec := range progress {
		var first *models.ProgressEntry
		for i := range rec.Entries {
			e := rec.Entries[i]
			if e.Day != day.Day || e.Status != models.StatusPassed {
				continue
			}
			if e.WorkoutID == day.WorkoutID {
				return &e
			}
			if first == nil {
				first = &e
			}
		}
		if first != nil {
			return first
		}
	}
	return nil
}

func matchesWorkout(id string, primary, alt *models.WorkoutDetail) bool {
	if id == "" {
		return false
	}
	return (primary != nil && primary.ID == id) || (alt != nil && alt.ID == id)
}

func dayStrip(plan *models.Plan, selected int) DayStripRow {
	row := DayStripRow{Days: make([]DayCell, 0, len(plan.Week))}
	for i, d := range plan.Week {
		number := d.Day
		if number == 0 {
			number = i + 1
		}
		status := d.Status
		if !status.Valid() {
			status = models.StatusNotPassed
		}
		row.Days = append(row.Days, DayCell{
			Number:   number,
			Selected: number == selected,
			Today:    d.CurrentDay,
			Status:   status,
		})
	}
	return row
}

func infoRow(entry *models.ProgressEntry, primary *models.WorkoutDetail) InfoRow {
	row := InfoRow{Workouts: 1}
	if entry != nil {
		row.ViewedSec = entry.ViewedSec
	}
	if primary != nil {
		row.Calories = primary.Calories
	}
	return row
}

func difficultyRow(entry *models.ProgressEntry) DifficultyRow {
	if entry == nil || entry.Rating == nil {
		return DifficultyRow{}
	}
	rating := *entry.Rating
	return DifficultyRow{Rating: &rating}
}

// itemRow prefers the alternate workout only when the completed entry belongs
// to it.
func itemRow(entry *models.ProgressEntry, day models.Day, pair WorkoutPair) ItemRow {
	id, w := day.WorkoutID, pair.Primary
	if entry != nil && day.AltWorkoutID != "" && entry.WorkoutID == day.AltWorkoutID {
		id, w = day.AltWorkoutID, pair.Alternate
	}

	row := ItemRow{WorkoutID: id}
	if w != nil {
		row.Title = w.Title
		row.Thumbnail = w.VideoThumbnail
	}
	if entry != nil {
		row.Percent = entry.Percent
	}
	return row
}

func displayDate(completed string, now time.Time) string {
	if completed != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, completed); err == nil {
				return t.Format(DisplayDateLayout)
			}
		}
	}
	return now.Format(DisplayDateLayout)
}
