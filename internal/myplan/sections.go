package myplan

import (
	"fmt"
	"strings"

	"github.com/meltforce/myplan/internal/models"
)

// Section is one kind-tagged group of items handed to the view layer.
type Section struct {
	Kind  Kind  `json:"kind"`
	Items []any `json:"items"`
}

// Display texts.
const (
	defaultUserName  = "User"
	workoutTitleText = "Here is your workout for today."
	workoutBodyText  = "Find your best results with balanced workouts designed to motivate and help you achieve your goals."
	dayOffTitleText  = "Today is your day off."
	dayOffBodyText   = "Rest and recovery are part of the plan. Your next workout is waiting for you tomorrow."
	emptyPlanTitle   = "Your plan is not ready yet"
)

type GreetingItem struct {
	Title string `json:"title"`
	Text1 string `json:"text1"`
	Text2 string `json:"text2"`
}

type DayItem struct {
	Number   int              `json:"number"`
	Selected bool             `json:"selected"`
	Today    bool             `json:"today"`
	Status   models.DayStatus `json:"status"`
}

type VideoItem struct {
	Name            string `json:"name"`
	Duration        string `json:"duration"`
	PreviewImageURL string `json:"preview_image_url"`
	VideoURL        string `json:"video_url"`
	Equipment       string `json:"equipment"`
}

type ButtonItem struct {
	Title string `json:"title"`
}

type CompletedItem struct{}

type InfoItem struct {
	Duration      string `json:"duration"`
	CountWorkouts string `json:"count_workouts"`
	Calories      string `json:"calories"`
}

type DifficultyItem struct {
	Difficulty *int `json:"difficulty"`
}

type ProgressItem struct {
	WorkoutID string `json:"workout_id"`
	Title     string `json:"title"`
	Progress  int    `json:"progress"`
	Image     string `json:"image"`
}

type ImageItem struct{}

type EmptyTopItem struct {
	Title string `json:"title"`
	Image string `json:"image"`
}

type CelebrationItem struct {
	WorkoutID string `json:"workout_id"`
}

type TitleItem struct {
	Title string `json:"title"`
}

// builders maps every row kind to the function that renders its items.
var builders = map[Kind]func(Row) []any{
	KindGreeting:         build(greetingItems),
	KindDayStrip:         build(dayStripItems),
	KindVideoPair:        build(videoPairItems),
	KindActionButton:     build(func(r ActionButtonRow) []any { return []any{ButtonItem{Title: fmt.Sprintf("Start day %d", r.Day)}} }),
	KindCompletedSummary: build(func(CompletedSummaryRow) []any { return []any{CompletedItem{}} }),
	KindInfo:             build(infoItems),
	KindDifficulty:       build(func(r DifficultyRow) []any { return []any{DifficultyItem{Difficulty: r.Rating}} }),
	KindItem:             build(progressItems),
	KindImage:            build(func(ImageRow) []any { return []any{ImageItem{}} }),
	KindEmptyState:       build(func(EmptyStateRow) []any { return []any{EmptyTopItem{Title: emptyPlanTitle}} }),
	KindPrompt:           build(func(r PromptRow) []any { return []any{ButtonItem{Title: helloTitle(r.Name)}} }),
	KindCelebration:      build(func(r CelebrationRow) []any { return []any{CelebrationItem{WorkoutID: r.WorkoutID}} }),
	KindDayNumberHeader:  build(func(r DayNumberHeaderRow) []any { return []any{TitleItem{Title: fmt.Sprintf("Day %d", r.Day)}} }),
}

func build[R Row](f func(R) []any) func(Row) []any {
	return func(row Row) []any {
		r, _ := row.(R)
		return f(r)
	}
}

// Assemble turns rows into sections, one per row, in the same order.
func Assemble(rows []Row) []Section {
	sections := make([]Section, 0, len(rows))
	for _, row := range rows {
		s := Section{Kind: row.Kind()}
		if b, ok := builders[row.Kind()]; ok {
			s.Items = b(row)
		}
		sections = append(sections, s)
	}
	return sections
}

// EmptyState is shown when there is no plan to display yet.
func EmptyState(userName string) []Section {
	return Assemble([]Row{EmptyStateRow{}, PromptRow{Name: userName}})
}

func greetingItems(r GreetingRow) []any {
	item := GreetingItem{Title: helloTitle(r.Name), Text1: workoutTitleText, Text2: workoutBodyText}
	if r.DayOff {
		item.Text1, item.Text2 = dayOffTitleText, dayOffBodyText
	}
	return []any{item}
}

func dayStripItems(r DayStripRow) []any {
	items := make([]any, 0, len(r.Days))
	for _, d := range r.Days {
		items = append(items, DayItem{Number: d.Number, Selected: d.Selected, Today: d.Today, Status: d.Status})
	}
	return items
}

func videoPairItems(r VideoPairRow) []any {
	return []any{videoItem(r.Primary), videoItem(r.Alternate)}
}

func videoItem(w *models.WorkoutDetail) VideoItem {
	if w == nil {
		return VideoItem{}
	}
	return VideoItem{
		Name:            w.Title,
		Duration:        FormatDuration(w.VideoDuration),
		PreviewImageURL: w.VideoThumbnail,
		VideoURL:        w.VideoLink,
		Equipment:       strings.Join(w.Equipment, ", "),
	}
}

func infoItems(r InfoRow) []any {
	return []any{InfoItem{
		Duration:      FormatDuration(r.ViewedSec),
		CountWorkouts: fmt.Sprint(r.Workouts),
		Calories:      fmt.Sprint(r.Calories),
	}}
}

func progressItems(r ItemRow) []any {
	return []any{ProgressItem{WorkoutID: r.WorkoutID, Title: r.Title, Progress: r.Percent, Image: r.Thumbnail}}
}

func helloTitle(name string) string {
	if name == "" {
		name = defaultUserName
	}
	return "Hello, " + name + "!"
}

// FormatDuration renders seconds as M:SS, or H:MM:SS from one hour on.
// Zero or negative durations render as an empty string.
func FormatDuration(sec int) string {
	if sec <= 0 {
		return ""
	}
	h, m, s := sec/3600, (sec%3600)/60, sec%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
