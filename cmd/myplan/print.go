package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/meltforce/myplan/internal/models"
	"github.com/meltforce/myplan/internal/myplan"
)

// printScreen writes the screen as plain text.
func printScreen(w io.Writer, st myplan.ScreenState) {
	if st.Top != nil {
		label := st.Top.Date
		if st.Top.IsToday {
			label += " (today)"
		}
		fmt.Fprintln(w, label)
		fmt.Fprintln(w)
	}

	for _, s := range st.Sections {
		for _, item := range s.Items {
			printItem(w, item)
		}
		if s.Kind == myplan.KindDayStrip {
			fmt.Fprintln(w)
		}
	}

	if st.Top != nil && st.Top.RatePromptPending {
		fmt.Fprintln(w, "\nHow was it? Rate with: myplan rate <1-5> <day> <workout-id>")
	}
	if st.Playback != nil && st.Playback.URL != "" {
		fmt.Fprintf(w, "\nPlay: %s\n", st.Playback.URL)
	}
	if st.Error != "" {
		fmt.Fprintf(w, "\nError: %s\n", st.Error)
	}
}

func printItem(w io.Writer, item any) {
	switch it := item.(type) {
	case myplan.GreetingItem:
		fmt.Fprintf(w, "%s\n%s\n%s\n", it.Title, it.Text1, it.Text2)
	case myplan.DayItem:
		fmt.Fprintf(w, "%s ", dayCell(it))
	case myplan.VideoItem:
		if it.Name == "" {
			fmt.Fprintln(w, "  (workout unavailable)")
			return
		}
		fmt.Fprintf(w, "  %s  %s", it.Name, it.Duration)
		if it.Equipment != "" {
			fmt.Fprintf(w, "  [%s]", it.Equipment)
		}
		fmt.Fprintln(w)
	case myplan.ButtonItem:
		fmt.Fprintf(w, "> %s\n", it.Title)
	case myplan.CompletedItem:
		fmt.Fprintln(w, "Workout completed!")
	case myplan.InfoItem:
		fmt.Fprintf(w, "  Time %s  Workouts %s  Calories %s\n", orDash(it.Duration), it.CountWorkouts, it.Calories)
	case myplan.DifficultyItem:
		if it.Difficulty == nil {
			fmt.Fprintln(w, "  Not rated yet")
			return
		}
		fmt.Fprintf(w, "  Rated %d/5\n", *it.Difficulty)
	case myplan.ProgressItem:
		fmt.Fprintf(w, "  %s  %d%%\n", orDash(it.Title), it.Progress)
	case myplan.ImageItem:
		fmt.Fprintln(w, "  (rest)")
	case myplan.EmptyTopItem:
		fmt.Fprintln(w, it.Title)
	case myplan.CelebrationItem:
		fmt.Fprintln(w, "Well done!")
	case myplan.TitleItem:
		fmt.Fprintln(w, it.Title)
	}
}

func dayCell(d myplan.DayItem) string {
	mark := " "
	switch d.Status {
	case models.StatusPassed:
		mark = "x"
	case models.StatusDayOff:
		mark = "-"
	}
	cell := fmt.Sprintf("%d%s", d.Number, mark)
	if d.Today {
		cell = "*" + cell
	}
	if d.Selected {
		cell = "[" + cell + "]"
	}
	return cell
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
