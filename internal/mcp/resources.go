package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/myplan/internal/models"
	"github.com/meltforce/myplan/internal/myplan"
)

// todayView is the body of myplan://today.
type todayView struct {
	Top      myplan.TopInfo        `json:"top"`
	Day      models.Day            `json:"day"`
	Primary  *models.WorkoutDetail `json:"primary,omitempty"`
	Alt      *models.WorkoutDetail `json:"alternate,omitempty"`
	Sections []myplan.Section      `json:"sections"`
}

// today renders the plan's current day from the session snapshot without
// touching the user's selection.
func (h *handlers) today(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	e, err := h.sessions.Get(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	snap := e.Session.Snapshot()
	if !snap.Loaded() {
		return nil, fmt.Errorf("no plan loaded")
	}

	current := snap.Plan.CurrentDay
	day, _ := snap.Plan.FindDay(current)
	pair := myplan.FetchPair(ctx, h.workouts, day.WorkoutID, day.AltWorkoutID, h.log)

	res, ok := myplan.Reconcile(myplan.Input{
		Plan:      snap.Plan,
		Selection: models.Selection{SelectedDay: current, CurrentDay: current},
		Workouts:  pair,
		Progress:  snap.Progress,
		Now:       time.Now(),
	})
	if !ok {
		return nil, fmt.Errorf("current day %d is not part of the plan", current)
	}

	data, err := json.Marshal(todayView{
		Top:      res.Top,
		Day:      res.Day,
		Primary:  pair.Primary,
		Alt:      pair.Alternate,
		Sections: myplan.Assemble(res.Rows),
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
