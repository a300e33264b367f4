package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/myplan/internal/models"
	"github.com/meltforce/myplan/internal/myplan"
)

// --- Tool definitions ---

var toolGetMyPlan = mcp.NewTool("get_my_plan",
	mcp.WithDescription("Show the plan screen: the selected day with its status, workouts and sections, plus the week strip. Pass day to select another day first."),
	mcp.WithNumber("day", mcp.Description("Day number to show. Defaults to the currently selected day.")),
)

var toolSelectDay = mcp.NewTool("select_day",
	mcp.WithDescription("Select a day of the week. Days that are not part of the plan fall back to the current day."),
	mcp.WithNumber("day", mcp.Required(), mcp.Description("Day number")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Retrieve a workout: title, video link, thumbnail, duration, equipment and calories."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID")),
)

var toolRateWorkout = mcp.NewTool("rate_workout",
	mcp.WithDescription("Rate a completed workout from 1 (too easy) to 5 (too hard). Returns the suggested difficulty action."),
	mcp.WithNumber("rating", mcp.Required(), mcp.Description("Rating 1-5")),
	mcp.WithNumber("day", mcp.Required(), mcp.Description("Plan day the workout belongs to")),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout ID")),
)

// planView is what get_my_plan and select_day return.
type planView struct {
	Selection models.Selection   `json:"selection"`
	PlanType  models.PlanType    `json:"plan_type,omitempty"`
	Screen    myplan.ScreenState `json:"screen"`
}

type rateResult struct {
	Action   models.RateAction `json:"action"`
	Accepted bool              `json:"accepted"`
}

// --- Tool handlers ---

func (h *handlers) getMyPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	e, err := h.sessions.Get(ctx, UserIDFromContext(ctx))
	if err != nil {
		return mcp.NewToolResultError("loading plan failed: " + err.Error()), nil
	}
	if day := req.GetInt("day", 0); day > 0 {
		e.Session.Select(ctx, day)
	}
	return h.planResult(e)
}

func (h *handlers) selectDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := req.RequireInt("day")
	if err != nil {
		return mcp.NewToolResultError("day parameter is required"), nil
	}
	e, err := h.sessions.Get(ctx, UserIDFromContext(ctx))
	if err != nil {
		return mcp.NewToolResultError("loading plan failed: " + err.Error()), nil
	}
	e.Session.Select(ctx, day)
	return h.planResult(e)
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	w, err := h.workouts.GetWorkout(ctx, id)
	if err != nil {
		return mcp.NewToolResultError("workout not found: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) rateWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rating, err := req.RequireInt("rating")
	if err != nil {
		return mcp.NewToolResultError("rating parameter is required"), nil
	}
	if rating < 1 || rating > 5 {
		return mcp.NewToolResultError("rating must be between 1 and 5"), nil
	}
	day, err := req.RequireInt("day")
	if err != nil {
		return mcp.NewToolResultError("day parameter is required"), nil
	}
	workoutID, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}

	e, err := h.sessions.Get(ctx, UserIDFromContext(ctx))
	if err != nil {
		return mcp.NewToolResultError("loading plan failed: " + err.Error()), nil
	}
	action, accepted := e.Session.Rate(ctx, rating, day, workoutID)
	if !accepted {
		return mcp.NewToolResultError("rating was not accepted"), nil
	}
	result, err := mcp.NewToolResultJSON(rateResult{Action: action, Accepted: accepted})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) planResult(e *myplan.Entry) (*mcp.CallToolResult, error) {
	view := planView{Selection: e.Session.Selection(), Screen: e.Screen.State()}
	if pt, ok := e.Session.PlanType(); ok {
		view.PlanType = pt
	}
	result, err := mcp.NewToolResultJSON(view)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
