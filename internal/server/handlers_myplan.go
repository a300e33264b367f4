package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	planmcp "github.com/meltforce/myplan/internal/mcp"
	"github.com/meltforce/myplan/internal/models"
	"github.com/meltforce/myplan/internal/myplan"
)

type screenResponse struct {
	myplan.ScreenState
	Selection models.Selection `json:"selection"`
	PlanType  models.PlanType  `json:"plan_type,omitempty"`
}

type selectRequest struct {
	Day int `json:"day"`
}

type variantRequest struct {
	Variant models.Variant `json:"variant"`
}

type completeRequest struct {
	WorkoutID string `json:"workout_id"`
}

type rateResponse struct {
	Action   models.RateAction `json:"action"`
	Accepted bool              `json:"accepted"`
}

type playRequest struct {
	Day       *int   `json:"day,omitempty"`
	WorkoutID string `json:"workout_id,omitempty"`
}

// entry returns the caller's session, creating it on first use.
func (s *Server) entry(w http.ResponseWriter, r *http.Request) (*myplan.Entry, bool) {
	e, err := s.sessions.Get(r.Context(), userIDFromContext(r))
	if err != nil {
		s.log.Error("session unavailable", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	return e, true
}

func (s *Server) writeScreen(w http.ResponseWriter, status int, e *myplan.Entry) {
	resp := screenResponse{ScreenState: e.Screen.State(), Selection: e.Session.Selection()}
	if pt, ok := e.Session.PlanType(); ok {
		resp.PlanType = pt
	}
	writeJSON(w, status, resp)
}

// writeScreenResult answers a screen action: the screen on success, the screen
// with 502 when the backend rejected the action.
func (s *Server) writeScreenResult(w http.ResponseWriter, e *myplan.Entry, err error) {
	if err != nil {
		s.log.Warn("plan action failed", "error", err)
		s.writeScreen(w, http.StatusBadGateway, e)
		return
	}
	s.writeScreen(w, http.StatusOK, e)
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	s.writeScreen(w, http.StatusOK, e)
}

func (s *Server) handleScreenReload(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	s.writeScreenResult(w, e, e.Session.Reload(r.Context()))
}

func (s *Server) handleScreenSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	e.Session.Select(r.Context(), req.Day)
	s.writeScreen(w, http.StatusOK, e)
}

func (s *Server) handleScreenVariant(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	e.Session.SetVariant(req.Variant)
	s.writeScreen(w, http.StatusOK, e)
}

func (s *Server) handleScreenChangeDate(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	s.writeScreenResult(w, e, e.Session.ChangeDate(r.Context()))
}

func (s *Server) handleScreenProgress(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	s.writeScreenResult(w, e, e.Session.SaveProgress(r.Context()))
}

func (s *Server) handleScreenComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.WorkoutID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout_id is required"})
		return
	}
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	e.Session.MarkCompleted(req.WorkoutID)
	s.writeScreen(w, http.StatusOK, e)
}

func (s *Server) handleScreenRate(w http.ResponseWriter, r *http.Request) {
	var req models.RateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	action, accepted := e.Session.Rate(r.Context(), req.Rating, req.Day, req.WorkoutID)
	writeJSON(w, http.StatusOK, rateResponse{Action: action, Accepted: accepted})
}

func (s *Server) handleScreenDifficulty(w http.ResponseWriter, r *http.Request) {
	var req models.DifficultyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	s.writeScreenResult(w, e, e.Session.ChangeDifficulty(r.Context(), req.Action))
}

func (s *Server) handleScreenPlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	var force *models.WorkoutDetail
	if req.WorkoutID != "" {
		wd, err := s.store.GetWorkout(r.Context(), req.WorkoutID)
		if err != nil {
			s.writeStoreError(w, "workout", err)
			return
		}
		force = wd
	}
	writeJSON(w, http.StatusOK, e.Session.PlayVideo(req.Day, force))
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if s.mcp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mcp not enabled"})
		return
	}
	s.mcp.ServeHTTP(w, r.WithContext(planmcp.WithUserID(r.Context(), userIDFromContext(r))))
}

// decodeOptionalJSON decodes the body into v; an empty body leaves v unchanged.
func decodeOptionalJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
