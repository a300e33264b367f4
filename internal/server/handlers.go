package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/myplan/internal/models"
	"github.com/meltforce/myplan/internal/storage"
)

type meResponse struct {
	UserInfo
	UserID        int  `json:"user_id"`
	QuizCompleted bool `json:"quiz_completed"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	resp := meResponse{UserInfo: userInfoFromContext(r), UserID: userIDFromContext(r)}
	if s.store != nil {
		if p, err := s.store.GetProfile(r.Context(), resp.UserID); err == nil {
			resp.QuizCompleted = p.QuizCompleted
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type quizRequest struct {
	Completed bool `json:"completed"`
}

// handleQuiz records the onboarding state. The user's session is dropped so
// the next screen request picks up the new profile.
func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	uid := userIDFromContext(r)
	if err := s.store.SetQuizCompleted(r.Context(), uid, req.Completed); err != nil {
		s.writeStoreError(w, "user", err)
		return
	}
	s.sessions.Forget(uid)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.store.GetPlan(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeStoreError(w, "plan", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.GetProgress(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeStoreError(w, "progress", err)
		return
	}
	if records == nil {
		records = []models.ProgressRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workout, err := s.store.GetWorkout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, "workout", err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.store.ListWorkouts(r.Context())
	if err != nil {
		s.writeStoreError(w, "workouts", err)
		return
	}
	if workouts == nil {
		workouts = []models.WorkoutDetail{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetPlanType(w http.ResponseWriter, r *http.Request) {
	pt, err := s.store.GetPlanType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, "plan", err)
		return
	}
	writeJSON(w, http.StatusOK, models.PlanTypeResponse{PlanType: pt})
}

func (s *Server) handleChangeDate(w http.ResponseWriter, r *http.Request) {
	var req models.ChangeDateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Day < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "day must be positive"})
		return
	}
	if err := s.store.ChangeDate(r.Context(), userIDFromContext(r), req.Day); err != nil {
		s.writeStoreError(w, "day", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChangeDifficulty(w http.ResponseWriter, r *http.Request) {
	var req models.DifficultyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Action != models.RateActionIncrease && req.Action != models.RateActionDecrease {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "action must be INCREASE or DECREASE"})
		return
	}
	if err := s.store.ChangeDifficulty(r.Context(), userIDFromContext(r), req.Action); err != nil {
		s.writeStoreError(w, "plan", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSaveProgress(w http.ResponseWriter, r *http.Request) {
	var req models.SaveProgressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Day < 1 || req.WorkoutID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "day and workout_id are required"})
		return
	}
	if err := s.store.SaveProgress(r.Context(), userIDFromContext(r), req); err != nil {
		s.writeStoreError(w, "day", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRateWorkout(w http.ResponseWriter, r *http.Request) {
	var req models.RateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Rating < storage.MinRating || req.Rating > storage.MaxRating || req.WorkoutID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_rate must be 1-5 and workout_id is required"})
		return
	}
	action, err := s.store.RateWorkout(r.Context(), userIDFromContext(r), req)
	if err != nil {
		s.writeStoreError(w, "plan", err)
		return
	}
	writeJSON(w, http.StatusOK, models.RateResponse{Action: action})
}

// writeStoreError maps storage.ErrNotFound to 404 and anything else to 500.
func (s *Server) writeStoreError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": what + " not found"})
		return
	}
	s.log.Error("store error", "what", what, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
