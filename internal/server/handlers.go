package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/ironcycle/internal/ingest/sessionlog"
	"github.com/claude/ironcycle/internal/progression"
	"github.com/claude/ironcycle/internal/tracker"
	"github.com/claude/ironcycle/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes bounds request bodies for workout specs and session logs.
const maxBodyBytes = 1 << 20

// completeDayRequest is the body of POST .../days/{day}/complete.
type completeDayRequest struct {
	Performances []workout.Performance `json:"performances"`
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var spec tracker.WorkoutSpec
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&spec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	wo, err := s.svc.CreateWorkout(r.Context(), userIDFromContext(r), spec)
	if err != nil {
		s.writeError(w, "create workout", err)
		return
	}
	writeJSON(w, http.StatusCreated, wo)
}

func (s *Server) handleActiveWorkout(w http.ResponseWriter, r *http.Request) {
	wo, err := s.svc.ActiveWorkout(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, "active workout", err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	wo, ok := s.ownedWorkout(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (s *Server) handlePlanDay(w http.ResponseWriter, r *http.Request) {
	wo, ok := s.ownedWorkout(w, r)
	if !ok {
		return
	}
	day, ok := dayParam(w, r)
	if !ok {
		return
	}

	plan, err := s.svc.PlanDay(r.Context(), wo.ID, day)
	if err != nil {
		s.writeError(w, "plan day", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleCompleteDay(w http.ResponseWriter, r *http.Request) {
	wo, ok := s.ownedWorkout(w, r)
	if !ok {
		return
	}
	day, ok := dayParam(w, r)
	if !ok {
		return
	}

	var req completeDayRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := s.svc.CompleteDay(r.Context(), wo.ID, day, req.Performances)
	if err != nil {
		s.writeError(w, "complete day", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleImportSession(w http.ResponseWriter, r *http.Request) {
	wo, ok := s.ownedWorkout(w, r)
	if !ok {
		return
	}
	day, ok := dayParam(w, r)
	if !ok {
		return
	}

	result, err := s.sessions.Ingest(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes), wo.ID, day)
	if err != nil {
		s.writeError(w, "session import", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProgressWeek(w http.ResponseWriter, r *http.Request) {
	wo, ok := s.ownedWorkout(w, r)
	if !ok {
		return
	}

	result, err := s.svc.ProgressWeek(r.Context(), wo.ID)
	if err != nil {
		s.writeError(w, "progress week", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	wo, ok := s.ownedWorkout(w, r)
	if !ok {
		return
	}
	limit := tracker.DefaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	rows, err := s.svc.History(r.Context(), wo.ID, limit)
	if err != nil {
		s.writeError(w, "history", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// ownedWorkout loads the {id} workout and checks it belongs to the caller.
// Workouts of other users are reported as not found.
func (s *Server) ownedWorkout(w http.ResponseWriter, r *http.Request) (*workout.Workout, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return nil, false
	}
	wo, err := s.svc.GetWorkout(r.Context(), id)
	if err != nil {
		s.writeError(w, "get workout", err)
		return nil, false
	}
	if wo.UserID != userIDFromContext(r) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return nil, false
	}
	return wo, true
}

func dayParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid day"})
		return 0, false
	}
	return day, true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, workout.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workout.ErrAlreadyCompleted),
		errors.Is(err, workout.ErrNotActive),
		errors.Is(err, tracker.ErrActiveWorkoutExists):
		return http.StatusConflict
	case errors.Is(err, workout.ErrInvalidDay),
		errors.Is(err, workout.ErrInvalidExercise),
		errors.Is(err, progression.ErrOutOfRange),
		errors.Is(err, progression.ErrInvalidPerformance),
		errors.Is(err, progression.ErrInvalidState),
		errors.Is(err, sessionlog.ErrInvalidLog):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error(op+" failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
