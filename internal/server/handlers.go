package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/claude/repnotes/internal/codec"
	"github.com/claude/repnotes/internal/models"
	"github.com/claude/repnotes/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	workouts, err := s.store.ListWorkouts(r.Context(), userIDFromContext(r), start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

type createWorkoutRequest struct {
	Name string `json:"name"`
	Date string `json:"date"`
	Text string `json:"text"`
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req createWorkoutRequest
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date (YYYY-MM-DD): " + err.Error()})
		return
	}

	result := s.builder.Decode(req.Text, nil)
	if err := models.Validate(result.Exercises, result.Progress); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	workout := &models.Workout{
		ID:        uuid.New(),
		UserID:    userIDFromContext(r),
		Name:      strings.TrimSpace(req.Name),
		Date:      date,
		Text:      req.Text,
		Exercises: result.Exercises,
		Progress:  result.Progress,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveWorkout(r.Context(), workout); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workout, ok := s.loadWorkout(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleGetWorkoutText(w http.ResponseWriter, r *http.Request) {
	workout, ok := s.loadWorkout(w, r)
	if !ok {
		return
	}
	text := workout.Text
	if r.URL.Query().Get("canonical") == "true" || text == "" {
		text = codec.Generate(workout.Exercises, workout.Progress)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text)) //nolint:errcheck
}

// handlePutWorkoutText reparses new text for a stored workout. Exercises are
// matched by position so their identity and metadata survive the edit.
func (s *Server) handlePutWorkoutText(w http.ResponseWriter, r *http.Request) {
	workout, ok := s.loadWorkout(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	result := s.builder.Decode(req.Text, workout.Exercises)
	if err := models.Validate(result.Exercises, result.Progress); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	workout.Text = req.Text
	workout.Exercises = result.Exercises
	workout.Progress = result.Progress
	workout.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveWorkout(r.Context(), workout); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}
	if err := s.store.DeleteWorkout(r.Context(), id, userIDFromContext(r)); err != nil {
		if errors.Is(err, storage.ErrWorkoutNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) loadWorkout(w http.ResponseWriter, r *http.Request) (*models.Workout, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return nil, false
	}
	workout, err := s.store.GetWorkout(r.Context(), id, userIDFromContext(r))
	if err != nil {
		if errors.Is(err, storage.ErrWorkoutNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
			return nil, false
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	return workout, true
}

// maxJSONBody caps request bodies of the JSON endpoints.
const maxJSONBody = 1 << 20

// readJSON decodes the request body into v. On failure it writes a 400, or a
// 413 when the body exceeds maxJSONBody, and returns false.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
		return false
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now().AddDate(0, 0, 1)
		start = end.AddDate(0, 0, -31)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now().AddDate(0, 0, 1)
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
