package server

import (
	"errors"
	"net/http"

	"github.com/claude/repnotes/internal/codec"
	"github.com/claude/repnotes/internal/models"
	"github.com/claude/repnotes/internal/volume"
)

type decodeRequest struct {
	Text     string            `json:"text"`
	Existing []models.Exercise `json:"existing,omitempty"`
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if !readJSON(w, r, &req) {
		return
	}
	result := s.builder.Decode(req.Text, req.Existing)
	if err := models.Validate(result.Exercises, result.Progress); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req codec.Result
	if !readJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": codec.Encode(req)})
}

// rowRequest carries one exercise, its progress flags and the row to edit.
type rowRequest struct {
	Exercise models.Exercise `json:"exercise"`
	Progress []bool          `json:"progress"`
	Row      int             `json:"row"`
	Changes  volume.Changes  `json:"changes"`
}

type rowResponse struct {
	Exercise models.Exercise `json:"exercise"`
	Progress []bool          `json:"progress"`
	Rows     []volume.Row    `json:"rows"`
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	var req rowRequest
	if !readJSON(w, r, &req) {
		return
	}
	rows := volume.Rows(req.Exercise)
	if rows == nil {
		rows = []volume.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleRowAdd(w http.ResponseWriter, r *http.Request) {
	s.handleRowEdit(w, r, func(req rowRequest) (volume.Edit, error) {
		return s.rows.Add(req.Exercise), nil
	})
}

func (s *Server) handleRowRemove(w http.ResponseWriter, r *http.Request) {
	s.handleRowEdit(w, r, func(req rowRequest) (volume.Edit, error) {
		return s.rows.Remove(req.Exercise, req.Row)
	})
}

func (s *Server) handleRowUpdate(w http.ResponseWriter, r *http.Request) {
	s.handleRowEdit(w, r, func(req rowRequest) (volume.Edit, error) {
		return s.rows.Update(req.Exercise, req.Row, req.Changes)
	})
}

func (s *Server) handleRowEdit(w http.ResponseWriter, r *http.Request, edit func(rowRequest) (volume.Edit, error)) {
	var req rowRequest
	if !readJSON(w, r, &req) {
		return
	}
	if len(req.Progress) != len(req.Exercise.Sets) {
		req.Progress = volume.Remap(identity(len(req.Exercise.Sets))).Apply(req.Progress)
	}

	e, err := edit(req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, volume.ErrRowNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	resp := rowResponse{
		Exercise: e.Exercise,
		Progress: e.Remap.Apply(req.Progress),
		Rows:     volume.Rows(e.Exercise),
	}
	if resp.Rows == nil {
		resp.Rows = []volume.Row{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// identity returns the remap that keeps n positions in place.
func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
