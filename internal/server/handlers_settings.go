package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/repnotes/internal/ingest"
	"github.com/claude/repnotes/internal/ingest/alpha"
	"github.com/claude/repnotes/internal/ingest/plaintext"
	"github.com/claude/repnotes/internal/storage"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetDataStats(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	f := storage.ImportLogFilter{
		UserID: userIDFromContext(r),
		Source: r.URL.Query().Get("source"),
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			f.Limit = parsed
		}
	}
	logs, err := s.store.QueryImportLogs(r.Context(), f)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// handleNotesIngest stores every dated block of a plain text notes document.
func (s *Server) handleNotesIngest(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	source := r.Header.Get("X-Source")
	if source == "" {
		source = "api"
	}

	start := time.Now()
	result, err := s.notes.Ingest(r.Context(), http.MaxBytesReader(w, r.Body, 10<<20), uid)
	s.logImport(uid, source, result, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, plaintext.ErrBadHeader) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	s.log.Info("notes ingested", "source", source,
		"workouts", result.WorkoutsInserted, "rejected", result.WorkoutsRejected)
	writeJSON(w, http.StatusOK, result)
}

// handleAlphaIngest stores every session of an Alpha Progression CSV export.
func (s *Server) handleAlphaIngest(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	source := r.Header.Get("X-Source")
	if source == "" {
		source = "alpha"
	}

	start := time.Now()
	result, err := s.alpha.Ingest(r.Context(), http.MaxBytesReader(w, r.Body, 10<<20), uid)
	s.logImport(uid, source, result, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, alpha.ErrMalformed) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	s.log.Info("alpha export ingested", "source", source,
		"workouts", result.WorkoutsInserted, "rejected", result.WorkoutsRejected)
	writeJSON(w, http.StatusOK, result)
}

// logImport records an import operation's result to the import_logs table.
func (s *Server) logImport(uid int, source string, result *ingest.Result, importErr error, durationMs int) {
	status := "success"
	var errMsg *string
	if importErr != nil {
		status = "error"
		msg := importErr.Error()
		errMsg = &msg
	}
	if result == nil {
		result = &ingest.Result{}
	}

	entry := storage.ImportLog{
		UserID:           uid,
		Source:           source,
		Status:           status,
		WorkoutsReceived: result.WorkoutsReceived,
		WorkoutsInserted: result.WorkoutsInserted,
		WorkoutsRejected: result.WorkoutsRejected,
		SetsReceived:     result.SetsReceived,
		DurationMs:       &durationMs,
		ErrorMessage:     errMsg,
		Metadata:         storage.RejectedMetadata(result.RejectedNames),
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.store.InsertImportLog(ctx, entry); err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for import logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}
