package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/chis/tagwatch/internal/logging"
)

// handleReleases runs a full aggregate check and writes the raw
// aggregate document. The check cannot fail, so this endpoint always
// answers 200 with a well-formed (possibly empty) body.
func (s *Server) handleReleases(w http.ResponseWriter, r *http.Request) {
	result := s.aggregator.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logging.Logger.Warn("failed to write releases response", zap.Error(err))
	}
}

// handleHealth reports service status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	RespondSuccess(w, map[string]any{
		"status": "healthy",
		"services": map[string]bool{
			"storage": s.store != nil,
			"poller":  s.poller != nil,
		},
	})
}

// handleHistory returns recent poll runs, newest first.
// Accepts ?limit=N (default 20, max 100).
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		RespondError(w, http.StatusServiceUnavailable, errors.New("history storage not configured"))
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			RespondBadRequest(w, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	if limit > 100 {
		limit = 100
	}

	runs, err := s.store.ListPollRuns(r.Context(), limit)
	if err != nil {
		logging.Logger.Error("failed to list poll runs", zap.Error(err))
		RespondInternalError(w, err)
		return
	}

	RespondSuccess(w, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}
