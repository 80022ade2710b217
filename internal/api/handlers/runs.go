package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nikhilbhutani/voiceagent/internal/runlog"
)

// RunLister is implemented by runlog.Store.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]runlog.Record, error)
}

// RunsHandler lists recent pipeline runs.
type RunsHandler struct {
	runs RunLister
}

// NewRunsHandler creates a RunsHandler reading from runs.
func NewRunsHandler(runs RunLister) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// List returns the most recent pipeline runs, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.runs.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []runlog.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": records})
}
