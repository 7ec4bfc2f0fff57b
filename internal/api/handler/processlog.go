package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/dutyledger/internal/api/response"
	"github.com/mcoot/dutyledger/internal/services/processlog"
)

// ProcessLogHandler serves the process log
type ProcessLogHandler struct {
	processLog *processlog.Service
}

// NewProcessLogHandler creates a new process log handler
func NewProcessLogHandler(processLog *processlog.Service) *ProcessLogHandler {
	return &ProcessLogHandler{processLog: processLog}
}

// List handles GET /api/v1/process-logs[?limit=N]
func (h *ProcessLogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.processLog.List(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.ProcessLog, len(entries))
	for i, e := range entries {
		out[i] = response.ProcessLogFromModel(e)
	}
	response.JSON(w, http.StatusOK, response.ProcessLogList{Entries: out})
}
