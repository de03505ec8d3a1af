package api

import (
	"net/http"
	"strconv"
)

const defaultLogLimit = 50

// handleListNotificationLog returns recent notification delivery log entries.
// Accepts an optional ?limit=N query parameter (default 50).
func (s *Server) handleListNotificationLog(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.notificationSvc.ListLog(r.Context(), limit)
	if err != nil {
		s.logger.Error("list notification log failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notification log")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
