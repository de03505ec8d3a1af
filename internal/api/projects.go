package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/buildnotify/internal/service"
)

func (s *Server) handleListProjectNotifiers(w http.ResponseWriter, r *http.Request) {
	list, err := s.notificationSvc.ListProjectNotifiers(r.Context())
	if err != nil {
		s.logger.Error("list project notifiers failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list project notifiers")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetProjectNotifier(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	pn, err := s.notificationSvc.GetProjectNotifier(r.Context(), name)
	if err != nil {
		var nfe *service.NotFoundError
		if errors.As(err, &nfe) {
			writeError(w, http.StatusNotFound, nfe.Error())
			return
		}
		s.logger.Error("get project notifier failed", "project", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get project notifier")
		return
	}
	writeJSON(w, http.StatusOK, pn)
}

func (s *Server) handleUpdateProjectNotifier(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req service.ProjectNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	updated, err := s.notificationSvc.UpdateProjectNotifier(r.Context(), name, req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		s.logger.Error("update project notifier failed", "project", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update project notifier")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteProjectNotifier(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.notificationSvc.DeleteProjectNotifier(r.Context(), name); err != nil {
		var nfe *service.NotFoundError
		if errors.As(err, &nfe) {
			writeError(w, http.StatusNotFound, nfe.Error())
			return
		}
		s.logger.Error("delete project notifier failed", "project", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete project notifier")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTestNotification sends a test e-mail to the project's recipients.
// Requests beyond the limiter's budget get 429.
func (s *Server) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	if !s.testLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many test notifications, try again later")
		return
	}

	name := chi.URLParam(r, "name")
	if err := s.notificationSvc.TestNotification(r.Context(), name); err != nil {
		var nfe *service.NotFoundError
		var ve *service.ValidationError
		switch {
		case errors.As(err, &nfe):
			writeError(w, http.StatusNotFound, nfe.Error())
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, ve.Error())
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
