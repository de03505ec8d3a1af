package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shaharia-lab/buildnotify/internal/config"
	"github.com/shaharia-lab/buildnotify/internal/service"
)

func (s *Server) handleGetSiteSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.notificationSvc.GetSiteSettings())
}

func (s *Server) handleUpdateSiteSettings(w http.ResponseWriter, r *http.Request) {
	var incoming config.SiteSettings
	if json.NewDecoder(r.Body).Decode(&incoming) != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	resp, err := s.notificationSvc.UpdateSiteSettings(incoming)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		s.logger.Error("update site settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save site settings")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
