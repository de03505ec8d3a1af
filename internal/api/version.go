package api

import (
	"net/http"

	"github.com/shaharia-lab/buildnotify/internal/buildinfo"
)

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    buildinfo.Version,
		"commit":     buildinfo.CommitSHA,
		"build_date": buildinfo.BuildDate,
	})
}
