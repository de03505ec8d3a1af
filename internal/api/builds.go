package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/buildnotify/internal/eventbus"
	"github.com/shaharia-lab/buildnotify/internal/project"
)

type buildFinishedRequest struct {
	Status string `json:"status"`
	Output string `json:"output"`
}

type buildFixedRequest struct {
	Output string `json:"output"`
	// PreviousLabel is the failed build this one fixed; 0 when unknown.
	PreviousLabel int `json:"previous_label"`
}

// handleBuildFinished queues a finished event. The notifier decides
// whether it is worth an e-mail.
func (s *Server) handleBuildFinished(w http.ResponseWriter, r *http.Request) {
	var req buildFinishedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	status, err := project.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := buildFromPath(r, status, req.Output)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.publish(w, eventbus.Event{Kind: eventbus.BuildFinished, Build: b})
}

// handleBuildFixed queues a fixed event for a passing build that follows a
// failure.
func (s *Server) handleBuildFixed(w http.ResponseWriter, r *http.Request) {
	var req buildFixedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	b, err := buildFromPath(r, project.StatusSuccess, req.Output)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	e := eventbus.Event{Kind: eventbus.BuildFixed, Build: b}
	if req.PreviousLabel > 0 {
		if req.PreviousLabel >= b.Label() {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("previous_label %d must be lower than the build label %d", req.PreviousLabel, b.Label()))
			return
		}
		prev, err := project.NewBuild(b.Project(), req.PreviousLabel, project.StatusFailed, "")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		e.Previous = prev
	}

	s.publish(w, e)
}

func (s *Server) publish(w http.ResponseWriter, e eventbus.Event) {
	if !s.publisher.Publish(e) {
		if s.drops != nil {
			s.drops.EventDropped()
		}
		writeError(w, http.StatusServiceUnavailable, "event queue is full, retry later")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":  "queued",
		"kind":    e.Kind,
		"project": e.Build.ProjectName(),
		"label":   e.Build.Label(),
	})
}

func buildFromPath(r *http.Request, status project.Status, output string) (*project.Build, error) {
	p, err := project.New(chi.URLParam(r, "name"))
	if err != nil {
		return nil, err
	}
	label, err := strconv.Atoi(chi.URLParam(r, "label"))
	if err != nil {
		return nil, fmt.Errorf("build label must be a number")
	}
	return project.NewBuild(p, label, status, output)
}
