package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/shaharia-lab/buildnotify/internal/service"
)

const errInvalidJSONBody = "invalid JSON body"

// Test e-mails go to real inboxes; allow a short burst, then one every
// testMailInterval.
const (
	testMailInterval = 10 * time.Second
	testMailBurst    = 3
)

// DropCounter is told about build events the publisher refused.
type DropCounter interface {
	EventDropped()
}

// Server holds all dependencies for the REST API handlers.
type Server struct {
	notificationSvc service.NotificationService
	publisher       service.EventPublisher
	drops           DropCounter
	logger          *slog.Logger
	testLimiter     *rate.Limiter
}

// New creates a new API Server backed by the provided services. drops may be nil.
func New(notificationSvc service.NotificationService, publisher service.EventPublisher, drops DropCounter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		notificationSvc: notificationSvc,
		publisher:       publisher,
		drops:           drops,
		logger:          logger,
		testLimiter:     rate.NewLimiter(rate.Every(testMailInterval), testMailBurst),
	}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	// Project notifiers
	r.Get("/projects", s.handleListProjectNotifiers)
	r.Get("/projects/{name}/notifier", s.handleGetProjectNotifier)
	r.Put("/projects/{name}/notifier", s.handleUpdateProjectNotifier)
	r.Delete("/projects/{name}/notifier", s.handleDeleteProjectNotifier)
	r.Post("/projects/{name}/notifier/test", s.handleTestNotification)

	// Build events
	r.Post("/projects/{name}/builds/{label}/finished", s.handleBuildFinished)
	r.Post("/projects/{name}/builds/{label}/fixed", s.handleBuildFixed)

	// Site settings
	r.Get("/settings/site", s.handleGetSiteSettings)
	r.Put("/settings/site", s.handleUpdateSiteSettings)

	// Delivery log
	r.Get("/notifications/log", s.handleListNotificationLog)

	r.Get("/version", s.handleVersion)
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
