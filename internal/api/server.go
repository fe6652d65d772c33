// Package api exposes the expense ledger over JSON REST.
//
// All routes under /api except auth and health require a Bearer token.
// Responses use a {"success": bool} envelope; errors carry a "message".
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evenlyhq/evenly/internal/auth"
	"github.com/evenlyhq/evenly/internal/config"
	"github.com/evenlyhq/evenly/internal/events"
	"github.com/evenlyhq/evenly/internal/metrics"
	"github.com/evenlyhq/evenly/internal/models"
	"github.com/evenlyhq/evenly/internal/storage"
)

const requestTimeout = 30 * time.Second

// Server holds the HTTP layer's dependencies and implements the handlers.
type Server struct {
	store     storage.Store
	auth      auth.Authenticator
	jwt       *auth.JWTManager
	publisher events.Publisher
	metrics   *metrics.Metrics
	cfg       *config.Config
	validate  *validator.Validate
}

// NewServer wires the API layer. metrics may be nil to disable
// instrumentation, as in tests.
func NewServer(store storage.Store, authenticator auth.Authenticator, jwt *auth.JWTManager, publisher events.Publisher, m *metrics.Metrics, cfg *config.Config) *Server {
	return &Server{
		store:     store,
		auth:      authenticator,
		jwt:       jwt,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		validate:  validator.New(),
	}
}

// Router builds the full route tree with the standard middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(s.secureHeaders)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)

	r.Get("/api/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(s.cfg.AuthRateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/me", s.handleMe)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/api/users", func(r chi.Router) {
			r.Put("/profile", s.handleUpdateProfile)
			r.Get("/search", s.handleSearchUsers)
		})

		r.Route("/api/groups", func(r chi.Router) {
			r.Post("/", s.handleCreateGroup)
			r.Get("/", s.handleListGroups)
			r.Get("/{id}", s.handleGetGroup)
			r.Delete("/{id}", s.handleArchiveGroup)
			r.Post("/{id}/members", s.handleAddMember)
			r.Delete("/{id}/members/{userId}", s.handleRemoveMember)
			r.Get("/{id}/balances", s.handleGroupBalances)
		})

		r.Route("/api/expenses", func(r chi.Router) {
			r.Post("/", s.handleCreateExpense)
			r.Get("/my", s.handleMyExpenses)
			r.Get("/group/{groupId}", s.handleGroupExpenses)
			r.Get("/{id}", s.handleGetExpense)
			r.Put("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Route("/api/settlements", func(r chi.Router) {
			r.Post("/", s.handleCreateSettlement)
			r.Get("/group/{groupId}", s.handleGroupSettlements)
			r.Delete("/{id}", s.handleDeleteSettlement)
		})

		r.Get("/api/analytics/dashboard", s.handleDashboard)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// publish sends a group event without failing the request on error.
func (s *Server) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish event",
			"type", event.Type,
			"group_id", event.GroupID,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.IncrementEventPublishFailures()
		}
	}
}

// loadUsers fetches the users referenced by the given ids, deduplicated.
func (s *Server) loadUsers(ctx context.Context, ids []models.UserID) (map[models.UserID]*models.User, error) {
	seen := make(map[models.UserID]struct{}, len(ids))
	unique := make([]models.UserID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return map[models.UserID]*models.User{}, nil
	}
	return s.store.GetUsersByIDs(ctx, unique)
}
