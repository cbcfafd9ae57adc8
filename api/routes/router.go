package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aresconnect/ares-connect-backend/api/controllers"
	"github.com/aresconnect/ares-connect-backend/api/middleware"
	"github.com/aresconnect/ares-connect-backend/internal/acknowledgments"
	"github.com/aresconnect/ares-connect-backend/internal/alerts"
	"github.com/aresconnect/ares-connect-backend/internal/notifications"
	"github.com/aresconnect/ares-connect-backend/internal/realtime"
	"github.com/aresconnect/ares-connect-backend/internal/roster"
	"github.com/aresconnect/ares-connect-backend/internal/status"
	"github.com/aresconnect/ares-connect-backend/pkg/config"
	"github.com/aresconnect/ares-connect-backend/pkg/db"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
	"github.com/aresconnect/ares-connect-backend/pkg/redis"
)

// NewRouter mounts the alert API. dbP, redisClient, stream and metricsHandler may be nil when the
// corresponding component is not configured.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	alertService alerts.Service,
	ackService acknowledgments.Service,
	statusService status.Service,
	notificationsService notifications.Service,
	members roster.MemberCounter,
	stream controllers.StreamServer,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Realtime.AllowedOrigins),
	)

	// A nil *redis.Client must not reach the interfaces as a typed nil.
	var (
		idempotencyStore redis.IdempotencyStore
		redisPinger      redis.Pinger
	)
	if redisClient != nil {
		idempotencyStore = redisClient
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/groups/{groupId}", func(r chi.Router) {
			r.Use(middleware.GroupMatch(logg))

			r.Get("/alerts", controllers.ListAlerts(alertService, logg))
			r.With(middleware.RequireAdminCapable(logg)).Post("/alerts", controllers.CreateAlert(alertService, logg))
			r.Get("/status", controllers.GroupStatus(statusService, logg))
			r.Get("/notifications", controllers.ListNotifications(notificationsService, logg))
			if stream != nil && cfg.Realtime.Enabled {
				r.Get("/stream", controllers.GroupStream(stream, realtime.Upgrader(cfg.Realtime.AllowedOrigins), logg))
			}
		})

		r.Route("/alerts/{alertId}", func(r chi.Router) {
			r.Get("/", controllers.GetAlert(alertService, logg))
			r.Get("/acknowledgments", controllers.ListAcknowledgments(alertService, ackService, logg))
			r.Post("/acknowledgments", controllers.Acknowledge(alertService, ackService, logg))
			r.Get("/acknowledgments/me", controllers.MyAcknowledgment(alertService, ackService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdminCapable(logg))
				r.Patch("/", controllers.UpdateAlert(alertService, logg))
				r.Delete("/", controllers.DeleteAlert(alertService, logg))
				r.Get("/stats", controllers.AlertStats(alertService, ackService, members, logg))
			})
		})
	})

	return r
}
