package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/aresconnect/ares-connect-backend/api/controllers"
	"github.com/aresconnect/ares-connect-backend/api/routes"
	"github.com/aresconnect/ares-connect-backend/internal/acknowledgments"
	"github.com/aresconnect/ares-connect-backend/internal/alerts"
	"github.com/aresconnect/ares-connect-backend/internal/notifications"
	"github.com/aresconnect/ares-connect-backend/internal/realtime"
	"github.com/aresconnect/ares-connect-backend/internal/roster"
	"github.com/aresconnect/ares-connect-backend/internal/status"
	"github.com/aresconnect/ares-connect-backend/internal/store/memory"
	"github.com/aresconnect/ares-connect-backend/pkg/config"
	"github.com/aresconnect/ares-connect-backend/pkg/db"
	"github.com/aresconnect/ares-connect-backend/pkg/events/idempotency"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
	"github.com/aresconnect/ares-connect-backend/pkg/metrics"
	"github.com/aresconnect/ares-connect-backend/pkg/migrate"
	"github.com/aresconnect/ares-connect-backend/pkg/nats"
	"github.com/aresconnect/ares-connect-backend/pkg/pubsub"
	"github.com/aresconnect/ares-connect-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	alertMetrics := metrics.NewAlertMetrics(registry)

	var closers []io.Closer
	defer func() {
		var closeErr error
		for i := len(closers) - 1; i >= 0; i-- {
			closeErr = multierr.Append(closeErr, closers[i].Close())
		}
		if closeErr != nil {
			logg.Error(ctx, "error releasing resources", closeErr)
		}
	}()

	var (
		alertRepo  alerts.Repository
		ackRepo    acknowledgments.Repository
		feedRepo   notifications.Repository
		members    roster.MemberCounter = roster.StaticCounter(cfg.Roster.StaticMemberCount)
		dbClient   *db.Client
		dbPinger   db.Pinger
		storeLabel = config.StoreDriverMemory
	)
	if cfg.Store.UsesDatabase() {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		requireResource(ctx, logg, "database", err)
		closers = append(closers, dbClient)

		requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

		alertRepo = alerts.NewRepository(dbClient.DB())
		ackRepo = acknowledgments.NewRepository(dbClient.DB())
		feedRepo = notifications.NewRepository(dbClient.DB())
		members = roster.NewRepository(dbClient.DB())
		dbPinger = dbClient
		storeLabel = config.StoreDriverGorm
	} else {
		store := memory.New()
		alertRepo = store
		ackRepo = store
	}

	var (
		redisClient *redis.Client
		markers     *idempotency.Manager
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		closers = append(closers, redisClient)

		markers, err = idempotency.NewManager(redisClient, cfg.Notifications.IdempotencyTTL)
		requireResource(ctx, logg, "idempotency manager", err)
	}

	var channels []notifications.Channel
	if cfg.PubSub.Enabled() {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		requireResource(ctx, logg, "pubsub", err)
		closers = append(closers, pubsubClient)

		channel, err := notifications.NewPubSubChannel(pubsubClient.NotificationPublisher())
		requireResource(ctx, logg, "pubsub channel", err)
		channels = append(channels, channel)
	}
	if cfg.NATS.Enabled() {
		natsClient, err := nats.New(ctx, cfg.NATS, logg)
		requireResource(ctx, logg, "nats", err)
		closers = append(closers, natsClient)

		channel, err := notifications.NewNATSChannel(natsClient)
		requireResource(ctx, logg, "nats channel", err)
		channels = append(channels, channel)
	}
	if feedRepo != nil && (cfg.Notifications.InboxDirect || !cfg.PubSub.Enabled()) {
		channel, err := notifications.NewInboxChannel(feedRepo)
		requireResource(ctx, logg, "inbox channel", err)
		channels = append(channels, channel)
	}

	var (
		hub    *realtime.Hub
		stream controllers.StreamServer
	)
	if cfg.Realtime.Enabled {
		hub, err = realtime.NewHub(logg, alertMetrics)
		requireResource(ctx, logg, "realtime hub", err)
		channels = append(channels, hub)
		stream = hub
	}

	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Channels:    channels,
		Idempotency: markers,
		Logger:      logg,
		Metrics:     alertMetrics,
		Workers:     cfg.Notifications.Workers,
		QueueSize:   cfg.Notifications.QueueSize,
		SendTimeout: cfg.Notifications.SendTimeout,
	})
	requireResource(ctx, logg, "notification dispatcher", err)

	alertService, err := alerts.NewService(alerts.ServiceParams{
		Repo:      alertRepo,
		Publisher: dispatcher,
		Logger:    logg,
		Metrics:   alertMetrics,
	})
	requireResource(ctx, logg, "alert service", err)

	ackService, err := acknowledgments.NewService(acknowledgments.ServiceParams{
		Repo:      ackRepo,
		Publisher: dispatcher,
		Logger:    logg,
		Metrics:   alertMetrics,
	})
	requireResource(ctx, logg, "acknowledgment service", err)

	statusService, err := status.NewService(alertService)
	requireResource(ctx, logg, "status service", err)

	var notificationsService notifications.Service
	if feedRepo != nil {
		notificationsService, err = notifications.NewService(feedRepo)
		requireResource(ctx, logg, "notifications service", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	handler := routes.NewRouter(
		cfg,
		logg,
		dbPinger,
		redisClient,
		alertService,
		ackService,
		statusService,
		notificationsService,
		members,
		stream,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"store":    storeLabel,
		"channels": len(channels),
	})
	logg.Info(runCtx, "starting api server")

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		return dispatcher.Run(groupCtx)
	})
	if hub != nil {
		group.Go(func() error {
			return hub.Run(groupCtx)
		})
	}
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
