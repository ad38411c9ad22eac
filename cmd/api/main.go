package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/anafuentes/pressroute-backend/api/controllers"
	"github.com/anafuentes/pressroute-backend/api/routes"
	"github.com/anafuentes/pressroute-backend/internal/auth"
	"github.com/anafuentes/pressroute-backend/internal/companies"
	"github.com/anafuentes/pressroute-backend/internal/events"
	"github.com/anafuentes/pressroute-backend/internal/locations"
	"github.com/anafuentes/pressroute-backend/internal/pickups"
	"github.com/anafuentes/pressroute-backend/internal/pricelists"
	routesvc "github.com/anafuentes/pressroute-backend/internal/routes"
	"github.com/anafuentes/pressroute-backend/internal/settings"
	"github.com/anafuentes/pressroute-backend/internal/users"
	"github.com/anafuentes/pressroute-backend/pkg/auth/session"
	"github.com/anafuentes/pressroute-backend/pkg/config"
	"github.com/anafuentes/pressroute-backend/pkg/db"
	"github.com/anafuentes/pressroute-backend/pkg/logger"
	"github.com/anafuentes/pressroute-backend/pkg/mail"
	"github.com/anafuentes/pressroute-backend/pkg/metrics"
	"github.com/anafuentes/pressroute-backend/pkg/migrate"
	"github.com/anafuentes/pressroute-backend/pkg/pubsub"
	"github.com/anafuentes/pressroute-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	mailSender, err := mail.NewResendSender(cfg.Resend)
	if err != nil {
		logg.Error(ctx, "failed to create mail sender", err)
		os.Exit(1)
	}

	healthChecks := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	// Pub/Sub is optional for the API: without a project the event
	// stream degrades to database rows only.
	var pubsubClient *pubsub.Client
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err = pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(ctx, "error closing pubsub", err)
			}
		}()
		healthChecks["pubsub"] = pubsubClient
	}

	gdb := dbClient.DB()

	var eventService events.Service
	if pubsubClient != nil {
		eventService = events.NewService(events.NewRepository(gdb), pubsubClient.EventsPublisher(), logg)
	} else {
		eventService = events.NewService(events.NewRepository(gdb), nil, logg)
	}

	userRepo := users.NewRepository(gdb)
	settingsService := settings.NewService(settings.NewRepository(gdb), cfg.Scheduling)
	routeRepo := routesvc.NewRepository(gdb)
	pricelistRepo := pricelists.NewRepository(gdb)
	locationRepo := locations.NewRepository(gdb)

	authService, err := auth.NewService(auth.ServiceParams{
		OTPRepo:        auth.NewOTPRepository(gdb),
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		MailSender:     mailSender,
		Limiter:        redisClient,
		Events:         eventService,
		JWTConfig:      cfg.JWT,
		OTPConfig:      cfg.OTP,
		RateConfig:     cfg.AuthRateLimit,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	svcs := routes.Services{
		Auth:       authService,
		Users:      users.NewService(userRepo),
		Companies:  companies.NewService(companies.NewRepository(gdb), userRepo),
		Locations:  locations.NewService(locationRepo),
		Routes:     routesvc.NewService(routeRepo, pricelistRepo, settingsService),
		Pricelists: pricelists.NewService(pricelistRepo),
		Pickups:    pickups.NewService(pickups.NewRepository(gdb), routeRepo, locationRepo, pricelistRepo, settingsService, eventService),
		Settings:   settingsService,
		Events:     eventService,
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, httpMetrics, healthChecks, redisClient, sessionManager, svcs),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(runCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "graceful shutdown failed", err)
		}
	}
}
