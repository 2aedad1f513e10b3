package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicassistant/internal/adapters/cache"
	"github.com/zatekoja/clinicassistant/internal/adapters/credentials"
	"github.com/zatekoja/clinicassistant/internal/adapters/database"
	"github.com/zatekoja/clinicassistant/internal/adapters/events"
	"github.com/zatekoja/clinicassistant/internal/adapters/tables"
	"github.com/zatekoja/clinicassistant/internal/api/handlers"
	"github.com/zatekoja/clinicassistant/internal/api/middleware"
	"github.com/zatekoja/clinicassistant/internal/api/routes"
	"github.com/zatekoja/clinicassistant/internal/application/services"
	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	"github.com/zatekoja/clinicassistant/internal/domain/repositories"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/clients/jamai"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/clients/redis"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/notifications"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/observability"
	"github.com/zatekoja/clinicassistant/pkg/config"
	"github.com/zatekoja/clinicassistant/pkg/secrets"
)

func main() {
	// Vault secrets must be in the environment before config is read
	if _, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load Vault secrets: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Environment, cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	if !cfg.JamAI.Configured() {
		log.Warn().Msg("JAMAI_API_KEY is not set; chat, booking and admin endpoints will report a configuration error")
	}

	jamaiClient, err := jamai.NewClient(&cfg.JamAI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize gen_tables client")
	}
	defer jamaiClient.Close()

	healthChecks := map[string]handlers.Pinger{}

	// Redis backs the diagnostics cache and the dashboard event stream
	var (
		cacheProvider providers.CacheProvider
		eventBus      providers.EventBus
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without cache and event stream")
		} else {
			defer redisClient.Close()
			healthChecks["redis"] = redisClient

			cacheProvider = cache.NewRedisAdapter(redisClient, "clinic:")
			eventBus = events.NewRedisEventBus(redisClient)
			defer eventBus.Close()

			invalidation := services.NewCacheInvalidationService(cacheProvider, eventBus)
			if err := invalidation.Start(); err != nil {
				log.Warn().Err(err).Msg("Failed to start cache invalidation")
			}
			defer invalidation.Stop()
		}
	}

	// PostgreSQL keeps the appointment audit log
	var audit repositories.AuditRepository
	if cfg.Database.Enabled {
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			log.Warn().Err(err).Msg("Audit database unavailable, continuing without history")
		} else {
			defer pgClient.Close()
			auditAdapter := database.NewAuditAdapter(pgClient)
			if err := auditAdapter.EnsureSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to prepare audit schema, continuing without history")
			} else {
				healthChecks["postgres"] = pgClient
				audit = auditAdapter
			}
		}
	}

	var notifier providers.ConfirmationNotifier
	if cfg.WhatsApp.Enabled() {
		sender, err := notifications.NewWhatsAppCloudSender(&cfg.WhatsApp)
		if err != nil {
			log.Warn().Err(err).Msg("WhatsApp sender disabled")
		} else {
			notifier = sender
			log.Info().Msg("WhatsApp confirmations enabled")
		}
	}

	appointmentRepo := tables.NewAppointmentAdapter(jamaiClient, cfg.JamAI.AppointmentTableID)
	credentialRepo := credentials.NewFileAdapter(cfg.Admin.CredentialsPath)

	chatService := services.NewChatService(jamaiClient, &cfg.JamAI)
	appointmentService := services.NewAppointmentService(appointmentRepo, &cfg.JamAI, eventBus, audit, notifier)
	adminAppointmentService := services.NewAdminAppointmentService(appointmentRepo, &cfg.JamAI, eventBus, audit)
	adminAuthService := services.NewAdminAuthService(credentialRepo)
	diagnosticsService := services.NewDiagnosticsService(jamaiClient, &cfg.JamAI)

	h := routes.Handlers{
		Health:            handlers.NewHealthHandler(healthChecks),
		Chat:              handlers.NewChatHandler(chatService),
		Appointment:       handlers.NewAppointmentHandler(appointmentService),
		AdminAuth:         handlers.NewAdminAuthHandler(adminAuthService),
		AdminAppointments: handlers.NewAdminAppointmentsHandler(adminAppointmentService),
		Diagnostics:       handlers.NewDiagnosticsHandler(diagnosticsService),
		HistoryEnabled:    audit != nil,
	}
	if eventBus != nil {
		h.SSE = handlers.NewSSEHandler(eventBus)
	}

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics, middleware.DefaultCacheTTLSeconds)
	}

	router := routes.NewRouter(h, cfg.CORS.AllowedOrigins, cacheMiddleware, metrics)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		// No write deadline: the dashboard event stream stays open until the client leaves
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
