package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	analyticscache "github.com/chaintrack/shipment-tracking-api/internal/domains/analytics/adapters/cachemem"
	analyticssource "github.com/chaintrack/shipment-tracking-api/internal/domains/analytics/adapters/shipmentsource"
	analyticsapp "github.com/chaintrack/shipment-tracking-api/internal/domains/analytics/application"
	shipmemory "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/memory"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/notify/redispub"
	shipobs "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/observability"
	shippostgres "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/persistence/postgres"
	shipworkflows "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/workflows"
	shipapp "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application"
	shipports "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
	"github.com/chaintrack/shipment-tracking-api/internal/httpapi"
	platformobservability "github.com/chaintrack/shipment-tracking-api/internal/platform/observability"
	platformpostgres "github.com/chaintrack/shipment-tracking-api/internal/platform/postgres"
	"github.com/chaintrack/shipment-tracking-api/internal/shared/locker"
)

// Run boots the shipment tracking HTTP API with observability, repositories,
// notifications, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "shipment-tracking-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, cleanupRepo := buildShipmentRepository(ctx, cfg, logger)
	defer cleanupRepo()

	sink, cleanupSink := buildAlertSink(cfg, logger)
	defer cleanupSink()

	locks := locker.New()
	coreOpts := []shipapp.Option{shipapp.WithLogger(logger)}
	if sink != nil {
		coreOpts = append(coreOpts, shipapp.WithNotifier(sink))
	}
	coreService := shipapp.NewService(repo, locks, coreOpts...)
	shipmentService := shipobs.New(
		coreService,
		shipobs.WithLogger(logger),
		shipobs.WithTracer(instruments.Tracer("internal.shipments.application")),
		shipobs.WithMeter(instruments.Meter("internal.shipments.application")),
	)

	var workflows shipports.WorkflowOrchestrator = shipworkflows.NewInlineShipmentWorkflows(shipmentService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running inline shipment creation", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		workflows = shipworkflows.NewTemporalShipmentWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	analyticsService := analyticsapp.NewService(
		analyticssource.New(repo),
		analyticsapp.WithCache(analyticscache.New()),
		analyticsapp.WithRecorder(coreService),
		analyticsapp.WithLogger(logger),
	)

	handlers := httpapi.ApiHandleFunctions{
		ShipmentAPI:  httpapi.NewShipmentAPI(shipmentService, workflows),
		AnalyticsAPI: httpapi.NewAnalyticsAPI(analyticsService),
	}

	router := httpapi.NewRouter(handlers, httpapi.WithMiddleware(otelgin.Middleware(serviceName)))
	addr := ":" + cfg.Port
	logger.Info("shipment tracking API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("shipment tracking API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func buildShipmentRepository(ctx context.Context, cfg Config, logger *slog.Logger) (shipports.Repository, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory shipment repository")
		return shipmemory.NewRepository(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return shipmemory.NewRepository(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return shipmemory.NewRepository(), func() {}
	}
	logger.Info("shipment repository configured with postgres")
	return shippostgres.NewRepository(db), func() { _ = sqlDB.Close() }
}

func buildAlertSink(cfg Config, logger *slog.Logger) (shipports.NotificationSink, func()) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, alert events will not be published")
		return nil, func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	logger.Info("alert publisher configured with redis", slog.String("addr", cfg.RedisAddr))
	return redispub.New(client, cfg.RedisChannel), func() { _ = client.Close() }
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.Default()
}
