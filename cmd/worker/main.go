package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	shipmemory "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/memory"
	shipobs "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/observability"
	shippostgres "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/persistence/postgres"
	shipapp "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application"
	shipports "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
	shipactivities "github.com/chaintrack/shipment-tracking-api/internal/durable/temporal/activities/shipments"
	shipworkflows "github.com/chaintrack/shipment-tracking-api/internal/durable/temporal/workflows/shipments"
	platformobservability "github.com/chaintrack/shipment-tracking-api/internal/platform/observability"
	platformpostgres "github.com/chaintrack/shipment-tracking-api/internal/platform/postgres"
	"github.com/chaintrack/shipment-tracking-api/internal/shared/locker"
)

func main() {
	ctx := context.Background()
	const serviceName = "shipment-tracking-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, cleanupRepo := buildShipmentRepository(ctx, logger)
	defer cleanupRepo()
	coreService := shipapp.NewService(repo, locker.New(), shipapp.WithLogger(logger))
	shipmentService := shipobs.New(
		coreService,
		shipobs.WithLogger(logger),
		shipobs.WithTracer(instruments.Tracer("internal.shipments.application")),
		shipobs.WithMeter(instruments.Meter("internal.shipments.application")),
	)
	activities := shipactivities.NewActivities(shipmentService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, shipworkflows.ShipmentCreationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(shipworkflows.ShipmentCreationWorkflow, workflow.RegisterOptions{Name: shipworkflows.ShipmentCreationWorkflowName})
	w.RegisterActivityWithOptions(activities.PersistShipment, activity.RegisterOptions{Name: shipactivities.PersistShipmentActivityName})

	logger.Info("worker listening", slog.String("taskQueue", shipworkflows.ShipmentCreationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildShipmentRepository(ctx context.Context, logger *slog.Logger) (shipports.Repository, func()) {
	dsn := os.Getenv("POSTGRES_DSN")
	if strings.TrimSpace(dsn) == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory shipment repository")
		return shipmemory.NewRepository(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		logger.Warn("worker failed to connect to postgres (falling back to memory)", slog.String("error", err.Error()))
		return shipmemory.NewRepository(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("worker failed to unwrap postgres connection (falling back to memory)", slog.String("error", err.Error()))
		return shipmemory.NewRepository(), func() {}
	}
	logger.Info("worker shipment repository configured with postgres")
	return shippostgres.NewRepository(db), func() { _ = sqlDB.Close() }
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
