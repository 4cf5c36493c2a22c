package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"

	apiapp "github.com/chaintrack/shipment-tracking-api/internal/app/api"
	shipmemory "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/memory"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/notify/redispub"
	shippostgres "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/persistence/postgres"
	shipapp "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application"
	shipports "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
	platformpostgres "github.com/chaintrack/shipment-tracking-api/internal/platform/postgres"
	"github.com/chaintrack/shipment-tracking-api/internal/shared/locker"
)

const defaultSweepIntervalMinutes = 15

// The sweeper periodically re-evaluates active shipments so overdue ones
// transition to Delayed even when nobody touches them over the API.
func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := apiapp.LoadConfig()
	if err != nil {
		log.Fatalf("invalid sweeper configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	service, cleanup := buildSweepService(cfg, logger)
	defer cleanup()

	if *once {
		runSweep(service, logger)
		return
	}

	interval := cfg.SweepIntervalMinutes
	if interval <= 0 {
		interval = defaultSweepIntervalMinutes
	}
	schedule := fmt.Sprintf("@every %dm", interval)
	c := cron.New()
	if err := c.AddFunc(schedule, func() { runSweep(service, logger) }); err != nil {
		log.Fatalf("failed to schedule sweep: %v", err)
	}
	logger.Info("delay sweeper started", slog.Int("intervalMinutes", interval))
	c.Start()
	select {}
}

func runSweep(service shipports.Service, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	result, err := service.EvaluateDelaySweep(ctx)
	if err != nil {
		logger.Error("delay sweep failed", slog.String("error", err.Error()))
		return
	}
	logger.Info("delay sweep completed",
		slog.Int("evaluated", result.Evaluated),
		slog.Int("transitioned", result.Transitioned),
	)
}

func buildSweepService(cfg apiapp.Config, logger *slog.Logger) (shipports.Service, func()) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var repo shipports.Repository
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, sweeping an empty in-memory repository")
		repo = shipmemory.NewRepository()
	} else {
		ctx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelConnect()
		db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("failed to unwrap postgres connection: %v", err)
		}
		cleanups = append(cleanups, func() { _ = sqlDB.Close() })
		repo = shippostgres.NewRepository(db)
	}

	opts := []shipapp.Option{shipapp.WithLogger(logger)}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cleanups = append(cleanups, func() { _ = client.Close() })
		opts = append(opts, shipapp.WithNotifier(redispub.New(client, cfg.RedisChannel)))
	}
	return shipapp.NewService(repo, locker.New(), opts...), cleanup
}
