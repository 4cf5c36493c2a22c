//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
	"github.com/chaintrack/shipment-tracking-api/internal/platform/migrations"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("chaintrack_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func buildShipment(t *testing.T, id string, departure time.Time) *domain.Shipment {
	t.Helper()
	shipment, err := domain.NewShipment(id, "CT-"+id,
		domain.Party{ID: "supplier-1", Name: "Acme Farms"},
		domain.Party{ID: "retailer-9", Name: "City Grocers"},
		departure, departure.Add(24*time.Hour))
	require.NoError(t, err)
	return shipment
}

func saveProjection(t *testing.T, repo *Repository, shipment *domain.Shipment, at time.Time) {
	t.Helper()
	err := repo.Save(context.Background(), types.NewShipmentProjection(shipment, at, at))
	require.NoError(t, err)
}

func TestPostgresRepository_SaveAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	shipment := buildShipment(t, "ship-1", departure)
	shipment.SetRoute(&domain.Route{
		Origin:      domain.Location{Name: "Pune"},
		Destination: domain.Location{Name: "Mumbai"},
		Distance:    domain.Measurement{Value: 150, Unit: "km"},
	})
	shipment.ReplaceHandlingRequirements([]string{"fragile", "refrigerated"})
	hot := &domain.EnvironmentalReading{Temperature: &domain.Measurement{Value: 22, Unit: "Celsius"}}
	require.NoError(t, shipment.AppendCheckpoint(domain.Checkpoint{
		Location:    domain.Location{Name: "Distribution Hub", Coordinates: domain.Coordinates{Latitude: 18.52, Longitude: 73.85}},
		Environment: hot,
		Remarks:     "loaded",
	}, departure.Add(time.Hour)))
	saveProjection(t, repo, shipment, departure)

	retrieved, err := repo.GetByID(ctx, "ship-1")
	require.NoError(t, err)
	assert.Equal(t, "CT-ship-1", retrieved.Shipment.TrackingNumber)
	assert.Equal(t, domain.StatusInTransit, retrieved.Shipment.Status)
	require.Len(t, retrieved.Shipment.Checkpoints, 1)
	assert.Equal(t, "Distribution Hub", retrieved.Shipment.Checkpoints[0].Location.Name)
	require.NotNil(t, retrieved.Shipment.Checkpoints[0].Environment.Temperature)
	assert.Equal(t, 22.0, retrieved.Shipment.Checkpoints[0].Environment.Temperature.Value)
	assert.Equal(t, []string{"fragile", "refrigerated"}, retrieved.Shipment.HandlingRequirements)
	require.NotNil(t, retrieved.Shipment.Route)
	assert.Equal(t, 150.0, retrieved.Shipment.Route.Distance.Value)
	assert.False(t, retrieved.Metadata.CreatedAt.IsZero())
}

func TestPostgresRepository_GetByID_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresRepository_UpsertKeepsCreatedAt(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	shipment := buildShipment(t, "ship-1", departure)
	saveProjection(t, repo, shipment, departure)
	first, err := repo.GetByID(ctx, "ship-1")
	require.NoError(t, err)

	require.NoError(t, shipment.AppendCheckpoint(domain.Checkpoint{
		Location: domain.Location{Name: "Hub"},
	}, departure.Add(2*time.Hour)))
	err = repo.Save(ctx, types.NewShipmentProjection(shipment, departure, departure.Add(2*time.Hour)))
	require.NoError(t, err)

	updated, err := repo.GetByID(ctx, "ship-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInTransit, updated.Shipment.Status)
	assert.Equal(t, first.Metadata.CreatedAt.Unix(), updated.Metadata.CreatedAt.Unix())
	assert.True(t, updated.Metadata.UpdatedAt.After(updated.Metadata.CreatedAt))
}

func TestPostgresRepository_ListActive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		shipment := buildShipment(t, fmt.Sprintf("ship-%d", i), departure)
		if i == 3 {
			require.NoError(t, shipment.AppendCheckpoint(domain.Checkpoint{Location: domain.Location{Name: "Hub"}}, departure))
			require.NoError(t, shipment.MarkDelivered(departure.Add(20*time.Hour)))
		}
		saveProjection(t, repo, shipment, departure)
	}

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "ship-1", active[0].Shipment.ID)
	assert.Equal(t, "ship-2", active[1].Shipment.ID)
}

func TestPostgresRepository_QueryDelivered(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	for i := 1; i <= 4; i++ {
		shipment := buildShipment(t, fmt.Sprintf("ship-%d", i), departure)
		require.NoError(t, shipment.AppendCheckpoint(domain.Checkpoint{Location: domain.Location{Name: "Hub"}}, departure))
		require.NoError(t, shipment.MarkDelivered(departure.Add(time.Duration(20+i)*time.Hour)))
		saveProjection(t, repo, shipment, departure)
	}
	pending := buildShipment(t, "ship-pending", departure)
	saveProjection(t, repo, pending, departure)

	delivered, err := repo.QueryDelivered(ctx, "supplier-1", 3)
	require.NoError(t, err)
	require.Len(t, delivered, 3)
	assert.Equal(t, "ship-4", delivered[0].Shipment.ID, "most recent arrival first")

	none, err := repo.QueryDelivered(ctx, "unknown-party", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
