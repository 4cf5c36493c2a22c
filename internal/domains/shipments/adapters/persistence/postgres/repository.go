package postgres

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
	"github.com/chaintrack/shipment-tracking-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists shipments in PostgreSQL using GORM-mapped columns.
// Structured sub-documents (checkpoints, alerts, route) are stored as JSONB
// since they are always read and written with the aggregate.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB
// lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		if err := db.AutoMigrate(&shipmentRecord{}); err != nil {
			log.Printf("postgres repository migration failed: %v", err)
		}
	}
	return repo
}

type shipmentRecord struct {
	ID                   string                  `gorm:"primaryKey;column:id;size:64"`
	TrackingNumber       string                  `gorm:"column:tracking_number;uniqueIndex"`
	FromPartyID          string                  `gorm:"column:from_party_id;index"`
	FromName             string                  `gorm:"column:from_name"`
	FromOrganization     string                  `gorm:"column:from_organization"`
	ToPartyID            string                  `gorm:"column:to_party_id;index"`
	ToName               string                  `gorm:"column:to_name"`
	ToOrganization       string                  `gorm:"column:to_organization"`
	DepartureTime        time.Time               `gorm:"column:departure_time"`
	ExpectedArrival      time.Time               `gorm:"column:expected_arrival;index"`
	ActualArrival        *time.Time              `gorm:"column:actual_arrival;index"`
	Status               string                  `gorm:"column:status;type:varchar(16);index"`
	Checkpoints          []domain.Checkpoint     `gorm:"column:checkpoints;serializer:json;type:jsonb"`
	Route                *domain.Route           `gorm:"column:route;serializer:json;type:jsonb"`
	CurrentLocation      *domain.CurrentLocation `gorm:"column:current_location;serializer:json;type:jsonb"`
	Vehicle              *domain.VehicleInfo     `gorm:"column:vehicle;serializer:json;type:jsonb"`
	SpecialInstructions  string                  `gorm:"column:special_instructions"`
	HandlingRequirements pq.StringArray          `gorm:"column:handling_requirements;type:text[]"`
	LastPrediction       *domain.Prediction      `gorm:"column:last_prediction;serializer:json;type:jsonb"`
	LastRisk             *domain.RiskScore       `gorm:"column:last_risk;serializer:json;type:jsonb"`
	Alerts               []domain.Alert          `gorm:"column:alerts;serializer:json;type:jsonb"`
	Extensions           map[string]string       `gorm:"column:extensions;serializer:json;type:jsonb"`
	CreatedAt            time.Time               `gorm:"column:created_at"`
	UpdatedAt            time.Time               `gorm:"column:updated_at"`
}

func (shipmentRecord) TableName() string { return "shipments" }

func newShipmentRecord(p *types.ShipmentProjection) shipmentRecord {
	s := p.Shipment
	return shipmentRecord{
		ID:                   s.ID,
		TrackingNumber:       s.TrackingNumber,
		FromPartyID:          s.From.ID,
		FromName:             s.From.Name,
		FromOrganization:     s.From.Organization,
		ToPartyID:            s.To.ID,
		ToName:               s.To.Name,
		ToOrganization:       s.To.Organization,
		DepartureTime:        s.DepartureTime,
		ExpectedArrival:      s.ExpectedArrival,
		ActualArrival:        s.ActualArrival,
		Status:               string(s.Status),
		Checkpoints:          s.Checkpoints,
		Route:                s.Route,
		CurrentLocation:      s.CurrentLocation,
		Vehicle:              s.Vehicle,
		SpecialInstructions:  s.SpecialInstructions,
		HandlingRequirements: copyStringArray(s.HandlingRequirements),
		LastPrediction:       s.LastPrediction,
		LastRisk:             s.LastRisk,
		Alerts:               s.Alerts,
		Extensions:           s.Extensions,
		CreatedAt:            p.Metadata.CreatedAt,
		UpdatedAt:            p.Metadata.UpdatedAt,
	}
}

// Save inserts or updates a shipment aggregate.
func (r *Repository) Save(ctx context.Context, p *types.ShipmentProjection) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if p == nil || p.Shipment == nil {
		return errors.New("cannot save nil shipment")
	}
	record := newShipmentRecord(p)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"tracking_number":       record.TrackingNumber,
				"from_party_id":         record.FromPartyID,
				"from_name":             record.FromName,
				"from_organization":     record.FromOrganization,
				"to_party_id":           record.ToPartyID,
				"to_name":               record.ToName,
				"to_organization":       record.ToOrganization,
				"departure_time":        record.DepartureTime,
				"expected_arrival":      record.ExpectedArrival,
				"actual_arrival":        record.ActualArrival,
				"status":                record.Status,
				"checkpoints":           record.Checkpoints,
				"route":                 record.Route,
				"current_location":      record.CurrentLocation,
				"vehicle":               record.Vehicle,
				"special_instructions":  record.SpecialInstructions,
				"handling_requirements": record.HandlingRequirements,
				"last_prediction":       record.LastPrediction,
				"last_risk":             record.LastRisk,
				"alerts":                record.Alerts,
				"extensions":            record.Extensions,
				"updated_at":            record.UpdatedAt,
			}),
		}).Create(&record).Error
}

// GetByID fetches a shipment by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*types.ShipmentProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record shipmentRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// ListActive returns every shipment that has not reached a terminal status,
// ordered by ID for deterministic sweeps.
func (r *Repository) ListActive(ctx context.Context) ([]*types.ShipmentProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	active := []string{
		string(domain.StatusPending),
		string(domain.StatusInTransit),
		string(domain.StatusDelayed),
	}
	var records []shipmentRecord
	if err := r.db.WithContext(ctx).
		Where("status IN ?", active).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return recordsToProjections(records), nil
}

// QueryDelivered returns up to limit delivered shipments originating from
// the given party, most recent arrival first.
func (r *Repository) QueryDelivered(ctx context.Context, originPartyID string, limit int) ([]*types.ShipmentProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).
		Where("from_party_id = ? AND status = ? AND actual_arrival IS NOT NULL", originPartyID, string(domain.StatusDelivered)).
		Order("actual_arrival DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []shipmentRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return recordsToProjections(records), nil
}

func recordsToProjections(records []shipmentRecord) []*types.ShipmentProjection {
	list := make([]*types.ShipmentProjection, 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list
}

func (r *shipmentRecord) toProjection() *types.ShipmentProjection {
	if r == nil {
		return nil
	}
	shipment := &domain.Shipment{
		ID:             r.ID,
		TrackingNumber: r.TrackingNumber,
		From: domain.Party{
			ID:           r.FromPartyID,
			Name:         r.FromName,
			Organization: r.FromOrganization,
		},
		To: domain.Party{
			ID:           r.ToPartyID,
			Name:         r.ToName,
			Organization: r.ToOrganization,
		},
		DepartureTime:        r.DepartureTime,
		ExpectedArrival:      r.ExpectedArrival,
		ActualArrival:        r.ActualArrival,
		Status:               domain.Status(r.Status),
		Checkpoints:          r.Checkpoints,
		Route:                r.Route,
		CurrentLocation:      r.CurrentLocation,
		Vehicle:              r.Vehicle,
		SpecialInstructions:  r.SpecialInstructions,
		HandlingRequirements: append([]string(nil), r.HandlingRequirements...),
		LastPrediction:       r.LastPrediction,
		LastRisk:             r.LastRisk,
		Alerts:               r.Alerts,
		Extensions:           r.Extensions,
	}
	return &types.ShipmentProjection{
		Shipment: shipment.Clone(),
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres repository not configured")
	}
	return nil
}

func copyStringArray(values []string) pq.StringArray {
	if len(values) == 0 {
		return nil
	}
	return pq.StringArray(append([]string{}, values...))
}
