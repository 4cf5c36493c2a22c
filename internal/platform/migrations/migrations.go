package migrations

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&shipmentRecord{},
	)
}

// Shipment schema mirrors the shipments Postgres adapter.
type shipmentRecord struct {
	ID                   string          `gorm:"primaryKey;column:id;size:64"`
	TrackingNumber       string          `gorm:"column:tracking_number;uniqueIndex"`
	FromPartyID          string          `gorm:"column:from_party_id;index"`
	FromName             string          `gorm:"column:from_name"`
	FromOrganization     string          `gorm:"column:from_organization"`
	ToPartyID            string          `gorm:"column:to_party_id;index"`
	ToName               string          `gorm:"column:to_name"`
	ToOrganization       string          `gorm:"column:to_organization"`
	DepartureTime        time.Time       `gorm:"column:departure_time"`
	ExpectedArrival      time.Time       `gorm:"column:expected_arrival;index"`
	ActualArrival        *time.Time      `gorm:"column:actual_arrival;index"`
	Status               string          `gorm:"column:status;type:varchar(16);index"`
	Checkpoints          json.RawMessage `gorm:"column:checkpoints;type:jsonb"`
	Route                json.RawMessage `gorm:"column:route;type:jsonb"`
	CurrentLocation      json.RawMessage `gorm:"column:current_location;type:jsonb"`
	Vehicle              json.RawMessage `gorm:"column:vehicle;type:jsonb"`
	SpecialInstructions  string          `gorm:"column:special_instructions"`
	HandlingRequirements pq.StringArray  `gorm:"column:handling_requirements;type:text[]"`
	LastPrediction       json.RawMessage `gorm:"column:last_prediction;type:jsonb"`
	LastRisk             json.RawMessage `gorm:"column:last_risk;type:jsonb"`
	Alerts               json.RawMessage `gorm:"column:alerts;type:jsonb"`
	Extensions           json.RawMessage `gorm:"column:extensions;type:jsonb"`
	CreatedAt            time.Time       `gorm:"column:created_at"`
	UpdatedAt            time.Time       `gorm:"column:updated_at"`
}

func (shipmentRecord) TableName() string { return "shipments" }
