// Package models contains the persistence rows of the fleet store,
// configured to work using GORM as the ORM. Unique identifiers are enforced
// by partial indexes that ignore soft-deleted rows.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Client is the clients table. Variant columns not used by the row's type stay empty.
type Client struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type              string    `gorm:"size:16;not null;index"`
	Name              string    `gorm:"size:200;not null;index"`
	TaxID             string    `gorm:"size:32;not null;index:idx_clients_tax_id_live,unique,where:deleted_at IS NULL"`
	BirthDate         *time.Time
	TradeName         string `gorm:"size:200"`
	StateRegistration string `gorm:"size:32"`
	Email             string `gorm:"size:254;index"`
	Phone             string `gorm:"size:32"`
	Street            string `gorm:"size:200"`
	Number            string `gorm:"size:16"`
	Complement        string `gorm:"size:100"`
	District          string `gorm:"size:100"`
	City              string `gorm:"size:100"`
	State             string `gorm:"size:32"`
	PostalCode        string `gorm:"size:16"`
	Status            string `gorm:"size:16;not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

// Driver is the drivers table.
type Driver struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name            string     `gorm:"size:200;not null;index"`
	TaxID           string     `gorm:"size:32;not null;index:idx_drivers_tax_id_live,unique,where:deleted_at IS NULL"`
	LicenseNumber   string     `gorm:"size:32;not null;index:idx_drivers_license_live,unique,where:deleted_at IS NULL"`
	LicenseCategory string     `gorm:"size:4;not null"`
	LicenseExpiry   time.Time  `gorm:"not null"`
	Email           string     `gorm:"size:254"`
	Phone           string     `gorm:"size:32"`
	Status          string     `gorm:"size:16;not null"`
	ClientID        *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// Vehicle is the vehicles table.
type Vehicle struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Plate       string          `gorm:"size:16;not null;index:idx_vehicles_plate_live,unique,where:deleted_at IS NULL"`
	RegistryID  *string         `gorm:"size:32;index:idx_vehicles_registry_live,unique,where:deleted_at IS NULL"`
	Chassis     *string         `gorm:"size:32;index:idx_vehicles_chassis_live,unique,where:deleted_at IS NULL"`
	Make        string          `gorm:"size:64;not null"`
	Model       string          `gorm:"size:64;not null"`
	ModelYear   int             `gorm:"not null"`
	Color       string          `gorm:"size:32"`
	Odometer    int             `gorm:"not null;check:odometer >= 0"`
	Status      string          `gorm:"size:16;not null;index"`
	DailyRate   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	WeeklyRate  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	MonthlyRate decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// Rental is the rentals table. The Postgres exclusion constraint over
// (vehicle_id, [start_date, end_date]) is added by the goose migrations.
type Rental struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientID     uuid.UUID `gorm:"type:uuid;not null;index"`
	DriverID     uuid.UUID `gorm:"type:uuid;not null;index"`
	VehicleID    uuid.UUID `gorm:"type:uuid;not null;index:idx_rentals_vehicle_status"`
	StartDate    time.Time `gorm:"not null;index"`
	EndDate      time.Time `gorm:"not null;index"`
	ReturnDate   *time.Time
	DailyRate    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalDays    int             `gorm:"not null"`
	TotalValue   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Discount     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status       string          `gorm:"size:16;not null;index:idx_rentals_vehicle_status"`
	Observations string          `gorm:"size:2000"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// AuditEntry is the audit_entries table written by the audit consumer.
type AuditEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventType  string    `gorm:"size:32;not null"`
	Entity     string    `gorm:"size:16;not null;index:idx_audit_entity"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_entity"`
	Payload    []byte
	OccurredAt time.Time `gorm:"not null"`
	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// All lists every row type for AutoMigrate.
func All() []interface{} {
	return []interface{}{&Client{}, &Driver{}, &Vehicle{}, &Rental{}, &AuditEntry{}}
}
