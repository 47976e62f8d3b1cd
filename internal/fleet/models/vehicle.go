package models

import (
	"time"

	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VehicleStatus is the operational state of a vehicle. RENTED and AVAILABLE
// follow the rental lifecycle; MAINTENANCE and INACTIVE are set by operators.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "AVAILABLE"
	VehicleRented      VehicleStatus = "RENTED"
	VehicleMaintenance VehicleStatus = "MAINTENANCE"
	VehicleInactive    VehicleStatus = "INACTIVE"
)

// Valid reports whether s is a known vehicle status.
func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleAvailable, VehicleRented, VehicleMaintenance, VehicleInactive:
		return true
	}
	return false
}

// Vehicle is a rentable asset.
type Vehicle struct {
	ID    uuid.UUID `json:"id"`
	Plate string    `json:"plate"`
	// RegistryID is the national vehicle registry number, when known.
	RegistryID  *string         `json:"registry_id,omitempty"`
	Chassis     *string         `json:"chassis,omitempty"`
	Make        string          `json:"make"`
	Model       string          `json:"model"`
	ModelYear   int             `json:"model_year"`
	Color       string          `json:"color"`
	Odometer    int             `json:"odometer"`
	Status      VehicleStatus   `json:"status"`
	DailyRate   decimal.Decimal `json:"daily_rate"`
	WeeklyRate  decimal.Decimal `json:"weekly_rate"`
	MonthlyRate decimal.Decimal `json:"monthly_rate"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// Bookable reports whether new rentals may be created for the vehicle.
func (v *Vehicle) Bookable() bool {
	return v.Status == VehicleAvailable || v.Status == VehicleRented
}

// Normalize canonicalizes identifiers in place; empty optional identifiers
// become nil so they do not collide in unique indexes.
func (v *Vehicle) Normalize() {
	v.Plate = NormalizeIdentifier(v.Plate)
	v.RegistryID = normalizeOptional(v.RegistryID)
	v.Chassis = normalizeOptional(v.Chassis)
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	n := NormalizeIdentifier(*s)
	if n == "" {
		return nil
	}
	return &n
}

// Validate checks required vehicle fields.
func (v *Vehicle) Validate() error {
	switch {
	case v.Plate == "":
		return e.Invalid("vehicle plate is required")
	case v.Make == "" || v.Model == "":
		return e.Invalid("vehicle make and model are required")
	case v.ModelYear < 1900 || v.ModelYear > time.Now().Year()+1:
		return e.Invalid("vehicle model_year %d is out of range", v.ModelYear)
	case v.Odometer < 0:
		return e.Invalid("vehicle odometer cannot be negative")
	case !v.Status.Valid():
		return e.Invalid("unknown vehicle status %q", v.Status)
	case v.DailyRate.IsNegative() || v.WeeklyRate.IsNegative() || v.MonthlyRate.IsNegative():
		return e.Invalid("vehicle rates cannot be negative")
	}
	return nil
}

// VehicleUpdate represents the fields that can be updated for a Vehicle.
type VehicleUpdate struct {
	ID          uuid.UUID
	Plate       *string
	RegistryID  *string
	Chassis     *string
	Make        *string
	Model       *string
	ModelYear   *int
	Color       *string
	Odometer    *int
	Status      *VehicleStatus
	DailyRate   *decimal.Decimal
	WeeklyRate  *decimal.Decimal
	MonthlyRate *decimal.Decimal
}

// Apply copies the set fields of u onto v.
func (u *VehicleUpdate) Apply(v *Vehicle) {
	if u.Plate != nil {
		v.Plate = *u.Plate
	}
	if u.RegistryID != nil {
		v.RegistryID = u.RegistryID
	}
	if u.Chassis != nil {
		v.Chassis = u.Chassis
	}
	if u.Make != nil {
		v.Make = *u.Make
	}
	if u.Model != nil {
		v.Model = *u.Model
	}
	if u.ModelYear != nil {
		v.ModelYear = *u.ModelYear
	}
	if u.Color != nil {
		v.Color = *u.Color
	}
	if u.Odometer != nil {
		v.Odometer = *u.Odometer
	}
	if u.Status != nil {
		v.Status = *u.Status
	}
	if u.DailyRate != nil {
		v.DailyRate = *u.DailyRate
	}
	if u.WeeklyRate != nil {
		v.WeeklyRate = *u.WeeklyRate
	}
	if u.MonthlyRate != nil {
		v.MonthlyRate = *u.MonthlyRate
	}
	v.Normalize()
}

// VehicleFilter narrows a vehicle listing.
type VehicleFilter struct {
	Status         *VehicleStatus
	IncludeDeleted bool
	Page           Page
}
