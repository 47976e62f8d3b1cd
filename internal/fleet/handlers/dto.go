package handlers

import (
	"encoding/json"
	"time"

	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// parseTime accepts either a calendar date or an RFC 3339 timestamp.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, e.Invalid("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

// Date is a JSON date accepted in either format parseTime understands.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return e.Invalid("dates must be strings")
	}
	t, err := parseTime(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Ptr returns the wrapped time, or nil for a nil Date.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

type clientRequest struct {
	Name              string          `json:"name" validate:"required,max=200"`
	Type              string          `json:"type" validate:"required,oneof=INDIVIDUAL COMPANY"`
	PersonalID        string          `json:"personal_id"`
	BirthDate         *Date           `json:"birth_date"`
	CompanyID         string          `json:"company_id"`
	TradeName         string          `json:"trade_name" validate:"max=200"`
	StateRegistration string          `json:"state_registration" validate:"max=50"`
	Email             string          `json:"email" validate:"omitempty,email"`
	Phone             string          `json:"phone" validate:"max=30"`
	Address           *models.Address `json:"address"`
	Status            string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE BLOCKED"`
}

type clientPatch struct {
	Name              *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Type              *string         `json:"type" validate:"omitempty,oneof=INDIVIDUAL COMPANY"`
	PersonalID        *string         `json:"personal_id"`
	BirthDate         *Date           `json:"birth_date"`
	CompanyID         *string         `json:"company_id"`
	TradeName         *string         `json:"trade_name" validate:"omitempty,max=200"`
	StateRegistration *string         `json:"state_registration" validate:"omitempty,max=50"`
	Email             *string         `json:"email" validate:"omitempty,email"`
	Phone             *string         `json:"phone" validate:"omitempty,max=30"`
	Address           *models.Address `json:"address"`
	Status            *string         `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE BLOCKED"`
}

type driverRequest struct {
	Name            string     `json:"name" validate:"required,max=200"`
	TaxID           string     `json:"tax_id" validate:"required"`
	LicenseNumber   string     `json:"license_number" validate:"required"`
	LicenseCategory string     `json:"license_category" validate:"required"`
	LicenseExpiry   *Date      `json:"license_expiry" validate:"required"`
	Email           string     `json:"email" validate:"omitempty,email"`
	Phone           string     `json:"phone" validate:"max=30"`
	Status          string     `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	ClientID        *uuid.UUID `json:"client_id"`
}

type driverPatch struct {
	Name            *string    `json:"name" validate:"omitempty,min=1,max=200"`
	TaxID           *string    `json:"tax_id" validate:"omitempty,min=1"`
	LicenseNumber   *string    `json:"license_number" validate:"omitempty,min=1"`
	LicenseCategory *string    `json:"license_category" validate:"omitempty,min=1"`
	LicenseExpiry   *Date      `json:"license_expiry"`
	Email           *string    `json:"email" validate:"omitempty,email"`
	Phone           *string    `json:"phone" validate:"omitempty,max=30"`
	Status          *string    `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	ClientID        *uuid.UUID `json:"client_id"`
}

type migrateRequest struct {
	ClientID uuid.UUID `json:"client_id" validate:"required"`
}

type vehicleRequest struct {
	Plate       string          `json:"plate" validate:"required,max=10"`
	RegistryID  *string         `json:"registry_id"`
	Chassis     *string         `json:"chassis"`
	Make        string          `json:"make" validate:"required,max=100"`
	Model       string          `json:"model" validate:"required,max=100"`
	ModelYear   int             `json:"model_year" validate:"required"`
	Color       string          `json:"color" validate:"max=50"`
	Odometer    int             `json:"odometer" validate:"gte=0"`
	Status      string          `json:"status" validate:"omitempty,oneof=AVAILABLE RENTED MAINTENANCE INACTIVE"`
	DailyRate   decimal.Decimal `json:"daily_rate"`
	WeeklyRate  decimal.Decimal `json:"weekly_rate"`
	MonthlyRate decimal.Decimal `json:"monthly_rate"`
}

type vehiclePatch struct {
	Plate       *string          `json:"plate" validate:"omitempty,min=1,max=10"`
	RegistryID  *string          `json:"registry_id"`
	Chassis     *string          `json:"chassis"`
	Make        *string          `json:"make" validate:"omitempty,min=1,max=100"`
	Model       *string          `json:"model" validate:"omitempty,min=1,max=100"`
	ModelYear   *int             `json:"model_year"`
	Color       *string          `json:"color" validate:"omitempty,max=50"`
	Odometer    *int             `json:"odometer" validate:"omitempty,gte=0"`
	Status      *string          `json:"status" validate:"omitempty,oneof=AVAILABLE RENTED MAINTENANCE INACTIVE"`
	DailyRate   *decimal.Decimal `json:"daily_rate"`
	WeeklyRate  *decimal.Decimal `json:"weekly_rate"`
	MonthlyRate *decimal.Decimal `json:"monthly_rate"`
}

type rentalRequest struct {
	ClientID     uuid.UUID        `json:"client_id" validate:"required"`
	DriverID     uuid.UUID        `json:"driver_id" validate:"required"`
	VehicleID    uuid.UUID        `json:"vehicle_id" validate:"required"`
	StartDate    *Date            `json:"start_date" validate:"required"`
	EndDate      *Date            `json:"end_date" validate:"required"`
	DailyRate    *decimal.Decimal `json:"daily_rate"`
	Discount     *decimal.Decimal `json:"discount"`
	Observations string           `json:"observations" validate:"max=1000"`
}

type rentalPatch struct {
	StartDate    *Date            `json:"start_date"`
	EndDate      *Date            `json:"end_date"`
	DailyRate    *decimal.Decimal `json:"daily_rate"`
	Discount     *decimal.Decimal `json:"discount"`
	Observations *string          `json:"observations" validate:"omitempty,max=1000"`
}

type returnRequest struct {
	Odometer     *int    `json:"odometer" validate:"required,gte=0"`
	Observations *string `json:"observations" validate:"omitempty,max=1000"`
}
