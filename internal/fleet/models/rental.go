package models

import (
	"time"

	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentalStatus is the lifecycle state of a rental. ACTIVE is the only
// non-terminal state.
type RentalStatus string

const (
	RentalActive    RentalStatus = "ACTIVE"
	RentalCompleted RentalStatus = "COMPLETED"
	RentalCancelled RentalStatus = "CANCELLED"
)

// Valid reports whether s is a known rental status.
func (s RentalStatus) Valid() bool {
	switch s {
	case RentalActive, RentalCompleted, RentalCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s RentalStatus) Terminal() bool {
	return s == RentalCompleted || s == RentalCancelled
}

const day = 24 * time.Hour

// Period is a closed booking interval [Start, End].
type Period struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Validate requires End to be strictly after Start.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return e.Invalid("start_date and end_date are required")
	}
	if !p.End.After(p.Start) {
		return e.Invalid("end_date must be after start_date")
	}
	return nil
}

// Overlaps reports whether the two closed intervals share at least one instant.
func (p Period) Overlaps(o Period) bool {
	return !p.Start.After(o.End) && !o.Start.After(p.End)
}

// Days returns the number of started days between Start and End.
func (p Period) Days() int {
	d := p.End.Sub(p.Start)
	if d <= 0 {
		return 0
	}
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	return days
}

// UTC returns the period with both bounds in UTC.
func (p Period) UTC() Period {
	return Period{Start: p.Start.UTC(), End: p.End.UTC()}
}

// Rental books one vehicle for one client and driver over a period.
type Rental struct {
	ID        uuid.UUID `json:"id"`
	ClientID  uuid.UUID `json:"client_id"`
	DriverID  uuid.UUID `json:"driver_id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
	Period
	ReturnDate *time.Time `json:"return_date,omitempty"`
	// DailyRate is copied at creation and may differ from the vehicle's current rate.
	DailyRate    decimal.Decimal `json:"daily_rate"`
	TotalDays    int             `json:"total_days"`
	TotalValue   decimal.Decimal `json:"total_value"`
	Discount     decimal.Decimal `json:"discount"`
	Status       RentalStatus    `json:"status"`
	Observations string          `json:"observations,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    *time.Time      `json:"deleted_at,omitempty"`
}

// NewRental is the input of a booking.
type NewRental struct {
	ClientID  uuid.UUID
	DriverID  uuid.UUID
	VehicleID uuid.UUID
	Period    Period
	// DailyRate overrides the vehicle's daily rate when set.
	DailyRate    *decimal.Decimal
	Discount     *decimal.Decimal
	Observations string
}

// RentalUpdate represents the fields that can be updated on an active Rental.
type RentalUpdate struct {
	ID           uuid.UUID
	Start        *time.Time
	End          *time.Time
	DailyRate    *decimal.Decimal
	Discount     *decimal.Decimal
	Observations *string
}

// ChangesPricing reports whether the update affects dates or amounts.
func (u *RentalUpdate) ChangesPricing() bool {
	return u.Start != nil || u.End != nil || u.DailyRate != nil || u.Discount != nil
}

// RentalFilter narrows a rental listing. From and To select rentals whose
// period intersects [From, To].
type RentalFilter struct {
	ClientID       *uuid.UUID
	DriverID       *uuid.UUID
	VehicleID      *uuid.UUID
	Status         *RentalStatus
	From           *time.Time
	To             *time.Time
	IncludeDeleted bool
	Page           Page
}

// Availability is the answer to an availability check.
type Availability struct {
	VehicleID uuid.UUID   `json:"vehicle_id"`
	Period    Period      `json:"period"`
	Available bool        `json:"available"`
	Conflicts []uuid.UUID `json:"conflicts,omitempty"`
}
