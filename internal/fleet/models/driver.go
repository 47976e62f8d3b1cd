package models

import (
	"time"

	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/google/uuid"
)

// DriverStatus marks whether a driver may be assigned to new rentals.
type DriverStatus string

const (
	DriverActive   DriverStatus = "ACTIVE"
	DriverInactive DriverStatus = "INACTIVE"
)

// Valid reports whether s is a known driver status.
func (s DriverStatus) Valid() bool {
	return s == DriverActive || s == DriverInactive
}

var licenseCategories = map[string]bool{
	"A": true, "B": true, "C": true, "D": true, "E": true,
	"AB": true, "AC": true, "AD": true, "AE": true,
}

// ValidLicenseCategory reports whether c is a known driving-license category.
func ValidLicenseCategory(c string) bool {
	return licenseCategories[c]
}

// Driver is a license holder, optionally affiliated with one company client.
type Driver struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	TaxID           string       `json:"tax_id"`
	LicenseNumber   string       `json:"license_number"`
	LicenseCategory string       `json:"license_category"`
	LicenseExpiry   time.Time    `json:"license_expiry"`
	Contact         Contact      `json:"contact"`
	Status          DriverStatus `json:"status"`
	// ClientID is the affiliated company. It only changes through a migration.
	ClientID  *uuid.UUID `json:"client_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// LicenseValidOn reports whether the license has not expired by the given day.
func (d *Driver) LicenseValidOn(t time.Time) bool {
	return !Day(d.LicenseExpiry).Before(Day(t))
}

// AffiliatedWith reports whether the driver is linked to clientID. A nil
// clientID matches an unaffiliated driver.
func (d *Driver) AffiliatedWith(clientID *uuid.UUID) bool {
	if d.ClientID == nil || clientID == nil {
		return d.ClientID == nil && clientID == nil
	}
	return *d.ClientID == *clientID
}

// Normalize canonicalizes identifiers in place.
func (d *Driver) Normalize() {
	d.TaxID = NormalizeIdentifier(d.TaxID)
	d.LicenseNumber = NormalizeIdentifier(d.LicenseNumber)
	d.LicenseCategory = NormalizeIdentifier(d.LicenseCategory)
}

// Validate checks required driver fields.
func (d *Driver) Validate() error {
	switch {
	case d.Name == "" || len(d.Name) > 200:
		return e.Invalid("driver name must be between 1 and 200 characters")
	case d.TaxID == "":
		return e.Invalid("driver tax_id is required")
	case d.LicenseNumber == "":
		return e.Invalid("driver license_number is required")
	case !ValidLicenseCategory(d.LicenseCategory):
		return e.Invalid("unknown license category %q", d.LicenseCategory)
	case d.LicenseExpiry.IsZero():
		return e.Invalid("driver license_expiry is required")
	case !d.Status.Valid():
		return e.Invalid("unknown driver status %q", d.Status)
	}
	return nil
}

// DriverUpdate represents the fields that can be updated for a Driver.
// ClientID may only be set on a driver without a current affiliation.
type DriverUpdate struct {
	ID              uuid.UUID
	Name            *string
	TaxID           *string
	LicenseNumber   *string
	LicenseCategory *string
	LicenseExpiry   *time.Time
	Email           *string
	Phone           *string
	Status          *DriverStatus
	ClientID        *uuid.UUID
}

// Apply copies the set fields of u onto d, leaving ClientID alone.
func (u *DriverUpdate) Apply(d *Driver) {
	if u.Name != nil {
		d.Name = *u.Name
	}
	if u.TaxID != nil {
		d.TaxID = *u.TaxID
	}
	if u.LicenseNumber != nil {
		d.LicenseNumber = *u.LicenseNumber
	}
	if u.LicenseCategory != nil {
		d.LicenseCategory = *u.LicenseCategory
	}
	if u.LicenseExpiry != nil {
		d.LicenseExpiry = *u.LicenseExpiry
	}
	if u.Email != nil {
		d.Contact.Email = *u.Email
	}
	if u.Phone != nil {
		d.Contact.Phone = *u.Phone
	}
	if u.Status != nil {
		d.Status = *u.Status
	}
	d.Normalize()
}

// DriverFilter narrows a driver listing.
type DriverFilter struct {
	ClientID       *uuid.UUID
	Status         *DriverStatus
	IncludeDeleted bool
	Page           Page
}

// MigrationResult is the outcome of moving a driver to another company.
type MigrationResult struct {
	Driver           *Driver    `json:"driver"`
	PreviousClientID *uuid.UUID `json:"previous_client_id,omitempty"`
}
