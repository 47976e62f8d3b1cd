package models

import (
	"time"

	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/google/uuid"
)

// ClientType discriminates individual renters from companies.
type ClientType string

const (
	ClientIndividual ClientType = "INDIVIDUAL"
	ClientCompany    ClientType = "COMPANY"
)

// Valid reports whether t is a known client type.
func (t ClientType) Valid() bool {
	return t == ClientIndividual || t == ClientCompany
}

// ClientStatus is the commercial standing of a client.
type ClientStatus string

const (
	ClientActive   ClientStatus = "ACTIVE"
	ClientInactive ClientStatus = "INACTIVE"
	ClientBlocked  ClientStatus = "BLOCKED"
)

// Valid reports whether s is a known client status.
func (s ClientStatus) Valid() bool {
	switch s {
	case ClientActive, ClientInactive, ClientBlocked:
		return true
	}
	return false
}

// ClientDetails is the type-specific part of a client. Exactly one variant
// exists per ClientType and each carries the tax identifier of its kind.
type ClientDetails interface {
	Kind() ClientType
	TaxID() string
	Validate() error
}

// IndividualDetails holds the fields of a person renting vehicles.
type IndividualDetails struct {
	PersonalID string     `json:"personal_id"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
}

func (IndividualDetails) Kind() ClientType { return ClientIndividual }

func (d IndividualDetails) TaxID() string { return NormalizeIdentifier(d.PersonalID) }

func (d IndividualDetails) Validate() error {
	if d.TaxID() == "" {
		return e.Invalid("personal_id is required for %s clients", ClientIndividual)
	}
	if d.BirthDate != nil && d.BirthDate.After(time.Now()) {
		return e.Invalid("birth_date cannot be in the future")
	}
	return nil
}

// CompanyDetails holds the fields of a company renting vehicles. Only company
// clients may have drivers affiliated with them.
type CompanyDetails struct {
	CompanyID         string `json:"company_id"`
	TradeName         string `json:"trade_name,omitempty"`
	StateRegistration string `json:"state_registration,omitempty"`
}

func (CompanyDetails) Kind() ClientType { return ClientCompany }

func (d CompanyDetails) TaxID() string { return NormalizeIdentifier(d.CompanyID) }

func (d CompanyDetails) Validate() error {
	if d.TaxID() == "" {
		return e.Invalid("company_id is required for %s clients", ClientCompany)
	}
	return nil
}

// Client is a renter, either an individual or a company.
type Client struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Details   ClientDetails `json:"details"`
	Contact   Contact       `json:"contact"`
	Address   Address       `json:"address"`
	Status    ClientStatus  `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	DeletedAt *time.Time    `json:"deleted_at,omitempty"`
}

// Type returns the client type derived from its details variant.
func (c *Client) Type() ClientType {
	if c.Details == nil {
		return ""
	}
	return c.Details.Kind()
}

// TaxID returns the normalized tax identifier of the client.
func (c *Client) TaxID() string {
	if c.Details == nil {
		return ""
	}
	return c.Details.TaxID()
}

// IsCompany reports whether drivers may be affiliated with the client.
func (c *Client) IsCompany() bool {
	return c.Type() == ClientCompany
}

// Validate checks the fields required for the client's type.
func (c *Client) Validate() error {
	if c.Name == "" || len(c.Name) > 200 {
		return e.Invalid("client name must be between 1 and 200 characters")
	}
	if c.Details == nil {
		return e.Invalid("client type is required")
	}
	if err := c.Details.Validate(); err != nil {
		return err
	}
	if !c.Status.Valid() {
		return e.Invalid("unknown client status %q", c.Status)
	}
	return nil
}

// ClientUpdate represents the fields that can be updated for a Client.
// Pointer types are used to allow partial updates; a non-nil Details replaces
// the whole variant, which may switch the client type.
type ClientUpdate struct {
	ID      uuid.UUID
	Name    *string
	Details ClientDetails
	Email   *string
	Phone   *string
	Address *Address
	Status  *ClientStatus
}

// Apply copies the set fields of u onto c.
func (u *ClientUpdate) Apply(c *Client) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Details != nil {
		c.Details = u.Details
	}
	if u.Email != nil {
		c.Contact.Email = *u.Email
	}
	if u.Phone != nil {
		c.Contact.Phone = *u.Phone
	}
	if u.Address != nil {
		c.Address = *u.Address
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
}

// ClientFilter narrows a client listing.
type ClientFilter struct {
	Type           *ClientType
	Status         *ClientStatus
	IncludeDeleted bool
	Page           Page
}
