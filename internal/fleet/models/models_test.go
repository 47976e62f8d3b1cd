package models

import (
	"testing"
	"time"

	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPeriodOverlaps(t *testing.T) {
	existing := Period{Start: date("2026-01-10"), End: date("2026-01-15")}

	tests := []struct {
		name     string
		other    Period
		overlaps bool
	}{
		{"inside", Period{date("2026-01-11"), date("2026-01-12")}, true},
		{"touching start", Period{date("2026-01-01"), date("2026-01-10")}, true},
		{"touching end", Period{date("2026-01-15"), date("2026-01-16")}, true},
		{"containing", Period{date("2026-01-01"), date("2026-02-01")}, true},
		{"after", Period{date("2026-01-16"), date("2026-01-20")}, false},
		{"before", Period{date("2026-01-01"), date("2026-01-09")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, existing.Overlaps(tt.other))
			assert.Equal(t, tt.overlaps, tt.other.Overlaps(existing), "overlap is symmetric")
		})
	}
}

func TestPeriodDays(t *testing.T) {
	assert.Equal(t, 5, Period{date("2026-01-10"), date("2026-01-15")}.Days())
	assert.Equal(t, 1, Period{date("2026-01-10"), date("2026-01-10").Add(time.Minute)}.Days())
	assert.Equal(t, 2, Period{date("2026-01-10"), date("2026-01-11").Add(time.Second)}.Days())
	assert.Equal(t, 0, Period{date("2026-01-10"), date("2026-01-09")}.Days())
}

func TestRentalStatusTerminal(t *testing.T) {
	assert.False(t, RentalActive.Terminal())
	assert.True(t, RentalCompleted.Terminal())
	assert.True(t, RentalCancelled.Terminal())
}

func TestPeriodValidate(t *testing.T) {
	assert.NoError(t, Period{date("2026-01-10"), date("2026-01-11")}.Validate())
	assert.ErrorIs(t, Period{date("2026-01-10"), date("2026-01-10")}.Validate(), e.ErrInvalidInput)
	assert.ErrorIs(t, Period{End: date("2026-01-10")}.Validate(), e.ErrInvalidInput)
}

func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "12345678909", NormalizeIdentifier("123.456.789-09"))
	assert.Equal(t, "11222333000181", NormalizeIdentifier(" 11.222.333/0001-81 "))
	assert.Equal(t, "ABC1D23", NormalizeIdentifier("abc-1d23"))
	assert.Equal(t, "", NormalizeIdentifier(" - "))
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultPageLimit}, Page{}.Normalize())
	assert.Equal(t, Page{Limit: MaxPageLimit, Offset: 0}, Page{Limit: 1000, Offset: -5}.Normalize())
	assert.Equal(t, DefaultSearchLimit, SearchLimit(0))
	assert.Equal(t, MaxSearchLimit, SearchLimit(500))
	assert.Equal(t, 7, SearchLimit(7))
}

func TestClientValidate(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name   string
		client Client
		valid  bool
	}{
		{"individual", Client{Name: "Ana", Details: IndividualDetails{PersonalID: "1"}, Status: ClientActive}, true},
		{"company", Client{Name: "Acme", Details: CompanyDetails{CompanyID: "2"}, Status: ClientActive}, true},
		{"individual without id", Client{Name: "Ana", Details: IndividualDetails{}, Status: ClientActive}, false},
		{"born in the future", Client{Name: "Ana", Details: IndividualDetails{PersonalID: "1", BirthDate: &future}, Status: ClientActive}, false},
		{"no details", Client{Name: "Ana", Status: ClientActive}, false},
		{"bad status", Client{Name: "Ana", Details: IndividualDetails{PersonalID: "1"}, Status: "X"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.client.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, e.ErrInvalidInput)
		})
	}
}

func TestClientUpdateSwitchesVariant(t *testing.T) {
	c := &Client{Name: "Ana", Details: IndividualDetails{PersonalID: "1"}}
	(&ClientUpdate{Details: CompanyDetails{CompanyID: "2"}}).Apply(c)

	assert.True(t, c.IsCompany())
	assert.Equal(t, "2", c.TaxID())
}

func TestDriverAffiliation(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	unaffiliated := &Driver{}
	affiliated := &Driver{ClientID: &a}

	assert.True(t, unaffiliated.AffiliatedWith(nil))
	assert.False(t, unaffiliated.AffiliatedWith(&a))
	assert.True(t, affiliated.AffiliatedWith(&a))
	assert.False(t, affiliated.AffiliatedWith(&b))
	assert.False(t, affiliated.AffiliatedWith(nil))
}

func TestDriverLicenseValidOn(t *testing.T) {
	d := &Driver{LicenseExpiry: date("2026-01-10")}
	assert.True(t, d.LicenseValidOn(date("2026-01-10").Add(20*time.Hour)))
	assert.False(t, d.LicenseValidOn(date("2026-01-11")))
}

func TestVehicleNormalize(t *testing.T) {
	blank := " "
	chassis := "9bw-zzz377vt004251"
	v := &Vehicle{Plate: "abc-1d23", RegistryID: &blank, Chassis: &chassis}
	v.Normalize()

	assert.Equal(t, "ABC1D23", v.Plate)
	assert.Nil(t, v.RegistryID)
	assert.Equal(t, "9BWZZZ377VT004251", *v.Chassis)
}
