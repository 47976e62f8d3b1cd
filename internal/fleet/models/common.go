// Package models defines the core domain models of the fleet back office:
// clients, drivers, vehicles, rentals and the audit trail.
package models

import (
	"strings"
	"time"
	"unicode"
)

const (
	// DefaultPageLimit is used when a listing does not specify a limit.
	DefaultPageLimit = 20
	// MaxPageLimit caps listing page sizes.
	MaxPageLimit = 100
	// DefaultSearchLimit is used for autocomplete searches without a limit.
	DefaultSearchLimit = 10
	// MaxSearchLimit caps autocomplete result counts.
	MaxSearchLimit = 50
)

// Page bounds a listing query.
type Page struct {
	Limit  int
	Offset int
}

// Normalize applies defaults and caps to the page bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// SearchLimit clamps an autocomplete limit into [1, MaxSearchLimit].
func SearchLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return limit
}

// Contact groups the ways to reach a client or driver.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Address is a postal address.
type Address struct {
	Street     string `json:"street,omitempty"`
	Number     string `json:"number,omitempty"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// NormalizeIdentifier strips separators from tax identifiers, plates and license
// numbers and upper-cases letters, so "123.456.789-09" and "12345678909" match.
func NormalizeIdentifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
