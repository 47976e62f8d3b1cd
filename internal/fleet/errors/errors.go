package errors

import (
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrConflict     = fmt.Errorf("conflict")
)

// NotFound reports that the named entity does not resolve to a live record.
func NotFound(entity string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

// Invalid reports malformed or contradictory input.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Conflict reports a uniqueness violation, a double booking or a forbidden transition.
func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// MigrationRequiredError is returned when a driver with the same tax identifier is
// already linked to another client. Callers should offer a migration instead of
// retrying the creation.
type MigrationRequiredError struct {
	ExistingDriverID    uuid.UUID `json:"existing_driver_id"`
	ExistingDriverName  string    `json:"existing_driver_name"`
	CurrentClientName   string    `json:"current_client_name"`
	RequestedClientName string    `json:"requested_client_name"`
	RequiresMigration   bool      `json:"requires_migration"`
}

func (e *MigrationRequiredError) Error() string {
	current := e.CurrentClientName
	if current == "" {
		current = "no client"
	}
	return fmt.Sprintf("%s: driver %s (%s) is already registered with %s; migrate it to %s",
		ErrConflict, e.ExistingDriverName, e.ExistingDriverID, current, e.RequestedClientName)
}

func (e *MigrationRequiredError) Unwrap() error {
	return ErrConflict
}
