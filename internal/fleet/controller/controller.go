// Package controller implements the core business logic (service layer) of the
// fleet back office. Every check-then-write sequence runs inside one repository
// transaction; events are produced after the transaction commits.
package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gartstein/fleet/internal/fleet/db"
	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/events"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
)

// EventProducer publishes lifecycle events. Implementations must not block.
type EventProducer interface {
	Produce(eventType events.EventType, entityID uuid.UUID, payload interface{})
}

// Repository defines the storage operations used outside of transactions.
// Mutations go through WithTransaction and the transactional *db.Repository.
type Repository interface {
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	ListClients(ctx context.Context, filter models.ClientFilter) ([]*models.Client, int64, error)
	SearchClients(ctx context.Context, query string, limit int) ([]*models.Client, error)

	GetDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error)
	ListDrivers(ctx context.Context, filter models.DriverFilter) ([]*models.Driver, int64, error)
	SearchDrivers(ctx context.Context, query string, limit int) ([]*models.Driver, error)

	GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, filter models.VehicleFilter) ([]*models.Vehicle, int64, error)
	SearchVehicles(ctx context.Context, query string, limit int) ([]*models.Vehicle, error)

	GetRental(ctx context.Context, id uuid.UUID) (*models.Rental, error)
	ListRentals(ctx context.Context, filter models.RentalFilter) ([]*models.Rental, int64, error)
	ActiveRentalsForVehicle(ctx context.Context, vehicleID, excludeID uuid.UUID) ([]*models.Rental, error)

	CreateAuditEntry(ctx context.Context, entry *models.AuditEntry) error
	ListAuditEntries(ctx context.Context, entity string, entityID uuid.UUID, limit int) ([]*models.AuditEntry, error)

	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
	Close() error
}

// domainError reports whether err already carries one of the domain sentinels.
func domainError(err error) bool {
	return errors.Is(err, e.ErrNotFound) ||
		errors.Is(err, e.ErrInvalidInput) ||
		errors.Is(err, e.ErrConflict)
}

// wrap passes domain errors through and decorates infrastructure failures.
func wrap(err error, action string) error {
	if err == nil || domainError(err) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// resolve names the entity in a bare not-found error from the repository.
func resolve(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, e.ErrNotFound) {
		return e.NotFound(entity, id)
	}
	return wrap(err, "get "+entity)
}

func requireID(id uuid.UUID, entity string) error {
	if id == uuid.Nil {
		return e.Invalid("invalid %s ID", entity)
	}
	return nil
}
