package controller

import (
	"context"

	"github.com/gartstein/fleet/internal/fleet/db"
	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/events"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VehicleService manages the rentable fleet.
type VehicleService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
}

func NewVehicleService(repo Repository, producer EventProducer, logger *zap.Logger) *VehicleService {
	return &VehicleService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("vehicle_service"),
	}
}

// checkVehicleIdentifiers verifies that plate and registration numbers are
// free among live vehicles other than v.
func checkVehicleIdentifiers(ctx context.Context, tx *db.Repository, v *models.Vehicle) error {
	taken, err := tx.PlateTaken(ctx, v.Plate, v.ID)
	if err != nil {
		return err
	}
	if taken {
		return e.Conflict("vehicle plate %s is already registered", v.Plate)
	}
	if v.RegistryID != nil {
		taken, err := tx.RegistryIDTaken(ctx, *v.RegistryID, v.ID)
		if err != nil {
			return err
		}
		if taken {
			return e.Conflict("vehicle registry_id %s is already registered", *v.RegistryID)
		}
	}
	if v.Chassis != nil {
		taken, err := tx.ChassisTaken(ctx, *v.Chassis, v.ID)
		if err != nil {
			return err
		}
		if taken {
			return e.Conflict("vehicle chassis %s is already registered", *v.Chassis)
		}
	}
	return nil
}

// CreateVehicle registers a vehicle with unique plate and registration numbers.
func (s *VehicleService) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	vehicle.Normalize()
	if vehicle.Status == "" {
		vehicle.Status = models.VehicleAvailable
	}
	if vehicle.Status == models.VehicleRented {
		return nil, e.Invalid("vehicle status %s is set by rentals", models.VehicleRented)
	}
	if err := vehicle.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		vehicle.ID = uuid.New()
		if err := checkVehicleIdentifiers(ctx, tx, vehicle); err != nil {
			return err
		}
		return tx.CreateVehicle(ctx, vehicle)
	})
	if err != nil {
		return nil, wrap(err, "create vehicle")
	}

	s.logger.Info("Vehicle created",
		zap.String("vehicle_id", vehicle.ID.String()),
		zap.String("plate", vehicle.Plate),
	)
	s.producer.Produce(events.VehicleCreated, vehicle.ID, vehicle)
	return vehicle, nil
}

func (s *VehicleService) GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.repo.GetVehicle(ctx, id)
	if err != nil {
		return nil, resolve(err, "vehicle", id)
	}
	return vehicle, nil
}

func (s *VehicleService) ListVehicles(ctx context.Context, filter models.VehicleFilter) ([]*models.Vehicle, int64, error) {
	vehicles, total, err := s.repo.ListVehicles(ctx, filter)
	if err != nil {
		return nil, 0, wrap(err, "list vehicles")
	}
	return vehicles, total, nil
}

// SearchVehicles matches live vehicles by make, model or partial plate.
func (s *VehicleService) SearchVehicles(ctx context.Context, query string, limit int) ([]*models.Vehicle, error) {
	if query == "" {
		return []*models.Vehicle{}, nil
	}
	vehicles, err := s.repo.SearchVehicles(ctx, query, models.SearchLimit(limit))
	if err != nil {
		return nil, wrap(err, "search vehicles")
	}
	return vehicles, nil
}

// UpdateVehicle applies a partial update. RENTED and AVAILABLE follow the
// rental lifecycle, so the status of a vehicle with active rentals is fixed.
func (s *VehicleService) UpdateVehicle(ctx context.Context, update *models.VehicleUpdate) (*models.Vehicle, error) {
	if err := requireID(update.ID, "vehicle"); err != nil {
		return nil, err
	}

	var vehicle *models.Vehicle
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		current, err := tx.LockVehicle(ctx, update.ID)
		if err != nil {
			return resolve(err, "vehicle", update.ID)
		}
		oldStatus := current.Status

		update.Apply(current)
		current.Normalize()
		if err := current.Validate(); err != nil {
			return err
		}

		if current.Status != oldStatus {
			if current.Status == models.VehicleRented {
				return e.Invalid("vehicle status %s is set by rentals", models.VehicleRented)
			}
			active, err := tx.ActiveRentalsForVehicle(ctx, current.ID, uuid.Nil)
			if err != nil {
				return err
			}
			if len(active) > 0 {
				return e.Conflict("vehicle %s has %d active rentals; its status cannot change", current.ID, len(active))
			}
		}
		if err := checkVehicleIdentifiers(ctx, tx, current); err != nil {
			return err
		}

		if err := tx.UpdateVehicle(ctx, current); err != nil {
			return err
		}
		vehicle = current
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update vehicle")
	}

	s.producer.Produce(events.VehicleUpdated, vehicle.ID, vehicle)
	return vehicle, nil
}

// SoftDeleteVehicle hides a vehicle that has no active rentals.
func (s *VehicleService) SoftDeleteVehicle(ctx context.Context, id uuid.UUID) error {
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if _, err := tx.LockVehicle(ctx, id); err != nil {
			return resolve(err, "vehicle", id)
		}
		active, err := tx.ActiveRentalsForVehicle(ctx, id, uuid.Nil)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return e.Conflict("vehicle %s has %d active rentals", id, len(active))
		}
		return tx.SoftDeleteVehicle(ctx, id)
	})
	if err != nil {
		return wrap(err, "delete vehicle")
	}

	s.producer.Produce(events.VehicleDeleted, id, nil)
	return nil
}

// RestoreVehicle brings back a soft-deleted vehicle whose identifiers are
// still free among live vehicles.
func (s *VehicleService) RestoreVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle *models.Vehicle
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		deleted, err := tx.GetVehicleUnscoped(ctx, id)
		if err != nil {
			return resolve(err, "vehicle", id)
		}
		if deleted.DeletedAt == nil {
			return e.Invalid("vehicle %s is not deleted", id)
		}
		if err := checkVehicleIdentifiers(ctx, tx, deleted); err != nil {
			return err
		}
		if err := tx.RestoreVehicle(ctx, id); err != nil {
			return err
		}
		deleted.DeletedAt = nil
		vehicle = deleted
		return nil
	})
	if err != nil {
		return nil, wrap(err, "restore vehicle")
	}

	s.producer.Produce(events.VehicleRestored, id, vehicle)
	return vehicle, nil
}

// HardDeleteVehicle irreversibly removes a vehicle that no rental references.
func (s *VehicleService) HardDeleteVehicle(ctx context.Context, id uuid.UUID) error {
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if _, err := tx.GetVehicleUnscoped(ctx, id); err != nil {
			return resolve(err, "vehicle", id)
		}
		rentals, err := tx.CountVehicleRentals(ctx, id)
		if err != nil {
			return err
		}
		if rentals > 0 {
			return e.Conflict("vehicle %s is referenced by %d rentals", id, rentals)
		}
		return tx.HardDeleteVehicle(ctx, id)
	})
	if err != nil {
		return wrap(err, "purge vehicle")
	}

	s.logger.Warn("Vehicle purged", zap.String("vehicle_id", id.String()))
	s.producer.Produce(events.VehicleDeleted, id, map[string]bool{"purged": true})
	return nil
}
