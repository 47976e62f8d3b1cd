package controller

import (
	"context"
	"time"

	"github.com/gartstein/fleet/internal/fleet/db"
	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/events"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RentalService books vehicles and drives rentals through their lifecycle:
// ACTIVE to COMPLETED on return, ACTIVE to CANCELLED on cancel.
type RentalService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
	now      func() time.Time
}

func NewRentalService(repo Repository, producer EventProducer, logger *zap.Logger) *RentalService {
	return &RentalService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("rental_service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// conflictsWith returns the IDs of rentals whose period overlaps p.
func conflictsWith(rentals []*models.Rental, p models.Period) []uuid.UUID {
	var ids []uuid.UUID
	for _, r := range rentals {
		if r.Period.Overlaps(p) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// ensureAvailable rejects p when it overlaps an active rental of the vehicle
// other than excludeID. The vehicle row must already be locked by the caller.
func ensureAvailable(ctx context.Context, tx *db.Repository, vehicleID, excludeID uuid.UUID, p models.Period) error {
	active, err := tx.ActiveRentalsForVehicle(ctx, vehicleID, excludeID)
	if err != nil {
		return err
	}
	if ids := conflictsWith(active, p); len(ids) > 0 {
		return e.Conflict("vehicle not available for period: overlaps rental %s", ids[0])
	}
	return nil
}

// releaseVehicle recomputes the vehicle status from its remaining active
// rentals and records the odometer reading.
func releaseVehicle(ctx context.Context, tx *db.Repository, vehicle *models.Vehicle, odometer int) (models.VehicleStatus, error) {
	remaining, err := tx.ActiveRentalsForVehicle(ctx, vehicle.ID, uuid.Nil)
	if err != nil {
		return "", err
	}
	status := models.VehicleAvailable
	if len(remaining) > 0 {
		status = models.VehicleRented
	}
	return status, tx.SetVehicleState(ctx, vehicle.ID, odometer, status)
}

// CreateRental books a vehicle for a client and driver. The referenced
// records must be live, the period must not overlap another active rental
// of the vehicle, and the price is computed from the given or current daily
// rate.
func (s *RentalService) CreateRental(ctx context.Context, in *models.NewRental) (*models.Rental, error) {
	var rental *models.Rental
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		client, err := tx.GetClient(ctx, in.ClientID)
		if err != nil {
			return resolve(err, "client", in.ClientID)
		}
		driver, err := tx.GetDriver(ctx, in.DriverID)
		if err != nil {
			return resolve(err, "driver", in.DriverID)
		}
		vehicle, err := tx.LockVehicle(ctx, in.VehicleID)
		if err != nil {
			return resolve(err, "vehicle", in.VehicleID)
		}

		period := in.Period.UTC()
		if err := period.Validate(); err != nil {
			return err
		}
		switch {
		case client.Status != models.ClientActive:
			return e.Invalid("client %s is %s", client.ID, client.Status)
		case driver.Status != models.DriverActive:
			return e.Invalid("driver %s is %s", driver.ID, driver.Status)
		case !driver.LicenseValidOn(period.Start):
			return e.Invalid("driver %s license expires before %s", driver.ID, period.Start.Format(time.DateOnly))
		case !vehicle.Bookable():
			return e.Invalid("vehicle %s is in %s", vehicle.ID, vehicle.Status)
		}

		if err := ensureAvailable(ctx, tx, vehicle.ID, uuid.Nil, period); err != nil {
			return err
		}

		rate := vehicle.DailyRate
		if in.DailyRate != nil {
			rate = *in.DailyRate
		}
		discount := decimal.Zero
		if in.Discount != nil {
			discount = *in.Discount
		}
		quote, err := QuoteRental(period, rate, discount)
		if err != nil {
			return err
		}

		r := &models.Rental{
			ID:           uuid.New(),
			ClientID:     client.ID,
			DriverID:     driver.ID,
			VehicleID:    vehicle.ID,
			Period:       period,
			Status:       models.RentalActive,
			Observations: in.Observations,
		}
		applyQuote(r, quote)
		if err := tx.CreateRental(ctx, r); err != nil {
			return err
		}
		if err := tx.SetVehicleState(ctx, vehicle.ID, vehicle.Odometer, models.VehicleRented); err != nil {
			return err
		}
		rental = r
		return nil
	})
	if err != nil {
		return nil, wrap(err, "create rental")
	}

	s.logger.Info("Rental created",
		zap.String("rental_id", rental.ID.String()),
		zap.String("vehicle_id", rental.VehicleID.String()),
		zap.Int("total_days", rental.TotalDays),
		zap.String("total_value", rental.TotalValue.StringFixed(2)),
	)
	s.producer.Produce(events.RentalCreated, rental.ID, rental)
	return rental, nil
}

func (s *RentalService) GetRental(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	rental, err := s.repo.GetRental(ctx, id)
	if err != nil {
		return nil, resolve(err, "rental", id)
	}
	return rental, nil
}

func (s *RentalService) ListRentals(ctx context.Context, filter models.RentalFilter) ([]*models.Rental, int64, error) {
	rentals, total, err := s.repo.ListRentals(ctx, filter)
	if err != nil {
		return nil, 0, wrap(err, "list rentals")
	}
	return rentals, total, nil
}

// UpdateRental patches an active rental. Date changes re-run the overlap
// check against the vehicle's other active rentals, and any change to dates
// or amounts recomputes the totals.
func (s *RentalService) UpdateRental(ctx context.Context, update *models.RentalUpdate) (*models.Rental, error) {
	if err := requireID(update.ID, "rental"); err != nil {
		return nil, err
	}

	var rental *models.Rental
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		current, err := tx.GetRental(ctx, update.ID)
		if err != nil {
			return resolve(err, "rental", update.ID)
		}
		if current.Status.Terminal() {
			return e.Invalid("only active rentals can be updated; rental %s is %s", current.ID, current.Status)
		}

		if update.Start != nil || update.End != nil {
			if update.Start != nil {
				current.Start = update.Start.UTC()
			}
			if update.End != nil {
				current.End = update.End.UTC()
			}
			if err := current.Period.Validate(); err != nil {
				return err
			}
			if _, err := tx.LockVehicle(ctx, current.VehicleID); err != nil {
				return resolve(err, "vehicle", current.VehicleID)
			}
			if err := ensureAvailable(ctx, tx, current.VehicleID, current.ID, current.Period); err != nil {
				return err
			}
		}

		if update.ChangesPricing() {
			rate, discount := current.DailyRate, current.Discount
			if update.DailyRate != nil {
				rate = *update.DailyRate
			}
			if update.Discount != nil {
				discount = *update.Discount
			}
			quote, err := QuoteRental(current.Period, rate, discount)
			if err != nil {
				return err
			}
			applyQuote(current, quote)
		}
		if update.Observations != nil {
			current.Observations = *update.Observations
		}

		if err := tx.UpdateRental(ctx, current); err != nil {
			return err
		}
		rental = current
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update rental")
	}

	s.producer.Produce(events.RentalUpdated, rental.ID, rental)
	return rental, nil
}

// ReturnVehicle completes an active rental, records the final odometer
// reading and frees the vehicle unless it has other active rentals.
func (s *RentalService) ReturnVehicle(ctx context.Context, id uuid.UUID, odometer int, observations *string) (*models.Rental, error) {
	var rental *models.Rental
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		current, err := tx.GetRental(ctx, id)
		if err != nil {
			return resolve(err, "rental", id)
		}
		if current.Status.Terminal() {
			return e.Invalid("only active rentals can be returned; rental %s is %s", id, current.Status)
		}
		vehicle, err := tx.LockVehicle(ctx, current.VehicleID)
		if err != nil {
			return resolve(err, "vehicle", current.VehicleID)
		}
		if odometer < vehicle.Odometer {
			return e.Invalid("odometer %d is lower than the vehicle's current reading %d", odometer, vehicle.Odometer)
		}

		returned := s.now()
		current.Status = models.RentalCompleted
		current.ReturnDate = &returned
		if observations != nil {
			current.Observations = *observations
		}
		if err := tx.UpdateRental(ctx, current); err != nil {
			return err
		}
		if _, err := releaseVehicle(ctx, tx, vehicle, odometer); err != nil {
			return err
		}
		rental = current
		return nil
	})
	if err != nil {
		return nil, wrap(err, "return vehicle")
	}

	s.logger.Info("Vehicle returned",
		zap.String("rental_id", id.String()),
		zap.String("vehicle_id", rental.VehicleID.String()),
		zap.Int("odometer", odometer),
	)
	s.producer.Produce(events.RentalReturned, rental.ID, rental)
	return rental, nil
}

// CancelRental cancels an active rental and frees the vehicle unless it has
// other active rentals. The odometer is left untouched.
func (s *RentalService) CancelRental(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	var rental *models.Rental
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		current, err := tx.GetRental(ctx, id)
		if err != nil {
			return resolve(err, "rental", id)
		}
		if current.Status.Terminal() {
			return e.Invalid("only active rentals can be cancelled; rental %s is %s", id, current.Status)
		}
		vehicle, err := tx.LockVehicle(ctx, current.VehicleID)
		if err != nil {
			return resolve(err, "vehicle", current.VehicleID)
		}

		current.Status = models.RentalCancelled
		if err := tx.UpdateRental(ctx, current); err != nil {
			return err
		}
		if _, err := releaseVehicle(ctx, tx, vehicle, vehicle.Odometer); err != nil {
			return err
		}
		rental = current
		return nil
	})
	if err != nil {
		return nil, wrap(err, "cancel rental")
	}

	s.logger.Info("Rental cancelled", zap.String("rental_id", id.String()))
	s.producer.Produce(events.RentalCancelled, rental.ID, rental)
	return rental, nil
}

// SoftDeleteRental hides a finished rental. Active rentals must be returned
// or cancelled first.
func (s *RentalService) SoftDeleteRental(ctx context.Context, id uuid.UUID) error {
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		current, err := tx.GetRental(ctx, id)
		if err != nil {
			return resolve(err, "rental", id)
		}
		if !current.Status.Terminal() {
			return e.Invalid("active rental %s must be returned or cancelled before deletion", id)
		}
		return tx.SoftDeleteRental(ctx, id)
	})
	if err != nil {
		return wrap(err, "delete rental")
	}

	s.producer.Produce(events.RentalDeleted, id, nil)
	return nil
}

// CheckAvailability reports whether the vehicle can be booked for p and
// lists the active rentals it would overlap.
func (s *RentalService) CheckAvailability(ctx context.Context, vehicleID uuid.UUID, p models.Period) (*models.Availability, error) {
	p = p.UTC()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	vehicle, err := s.repo.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, resolve(err, "vehicle", vehicleID)
	}
	active, err := s.repo.ActiveRentalsForVehicle(ctx, vehicleID, uuid.Nil)
	if err != nil {
		return nil, wrap(err, "check availability")
	}

	conflicts := conflictsWith(active, p)
	return &models.Availability{
		VehicleID: vehicleID,
		Period:    p,
		Available: len(conflicts) == 0 && vehicle.Bookable(),
		Conflicts: conflicts,
	}, nil
}
