package controller

import (
	"context"
	"errors"

	"github.com/gartstein/fleet/internal/fleet/db"
	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/events"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DriverService manages license holders and their company affiliation.
type DriverService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
}

func NewDriverService(repo Repository, producer EventProducer, logger *zap.Logger) *DriverService {
	return &DriverService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("driver_service"),
	}
}

// companyClient resolves a live client and requires it to be a company.
func companyClient(ctx context.Context, tx *db.Repository, id uuid.UUID) (*models.Client, error) {
	client, err := tx.GetClient(ctx, id)
	if err != nil {
		return nil, resolve(err, "client", id)
	}
	if !client.IsCompany() {
		return nil, e.Invalid("client %s is %s; drivers can only be affiliated with %s clients",
			id, client.Type(), models.ClientCompany)
	}
	return client, nil
}

// CreateDriver registers a driver. When a live driver with the same tax
// identifier exists, creation fails: with a plain conflict if it is already
// linked to the requested client, otherwise with *errors.MigrationRequiredError
// describing the migration the caller may offer instead.
func (s *DriverService) CreateDriver(ctx context.Context, driver *models.Driver) (*models.Driver, error) {
	driver.Normalize()
	if driver.Status == "" {
		driver.Status = models.DriverActive
	}
	if err := driver.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		var requested *models.Client
		if driver.ClientID != nil {
			client, err := companyClient(ctx, tx, *driver.ClientID)
			if err != nil {
				return err
			}
			requested = client
		}

		existing, err := tx.FindActiveDriverByTaxID(ctx, driver.TaxID)
		switch {
		case err == nil:
			return s.duplicateDriver(ctx, tx, existing, driver, requested)
		case !errors.Is(err, e.ErrNotFound):
			return err
		}

		taken, err := tx.LicenseNumberTaken(ctx, driver.LicenseNumber, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return e.Conflict("driver license_number %s is already registered", driver.LicenseNumber)
		}

		driver.ID = uuid.New()
		return tx.CreateDriver(ctx, driver)
	})
	if err != nil {
		return nil, wrap(err, "create driver")
	}

	s.logger.Info("Driver created", zap.String("driver_id", driver.ID.String()))
	s.producer.Produce(events.DriverCreated, driver.ID, driver)
	return driver, nil
}

// duplicateDriver builds the error returned when candidate's tax identifier
// already belongs to existing.
func (s *DriverService) duplicateDriver(ctx context.Context, tx *db.Repository, existing, candidate *models.Driver, requested *models.Client) error {
	if existing.AffiliatedWith(candidate.ClientID) {
		return e.Conflict("driver tax_id %s is already registered for this client (driver %s)", candidate.TaxID, existing.ID)
	}

	migration := &e.MigrationRequiredError{
		ExistingDriverID:   existing.ID,
		ExistingDriverName: existing.Name,
		RequiresMigration:  true,
	}
	if existing.ClientID != nil {
		current, err := tx.GetClientUnscoped(ctx, *existing.ClientID)
		if err != nil && !errors.Is(err, e.ErrNotFound) {
			return err
		}
		if current != nil {
			migration.CurrentClientName = current.Name
		}
	}
	if requested != nil {
		migration.RequestedClientName = requested.Name
	}

	s.logger.Info("Driver creation requires migration",
		zap.String("existing_driver_id", existing.ID.String()),
		zap.String("current_client", migration.CurrentClientName),
		zap.String("requested_client", migration.RequestedClientName),
	)
	return migration
}

func (s *DriverService) GetDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	driver, err := s.repo.GetDriver(ctx, id)
	if err != nil {
		return nil, resolve(err, "driver", id)
	}
	return driver, nil
}

func (s *DriverService) ListDrivers(ctx context.Context, filter models.DriverFilter) ([]*models.Driver, int64, error) {
	drivers, total, err := s.repo.ListDrivers(ctx, filter)
	if err != nil {
		return nil, 0, wrap(err, "list drivers")
	}
	return drivers, total, nil
}

// SearchDrivers matches live drivers by name, email, partial tax identifier or
// partial license number.
func (s *DriverService) SearchDrivers(ctx context.Context, query string, limit int) ([]*models.Driver, error) {
	if query == "" {
		return []*models.Driver{}, nil
	}
	drivers, err := s.repo.SearchDrivers(ctx, query, models.SearchLimit(limit))
	if err != nil {
		return nil, wrap(err, "search drivers")
	}
	return drivers, nil
}

// UpdateDriver applies a partial update. An existing affiliation cannot be
// changed here; MigrateDriver is the only way to move a driver between
// companies. An unaffiliated driver may be linked to a company client.
func (s *DriverService) UpdateDriver(ctx context.Context, update *models.DriverUpdate) (*models.Driver, error) {
	if err := requireID(update.ID, "driver"); err != nil {
		return nil, err
	}

	var driver *models.Driver
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		current, err := tx.GetDriver(ctx, update.ID)
		if err != nil {
			return resolve(err, "driver", update.ID)
		}

		if update.ClientID != nil && !current.AffiliatedWith(update.ClientID) {
			if current.ClientID != nil {
				return e.Invalid("driver %s is linked to client %s; use migration to change its client",
					current.ID, *current.ClientID)
			}
			if _, err := companyClient(ctx, tx, *update.ClientID); err != nil {
				return err
			}
			current.ClientID = update.ClientID
		}

		oldTaxID, oldLicense := current.TaxID, current.LicenseNumber
		update.Apply(current)
		if err := current.Validate(); err != nil {
			return err
		}

		if current.TaxID != oldTaxID {
			taken, err := tx.DriverTaxIDTaken(ctx, current.TaxID, current.ID)
			if err != nil {
				return err
			}
			if taken {
				return e.Conflict("driver tax_id %s is already registered", current.TaxID)
			}
		}
		if current.LicenseNumber != oldLicense {
			taken, err := tx.LicenseNumberTaken(ctx, current.LicenseNumber, current.ID)
			if err != nil {
				return err
			}
			if taken {
				return e.Conflict("driver license_number %s is already registered", current.LicenseNumber)
			}
		}

		if err := tx.UpdateDriver(ctx, current); err != nil {
			return err
		}
		driver = current
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update driver")
	}

	s.producer.Produce(events.DriverUpdated, driver.ID, driver)
	return driver, nil
}

func (s *DriverService) SoftDeleteDriver(ctx context.Context, id uuid.UUID) error {
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if err := tx.SoftDeleteDriver(ctx, id); err != nil {
			return resolve(err, "driver", id)
		}
		return nil
	})
	if err != nil {
		return wrap(err, "delete driver")
	}

	s.producer.Produce(events.DriverDeleted, id, nil)
	return nil
}

// RestoreDriver brings back a soft-deleted driver after re-validating its tax
// identifier and license number against the live drivers.
func (s *DriverService) RestoreDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	var driver *models.Driver
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		deleted, err := tx.GetDriverUnscoped(ctx, id)
		if err != nil {
			return resolve(err, "driver", id)
		}
		if deleted.DeletedAt == nil {
			return e.Invalid("driver %s is not deleted", id)
		}

		taken, err := tx.DriverTaxIDTaken(ctx, deleted.TaxID, id)
		if err != nil {
			return err
		}
		if taken {
			return e.Conflict("driver tax_id %s is now held by another driver", deleted.TaxID)
		}
		taken, err = tx.LicenseNumberTaken(ctx, deleted.LicenseNumber, id)
		if err != nil {
			return err
		}
		if taken {
			return e.Conflict("driver license_number %s is now held by another driver", deleted.LicenseNumber)
		}

		if err := tx.RestoreDriver(ctx, id); err != nil {
			return err
		}
		deleted.DeletedAt = nil
		driver = deleted
		return nil
	})
	if err != nil {
		return nil, wrap(err, "restore driver")
	}

	s.producer.Produce(events.DriverRestored, id, driver)
	return driver, nil
}

// HardDeleteDriver irreversibly removes a driver that no rental references.
func (s *DriverService) HardDeleteDriver(ctx context.Context, id uuid.UUID) error {
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if _, err := tx.GetDriverUnscoped(ctx, id); err != nil {
			return resolve(err, "driver", id)
		}
		rentals, err := tx.CountDriverRentals(ctx, id)
		if err != nil {
			return err
		}
		if rentals > 0 {
			return e.Conflict("driver %s is referenced by %d rentals", id, rentals)
		}
		return tx.HardDeleteDriver(ctx, id)
	})
	if err != nil {
		return wrap(err, "purge driver")
	}

	s.logger.Warn("Driver purged", zap.String("driver_id", id.String()))
	s.producer.Produce(events.DriverDeleted, id, map[string]bool{"purged": true})
	return nil
}
