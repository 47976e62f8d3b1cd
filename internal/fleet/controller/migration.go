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

// MigrateDriver moves a driver to another company client. It is the only
// operation that changes an existing affiliation. The previous client is
// returned and logged for audit.
func (s *DriverService) MigrateDriver(ctx context.Context, driverID, newClientID uuid.UUID) (*models.MigrationResult, error) {
	if err := requireID(driverID, "driver"); err != nil {
		return nil, err
	}
	if err := requireID(newClientID, "client"); err != nil {
		return nil, err
	}

	var result *models.MigrationResult
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		driver, err := tx.GetDriver(ctx, driverID)
		if err != nil {
			return resolve(err, "driver", driverID)
		}
		if _, err := companyClient(ctx, tx, newClientID); err != nil {
			return err
		}
		if driver.AffiliatedWith(&newClientID) {
			return e.Invalid("driver %s is already linked to this client", driverID)
		}

		previous := driver.ClientID
		driver.ClientID = &newClientID
		if err := tx.UpdateDriver(ctx, driver); err != nil {
			return err
		}
		result = &models.MigrationResult{Driver: driver, PreviousClientID: previous}
		return nil
	})
	if err != nil {
		return nil, wrap(err, "migrate driver")
	}

	previous := "none"
	if result.PreviousClientID != nil {
		previous = result.PreviousClientID.String()
	}
	s.logger.Info("Driver migrated",
		zap.String("driver_id", driverID.String()),
		zap.String("previous_client_id", previous),
		zap.String("client_id", newClientID.String()),
	)
	s.producer.Produce(events.DriverMigrated, driverID, result)
	return result, nil
}
