package db

import (
	"context"

	rows "github.com/gartstein/fleet/internal/fleet/db/models"
	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	row := vehicleToRow(vehicle)
	if err := create(ctx, r.db, row); err != nil {
		return err
	}
	vehicle.CreatedAt, vehicle.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *Repository) GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	row, err := get[rows.Vehicle](ctx, r.db, id, false)
	if err != nil {
		return nil, err
	}
	return vehicleFromRow(row), nil
}

func (r *Repository) GetVehicleUnscoped(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	row, err := get[rows.Vehicle](ctx, r.db, id, true)
	if err != nil {
		return nil, err
	}
	return vehicleFromRow(row), nil
}

// LockVehicle reads a live vehicle with SELECT ... FOR UPDATE so that concurrent
// bookings of the same vehicle serialize inside their transactions. SQLite
// ignores the locking clause.
func (r *Repository) LockVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var row rows.Vehicle
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return vehicleFromRow(&row), nil
}

func (r *Repository) UpdateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	return save(ctx, r.db, vehicle.ID, vehicleToRow(vehicle))
}

// SetVehicleState updates the odometer and status of a vehicle together.
func (r *Repository) SetVehicleState(ctx context.Context, id uuid.UUID, odometer int, status models.VehicleStatus) error {
	result := r.db.WithContext(ctx).Model(&rows.Vehicle{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"odometer": odometer,
			"status":   string(status),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) SoftDeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return softDelete[rows.Vehicle](ctx, r.db, id)
}

func (r *Repository) RestoreVehicle(ctx context.Context, id uuid.UUID) error {
	return restore[rows.Vehicle](ctx, r.db, id)
}

func (r *Repository) HardDeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return purge[rows.Vehicle](ctx, r.db, id)
}

// PlateTaken reports whether another live vehicle holds the plate.
func (r *Repository) PlateTaken(ctx context.Context, plate string, excludeID uuid.UUID) (bool, error) {
	return taken[rows.Vehicle](ctx, r.db, "plate", plate, excludeID)
}

// RegistryIDTaken reports whether another live vehicle holds the registry number.
func (r *Repository) RegistryIDTaken(ctx context.Context, registryID string, excludeID uuid.UUID) (bool, error) {
	return taken[rows.Vehicle](ctx, r.db, "registry_id", registryID, excludeID)
}

// ChassisTaken reports whether another live vehicle holds the chassis number.
func (r *Repository) ChassisTaken(ctx context.Context, chassis string, excludeID uuid.UUID) (bool, error) {
	return taken[rows.Vehicle](ctx, r.db, "chassis", chassis, excludeID)
}

// CountVehicleRentals counts rentals referencing the vehicle, including soft-deleted ones.
func (r *Repository) CountVehicleRentals(ctx context.Context, id uuid.UUID) (int64, error) {
	return countUnscoped[rows.Rental](ctx, r.db, "vehicle_id", id)
}

func (r *Repository) ListVehicles(ctx context.Context, filter models.VehicleFilter) ([]*models.Vehicle, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != nil {
			db = db.Where("status = ?", string(*filter.Status))
		}
		return db
	}

	var total int64
	if err := r.scoped(ctx, filter.IncludeDeleted).Model(&rows.Vehicle{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var found []rows.Vehicle
	err := r.scoped(ctx, filter.IncludeDeleted).Scopes(scope).
		Order("plate ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&found).Error
	if err != nil {
		return nil, 0, err
	}

	vehicles := make([]*models.Vehicle, 0, len(found))
	for i := range found {
		vehicles = append(vehicles, vehicleFromRow(&found[i]))
	}
	return vehicles, total, nil
}

// SearchVehicles matches live vehicles by make, model or partial plate.
func (r *Repository) SearchVehicles(ctx context.Context, query string, limit int) ([]*models.Vehicle, error) {
	cond, args := searchCondition(query, []string{"make", "model"}, []string{"plate"})

	var found []rows.Vehicle
	if err := r.db.WithContext(ctx).Where(cond, args...).Order("plate ASC").Limit(limit).Find(&found).Error; err != nil {
		return nil, err
	}

	vehicles := make([]*models.Vehicle, 0, len(found))
	for i := range found {
		vehicles = append(vehicles, vehicleFromRow(&found[i]))
	}
	return vehicles, nil
}
