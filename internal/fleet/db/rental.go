package db

import (
	"context"

	rows "github.com/gartstein/fleet/internal/fleet/db/models"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *Repository) CreateRental(ctx context.Context, rental *models.Rental) error {
	row := rentalToRow(rental)
	if err := create(ctx, r.db, row); err != nil {
		return err
	}
	rental.CreatedAt, rental.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *Repository) GetRental(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	row, err := get[rows.Rental](ctx, r.db, id, false)
	if err != nil {
		return nil, err
	}
	return rentalFromRow(row), nil
}

func (r *Repository) UpdateRental(ctx context.Context, rental *models.Rental) error {
	return save(ctx, r.db, rental.ID, rentalToRow(rental))
}

func (r *Repository) SoftDeleteRental(ctx context.Context, id uuid.UUID) error {
	return softDelete[rows.Rental](ctx, r.db, id)
}

// ActiveRentalsForVehicle returns the live ACTIVE rentals of a vehicle,
// skipping excludeID when it is set.
func (r *Repository) ActiveRentalsForVehicle(ctx context.Context, vehicleID, excludeID uuid.UUID) ([]*models.Rental, error) {
	q := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND status = ?", vehicleID, string(models.RentalActive))
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}

	var found []rows.Rental
	if err := q.Order("start_date ASC").Find(&found).Error; err != nil {
		return nil, err
	}

	rentals := make([]*models.Rental, 0, len(found))
	for i := range found {
		rentals = append(rentals, rentalFromRow(&found[i]))
	}
	return rentals, nil
}

func (r *Repository) ListRentals(ctx context.Context, filter models.RentalFilter) ([]*models.Rental, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.ClientID != nil {
			db = db.Where("client_id = ?", *filter.ClientID)
		}
		if filter.DriverID != nil {
			db = db.Where("driver_id = ?", *filter.DriverID)
		}
		if filter.VehicleID != nil {
			db = db.Where("vehicle_id = ?", *filter.VehicleID)
		}
		if filter.Status != nil {
			db = db.Where("status = ?", string(*filter.Status))
		}
		if filter.From != nil {
			db = db.Where("end_date >= ?", filter.From.UTC())
		}
		if filter.To != nil {
			db = db.Where("start_date <= ?", filter.To.UTC())
		}
		return db
	}

	var total int64
	if err := r.scoped(ctx, filter.IncludeDeleted).Model(&rows.Rental{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var found []rows.Rental
	err := r.scoped(ctx, filter.IncludeDeleted).Scopes(scope).
		Order("start_date DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&found).Error
	if err != nil {
		return nil, 0, err
	}

	rentals := make([]*models.Rental, 0, len(found))
	for i := range found {
		rentals = append(rentals, rentalFromRow(&found[i]))
	}
	return rentals, total, nil
}
