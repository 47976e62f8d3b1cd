package db

import (
	"context"
	"errors"

	rows "github.com/gartstein/fleet/internal/fleet/db/models"
	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *Repository) CreateDriver(ctx context.Context, driver *models.Driver) error {
	row := driverToRow(driver)
	if err := create(ctx, r.db, row); err != nil {
		return err
	}
	driver.CreatedAt, driver.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *Repository) GetDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	row, err := get[rows.Driver](ctx, r.db, id, false)
	if err != nil {
		return nil, err
	}
	return driverFromRow(row), nil
}

func (r *Repository) GetDriverUnscoped(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	row, err := get[rows.Driver](ctx, r.db, id, true)
	if err != nil {
		return nil, err
	}
	return driverFromRow(row), nil
}

// FindActiveDriverByTaxID returns the live driver holding taxID, if any.
func (r *Repository) FindActiveDriverByTaxID(ctx context.Context, taxID string) (*models.Driver, error) {
	var row rows.Driver
	err := r.db.WithContext(ctx).Where("tax_id = ?", taxID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, err
	}
	return driverFromRow(&row), nil
}

func (r *Repository) UpdateDriver(ctx context.Context, driver *models.Driver) error {
	return save(ctx, r.db, driver.ID, driverToRow(driver))
}

func (r *Repository) SoftDeleteDriver(ctx context.Context, id uuid.UUID) error {
	return softDelete[rows.Driver](ctx, r.db, id)
}

func (r *Repository) RestoreDriver(ctx context.Context, id uuid.UUID) error {
	return restore[rows.Driver](ctx, r.db, id)
}

func (r *Repository) HardDeleteDriver(ctx context.Context, id uuid.UUID) error {
	return purge[rows.Driver](ctx, r.db, id)
}

// DriverTaxIDTaken reports whether another live driver holds taxID.
func (r *Repository) DriverTaxIDTaken(ctx context.Context, taxID string, excludeID uuid.UUID) (bool, error) {
	return taken[rows.Driver](ctx, r.db, "tax_id", taxID, excludeID)
}

// LicenseNumberTaken reports whether another live driver holds the license number.
func (r *Repository) LicenseNumberTaken(ctx context.Context, license string, excludeID uuid.UUID) (bool, error) {
	return taken[rows.Driver](ctx, r.db, "license_number", license, excludeID)
}

// CountDriverRentals counts rentals referencing the driver, including soft-deleted ones.
func (r *Repository) CountDriverRentals(ctx context.Context, id uuid.UUID) (int64, error) {
	return countUnscoped[rows.Rental](ctx, r.db, "driver_id", id)
}

func (r *Repository) ListDrivers(ctx context.Context, filter models.DriverFilter) ([]*models.Driver, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.ClientID != nil {
			db = db.Where("client_id = ?", *filter.ClientID)
		}
		if filter.Status != nil {
			db = db.Where("status = ?", string(*filter.Status))
		}
		return db
	}

	var total int64
	if err := r.scoped(ctx, filter.IncludeDeleted).Model(&rows.Driver{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var found []rows.Driver
	err := r.scoped(ctx, filter.IncludeDeleted).Scopes(scope).
		Order("name ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&found).Error
	if err != nil {
		return nil, 0, err
	}

	drivers := make([]*models.Driver, 0, len(found))
	for i := range found {
		drivers = append(drivers, driverFromRow(&found[i]))
	}
	return drivers, total, nil
}

// SearchDrivers matches live drivers by name, email, partial tax identifier or license number.
func (r *Repository) SearchDrivers(ctx context.Context, query string, limit int) ([]*models.Driver, error) {
	cond, args := searchCondition(query, []string{"name", "email"}, []string{"tax_id", "license_number"})

	var found []rows.Driver
	if err := r.db.WithContext(ctx).Where(cond, args...).Order("name ASC").Limit(limit).Find(&found).Error; err != nil {
		return nil, err
	}

	drivers := make([]*models.Driver, 0, len(found))
	for i := range found {
		drivers = append(drivers, driverFromRow(&found[i]))
	}
	return drivers, nil
}
