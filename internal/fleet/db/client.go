package db

import (
	"context"

	rows "github.com/gartstein/fleet/internal/fleet/db/models"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *Repository) CreateClient(ctx context.Context, client *models.Client) error {
	row := clientToRow(client)
	if err := create(ctx, r.db, row); err != nil {
		return err
	}
	client.CreatedAt, client.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

// GetClient returns a live client.
func (r *Repository) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	row, err := get[rows.Client](ctx, r.db, id, false)
	if err != nil {
		return nil, err
	}
	return clientFromRow(row), nil
}

// GetClientUnscoped returns a client whether or not it is soft-deleted.
func (r *Repository) GetClientUnscoped(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	row, err := get[rows.Client](ctx, r.db, id, true)
	if err != nil {
		return nil, err
	}
	return clientFromRow(row), nil
}

func (r *Repository) UpdateClient(ctx context.Context, client *models.Client) error {
	row := clientToRow(client)
	if err := save(ctx, r.db, client.ID, row); err != nil {
		return err
	}
	return nil
}

func (r *Repository) SoftDeleteClient(ctx context.Context, id uuid.UUID) error {
	return softDelete[rows.Client](ctx, r.db, id)
}

func (r *Repository) RestoreClient(ctx context.Context, id uuid.UUID) error {
	return restore[rows.Client](ctx, r.db, id)
}

func (r *Repository) HardDeleteClient(ctx context.Context, id uuid.UUID) error {
	return purge[rows.Client](ctx, r.db, id)
}

// ClientTaxIDTaken reports whether another live client holds taxID.
func (r *Repository) ClientTaxIDTaken(ctx context.Context, taxID string, excludeID uuid.UUID) (bool, error) {
	return taken[rows.Client](ctx, r.db, "tax_id", taxID, excludeID)
}

// CountClientReferences counts rentals and drivers pointing at the client,
// including soft-deleted ones.
func (r *Repository) CountClientReferences(ctx context.Context, id uuid.UUID) (rentals, drivers int64, err error) {
	if rentals, err = countUnscoped[rows.Rental](ctx, r.db, "client_id", id); err != nil {
		return 0, 0, err
	}
	if drivers, err = countUnscoped[rows.Driver](ctx, r.db, "client_id", id); err != nil {
		return 0, 0, err
	}
	return rentals, drivers, nil
}

func (r *Repository) ListClients(ctx context.Context, filter models.ClientFilter) ([]*models.Client, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Type != nil {
			db = db.Where("type = ?", string(*filter.Type))
		}
		if filter.Status != nil {
			db = db.Where("status = ?", string(*filter.Status))
		}
		return db
	}

	var total int64
	if err := r.scoped(ctx, filter.IncludeDeleted).Model(&rows.Client{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var found []rows.Client
	err := r.scoped(ctx, filter.IncludeDeleted).Scopes(scope).
		Order("name ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&found).Error
	if err != nil {
		return nil, 0, err
	}

	clients := make([]*models.Client, 0, len(found))
	for i := range found {
		clients = append(clients, clientFromRow(&found[i]))
	}
	return clients, total, nil
}

// SearchClients matches live clients by name, email or partial tax identifier.
func (r *Repository) SearchClients(ctx context.Context, query string, limit int) ([]*models.Client, error) {
	cond, args := searchCondition(query, []string{"name", "email"}, []string{"tax_id"})
	q := r.db.WithContext(ctx).Where(cond, args...)

	var found []rows.Client
	if err := q.Order("name ASC").Limit(limit).Find(&found).Error; err != nil {
		return nil, err
	}

	clients := make([]*models.Client, 0, len(found))
	for i := range found {
		clients = append(clients, clientFromRow(&found[i]))
	}
	return clients, nil
}
