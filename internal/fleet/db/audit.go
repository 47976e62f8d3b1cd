package db

import (
	"context"

	rows "github.com/gartstein/fleet/internal/fleet/db/models"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
)

func (r *Repository) CreateAuditEntry(ctx context.Context, entry *models.AuditEntry) error {
	row := auditToRow(entry)
	if err := create(ctx, r.db, row); err != nil {
		return err
	}
	entry.RecordedAt = row.RecordedAt
	return nil
}

// ListAuditEntries returns the history of one entity, oldest first.
func (r *Repository) ListAuditEntries(ctx context.Context, entity string, entityID uuid.UUID, limit int) ([]*models.AuditEntry, error) {
	var found []rows.AuditEntry
	err := r.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("occurred_at ASC").
		Limit(limit).
		Find(&found).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*models.AuditEntry, 0, len(found))
	for i := range found {
		entries = append(entries, auditFromRow(&found[i]))
	}
	return entries, nil
}
