package controller

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/events"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

var auditedEntities = map[string]bool{
	"client": true, "driver": true, "vehicle": true, "rental": true,
}

// AuditService stores consumed lifecycle events and serves entity histories.
type AuditService struct {
	repo   Repository
	logger *zap.Logger
}

func NewAuditService(repo Repository, logger *zap.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		logger: logger.Named("audit_service"),
	}
}

// Record appends an event to the audit trail. It is registered as the
// handler of the events consumer: storage failures are returned for retry,
// domain errors are marked permanent so the event is dropped.
func (s *AuditService) Record(ctx context.Context, event events.Event) error {
	entity := event.Entity
	if entity == "" {
		entity = event.Type.Entity()
	}
	if !auditedEntities[entity] || event.EntityID == uuid.Nil {
		s.logger.Warn("Skipping unauditable event",
			zap.String("event_type", string(event.Type)),
			zap.String("entity", entity),
		)
		return nil
	}

	occurredAt := event.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	entry := &models.AuditEntry{
		ID:         uuid.New(),
		EventType:  string(event.Type),
		Entity:     entity,
		EntityID:   event.EntityID,
		Payload:    event.Payload,
		OccurredAt: occurredAt,
	}
	if err := s.repo.CreateAuditEntry(ctx, entry); err != nil {
		if domainError(err) {
			return backoff.Permanent(err)
		}
		return wrap(err, "record audit entry")
	}

	s.logger.Debug("Audit entry recorded",
		zap.String("event_type", entry.EventType),
		zap.String("entity_id", entry.EntityID.String()),
	)
	return nil
}

// History returns the audit trail of one entity, oldest first.
func (s *AuditService) History(ctx context.Context, entity string, id uuid.UUID, limit int) ([]*models.AuditEntry, error) {
	if !auditedEntities[entity] {
		return nil, e.Invalid("unknown entity %q", entity)
	}
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	entries, err := s.repo.ListAuditEntries(ctx, entity, id, limit)
	if err != nil {
		return nil, wrap(err, "list audit entries")
	}
	return entries, nil
}
