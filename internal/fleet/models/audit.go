package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditEntry records one lifecycle event of an entity.
type AuditEntry struct {
	ID         uuid.UUID       `json:"id"`
	EventType  string          `json:"event_type"`
	Entity     string          `json:"entity"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
	RecordedAt time.Time       `json:"recorded_at"`
}
