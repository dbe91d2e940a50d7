package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/YouHyuksoo/HANES-sub001/pkg/enums"
)

// DomainEvent is an append-only outbox row written in the same transaction
// as the state change it describes.
type DomainEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	EventType     enums.DomainEventType     `gorm:"column:event_type;type:text;not null"`
	AggregateType enums.DomainAggregateType `gorm:"column:aggregate_type;type:text;not null"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null;index"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
	PublishedAt   *time.Time                `gorm:"column:published_at"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error"`
}
