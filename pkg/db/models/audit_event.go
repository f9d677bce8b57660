package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/enums"
)

// AuditEvent is an append-only record of a state change. The sweeper writes
// one row per successful expiry inside the expiry transaction; the
// audit-publisher owns the delivery columns.
type AuditEvent struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventType     enums.AuditEventType     `gorm:"column:event_type;type:audit_event_type;not null"`
	AggregateType enums.AuditAggregateType `gorm:"column:aggregate_type;type:audit_aggregate_type;not null"`
	AggregateID   uuid.UUID                `gorm:"column:aggregate_id;type:uuid;not null"`
	Payload       json.RawMessage          `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
	DeliveredAt   *time.Time               `gorm:"column:delivered_at"`
	AttemptCount  int                      `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                  `gorm:"column:last_error"`
}
