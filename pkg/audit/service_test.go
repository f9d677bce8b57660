package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/db/models"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/enums"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/logger"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS audit_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  delivered_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func insertAuditEvent(t *testing.T, db *gorm.DB, row models.AuditEvent) models.AuditEvent {
	t.Helper()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Payload == nil {
		row.Payload = json.RawMessage(`{}`)
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

type expiredPayload struct {
	ReservationID uuid.UUID `json:"reservationId"`
}

func TestService_emitStoresEnvelope(t *testing.T) {
	db := setupAuditTestDB(t)
	svc := NewService(NewRepository(db), logger.New(logger.Options{ServiceName: "test"}))
	reservationID := uuid.New()

	err := svc.Emit(context.Background(), db, DomainEvent{
		EventType:     enums.EventReservationExpired,
		AggregateType: enums.AggregateReservation,
		AggregateID:   reservationID,
		Version:       1,
		OccurredAt:    time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
		Data:          expiredPayload{ReservationID: reservationID},
	})
	require.NoError(t, err)

	var rows []models.AuditEvent
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.EventReservationExpired, rows[0].EventType)
	assert.Equal(t, reservationID, rows[0].AggregateID)
	assert.Nil(t, rows[0].DeliveredAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)

	var data expiredPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, reservationID, data.ReservationID)
}

func TestService_emitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(nil), logger.New(logger.Options{ServiceName: "test"}))
	err := svc.Emit(context.Background(), nil, DomainEvent{})
	assert.Error(t, err)
}

func TestService_emitIfNotExistsDeduplicates(t *testing.T) {
	db := setupAuditTestDB(t)
	svc := NewService(NewRepository(db), logger.New(logger.Options{ServiceName: "test"}))
	reservationID := uuid.New()
	event := DomainEvent{
		EventType:     enums.EventReservationExpired,
		AggregateType: enums.AggregateReservation,
		AggregateID:   reservationID,
		Version:       1,
		Data:          expiredPayload{ReservationID: reservationID},
	}

	require.NoError(t, svc.EmitIfNotExists(context.Background(), db, event))
	require.NoError(t, svc.EmitIfNotExists(context.Background(), db, event))

	var count int64
	require.NoError(t, db.Model(&models.AuditEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepository_fetchUndeliveredSkipsDeliveredAndExhausted(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	pending := insertAuditEvent(t, db, models.AuditEvent{
		EventType:     enums.EventReservationExpired,
		AggregateType: enums.AggregateReservation,
		AggregateID:   uuid.New(),
		CreatedAt:     now.Add(-time.Minute),
	})
	insertAuditEvent(t, db, models.AuditEvent{
		EventType:     enums.EventReservationExpired,
		AggregateType: enums.AggregateReservation,
		AggregateID:   uuid.New(),
		CreatedAt:     now,
		DeliveredAt:   &now,
	})
	insertAuditEvent(t, db, models.AuditEvent{
		EventType:     enums.EventReservationExpired,
		AggregateType: enums.AggregateReservation,
		AggregateID:   uuid.New(),
		CreatedAt:     now,
		AttemptCount:  10,
	})

	rows, err := repo.FetchUndeliveredForPublish(db, 50, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pending.ID, rows[0].ID)
}

func TestRepository_markFailedIncrementsAttempts(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)

	row := insertAuditEvent(t, db, models.AuditEvent{
		EventType:     enums.EventReservationExpired,
		AggregateType: enums.AggregateReservation,
		AggregateID:   uuid.New(),
	})

	require.NoError(t, repo.MarkFailedTx(db, row.ID, fmt.Errorf("publish timeout")))
	require.NoError(t, repo.MarkFailedTx(db, row.ID, fmt.Errorf("publish timeout again")))

	var found models.AuditEvent
	require.NoError(t, db.First(&found, "id = ?", row.ID).Error)
	assert.Equal(t, 2, found.AttemptCount)
	require.NotNil(t, found.LastError)
	assert.Equal(t, "publish timeout again", *found.LastError)

	require.NoError(t, repo.MarkDeliveredTx(db, row.ID))
	require.NoError(t, db.First(&found, "id = ?", row.ID).Error)
	require.NotNil(t, found.DeliveredAt)
}
