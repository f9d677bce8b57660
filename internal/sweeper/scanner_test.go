package sweeper

import (
	"context"
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
)

func setupScannerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	reservations := `
CREATE TABLE IF NOT EXISTS reservations (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  spot_id TEXT,
  section_id TEXT NOT NULL,
  status TEXT NOT NULL,
  start_time DATETIME,
  ended_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(reservations).Error)
	return db
}

func insertReservation(t *testing.T, db *gorm.DB, row models.Reservation) models.Reservation {
	t.Helper()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.UserID == uuid.Nil {
		row.UserID = uuid.New()
	}
	if row.SectionID == uuid.Nil {
		row.SectionID = uuid.New()
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestScanner_gracePeriodBoundaryIsInclusive(t *testing.T) {
	db := setupScannerTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	grace := 15 * time.Minute

	exactlyAtBoundary := insertReservation(t, db, models.Reservation{
		Status:    enums.ReservationStatusReserved,
		CreatedAt: now.Add(-grace),
	})
	justInside := insertReservation(t, db, models.Reservation{
		Status:    enums.ReservationStatusReserved,
		CreatedAt: now.Add(-grace + time.Minute),
	})

	scanner := NewScanner(db)
	scanner.now = func() time.Time { return now }

	candidates, err := scanner.FindExpiredReservations(context.Background(), grace)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, exactlyAtBoundary.ID, candidates[0].ReservationID)
	assert.NotEqual(t, justInside.ID, candidates[0].ReservationID)
}

func TestScanner_ignoresStartedAndTerminalReservations(t *testing.T) {
	db := setupScannerTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	grace := 15 * time.Minute
	old := now.Add(-2 * time.Hour)
	started := old.Add(5 * time.Minute)

	overdue := insertReservation(t, db, models.Reservation{
		Status:    enums.ReservationStatusReserved,
		CreatedAt: old,
	})
	insertReservation(t, db, models.Reservation{
		Status:    enums.ReservationStatusActive,
		StartTime: &started,
		CreatedAt: old,
	})
	insertReservation(t, db, models.Reservation{
		Status:    enums.ReservationStatusCompleted,
		CreatedAt: old,
	})
	insertReservation(t, db, models.Reservation{
		Status:    enums.ReservationStatusInvalid,
		CreatedAt: old,
	})

	scanner := NewScanner(db)
	scanner.now = func() time.Time { return now }

	candidates, err := scanner.FindExpiredReservations(context.Background(), grace)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, overdue.ID, candidates[0].ReservationID)
}

func TestScanner_ordersCandidatesOldestFirst(t *testing.T) {
	db := setupScannerTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	grace := 15 * time.Minute

	newer := insertReservation(t, db, models.Reservation{
		Status:    enums.ReservationStatusReserved,
		CreatedAt: now.Add(-20 * time.Minute),
	})
	older := insertReservation(t, db, models.Reservation{
		Status:    enums.ReservationStatusReserved,
		CreatedAt: now.Add(-40 * time.Minute),
	})

	scanner := NewScanner(db)
	scanner.now = func() time.Time { return now }

	candidates, err := scanner.FindExpiredReservations(context.Background(), grace)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, older.ID, candidates[0].ReservationID)
	assert.Equal(t, newer.ID, candidates[1].ReservationID)
}

func TestScanner_mapsSpotTarget(t *testing.T) {
	db := setupScannerTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	spotID := uuid.New()

	insertReservation(t, db, models.Reservation{
		Status:    enums.ReservationStatusReserved,
		SpotID:    &spotID,
		CreatedAt: now.Add(-time.Hour),
	})

	scanner := NewScanner(db)
	scanner.now = func() time.Time { return now }

	candidates, err := scanner.FindExpiredReservations(context.Background(), 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	gotID, concrete := candidates[0].Spot.Concrete()
	require.True(t, concrete)
	assert.Equal(t, spotID, gotID)
}
