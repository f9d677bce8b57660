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

	"github.com/kennyjayamorgiente-ux/parkpass-backend/internal/reservations"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/audit"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/db/models"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/enums"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/logger"
)

func setupFlowTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS parking_sections (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  capacity INTEGER NOT NULL,
  reserved_count INTEGER NOT NULL DEFAULT 0,
  parked_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS parking_spots (
  id TEXT PRIMARY KEY,
  section_id TEXT NOT NULL,
  label TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'available',
  is_occupied INTEGER NOT NULL DEFAULT 0,
  occupant_id TEXT,
  occupied_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS reservations (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  spot_id TEXT,
  section_id TEXT NOT NULL,
  status TEXT NOT NULL,
  start_time DATETIME,
  ended_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS audit_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  delivered_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// Full pass over a real store: one overdue capacity-only reservation, grace
// period 15 minutes, section counter 3. The sweep must invalidate the
// reservation, release exactly one unit of held capacity, and append exactly
// one audit row.
func TestSweep_endToEndOverSQLite(t *testing.T) {
	db := setupFlowTestDB(t)
	now := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	logg := logger.New(logger.Options{ServiceName: "test"})

	section := models.ParkingSection{
		ID:            uuid.New(),
		Name:          "Garage North",
		Capacity:      5,
		ReservedCount: 3,
	}
	require.NoError(t, db.Create(&section).Error)

	overdue := models.Reservation{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		SectionID: section.ID,
		Status:    enums.ReservationStatusReserved,
		CreatedAt: now.Add(-16 * time.Minute),
	}
	require.NoError(t, db.Create(&overdue).Error)

	scanner := NewScanner(db)
	scanner.now = func() time.Time { return now }

	auditSvc := audit.NewService(audit.NewRepository(db), logg)
	expirer, err := NewExpirer(ExpirerParams{
		Logger: logg,
		DB:     sqliteTxRunner{db: db},
		Audit:  auditSvc,
	})
	require.NoError(t, err)
	expirer.now = func() time.Time { return now }

	coordinator, err := NewCoordinator(CoordinatorParams{
		Logger:      logg,
		Scanner:     scanner,
		Expirer:     expirer,
		GracePeriod: 15 * time.Minute,
	})
	require.NoError(t, err)

	summary, err := coordinator.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Attempted: 1, Succeeded: 1}, summary)

	repo := reservations.NewRepository(db)
	ctx := context.Background()

	found, err := repo.FindReservation(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReservationStatusInvalid, found.Status)
	require.NotNil(t, found.EndedAt)

	foundSection, err := repo.FindSection(ctx, section.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, foundSection.ReservedCount)

	var auditRows []models.AuditEvent
	require.NoError(t, db.Find(&auditRows).Error)
	require.Len(t, auditRows, 1)
	assert.Equal(t, enums.EventReservationExpired, auditRows[0].EventType)
	assert.Equal(t, overdue.ID, auditRows[0].AggregateID)

	// The follow-up sweep finds nothing; nothing moves.
	second, err := coordinator.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{}, second)

	foundSection, err = repo.FindSection(ctx, section.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, foundSection.ReservedCount)
}
