package sweeper

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/db/models"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/enums"
)

// Scanner identifies reservations past their grace period. The scan is
// read-only and runs outside any transaction: staleness only delays an
// expiry by one sweep interval, it can never cause an incorrect one,
// because eligibility only tightens over time.
type Scanner struct {
	db  *gorm.DB
	now func() time.Time
}

// NewScanner builds a scanner bound to the provided connection.
func NewScanner(db *gorm.DB) *Scanner {
	return &Scanner{db: db, now: time.Now}
}

// FindExpiredReservations returns a fresh candidate snapshot: reservations
// still in status reserved, with no session start, created at or before
// now minus the grace period (inclusive boundary).
func (s *Scanner) FindExpiredReservations(ctx context.Context, gracePeriod time.Duration) ([]Candidate, error) {
	cutoff := s.now().UTC().Add(-gracePeriod)

	var rows []models.Reservation
	err := s.db.WithContext(ctx).
		Where("status = ? AND start_time IS NULL AND created_at <= ?", enums.ReservationStatusReserved, cutoff).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("scanning expired reservations: %w", err)
	}

	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, Candidate{
			ReservationID: row.ID,
			UserID:        row.UserID,
			Spot:          SpotTargetFrom(row.SpotID),
			SectionID:     row.SectionID,
			CreatedAt:     row.CreatedAt,
		})
	}
	return candidates, nil
}
