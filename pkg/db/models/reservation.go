package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/enums"
)

// Reservation is one booking attempt against a spot or a section's counter.
// SpotID is NULL for capacity-only reservations.
type Reservation struct {
	ID        uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID               `gorm:"type:uuid;not null"`
	SpotID    *uuid.UUID              `gorm:"type:uuid"`
	SectionID uuid.UUID               `gorm:"type:uuid;not null"`
	Status    enums.ReservationStatus `gorm:"type:reservation_status;not null;default:'reserved'"`
	StartTime *time.Time              `gorm:"type:timestamptz"`
	EndedAt   *time.Time              `gorm:"type:timestamptz"`
	CreatedAt time.Time               `gorm:"type:timestamptz;default:now()"`
	UpdatedAt time.Time               `gorm:"type:timestamptz;default:now()"`
}

// CapacityOnly reports whether the reservation holds section capacity
// without a concrete spot.
func (r Reservation) CapacityOnly() bool {
	return r.SpotID == nil
}
