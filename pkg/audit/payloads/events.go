package payloads

import (
	"time"

	"github.com/google/uuid"
)

// ReservationExpiredEvent is recorded when the sweeper voids an unstarted
// reservation past its grace period.
type ReservationExpiredEvent struct {
	ReservationID uuid.UUID  `json:"reservationId"`
	UserID        uuid.UUID  `json:"userId"`
	SectionID     uuid.UUID  `json:"sectionId"`
	SpotID        *uuid.UUID `json:"spotId,omitempty"`
	ExpiredAt     time.Time  `json:"expiredAt"`
}

// ReservationCreatedEvent is recorded when a reservation is inserted.
type ReservationCreatedEvent struct {
	ReservationID uuid.UUID  `json:"reservationId"`
	UserID        uuid.UUID  `json:"userId"`
	SectionID     uuid.UUID  `json:"sectionId"`
	SpotID        *uuid.UUID `json:"spotId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// SessionStartedEvent is recorded when a holder arrives and the session begins.
type SessionStartedEvent struct {
	ReservationID uuid.UUID `json:"reservationId"`
	UserID        uuid.UUID `json:"userId"`
	SectionID     uuid.UUID `json:"sectionId"`
	StartedAt     time.Time `json:"startedAt"`
}
