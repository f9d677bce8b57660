package sweeper

import (
	"time"

	"github.com/google/uuid"
)

// SpotTarget is the tagged form of a reservation's spot reference: either a
// concrete numbered spot or a capacity-only hold against the section counter.
type SpotTarget struct {
	id       uuid.UUID
	concrete bool
}

// ConcreteSpot returns a target referencing a numbered spot.
func ConcreteSpot(id uuid.UUID) SpotTarget {
	return SpotTarget{id: id, concrete: true}
}

// CapacityOnly returns a target holding section capacity without a spot.
func CapacityOnly() SpotTarget {
	return SpotTarget{}
}

// SpotTargetFrom maps a nullable spot column to a SpotTarget.
func SpotTargetFrom(id *uuid.UUID) SpotTarget {
	if id == nil {
		return CapacityOnly()
	}
	return ConcreteSpot(*id)
}

// Concrete returns the spot id and true when the target is a numbered spot.
func (t SpotTarget) Concrete() (uuid.UUID, bool) {
	return t.id, t.concrete
}

// Candidate is a reservation identified as eligible for expiry, carrying
// enough denormalized data to expire it without a second lookup round-trip.
type Candidate struct {
	ReservationID uuid.UUID
	UserID        uuid.UUID
	Spot          SpotTarget
	SectionID     uuid.UUID
	CreatedAt     time.Time
}
