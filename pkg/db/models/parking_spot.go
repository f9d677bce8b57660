package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/enums"
)

// ParkingSpot is a physical, individually numbered space inside a section.
type ParkingSpot struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SectionID  uuid.UUID        `gorm:"type:uuid;not null"`
	Label      string           `gorm:"type:text;not null"`
	Status     enums.SpotStatus `gorm:"type:spot_status;not null;default:'available'"`
	IsOccupied bool             `gorm:"not null;default:false"`
	OccupantID *uuid.UUID       `gorm:"type:uuid"`
	OccupiedAt *time.Time       `gorm:"type:timestamptz"`
	CreatedAt  time.Time        `gorm:"type:timestamptz;default:now()"`
	UpdatedAt  time.Time        `gorm:"type:timestamptz;default:now()"`
}
