package models

import (
	"time"

	"github.com/google/uuid"
)

// ParkingSection is a capacity pool. It either backs a collection of
// numbered spots or stands alone as a counter-only pool for vehicle classes
// without individual stalls. ReservedCount and ParkedCount never go
// negative; decrements clamp at zero.
type ParkingSection struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string    `gorm:"type:text;not null"`
	Capacity      int       `gorm:"not null"`
	ReservedCount int       `gorm:"not null;default:0"`
	ParkedCount   int       `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"type:timestamptz;default:now()"`
	UpdatedAt     time.Time `gorm:"type:timestamptz;default:now()"`
}

// Available returns the capacity not currently held or in use.
func (s ParkingSection) Available() int {
	free := s.Capacity - s.ReservedCount - s.ParkedCount
	if free < 0 {
		return 0
	}
	return free
}
