package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kennyjayamorgiente-ux/parkpass-backend/internal/repo"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/db/models"
)

// Repository persists reservations, spots, and section counters. It is
// usually constructed on a transaction handle so that related writes share
// one commit.
type Repository struct {
	repo.Base
}

// NewRepository builds a reservations repository on the given connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// CreateReservation inserts a new reservation row.
func (r *Repository) CreateReservation(ctx context.Context, row *models.Reservation) error {
	return r.DB(ctx).Create(row).Error
}

// FindReservation loads one reservation by id.
func (r *Repository) FindReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var row models.Reservation
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateReservation applies the given column updates to one reservation.
func (r *Repository) UpdateReservation(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.DB(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

// FindSpot loads one parking spot by id.
func (r *Repository) FindSpot(ctx context.Context, id uuid.UUID) (*models.ParkingSpot, error) {
	var row models.ParkingSpot
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateSpot applies the given column updates to one parking spot.
func (r *Repository) UpdateSpot(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.DB(ctx).
		Model(&models.ParkingSpot{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

// FindSection loads one parking section by id.
func (r *Repository) FindSection(ctx context.Context, id uuid.UUID) (*models.ParkingSection, error) {
	var row models.ParkingSection
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// IncrementSectionReserved takes one unit of section capacity. The guard in
// the WHERE clause makes overbooking impossible under concurrency: when the
// section is already full the update matches no row and ErrSectionFull is
// returned.
func (r *Repository) IncrementSectionReserved(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.DB(ctx).
		Model(&models.ParkingSection{}).
		Where("id = ? AND reserved_count + parked_count < capacity", id).
		Updates(map[string]any{
			"reserved_count": gorm.Expr("reserved_count + 1"),
			"updated_at":     at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSectionFull
	}
	return nil
}

// DecrementSectionReserved releases one unit of held capacity, clamping at
// zero. A counter already at zero means a prior release raced this one; the
// call is a no-op rather than an error so the surrounding transaction still
// commits.
func (r *Repository) DecrementSectionReserved(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.ParkingSection{}).
		Where("id = ? AND reserved_count > 0", id).
		Updates(map[string]any{
			"reserved_count": gorm.Expr("reserved_count - 1"),
			"updated_at":     at,
		}).
		Error
}

// MoveReservedToParked converts one held unit into an in-use unit when a
// capacity-only session starts. The guard keeps reserved_count from going
// negative if the hold was already released.
func (r *Repository) MoveReservedToParked(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.ParkingSection{}).
		Where("id = ? AND reserved_count > 0", id).
		Updates(map[string]any{
			"reserved_count": gorm.Expr("reserved_count - 1"),
			"parked_count":   gorm.Expr("parked_count + 1"),
			"updated_at":     at,
		}).
		Error
}
