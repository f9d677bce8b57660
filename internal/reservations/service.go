package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/audit"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/audit/payloads"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/db/models"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/enums"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event audit.DomainEvent) error
}

type repoFactory func(tx *gorm.DB) *Repository

// CreateParams describe a new reservation. SpotID nil means a capacity-only
// hold against the section's counter.
type CreateParams struct {
	UserID    uuid.UUID
	SectionID uuid.UUID
	SpotID    *uuid.UUID
}

// ServiceParams configure the reservations service.
type ServiceParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Audit       auditEmitter
	RepoFactory repoFactory
}

// Service owns the reservation lifecycle writes: creating holds and starting
// sessions. Each operation runs in its own transaction so counter updates,
// spot transitions, and audit rows commit together.
type Service struct {
	logg        *logger.Logger
	db          txRunner
	audit       auditEmitter
	repoFactory repoFactory
	now         func() time.Time
}

// NewService builds a reservations service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit service required")
	}
	factory := params.RepoFactory
	if factory == nil {
		factory = NewRepository
	}
	return &Service{
		logg:        params.Logger,
		db:          params.DB,
		audit:       params.Audit,
		repoFactory: factory,
		now:         time.Now,
	}, nil
}

// CreateReservation places a hold. Concrete-spot reservations flip the spot
// to reserved; capacity-only reservations take one unit of the section
// counter under the full-section guard.
func (s *Service) CreateReservation(ctx context.Context, params CreateParams) (*models.Reservation, error) {
	ctx = s.logg.WithUserID(ctx, params.UserID.String())
	var created *models.Reservation
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)
		now := s.now().UTC()

		if params.SpotID != nil {
			if err := s.claimSpot(ctx, repo, *params.SpotID, params.UserID, now); err != nil {
				return err
			}
		} else {
			if _, err := repo.FindSection(ctx, params.SectionID); err != nil {
				return fmt.Errorf("reading section: %w", err)
			}
			if err := repo.IncrementSectionReserved(ctx, params.SectionID, now); err != nil {
				return err
			}
		}

		row := &models.Reservation{
			ID:        uuid.New(),
			UserID:    params.UserID,
			SpotID:    params.SpotID,
			SectionID: params.SectionID,
			Status:    enums.ReservationStatusReserved,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.CreateReservation(ctx, row); err != nil {
			return fmt.Errorf("inserting reservation: %w", err)
		}

		event := audit.DomainEvent{
			EventType:     enums.EventReservationCreated,
			AggregateType: enums.AggregateReservation,
			AggregateID:   row.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.ReservationCreatedEvent{
				ReservationID: row.ID,
				UserID:        row.UserID,
				SectionID:     row.SectionID,
				SpotID:        row.SpotID,
				CreatedAt:     now,
			},
		}
		if err := s.audit.Emit(ctx, tx, event); err != nil {
			return fmt.Errorf("recording audit event: %w", err)
		}
		created = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) claimSpot(ctx context.Context, repo *Repository, spotID, userID uuid.UUID, at time.Time) error {
	spot, err := repo.FindSpot(ctx, spotID)
	if err != nil {
		return fmt.Errorf("reading spot: %w", err)
	}
	if spot.Status != enums.SpotStatusAvailable {
		return ErrSpotUnavailable
	}
	updates := map[string]any{
		"status":      enums.SpotStatusReserved,
		"occupant_id": userID,
		"updated_at":  at,
	}
	if err := repo.UpdateSpot(ctx, spotID, updates); err != nil {
		return fmt.Errorf("reserving spot: %w", err)
	}
	return nil
}

// StartSession marks the holder as arrived. Only a reserved reservation with
// no start time can transition; anything else gets ErrNotReserved so the
// caller can distinguish a late arrival from a transport error.
func (s *Service) StartSession(ctx context.Context, reservationID uuid.UUID) error {
	ctx = s.logg.WithReservationID(ctx, reservationID.String())
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFactory(tx)

		current, err := repo.FindReservation(ctx, reservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotReserved
			}
			return fmt.Errorf("reading reservation: %w", err)
		}
		if current.Status != enums.ReservationStatusReserved || current.StartTime != nil {
			return ErrNotReserved
		}

		now := s.now().UTC()
		updates := map[string]any{
			"status":     enums.ReservationStatusActive,
			"start_time": now,
			"updated_at": now,
		}
		if err := repo.UpdateReservation(ctx, reservationID, updates); err != nil {
			return fmt.Errorf("activating reservation: %w", err)
		}

		if current.SpotID != nil {
			spotUpdates := map[string]any{
				"status":      enums.SpotStatusOccupied,
				"is_occupied": true,
				"occupant_id": current.UserID,
				"occupied_at": now,
				"updated_at":  now,
			}
			if err := repo.UpdateSpot(ctx, *current.SpotID, spotUpdates); err != nil {
				return fmt.Errorf("occupying spot: %w", err)
			}
		} else {
			if err := repo.MoveReservedToParked(ctx, current.SectionID, now); err != nil {
				return fmt.Errorf("moving section hold to parked: %w", err)
			}
		}

		event := audit.DomainEvent{
			EventType:     enums.EventSessionStarted,
			AggregateType: enums.AggregateReservation,
			AggregateID:   reservationID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.SessionStartedEvent{
				ReservationID: reservationID,
				UserID:        current.UserID,
				SectionID:     current.SectionID,
				StartedAt:     now,
			},
		}
		if err := s.audit.Emit(ctx, tx, event); err != nil {
			return fmt.Errorf("recording audit event: %w", err)
		}
		return nil
	})
}
