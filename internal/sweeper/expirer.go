package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kennyjayamorgiente-ux/parkpass-backend/internal/reservations"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/audit"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/audit/payloads"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/db/models"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/enums"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type capacityRepo interface {
	FindReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	UpdateReservation(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateSpot(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindSection(ctx context.Context, id uuid.UUID) (*models.ParkingSection, error)
	DecrementSectionReserved(ctx context.Context, id uuid.UUID, at time.Time) error
}

type capacityRepoFactory func(tx *gorm.DB) capacityRepo

func defaultCapacityRepo(tx *gorm.DB) capacityRepo {
	return reservations.NewRepository(tx)
}

type auditEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event audit.DomainEvent) error
}

// ExpirerParams configure the per-reservation expiry routine.
type ExpirerParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Audit       auditEmitter
	RepoFactory capacityRepoFactory
}

// Expirer voids a single candidate reservation inside one dedicated
// transaction: reservation to invalid, spot freed when concrete, section
// counter decremented with a floor of zero, audit event appended. All four
// writes commit or roll back together.
type Expirer struct {
	logg        *logger.Logger
	db          txRunner
	audit       auditEmitter
	repoFactory capacityRepoFactory
	now         func() time.Time
}

// NewExpirer builds the expiry routine.
func NewExpirer(params ExpirerParams) (*Expirer, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit service required")
	}
	repoFactory := params.RepoFactory
	if repoFactory == nil {
		repoFactory = defaultCapacityRepo
	}
	return &Expirer{
		logg:        params.Logger,
		db:          params.DB,
		audit:       params.Audit,
		repoFactory: repoFactory,
		now:         time.Now,
	}, nil
}

// ExpireOne processes one candidate. A candidate that is no longer eligible
// when re-read inside the transaction (a session-start collaborator won the
// race) is a no-op success. Any step failure rolls back the whole
// transaction for this candidate only; eligibility persists, so the next
// sweep retries it.
func (e *Expirer) ExpireOne(ctx context.Context, cand Candidate) error {
	ctx = e.logg.WithReservationID(ctx, cand.ReservationID.String())
	return e.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := e.repoFactory(tx)

		current, err := repo.FindReservation(ctx, cand.ReservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				e.logg.Warn(ctx, "candidate reservation vanished before expiry")
				return nil
			}
			return fmt.Errorf("re-reading reservation: %w", err)
		}
		if current.Status != enums.ReservationStatusReserved || current.StartTime != nil {
			return nil
		}

		now := e.now().UTC()
		updates := map[string]any{
			"status":     enums.ReservationStatusInvalid,
			"ended_at":   now,
			"updated_at": now,
		}
		if err := repo.UpdateReservation(ctx, cand.ReservationID, updates); err != nil {
			return fmt.Errorf("invalidating reservation: %w", err)
		}

		if spotID, ok := cand.Spot.Concrete(); ok {
			spotUpdates := map[string]any{
				"status":      enums.SpotStatusAvailable,
				"is_occupied": false,
				"occupant_id": nil,
				"occupied_at": nil,
				"updated_at":  now,
			}
			if err := repo.UpdateSpot(ctx, spotID, spotUpdates); err != nil {
				return fmt.Errorf("freeing spot: %w", err)
			}
		} else {
			if err := e.releaseSectionHold(ctx, repo, cand.SectionID, now); err != nil {
				return err
			}
		}

		event := audit.DomainEvent{
			EventType:     enums.EventReservationExpired,
			AggregateType: enums.AggregateReservation,
			AggregateID:   cand.ReservationID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.ReservationExpiredEvent{
				ReservationID: cand.ReservationID,
				UserID:        cand.UserID,
				SectionID:     cand.SectionID,
				SpotID:        current.SpotID,
				ExpiredAt:     now,
			},
		}
		if err := e.audit.Emit(ctx, tx, event); err != nil {
			return fmt.Errorf("recording audit event: %w", err)
		}
		return nil
	})
}

// releaseSectionHold decrements the section's reserved_count with a floor of
// zero. A missing section row is a data anomaly, not a failure: the
// reservation transition still commits.
func (e *Expirer) releaseSectionHold(ctx context.Context, repo capacityRepo, sectionID uuid.UUID, at time.Time) error {
	if _, err := repo.FindSection(ctx, sectionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sctx := e.logg.WithSectionID(ctx, sectionID.String())
			e.logg.Warn(sctx, "section missing during expiry; skipping counter release")
			return nil
		}
		return fmt.Errorf("reading section: %w", err)
	}
	if err := repo.DecrementSectionReserved(ctx, sectionID, at); err != nil {
		return fmt.Errorf("releasing section hold: %w", err)
	}
	return nil
}
