package booking

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/timezone"
)

type CancelBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	log   zerolog.Logger
}

func NewCancelBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	log zerolog.Logger,
) *CancelBooking {
	return &CancelBooking{
		repo:  repo,
		audit: audit,
		log:   log,
	}
}

// Execute cancels a booking owned by the actor, or any booking when the
// actor is an admin. Cancelling an already cancelled booking succeeds
// without writing.
func (uc *CancelBooking) Execute(
	ctx context.Context,
	bookingID uint,
	actor identity.Actor,
) (*models.Booking, error) {

	b, err := uc.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !actor.Owns(b.UserID) && !actor.IsAdmin() {
		uc.log.Warn().
			Uint("booking_id", bookingID).
			Uint("user_id", actor.UserID).
			Msg("cancel refused, not owner")
		return nil, domain.ErrUnauthorized
	}

	noop, err := domain.CheckCancel(domain.Status(b.Status))
	if err != nil {
		return nil, err
	}
	if noop {
		return b, nil
	}

	now := timezone.NowIn(b.Opportunity.Organization.Timezone)
	changed, err := uc.repo.TransitionBooking(ctx, bookingID, domain.StatusConfirmed, domain.StatusCancelled, now)
	if err != nil {
		return nil, err
	}

	if !changed {
		// lost a race with another transition; report what it left behind
		b, err = uc.repo.GetBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if _, err := domain.CheckCancel(domain.Status(b.Status)); err != nil {
			return nil, err
		}
		return b, nil
	}

	b.Status = string(domain.StatusCancelled)
	b.CancelledAt = &now

	orgID := b.Opportunity.OrganizationID
	uc.audit.Dispatch(audit.Event{
		OrganizationID: &orgID,
		UserID:         &actor.UserID,
		Action:         "booking_cancelled",
		Entity:         "booking",
		EntityID:       &b.ID,
		Metadata: map[string]any{
			"by_admin": actor.IsAdmin() && !actor.Owns(b.UserID),
		},
	})

	return b, nil
}
