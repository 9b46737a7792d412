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

// ======================================================
// COMPLETE / NO-SHOW (administrative)
// ======================================================

// Allowed for admins and for users of the organization running the
// opportunity.

type adminTransition struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	log    zerolog.Logger
	to     domain.Status
	check  func(domain.Status) error
	action string
}

func (t adminTransition) run(
	ctx context.Context,
	bookingID uint,
	actor identity.Actor,
) (*models.Booking, error) {

	b, err := t.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !actor.ManagesOrganization(b.Opportunity.OrganizationID) {
		return nil, domain.ErrUnauthorized
	}

	if err := t.check(domain.Status(b.Status)); err != nil {
		return nil, err
	}

	now := timezone.NowIn(b.Opportunity.Organization.Timezone)
	changed, err := t.repo.TransitionBooking(ctx, bookingID, domain.StatusConfirmed, t.to, now)
	if err != nil {
		return nil, err
	}
	// a concurrent transition won; completing twice must not credit twice
	if !changed {
		return nil, domain.ErrInvalidState
	}

	b.Status = string(t.to)
	if t.to == domain.StatusCompleted {
		b.CompletedAt = &now
	}

	t.log.Info().
		Uint("booking_id", bookingID).
		Str("status", b.Status).
		Msg("booking transitioned")

	orgID := b.Opportunity.OrganizationID
	t.audit.Dispatch(audit.Event{
		OrganizationID: &orgID,
		UserID:         &actor.UserID,
		Action:         t.action,
		Entity:         "booking",
		EntityID:       &b.ID,
	})

	return b, nil
}

type CompleteBooking struct {
	t adminTransition
}

func NewCompleteBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	log zerolog.Logger,
) *CompleteBooking {
	return &CompleteBooking{t: adminTransition{
		repo:   repo,
		audit:  audit,
		log:    log,
		to:     domain.StatusCompleted,
		check:  domain.CheckComplete,
		action: "booking_completed",
	}}
}

func (uc *CompleteBooking) Execute(ctx context.Context, bookingID uint, actor identity.Actor) (*models.Booking, error) {
	return uc.t.run(ctx, bookingID, actor)
}

type MarkNoShow struct {
	t adminTransition
}

func NewMarkNoShow(
	repo domain.Repository,
	audit *audit.Dispatcher,
	log zerolog.Logger,
) *MarkNoShow {
	return &MarkNoShow{t: adminTransition{
		repo:   repo,
		audit:  audit,
		log:    log,
		to:     domain.StatusNoShow,
		check:  domain.CheckNoShow,
		action: "booking_no_show",
	}}
}

func (uc *MarkNoShow) Execute(ctx context.Context, bookingID uint, actor identity.Actor) (*models.Booking, error) {
	return uc.t.run(ctx, bookingID, actor)
}
