package opportunity

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/audit"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/opportunity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

// SlotReader resolves a slot to its opportunity. booking.Repository
// satisfies it.
type SlotReader interface {
	GetSlot(ctx context.Context, slotID uint) (*models.TimeSlot, error)
}

// ======================================================
// OPPORTUNITY ACTIVE FLAG
// ======================================================

type SetOpportunityActive struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	log   zerolog.Logger
}

func NewSetOpportunityActive(
	repo domain.Repository,
	audit *audit.Dispatcher,
	log zerolog.Logger,
) *SetOpportunityActive {
	return &SetOpportunityActive{
		repo:  repo,
		audit: audit,
		log:   log,
	}
}

func (uc *SetOpportunityActive) Execute(
	ctx context.Context,
	actor identity.Actor,
	opportunityID uint,
	active bool,
) (*models.Opportunity, error) {

	opp, err := uc.repo.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if !actor.ManagesOrganization(opp.OrganizationID) {
		return nil, booking.ErrUnauthorized
	}

	if err := uc.repo.SetOpportunityActive(ctx, opp.ID, active); err != nil {
		return nil, err
	}
	opp.IsActive = active

	action := "opportunity_deactivated"
	if active {
		action = "opportunity_activated"
	}

	uc.log.Info().
		Uint("opportunity_id", opp.ID).
		Bool("active", active).
		Msg(action)

	orgID := opp.OrganizationID
	uc.audit.Dispatch(audit.Event{
		OrganizationID: &orgID,
		UserID:         &actor.UserID,
		Action:         action,
		Entity:         "opportunity",
		EntityID:       &opp.ID,
	})

	return opp, nil
}

// ======================================================
// SLOT AVAILABILITY
// ======================================================

type SetSlotAvailability struct {
	repo  domain.Repository
	slots SlotReader
	audit *audit.Dispatcher
	log   zerolog.Logger
}

func NewSetSlotAvailability(
	repo domain.Repository,
	slots SlotReader,
	audit *audit.Dispatcher,
	log zerolog.Logger,
) *SetSlotAvailability {
	return &SetSlotAvailability{
		repo:  repo,
		slots: slots,
		audit: audit,
		log:   log,
	}
}

func (uc *SetSlotAvailability) Execute(
	ctx context.Context,
	actor identity.Actor,
	slotID uint,
	available bool,
) (*models.TimeSlot, error) {

	slot, err := uc.slots.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	opp, err := uc.repo.GetOpportunity(ctx, slot.OpportunityID)
	if err != nil {
		return nil, err
	}
	if !actor.ManagesOrganization(opp.OrganizationID) {
		return nil, booking.ErrUnauthorized
	}

	if err := uc.repo.SetSlotAvailability(ctx, slot.ID, available); err != nil {
		return nil, err
	}
	slot.IsAvailable = available

	action := "slot_closed"
	if available {
		action = "slot_opened"
	}

	uc.log.Info().
		Uint("slot_id", slot.ID).
		Uint("opportunity_id", opp.ID).
		Bool("available", available).
		Msg(action)

	orgID := opp.OrganizationID
	uc.audit.Dispatch(audit.Event{
		OrganizationID: &orgID,
		UserID:         &actor.UserID,
		Action:         action,
		Entity:         "time_slot",
		EntityID:       &slot.ID,
		Metadata:       map[string]any{"opportunity_id": opp.ID},
	})

	return slot, nil
}
