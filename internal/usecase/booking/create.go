package booking

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/ids"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/timezone"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type CreateBookingInput struct {
	SlotID uint
	Actor  identity.Actor

	Notes            string
	EmergencyContact string
	EmergencyPhone   string
}

type CreateBookingResult struct {
	Booking *models.Booking
	Message string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	log   zerolog.Logger
}

func NewCreateBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	log zerolog.Logger,
) *CreateBooking {
	return &CreateBooking{
		repo:  repo,
		audit: audit,
		log:   log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*CreateBookingResult, error) {

	ref, err := ids.BookingReference()
	if err != nil {
		return nil, fmt.Errorf("booking reference: %w", err)
	}

	var (
		label string
		orgID uint
	)

	// --------------------------------------------------
	// Check + insert under the slot lock
	// --------------------------------------------------
	b, err := uc.repo.ReserveSlot(ctx, in.SlotID, func(r domain.Reservation) (*models.Booking, error) {
		slot := *r.Slot

		if domain.UsageOf(slot, r.Confirmed).IsFull() {
			return nil, domain.ErrCapacityExceeded
		}
		if !slot.IsAvailable {
			return nil, domain.ErrSlotUnavailable
		}
		if in.Actor.UserID == 0 {
			return nil, domain.ErrUnauthorized
		}

		loc := timezone.Location(r.Opportunity.Organization.Timezone)
		at, ok := domain.BookingTime(r.Opportunity.Date, slot.StartTime, loc)
		if !ok {
			uc.log.Warn().
				Uint("slot_id", slot.ID).
				Str("label", slot.StartTime).
				Msg("unparseable slot label, booking at local midnight")
		}

		label = slot.StartTime
		orgID = r.Opportunity.OrganizationID
		slotID := slot.ID

		return &models.Booking{
			Reference:        ref,
			UserID:           in.Actor.UserID,
			OpportunityID:    r.Opportunity.ID,
			TimeSlotID:       &slotID,
			BookingTime:      at,
			Hours:            r.Opportunity.Hours,
			Status:           string(domain.InitialStatus()),
			Notes:            in.Notes,
			EmergencyContact: in.EmergencyContact,
			EmergencyPhone:   in.EmergencyPhone,
		}, nil
	})
	if err != nil {
		logRejected(uc.log, err, "slot", in.SlotID, in.Actor.UserID)
		return nil, err
	}

	uc.log.Info().
		Uint("booking_id", b.ID).
		Uint("slot_id", in.SlotID).
		Uint("user_id", in.Actor.UserID).
		Msg("booking confirmed")

	uc.audit.Dispatch(audit.Event{
		OrganizationID: &orgID,
		UserID:         &in.Actor.UserID,
		Action:         "booking_created",
		Entity:         "booking",
		EntityID:       &b.ID,
		Metadata: map[string]any{
			"slot_id":   in.SlotID,
			"reference": b.Reference,
		},
	})

	return &CreateBookingResult{
		Booking: b,
		Message: fmt.Sprintf("Booking confirmed for %s!", label),
	}, nil
}

// ======================================================
// HELPERS
// ======================================================

func logRejected(log zerolog.Logger, err error, target string, id uint, userID uint) {
	level := zerolog.ErrorLevel
	if _, ok := httperr.CodeOf(err); ok {
		level = zerolog.InfoLevel
	}
	log.WithLevel(level).
		Err(err).
		Str("target", target).
		Uint("target_id", id).
		Uint("user_id", userID).
		Msg("booking rejected")
}
