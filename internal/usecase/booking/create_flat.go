package booking

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/ids"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/timezone"
)

type CreateFlatBookingInput struct {
	OpportunityID uint
	Actor         identity.Actor

	Notes            string
	EmergencyContact string
	EmergencyPhone   string
}

// CreateFlatBooking reserves a seat on an opportunity that has no time
// slots. Opportunities with slots must be booked through CreateBooking.
type CreateFlatBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	log   zerolog.Logger
}

func NewCreateFlatBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	log zerolog.Logger,
) *CreateFlatBooking {
	return &CreateFlatBooking{
		repo:  repo,
		audit: audit,
		log:   log,
	}
}

func (uc *CreateFlatBooking) Execute(
	ctx context.Context,
	in CreateFlatBookingInput,
) (*CreateBookingResult, error) {

	ref, err := ids.BookingReference()
	if err != nil {
		return nil, fmt.Errorf("booking reference: %w", err)
	}

	var (
		title string
		orgID uint
	)

	b, err := uc.repo.ReserveFlat(ctx, in.OpportunityID, func(r domain.Reservation) (*models.Booking, error) {
		opp := r.Opportunity

		if r.SlotCount > 0 {
			return nil, domain.ErrSlotRequired
		}
		if (domain.Flat{Ceiling: opp.SpotsAvailable, Confirmed: r.Confirmed}).IsFull() {
			return nil, domain.ErrCapacityExceeded
		}
		if !opp.IsActive {
			return nil, domain.ErrOpportunityClosed
		}
		if in.Actor.UserID == 0 {
			return nil, domain.ErrUnauthorized
		}

		title = opp.Title
		orgID = opp.OrganizationID
		return &models.Booking{
			Reference:        ref,
			UserID:           in.Actor.UserID,
			OpportunityID:    opp.ID,
			BookingTime:      domain.LocalMidnight(opp.Date, timezone.Location(opp.Organization.Timezone)),
			Hours:            opp.Hours,
			Status:           string(domain.InitialStatus()),
			Notes:            in.Notes,
			EmergencyContact: in.EmergencyContact,
			EmergencyPhone:   in.EmergencyPhone,
		}, nil
	})
	if err != nil {
		logRejected(uc.log, err, "opportunity", in.OpportunityID, in.Actor.UserID)
		return nil, err
	}

	uc.log.Info().
		Uint("booking_id", b.ID).
		Uint("opportunity_id", in.OpportunityID).
		Uint("user_id", in.Actor.UserID).
		Msg("booking confirmed")

	uc.audit.Dispatch(audit.Event{
		OrganizationID: &orgID,
		UserID:         &in.Actor.UserID,
		Action:         "booking_created",
		Entity:         "booking",
		EntityID:       &b.ID,
		Metadata: map[string]any{
			"opportunity_id": in.OpportunityID,
			"reference":      b.Reference,
		},
	})

	return &CreateBookingResult{
		Booking: b,
		Message: fmt.Sprintf("Booking confirmed for %s!", title),
	}, nil
}
