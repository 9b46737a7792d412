package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/opportunity"
)

type ListBookingsResult struct {
	Total    int64         `json:"total"`
	Bookings []BookingView `json:"bookings"`
}

type ListBookings struct {
	repo    domain.Repository
	catalog opportunity.Repository
}

func NewListBookings(
	repo domain.Repository,
	catalog opportunity.Repository,
) *ListBookings {
	return &ListBookings{
		repo:    repo,
		catalog: catalog,
	}
}

// All lists every booking. Admin only.
func (uc *ListBookings) All(ctx context.Context, actor identity.Actor, f domain.Filter) (*ListBookingsResult, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	return uc.list(ctx, f)
}

// ForOpportunity lists the bookings of one opportunity for the organization
// running it, or an admin.
func (uc *ListBookings) ForOpportunity(
	ctx context.Context,
	actor identity.Actor,
	opportunityID uint,
	f domain.Filter,
) (*ListBookingsResult, error) {

	opp, err := uc.catalog.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if !actor.ManagesOrganization(opp.OrganizationID) {
		return nil, domain.ErrUnauthorized
	}

	f.OpportunityID = opp.ID
	return uc.list(ctx, f)
}

func (uc *ListBookings) list(ctx context.Context, f domain.Filter) (*ListBookingsResult, error) {
	bookings, total, err := uc.repo.ListBookings(ctx, f)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := &ListBookingsResult{
		Total:    total,
		Bookings: make([]BookingView, 0, len(bookings)),
	}
	for _, b := range bookings {
		out.Bookings = append(out.Bookings, NewBookingView(b, now))
	}
	return out, nil
}
