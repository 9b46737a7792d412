package admin

import (
	"context"
	"time"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/opportunity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/timezone"
)

type Stats struct {
	Users struct {
		Total         int64 `json:"total"`
		Volunteers    int64 `json:"volunteers"`
		Organizations int64 `json:"organizations"`
		Admins        int64 `json:"admins"`
	} `json:"users"`

	Opportunities struct {
		Total  int64 `json:"total"`
		Active int64 `json:"active"`
	} `json:"opportunities"`

	Bookings struct {
		Total     int64 `json:"total"`
		Confirmed int64 `json:"confirmed"`
	} `json:"bookings"`

	Hours struct {
		Total     int64 `json:"total"`
		ThisMonth int64 `json:"this_month"`
	} `json:"hours"`
}

type DashboardStats struct {
	users    identity.Repository
	catalog  opportunity.Repository
	bookings booking.Repository
	now      func() time.Time
}

func NewDashboardStats(
	users identity.Repository,
	catalog opportunity.Repository,
	bookings booking.Repository,
) *DashboardStats {
	return &DashboardStats{
		users:    users,
		catalog:  catalog,
		bookings: bookings,
		now:      timezone.Now,
	}
}

func (uc *DashboardStats) Execute(ctx context.Context, actor identity.Actor) (*Stats, error) {
	if !actor.IsAdmin() {
		return nil, booking.ErrUnauthorized
	}

	byRole, err := uc.users.CountUsersByRole(ctx)
	if err != nil {
		return nil, err
	}

	opps, err := uc.catalog.CountOpportunities(ctx)
	if err != nil {
		return nil, err
	}

	bs, err := uc.bookings.BookingStats(ctx, monthStart(uc.now()))
	if err != nil {
		return nil, err
	}

	var s Stats
	s.Users.Volunteers = byRole[identity.RoleVolunteer]
	s.Users.Organizations = byRole[identity.RoleOrganization]
	s.Users.Admins = byRole[identity.RoleAdmin]
	for _, n := range byRole {
		s.Users.Total += n
	}

	s.Opportunities.Total = opps.Total
	s.Opportunities.Active = opps.Active

	s.Bookings.Total = bs.Total
	s.Bookings.Confirmed = bs.Confirmed

	s.Hours.Total = bs.CompletedHours
	s.Hours.ThisMonth = bs.CompletedHoursFrom

	return &s, nil
}

func monthStart(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}
