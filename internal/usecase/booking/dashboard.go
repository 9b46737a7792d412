package booking

import (
	"context"
	"sort"
	"time"

	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/timezone"
)

// ======================================================
// VIEWS
// ======================================================

type BookingView struct {
	ID            uint       `json:"id"`
	Reference     string     `json:"reference"`
	OpportunityID uint       `json:"opportunity_id"`
	TimeSlotID    *uint      `json:"time_slot_id"`
	SlotLabel     string     `json:"slot_label,omitempty"`
	BookingTime   time.Time  `json:"booking_time"`
	Hours         int        `json:"hours"`
	Status        string     `json:"status"`
	CanCancel     bool       `json:"can_cancel"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// NewBookingView flattens a hydrated booking. can_cancel is only offered
// on confirmed bookings.
func NewBookingView(b models.Booking, now time.Time) BookingView {
	v := BookingView{
		ID:            b.ID,
		Reference:     b.Reference,
		OpportunityID: b.OpportunityID,
		TimeSlotID:    b.TimeSlotID,
		BookingTime:   b.BookingTime,
		Hours:         b.Hours,
		Status:        b.Status,
		CancelledAt:   b.CancelledAt,
		CompletedAt:   b.CompletedAt,
	}
	if b.TimeSlot != nil {
		v.SlotLabel = b.TimeSlot.StartTime
	}
	if domain.Status(b.Status) == domain.StatusConfirmed {
		loc := timezone.Location(b.Opportunity.Organization.Timezone)
		v.CanCancel = domain.CanCancel(b.Opportunity.Date, loc, now)
	}
	return v
}

type OpportunityGroup struct {
	OpportunityID uint          `json:"opportunity_id"`
	Title         string        `json:"title"`
	Organization  string        `json:"organization"`
	Date          string        `json:"date"`
	TimeSlots     []string      `json:"time_slots"`
	TotalHours    int           `json:"total_hours"`
	Bookings      []BookingView `json:"bookings"`
}

type Dashboard struct {
	Upcoming   []OpportunityGroup `json:"upcoming"`
	Past       []OpportunityGroup `json:"past"`
	History    []BookingView      `json:"history"`
	TotalHours int                `json:"total_hours"`
}

// ======================================================
// USE CASE
// ======================================================

type VolunteerDashboard struct {
	repo domain.Repository
	now  func() time.Time
}

func NewVolunteerDashboard(repo domain.Repository) *VolunteerDashboard {
	return &VolunteerDashboard{
		repo: repo,
		now:  time.Now,
	}
}

// Execute splits the actor's bookings into upcoming (confirmed, on or
// after today) and past (any status, before today), grouped by
// opportunity, plus completed history and credited hours.
func (uc *VolunteerDashboard) Execute(ctx context.Context, actor identity.Actor) (*Dashboard, error) {
	bookings, err := uc.repo.ListBookingsForUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	hours, err := uc.repo.SumCompletedHours(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	now := uc.now()

	var upcoming, past []models.Booking
	history := []BookingView{}
	for _, b := range bookings {
		loc := timezone.Location(b.Opportunity.Organization.Timezone)
		today := domain.LocalMidnight(now.In(loc), loc)
		day := domain.LocalMidnight(b.Opportunity.Date, loc)

		switch {
		case !day.Before(today) && domain.Status(b.Status) == domain.StatusConfirmed:
			upcoming = append(upcoming, b)
		case day.Before(today):
			past = append(past, b)
		}

		if domain.Status(b.Status) == domain.StatusCompleted {
			history = append(history, NewBookingView(b, now))
		}
	}

	return &Dashboard{
		Upcoming:   groupByOpportunity(upcoming, now),
		Past:       groupByOpportunity(past, now),
		History:    history,
		TotalHours: hours,
	}, nil
}

func groupByOpportunity(bookings []models.Booking, now time.Time) []OpportunityGroup {
	out := []OpportunityGroup{}
	index := map[uint]int{}
	slots := map[uint][]models.TimeSlot{}

	for _, b := range bookings {
		i, ok := index[b.OpportunityID]
		if !ok {
			i = len(out)
			index[b.OpportunityID] = i
			out = append(out, OpportunityGroup{
				OpportunityID: b.OpportunityID,
				Title:         b.Opportunity.Title,
				Organization:  b.Opportunity.Organization.Name,
				Date:          b.Opportunity.Date.Format("2006-01-02"),
			})
		}

		g := &out[i]
		g.Bookings = append(g.Bookings, NewBookingView(b, now))
		g.TotalHours += b.Hours
		if b.TimeSlot != nil {
			slots[b.OpportunityID] = append(slots[b.OpportunityID], *b.TimeSlot)
		}
	}

	for i := range out {
		g := &out[i]
		g.TimeSlots = []string{}
		for _, s := range domain.SortSlotsByTime(slots[g.OpportunityID]) {
			g.TimeSlots = append(g.TimeSlots, s.StartTime)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
