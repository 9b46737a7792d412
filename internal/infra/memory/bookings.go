package memory

import (
	"context"
	"sort"
	"time"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

// --------------------------------------------------
// Reservation
// --------------------------------------------------

func (s *Store) ReserveSlot(
	ctx context.Context,
	slotID uint,
	decide booking.Decide,
) (*models.Booking, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := s.lockFor("slot", slotID)
	l.Lock()
	defer l.Unlock()

	s.mu.RLock()
	slot, ok := s.slots[slotID]
	if !ok {
		s.mu.RUnlock()
		return nil, booking.ErrSlotNotFound
	}
	opp, _ := s.opportunityLocked(slot.OpportunityID)
	confirmed := s.countLocked(func(b models.Booking) bool {
		return b.TimeSlotID != nil && *b.TimeSlotID == slotID
	})
	s.mu.RUnlock()

	b, err := decide(booking.Reservation{
		Opportunity: opp,
		Slot:        &slot,
		Confirmed:   confirmed,
		SlotCount:   len(opp.TimeSlots),
	})
	if err != nil {
		return nil, err
	}

	return s.insertBooking(b), nil
}

func (s *Store) ReserveFlat(
	ctx context.Context,
	opportunityID uint,
	decide booking.Decide,
) (*models.Booking, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := s.lockFor("opportunity", opportunityID)
	l.Lock()
	defer l.Unlock()

	s.mu.RLock()
	opp, ok := s.opportunityLocked(opportunityID)
	if !ok {
		s.mu.RUnlock()
		return nil, booking.ErrOpportunityNotFound
	}
	confirmed := s.countLocked(func(b models.Booking) bool {
		return b.OpportunityID == opportunityID
	})
	s.mu.RUnlock()

	b, err := decide(booking.Reservation{
		Opportunity: opp,
		Confirmed:   confirmed,
		SlotCount:   len(opp.TimeSlots),
	})
	if err != nil {
		return nil, err
	}

	return s.insertBooking(b), nil
}

func (s *Store) insertBooking(b *models.Booking) *models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b.ID = s.seq("bookings")
	b.CreatedAt = now
	b.UpdatedAt = now

	row := *b
	row.Opportunity = models.Opportunity{}
	row.TimeSlot = nil
	s.bookings[b.ID] = row

	return b
}

// countLocked counts confirmed bookings matching pred. mu must be held.
func (s *Store) countLocked(pred func(models.Booking) bool) int {
	n := 0
	for _, b := range s.bookings {
		if booking.Status(b.Status).ConsumesCapacity() && pred(b) {
			n++
		}
	}
	return n
}

// --------------------------------------------------
// Capacity reads
// --------------------------------------------------

func (s *Store) GetSlot(ctx context.Context, slotID uint) (*models.TimeSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return nil, booking.ErrSlotNotFound
	}
	return &slot, nil
}

func (s *Store) CountConfirmedBySlot(ctx context.Context, slotIDs []uint) (map[uint]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[uint]bool, len(slotIDs))
	for _, id := range slotIDs {
		want[id] = true
	}

	out := make(map[uint]int, len(slotIDs))
	for _, b := range s.bookings {
		if !booking.Status(b.Status).ConsumesCapacity() || b.TimeSlotID == nil {
			continue
		}
		if want[*b.TimeSlotID] {
			out[*b.TimeSlotID]++
		}
	}
	return out, nil
}

func (s *Store) CountConfirmedFlat(ctx context.Context, opportunityIDs []uint) (map[uint]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[uint]bool, len(opportunityIDs))
	for _, id := range opportunityIDs {
		want[id] = true
	}

	out := make(map[uint]int, len(opportunityIDs))
	for _, b := range s.bookings {
		if booking.Status(b.Status).ConsumesCapacity() && want[b.OpportunityID] {
			out[b.OpportunityID]++
		}
	}
	return out, nil
}

// --------------------------------------------------
// State change
// --------------------------------------------------

func (s *Store) GetBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	b = s.bookingLocked(b)
	return &b, nil
}

func (s *Store) TransitionBooking(
	ctx context.Context,
	bookingID uint,
	from booking.Status,
	to booking.Status,
	at time.Time,
) (bool, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return false, booking.ErrBookingNotFound
	}
	if b.Status != string(from) {
		return false, nil
	}

	b.Status = string(to)
	b.UpdatedAt = at
	switch to {
	case booking.StatusCancelled:
		b.CancelledAt = &at
	case booking.StatusCompleted:
		b.CompletedAt = &at
	}
	s.bookings[bookingID] = b
	return true, nil
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (s *Store) ListBookingsForUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, s.bookingLocked(b))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].BookingTime.Equal(out[j].BookingTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].BookingTime.Before(out[j].BookingTime)
	})
	return out, nil
}

func (s *Store) ListBookings(ctx context.Context, f booking.Filter) ([]models.Booking, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Booking
	for _, b := range s.bookings {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.OpportunityID != 0 && b.OpportunityID != f.OpportunityID {
			continue
		}
		if f.UserID != 0 && b.UserID != f.UserID {
			continue
		}
		matched = append(matched, b)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	matched = page(matched, f.Offset, f.Limit)

	out := make([]models.Booking, 0, len(matched))
	for _, b := range matched {
		out = append(out, s.bookingLocked(b))
	}
	return out, total, nil
}

func (s *Store) SumCompletedHours(ctx context.Context, userID uint) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, b := range s.bookings {
		if b.UserID == userID && b.Status == string(booking.StatusCompleted) {
			total += b.Hours
		}
	}
	return total, nil
}

func (s *Store) BookingStats(ctx context.Context, since time.Time) (booking.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st booking.Stats
	for _, b := range s.bookings {
		st.Total++
		switch b.Status {
		case string(booking.StatusConfirmed):
			st.Confirmed++
		case string(booking.StatusCompleted):
			st.CompletedHours += int64(b.Hours)
			if b.CompletedAt != nil && !b.CompletedAt.Before(since) {
				st.CompletedHoursFrom += int64(b.Hours)
			}
		}
	}
	return st, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
