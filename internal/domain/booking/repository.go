package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

// Reservation is the locked view handed to a Decide callback. While the
// callback runs no other reservation against the same slot (or, for flat
// opportunities, the same opportunity) can proceed.
type Reservation struct {
	Opportunity models.Opportunity
	Slot        *models.TimeSlot
	Confirmed   int
	SlotCount   int
}

// Decide inspects a locked reservation and returns the booking to insert,
// or an error to abort without writing anything.
type Decide func(r Reservation) (*models.Booking, error)

type Filter struct {
	Status        string
	OpportunityID uint
	UserID        uint
	Limit         int
	Offset        int
}

type Stats struct {
	Total              int64
	Confirmed          int64
	CompletedHours     int64
	CompletedHoursFrom int64
}

type Repository interface {
	// -------- Reservation (check + insert, atomic) --------
	ReserveSlot(
		ctx context.Context,
		slotID uint,
		decide Decide,
	) (*models.Booking, error)

	ReserveFlat(
		ctx context.Context,
		opportunityID uint,
		decide Decide,
	) (*models.Booking, error)

	// -------- Capacity reads --------
	GetSlot(
		ctx context.Context,
		slotID uint,
	) (*models.TimeSlot, error)

	CountConfirmedBySlot(
		ctx context.Context,
		slotIDs []uint,
	) (map[uint]int, error)

	CountConfirmedFlat(
		ctx context.Context,
		opportunityIDs []uint,
	) (map[uint]int, error)

	// -------- Booking (state change) --------
	GetBooking(
		ctx context.Context,
		bookingID uint,
	) (*models.Booking, error)

	// TransitionBooking moves a booking from one status to another only if
	// it is still in from. changed is false when the row had already moved.
	TransitionBooking(
		ctx context.Context,
		bookingID uint,
		from Status,
		to Status,
		at time.Time,
	) (changed bool, err error)

	// -------- Listing --------
	ListBookingsForUser(
		ctx context.Context,
		userID uint,
	) ([]models.Booking, error)

	ListBookings(
		ctx context.Context,
		f Filter,
	) ([]models.Booking, int64, error)

	SumCompletedHours(
		ctx context.Context,
		userID uint,
	) (int, error)

	// BookingStats counts bookings and completed hours; CompletedHoursFrom
	// only counts bookings completed at or after since.
	BookingStats(
		ctx context.Context,
		since time.Time,
	) (Stats, error)
}
