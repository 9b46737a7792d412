package booking

import "github.com/BruksfildServices01/volunteer-scheduler/internal/httperr"

// Recoverable outcomes of the booking core. They are BusinessError values, so
// both errors.Is and httperr.IsBusiness match them.
var (
	ErrSlotNotFound        = httperr.ErrBusiness("slot_not_found")
	ErrOpportunityNotFound = httperr.ErrBusiness("opportunity_not_found")
	ErrBookingNotFound     = httperr.ErrBusiness("booking_not_found")

	ErrCapacityExceeded  = httperr.ErrBusiness("capacity_exceeded")
	ErrSlotUnavailable   = httperr.ErrBusiness("slot_unavailable")
	ErrSlotRequired      = httperr.ErrBusiness("slot_required")
	ErrOpportunityClosed = httperr.ErrBusiness("opportunity_unavailable")

	ErrUnauthorized = httperr.ErrBusiness("unauthorized")
	ErrInvalidState = httperr.ErrBusiness("invalid_state")

	ErrInvalidClockLabel = httperr.ErrBusiness("invalid_clock_label")
)
