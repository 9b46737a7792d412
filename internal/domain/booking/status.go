package booking

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no-show"
)

func InitialStatus() Status {
	return StatusConfirmed
}

// ConsumesCapacity is true only for confirmed bookings. Every other status
// releases its seat implicitly because capacity is counted by status.
func (s Status) ConsumesCapacity() bool {
	return s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// ===============================
// Transitions
// ===============================

// CheckCancel validates a cancellation. noop is true when the booking is
// already cancelled, which callers report as success without writing.
func CheckCancel(current Status) (noop bool, err error) {
	switch current {
	case StatusConfirmed:
		return false, nil
	case StatusCancelled:
		return true, nil
	default:
		return false, ErrInvalidState
	}
}

func CheckComplete(current Status) error {
	return checkOpen(current)
}

func CheckNoShow(current Status) error {
	return checkOpen(current)
}

// checkOpen accepts only a booking that still holds its seat. Terminal and
// unknown statuses are both rejected.
func checkOpen(current Status) error {
	if current.IsTerminal() || !current.ConsumesCapacity() {
		return ErrInvalidState
	}
	return nil
}
