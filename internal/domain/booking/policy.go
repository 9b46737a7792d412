package booking

import "time"

const CancellationWindow = 24 * time.Hour

// CanCancel reports whether a booking is still inside the cancellation
// window: local midnight of the opportunity date must be at least one full
// day after now. It is advisory; CancelBooking does not enforce it.
func CanCancel(date time.Time, loc *time.Location, now time.Time) bool {
	if date.IsZero() {
		return false
	}
	return LocalMidnight(date, loc).Sub(now) >= CancellationWindow
}
