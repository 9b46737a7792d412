package opportunity

import (
	"strings"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

var (
	ErrNotFound     = booking.ErrOpportunityNotFound
	ErrSlotNotFound = booking.ErrSlotNotFound
	ErrInvalidSlots = httperr.ErrBusiness("invalid_time_slots")
	ErrInvalidFlat  = httperr.ErrBusiness("invalid_capacity")
)

// Validate checks the capacity shape of a new opportunity: every slot needs
// a parseable start label and a positive ceiling; without slots the flat
// ceiling must be positive.
func Validate(opp *models.Opportunity) error {
	if len(opp.TimeSlots) == 0 {
		if opp.SpotsAvailable <= 0 {
			return ErrInvalidFlat
		}
		return nil
	}

	for _, s := range opp.TimeSlots {
		if !booking.IsClockLabel(s.StartTime) || s.SpotsAvailable <= 0 {
			return ErrInvalidSlots
		}
		if end := strings.TrimSpace(s.EndTime); end != "" && !booking.IsClockLabel(end) {
			return ErrInvalidSlots
		}
	}
	return nil
}
