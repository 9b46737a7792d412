package booking

import (
	"sort"
	"strings"
	"time"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

// Accepted slot label layouts, tried in order.
var clockLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
	"15:04",
}

// ParseClockLabel reads a slot display label such as "9:00 AM" and returns
// the offset from midnight.
func ParseClockLabel(label string) (time.Duration, error) {
	s := strings.ToUpper(strings.TrimSpace(label))
	if s == "" {
		return 0, ErrInvalidClockLabel
	}

	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute, nil
		}
	}
	return 0, ErrInvalidClockLabel
}

func IsClockLabel(label string) bool {
	_, err := ParseClockLabel(label)
	return err == nil
}

// SortSlotsByTime returns a copy of slots ordered by parsed clock time.
// Equal times keep their input order; unparseable labels go last, also in
// input order.
func SortSlotsByTime(slots []models.TimeSlot) []models.TimeSlot {
	type keyed struct {
		slot models.TimeSlot
		at   time.Duration
		ok   bool
	}

	ks := make([]keyed, len(slots))
	for i, s := range slots {
		at, err := ParseClockLabel(s.StartTime)
		ks[i] = keyed{slot: s, at: at, ok: err == nil}
	}

	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].ok != ks[j].ok {
			return ks[i].ok
		}
		if !ks[i].ok {
			return false
		}
		return ks[i].at < ks[j].at
	})

	out := make([]models.TimeSlot, len(ks))
	for i, k := range ks {
		out[i] = k.slot
	}
	return out
}

// BookingTime combines the calendar date of an opportunity with the clock
// time of a slot label, in loc. An unparseable label yields local midnight
// and ok=false.
func BookingTime(date time.Time, label string, loc *time.Location) (t time.Time, ok bool) {
	offset, err := ParseClockLabel(label)
	if err != nil {
		return LocalMidnight(date, loc), false
	}

	h := int(offset / time.Hour)
	m := int(offset % time.Hour / time.Minute)
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, loc), true
}

// LocalMidnight reinterprets the year/month/day of date in loc.
func LocalMidnight(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
}
