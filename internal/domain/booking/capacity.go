package booking

import "github.com/BruksfildServices01/volunteer-scheduler/internal/models"

// ===============================
// Slot usage
// ===============================

// SlotUsage pairs a slot's ceiling with its live confirmed count. Remaining
// is derived on every call and may go negative if a slot was oversold.
type SlotUsage struct {
	SlotID    uint
	Label     string
	Ceiling   int
	Confirmed int
	Available bool
}

func UsageOf(slot models.TimeSlot, confirmed int) SlotUsage {
	return SlotUsage{
		SlotID:    slot.ID,
		Label:     slot.StartTime,
		Ceiling:   slot.SpotsAvailable,
		Confirmed: confirmed,
		Available: slot.IsAvailable,
	}
}

func (u SlotUsage) Remaining() int {
	return u.Ceiling - u.Confirmed
}

func (u SlotUsage) IsFull() bool {
	return u.Remaining() <= 0
}

func (u SlotUsage) Display() int {
	return clamp(u.Remaining())
}

func (u SlotUsage) Oversold() bool {
	return u.Remaining() < 0
}

// ===============================
// Capacity models
// ===============================

const (
	ModelFlat    = "flat"
	ModelSlotted = "slotted"
)

// CapacityModel is either Flat or Slotted. An opportunity never uses both:
// once it has a slot, its flat ceiling is ignored.
type CapacityModel interface {
	Kind() string
	Remaining() int
	IsFull() bool
	Display() int
	Oversold() bool

	capacityModel()
}

type Flat struct {
	Ceiling   int
	Confirmed int
}

func (Flat) Kind() string { return ModelFlat }

func (f Flat) Remaining() int { return f.Ceiling - f.Confirmed }

func (f Flat) IsFull() bool { return f.Remaining() <= 0 }

func (f Flat) Display() int { return clamp(f.Remaining()) }

func (f Flat) Oversold() bool { return f.Remaining() < 0 }

func (Flat) capacityModel() {}

type Slotted struct {
	Slots []SlotUsage
}

func (Slotted) Kind() string { return ModelSlotted }

func (s Slotted) Remaining() int {
	total := 0
	for _, u := range s.Slots {
		total += u.Remaining()
	}
	return total
}

// IsFull is true only when every slot is full.
func (s Slotted) IsFull() bool {
	for _, u := range s.Slots {
		if !u.IsFull() {
			return false
		}
	}
	return true
}

// Display sums the clamped per-slot values so an oversold slot cannot hide
// seats that are still open in another slot.
func (s Slotted) Display() int {
	total := 0
	for _, u := range s.Slots {
		total += u.Display()
	}
	return total
}

func (s Slotted) Oversold() bool {
	for _, u := range s.Slots {
		if u.Oversold() {
			return true
		}
	}
	return false
}

func (Slotted) capacityModel() {}

// NewCapacityModel picks Slotted when the opportunity has any slot and Flat
// otherwise.
func NewCapacityModel(flatCeiling, flatConfirmed int, slots []SlotUsage) CapacityModel {
	if len(slots) > 0 {
		return Slotted{Slots: slots}
	}
	return Flat{Ceiling: flatCeiling, Confirmed: flatConfirmed}
}

// ModelFor builds the capacity model of opp from live counts. bySlot maps
// slot IDs to confirmed bookings; flatConfirmed is only read when opp has
// no slots.
func ModelFor(opp models.Opportunity, bySlot map[uint]int, flatConfirmed int) CapacityModel {
	usages := make([]SlotUsage, 0, len(opp.TimeSlots))
	for _, slot := range opp.TimeSlots {
		usages = append(usages, UsageOf(slot, bySlot[slot.ID]))
	}
	return NewCapacityModel(opp.SpotsAvailable, flatConfirmed, usages)
}

// ===============================
// Summary
// ===============================

type Summary struct {
	Model        string `json:"model"`
	Remaining    int    `json:"remaining"`
	RawRemaining int    `json:"raw_remaining"`
	IsFull       bool   `json:"is_full"`
	Oversold     bool   `json:"oversold"`
}

func Summarize(m CapacityModel) Summary {
	return Summary{
		Model:        m.Kind(),
		Remaining:    m.Display(),
		RawRemaining: m.Remaining(),
		IsFull:       m.IsFull(),
		Oversold:     m.Oversold(),
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
