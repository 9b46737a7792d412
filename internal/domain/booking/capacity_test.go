package booking

import (
	"testing"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

func TestSlotUsage(t *testing.T) {
	cases := []struct {
		name      string
		ceiling   int
		confirmed int
		remaining int
		display   int
		full      bool
		oversold  bool
	}{
		{"empty", 3, 0, 3, 3, false, false},
		{"last seat", 3, 2, 1, 1, false, false},
		{"exactly full", 3, 3, 0, 0, true, false},
		{"oversold", 3, 5, -2, 0, true, true},
		{"zero ceiling", 0, 0, 0, 0, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := SlotUsage{Ceiling: tc.ceiling, Confirmed: tc.confirmed}
			if got := u.Remaining(); got != tc.remaining {
				t.Fatalf("Remaining() = %d, want %d", got, tc.remaining)
			}
			if got := u.Display(); got != tc.display {
				t.Fatalf("Display() = %d, want %d", got, tc.display)
			}
			if got := u.IsFull(); got != tc.full {
				t.Fatalf("IsFull() = %v, want %v", got, tc.full)
			}
			if got := u.Oversold(); got != tc.oversold {
				t.Fatalf("Oversold() = %v, want %v", got, tc.oversold)
			}
		})
	}
}

func TestNewCapacityModelPicksVariant(t *testing.T) {
	if m := NewCapacityModel(10, 2, nil); m.Kind() != ModelFlat {
		t.Fatalf("no slots: got %s, want flat", m.Kind())
	}

	m := NewCapacityModel(10, 2, []SlotUsage{{Ceiling: 1}})
	if m.Kind() != ModelSlotted {
		t.Fatalf("with slots: got %s, want slotted", m.Kind())
	}
	// the flat ceiling is ignored once slots exist
	if got := m.Remaining(); got != 1 {
		t.Fatalf("Remaining() = %d, want 1", got)
	}
}

func TestSlottedAggregation(t *testing.T) {
	opp := models.Opportunity{
		SpotsAvailable: 99,
		TimeSlots: []models.TimeSlot{
			{ID: 1, StartTime: "9:00 AM", SpotsAvailable: 15},
			{ID: 2, StartTime: "11:00 AM", SpotsAvailable: 10},
			{ID: 3, StartTime: "1:00 PM", SpotsAvailable: 10},
		},
	}

	m := ModelFor(opp, map[uint]int{}, 0)
	if got := m.Remaining(); got != 35 {
		t.Fatalf("empty: Remaining() = %d, want 35", got)
	}
	if m.IsFull() {
		t.Fatal("empty: expected not full")
	}

	m = ModelFor(opp, map[uint]int{1: 15}, 0)
	if got := m.Remaining(); got != 20 {
		t.Fatalf("first slot filled: Remaining() = %d, want 20", got)
	}
	if m.IsFull() {
		t.Fatal("first slot filled: expected not full")
	}

	m = ModelFor(opp, map[uint]int{1: 15, 2: 10, 3: 10}, 0)
	if !m.IsFull() {
		t.Fatal("all slots filled: expected full")
	}
}

func TestSlottedDisplayDoesNotHideOpenSeats(t *testing.T) {
	m := Slotted{Slots: []SlotUsage{
		{Ceiling: 1, Confirmed: 3},
		{Ceiling: 2, Confirmed: 0},
	}}

	if got := m.Remaining(); got != 0 {
		t.Fatalf("raw Remaining() = %d, want 0", got)
	}
	if got := m.Display(); got != 2 {
		t.Fatalf("Display() = %d, want 2", got)
	}
	if m.IsFull() {
		t.Fatal("expected not full while a slot has seats")
	}

	s := Summarize(m)
	if !s.Oversold || s.RawRemaining != 0 || s.Remaining != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestFlatModel(t *testing.T) {
	f := Flat{Ceiling: 2, Confirmed: 2}
	if !f.IsFull() || f.Display() != 0 {
		t.Fatalf("expected full flat pool, got %+v", Summarize(f))
	}

	f.Confirmed = 3
	s := Summarize(f)
	if s.Remaining != 0 || s.RawRemaining != -1 || !s.Oversold {
		t.Fatalf("unexpected summary %+v", s)
	}
}
