// Package memory is an in-process implementation of the repositories, used
// by tests and by STORE=memory runs.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/audit"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/opportunity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

var (
	_ booking.Repository     = (*Store)(nil)
	_ opportunity.Repository = (*Store)(nil)
	_ identity.Repository    = (*Store)(nil)
	_ audit.Store            = (*Store)(nil)
)

type Store struct {
	mu sync.RWMutex

	nextID map[string]uint

	orgs      map[uint]models.Organization
	users     map[uint]models.User
	opps      map[uint]models.Opportunity
	slots     map[uint]models.TimeSlot
	slotOrder map[uint][]uint
	bookings  map[uint]models.Booking
	audit     []models.AuditLog

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now func() time.Time
}

func New() *Store {
	return &Store{
		nextID:    make(map[string]uint),
		orgs:      make(map[uint]models.Organization),
		users:     make(map[uint]models.User),
		opps:      make(map[uint]models.Opportunity),
		slots:     make(map[uint]models.TimeSlot),
		slotOrder: make(map[uint][]uint),
		bookings:  make(map[uint]models.Booking),
		locks:     make(map[string]*sync.Mutex),
		now:       time.Now,
	}
}

// seq must be called with mu held for writing.
func (s *Store) seq(table string) uint {
	s.nextID[table]++
	return s.nextID[table]
}

// lockFor returns the mutex serializing reservations on key.
func (s *Store) lockFor(kind string, id uint) *sync.Mutex {
	key := fmt.Sprintf("%s:%d", kind, id)

	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// opportunityLocked hydrates an opportunity with its organization and its
// slots in insertion order. mu must be held.
func (s *Store) opportunityLocked(id uint) (models.Opportunity, bool) {
	opp, ok := s.opps[id]
	if !ok {
		return models.Opportunity{}, false
	}

	opp.Organization = s.orgs[opp.OrganizationID]
	opp.TimeSlots = make([]models.TimeSlot, 0, len(s.slotOrder[id]))
	for _, sid := range s.slotOrder[id] {
		opp.TimeSlots = append(opp.TimeSlots, s.slots[sid])
	}
	return opp, true
}

// bookingLocked hydrates a booking with its opportunity and slot. mu must
// be held.
func (s *Store) bookingLocked(b models.Booking) models.Booking {
	if opp, ok := s.opportunityLocked(b.OpportunityID); ok {
		opp.TimeSlots = nil
		b.Opportunity = opp
	}
	if b.TimeSlotID != nil {
		if slot, ok := s.slots[*b.TimeSlotID]; ok {
			b.TimeSlot = &slot
		}
	}
	return b
}
