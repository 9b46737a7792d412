package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/opportunity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

func (s *Store) GetOpportunity(ctx context.Context, id uint) (*models.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opp, ok := s.opportunityLocked(id)
	if !ok {
		return nil, opportunity.ErrNotFound
	}
	return &opp, nil
}

func (s *Store) ListActiveOpportunities(ctx context.Context, f opportunity.Filter) ([]models.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	category := strings.TrimSpace(f.Category)

	var out []models.Opportunity
	for id, opp := range s.opps {
		if !opp.IsActive {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(opp.Title), q) &&
			!strings.Contains(strings.ToLower(opp.Description), q) {
			continue
		}
		if category != "" && !strings.EqualFold(opp.Category, category) {
			continue
		}
		if f.Date != nil && !sameDay(opp, *f.Date) {
			continue
		}

		full, _ := s.opportunityLocked(id)
		out = append(out, full)
	}

	sortByDate(out)
	return page(out, f.Offset, f.Limit), nil
}

func (s *Store) ListMappableOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Opportunity
	for id, opp := range s.opps {
		if !opp.IsActive || opp.Latitude == nil || opp.Longitude == nil {
			continue
		}
		full, _ := s.opportunityLocked(id)
		out = append(out, full)
	}

	sortByDate(out)
	return out, nil
}

func (s *Store) CreateOpportunity(ctx context.Context, opp *models.Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	opp.ID = s.seq("opportunities")
	opp.CreatedAt = now
	opp.UpdatedAt = now

	ids := make([]uint, 0, len(opp.TimeSlots))
	for i := range opp.TimeSlots {
		slot := &opp.TimeSlots[i]
		slot.ID = s.seq("time_slots")
		slot.OpportunityID = opp.ID
		s.slots[slot.ID] = *slot
		ids = append(ids, slot.ID)
	}
	s.slotOrder[opp.ID] = ids

	row := *opp
	row.TimeSlots = nil
	row.Organization = models.Organization{}
	s.opps[opp.ID] = row

	return nil
}

func (s *Store) SetOpportunityImage(ctx context.Context, id uint, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	opp, ok := s.opps[id]
	if !ok {
		return opportunity.ErrNotFound
	}
	opp.ImageURL = url
	opp.UpdatedAt = s.now()
	s.opps[id] = opp
	return nil
}

func (s *Store) SetOpportunityActive(ctx context.Context, id uint, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	opp, ok := s.opps[id]
	if !ok {
		return opportunity.ErrNotFound
	}
	opp.IsActive = active
	opp.UpdatedAt = s.now()
	s.opps[id] = opp
	return nil
}

func (s *Store) SetSlotAvailability(ctx context.Context, slotID uint, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return opportunity.ErrSlotNotFound
	}
	slot.IsAvailable = available
	s.slots[slotID] = slot
	return nil
}

func (s *Store) CountOpportunities(ctx context.Context) (opportunity.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c opportunity.Counts
	for _, opp := range s.opps {
		c.Total++
		if opp.IsActive {
			c.Active++
		}
	}
	return c, nil
}

func sameDay(opp models.Opportunity, d time.Time) bool {
	y1, m1, d1 := opp.Date.Date()
	y2, m2, d2 := d.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func sortByDate(opps []models.Opportunity) {
	sort.Slice(opps, func(i, j int) bool {
		if opps[i].Date.Equal(opps[j].Date) {
			return opps[i].ID < opps[j].ID
		}
		return opps[i].Date.Before(opps[j].Date)
	})
}
