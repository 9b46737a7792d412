package booking

import (
	"context"

	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/opportunity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

// ======================================================
// VIEWS
// ======================================================

type SlotView struct {
	ID             uint   `json:"id"`
	OpportunityID  uint   `json:"opportunity_id"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time,omitempty"`
	SpotsAvailable int    `json:"spots_available"`
	IsAvailable    bool   `json:"is_available"`

	Remaining    int  `json:"spots_remaining"`
	RawRemaining int  `json:"raw_remaining"`
	IsFull       bool `json:"is_full"`
}

func slotView(slot models.TimeSlot, confirmed int) SlotView {
	u := domain.UsageOf(slot, confirmed)
	return SlotView{
		ID:             slot.ID,
		OpportunityID:  slot.OpportunityID,
		StartTime:      slot.StartTime,
		EndTime:        slot.EndTime,
		SpotsAvailable: slot.SpotsAvailable,
		IsAvailable:    slot.IsAvailable,
		Remaining:      u.Display(),
		RawRemaining:   u.Remaining(),
		IsFull:         u.IsFull(),
	}
}

type OpportunityCapacity struct {
	OpportunityID uint `json:"opportunity_id"`
	domain.Summary
	Slots []SlotView `json:"slots,omitempty"`
}

// ======================================================
// USE CASE
// ======================================================

// Capacity answers remaining/is-full questions from live confirmed counts.
type Capacity struct {
	repo    domain.Repository
	catalog opportunity.Repository
}

func NewCapacity(
	repo domain.Repository,
	catalog opportunity.Repository,
) *Capacity {
	return &Capacity{
		repo:    repo,
		catalog: catalog,
	}
}

func (uc *Capacity) ForSlot(ctx context.Context, slotID uint) (*SlotView, error) {
	slot, err := uc.repo.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	counts, err := uc.repo.CountConfirmedBySlot(ctx, []uint{slot.ID})
	if err != nil {
		return nil, err
	}

	v := slotView(*slot, counts[slot.ID])
	return &v, nil
}

func (uc *Capacity) ForOpportunity(ctx context.Context, opportunityID uint) (*OpportunityCapacity, error) {
	opp, err := uc.catalog.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	caps, err := uc.Models(ctx, []models.Opportunity{*opp})
	if err != nil {
		return nil, err
	}

	out := &OpportunityCapacity{
		OpportunityID: opp.ID,
		Summary:       domain.Summarize(caps[opp.ID]),
	}
	if slotted, ok := caps[opp.ID].(domain.Slotted); ok {
		out.Slots = make([]SlotView, 0, len(slotted.Slots))
		for _, slot := range domain.SortSlotsByTime(opp.TimeSlots) {
			out.Slots = append(out.Slots, slotView(slot, slotConfirmed(slotted, slot.ID)))
		}
	}
	return out, nil
}

// Models builds the capacity model of each opportunity with two count
// queries, whatever the number of opportunities.
func (uc *Capacity) Models(ctx context.Context, opps []models.Opportunity) (map[uint]domain.CapacityModel, error) {
	var slotIDs, flatIDs []uint
	for _, opp := range opps {
		if len(opp.TimeSlots) == 0 {
			flatIDs = append(flatIDs, opp.ID)
			continue
		}
		for _, s := range opp.TimeSlots {
			slotIDs = append(slotIDs, s.ID)
		}
	}

	bySlot := map[uint]int{}
	if len(slotIDs) > 0 {
		counts, err := uc.repo.CountConfirmedBySlot(ctx, slotIDs)
		if err != nil {
			return nil, err
		}
		bySlot = counts
	}

	byOpp := map[uint]int{}
	if len(flatIDs) > 0 {
		counts, err := uc.repo.CountConfirmedFlat(ctx, flatIDs)
		if err != nil {
			return nil, err
		}
		byOpp = counts
	}

	out := make(map[uint]domain.CapacityModel, len(opps))
	for _, opp := range opps {
		out[opp.ID] = domain.ModelFor(opp, bySlot, byOpp[opp.ID])
	}
	return out, nil
}

// ======================================================
// ORDERED SLOTS
// ======================================================

// ListSlots returns the slots of an opportunity ordered by clock time, each
// with its live capacity.
func (uc *Capacity) ListSlots(ctx context.Context, opportunityID uint) ([]SlotView, error) {
	opp, err := uc.catalog.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	ordered := domain.SortSlotsByTime(opp.TimeSlots)
	if len(ordered) == 0 {
		return []SlotView{}, nil
	}

	ids := make([]uint, 0, len(ordered))
	for _, s := range ordered {
		ids = append(ids, s.ID)
	}

	counts, err := uc.repo.CountConfirmedBySlot(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]SlotView, 0, len(ordered))
	for _, s := range ordered {
		out = append(out, slotView(s, counts[s.ID]))
	}
	return out, nil
}

func slotConfirmed(m domain.Slotted, slotID uint) int {
	for _, u := range m.Slots {
		if u.SlotID == slotID {
			return u.Confirmed
		}
	}
	return 0
}
