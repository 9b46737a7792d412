package opportunity

import (
	"context"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/opportunity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
	bookinguc "github.com/BruksfildServices01/volunteer-scheduler/internal/usecase/booking"
)

// ======================================================
// VIEWS
// ======================================================

type Listing struct {
	models.Opportunity
	Capacity booking.Summary `json:"capacity"`
}

type Detail struct {
	models.Opportunity
	Capacity *bookinguc.OpportunityCapacity `json:"capacity"`
}

type MapPoint struct {
	ID           uint    `json:"id"`
	Title        string  `json:"title"`
	Category     string  `json:"category"`
	Date         string  `json:"date"`
	Organization string  `json:"organization"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	IsUrgent     bool    `json:"is_urgent"`
	IsFull       bool    `json:"is_full"`
	Remaining    int     `json:"spots_remaining"`
}

// ======================================================
// USE CASE
// ======================================================

type Browse struct {
	repo     domain.Repository
	capacity *bookinguc.Capacity
}

func NewBrowse(
	repo domain.Repository,
	capacity *bookinguc.Capacity,
) *Browse {
	return &Browse{
		repo:     repo,
		capacity: capacity,
	}
}

// Search lists active opportunities with their capacity summary.
func (uc *Browse) Search(ctx context.Context, f domain.Filter) ([]Listing, error) {
	opps, err := uc.repo.ListActiveOpportunities(ctx, f)
	if err != nil {
		return nil, err
	}

	caps, err := uc.capacity.Models(ctx, opps)
	if err != nil {
		return nil, err
	}

	out := make([]Listing, 0, len(opps))
	for _, opp := range opps {
		opp.TimeSlots = booking.SortSlotsByTime(opp.TimeSlots)
		out = append(out, Listing{
			Opportunity: opp,
			Capacity:    booking.Summarize(caps[opp.ID]),
		})
	}
	return out, nil
}

// Get returns one opportunity, its slots in insertion order, and the
// per-slot capacity ordered by clock time.
func (uc *Browse) Get(ctx context.Context, id uint) (*Detail, error) {
	opp, err := uc.repo.GetOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}

	c, err := uc.capacity.ForOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Opportunity: *opp,
		Capacity:    c,
	}, nil
}

func (uc *Browse) Map(ctx context.Context) ([]MapPoint, error) {
	opps, err := uc.repo.ListMappableOpportunities(ctx)
	if err != nil {
		return nil, err
	}

	caps, err := uc.capacity.Models(ctx, opps)
	if err != nil {
		return nil, err
	}

	out := make([]MapPoint, 0, len(opps))
	for _, opp := range opps {
		if opp.Latitude == nil || opp.Longitude == nil {
			continue
		}
		m := caps[opp.ID]
		out = append(out, MapPoint{
			ID:           opp.ID,
			Title:        opp.Title,
			Category:     opp.Category,
			Date:         opp.Date.Format("2006-01-02"),
			Organization: opp.Organization.Name,
			Latitude:     *opp.Latitude,
			Longitude:    *opp.Longitude,
			IsUrgent:     opp.IsUrgent,
			IsFull:       m.IsFull(),
			Remaining:    m.Display(),
		})
	}
	return out, nil
}
