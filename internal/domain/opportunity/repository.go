package opportunity

import (
	"context"
	"time"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

type Filter struct {
	Query    string
	Category string
	Date     *time.Time
	Limit    int
	Offset   int
}

type Counts struct {
	Total  int64
	Active int64
}

type Repository interface {
	// GetOpportunity returns the opportunity with its organization and its
	// slots in insertion order.
	GetOpportunity(
		ctx context.Context,
		id uint,
	) (*models.Opportunity, error)

	ListActiveOpportunities(
		ctx context.Context,
		f Filter,
	) ([]models.Opportunity, error)

	// ListMappableOpportunities returns active opportunities that carry
	// coordinates. Coordinates are never used as a query predicate.
	ListMappableOpportunities(
		ctx context.Context,
	) ([]models.Opportunity, error)

	CreateOpportunity(
		ctx context.Context,
		opp *models.Opportunity,
	) error

	SetOpportunityImage(
		ctx context.Context,
		id uint,
		url string,
	) error

	// SetOpportunityActive hides or restores an opportunity. Inactive
	// opportunities drop out of listings and refuse flat bookings.
	SetOpportunityActive(
		ctx context.Context,
		id uint,
		active bool,
	) error

	// SetSlotAvailability opens or closes a single slot for new bookings.
	// Existing bookings are left alone.
	SetSlotAvailability(
		ctx context.Context,
		slotID uint,
		available bool,
	) error

	CountOpportunities(
		ctx context.Context,
	) (Counts, error)
}
