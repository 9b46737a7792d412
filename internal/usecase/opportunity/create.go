package opportunity

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/audit"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/opportunity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type SlotInput struct {
	StartTime      string
	EndTime        string
	SpotsAvailable int
}

type CreateOpportunityInput struct {
	Actor identity.Actor

	// Only read for admins; organization users always post for their own
	// organization.
	OrganizationID uint

	Title          string
	Description    string
	Category       string
	Date           time.Time
	Hours          int
	SpotsAvailable int

	Address   string
	City      string
	State     string
	ZipCode   string
	Latitude  *float64
	Longitude *float64

	Requirements string
	WhatToBring  string
	IsUrgent     bool

	Slots []SlotInput
}

// ======================================================
// USE CASE
// ======================================================

type CreateOpportunity struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	log   zerolog.Logger
}

func NewCreateOpportunity(
	repo domain.Repository,
	audit *audit.Dispatcher,
	log zerolog.Logger,
) *CreateOpportunity {
	return &CreateOpportunity{
		repo:  repo,
		audit: audit,
		log:   log,
	}
}

func (uc *CreateOpportunity) Execute(
	ctx context.Context,
	in CreateOpportunityInput,
) (*models.Opportunity, error) {

	orgID := in.OrganizationID
	if !in.Actor.IsAdmin() {
		if in.Actor.OrganizationID == nil {
			return nil, booking.ErrUnauthorized
		}
		orgID = *in.Actor.OrganizationID
	}
	if orgID == 0 || !in.Actor.ManagesOrganization(orgID) {
		return nil, booking.ErrUnauthorized
	}

	opp := &models.Opportunity{
		OrganizationID: orgID,
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Category:       strings.TrimSpace(in.Category),
		Date:           dateOnly(in.Date),
		Hours:          in.Hours,
		SpotsAvailable: in.SpotsAvailable,
		Address:        in.Address,
		City:           in.City,
		State:          in.State,
		ZipCode:        in.ZipCode,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		Requirements:   in.Requirements,
		WhatToBring:    in.WhatToBring,
		IsUrgent:       in.IsUrgent,
		IsActive:       true,
	}

	for _, s := range in.Slots {
		opp.TimeSlots = append(opp.TimeSlots, models.TimeSlot{
			StartTime:      strings.TrimSpace(s.StartTime),
			EndTime:        strings.TrimSpace(s.EndTime),
			SpotsAvailable: s.SpotsAvailable,
			IsAvailable:    true,
		})
	}

	if err := domain.Validate(opp); err != nil {
		return nil, err
	}

	if err := uc.repo.CreateOpportunity(ctx, opp); err != nil {
		return nil, err
	}

	uc.log.Info().
		Uint("opportunity_id", opp.ID).
		Uint("organization_id", orgID).
		Int("slots", len(opp.TimeSlots)).
		Msg("opportunity created")

	uc.audit.Dispatch(audit.Event{
		OrganizationID: &orgID,
		UserID:         &in.Actor.UserID,
		Action:         "opportunity_created",
		Entity:         "opportunity",
		EntityID:       &opp.ID,
		Metadata: map[string]any{
			"title": opp.Title,
			"slots": len(opp.TimeSlots),
		},
	})

	return opp, nil
}

// dateOnly drops the clock part; opportunity dates are calendar dates.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
