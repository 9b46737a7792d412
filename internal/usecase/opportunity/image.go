package opportunity

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/audit"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/opportunity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/imaging"
)

var ErrInvalidImage = httperr.ErrBusiness("invalid_image")

// ObjectStore is where converted images end up. Put returns the public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type UploadImage struct {
	repo     domain.Repository
	store    ObjectStore
	audit    *audit.Dispatcher
	log      zerolog.Logger
	maxWidth int
}

func NewUploadImage(
	repo domain.Repository,
	store ObjectStore,
	audit *audit.Dispatcher,
	log zerolog.Logger,
	maxWidth int,
) *UploadImage {
	return &UploadImage{
		repo:     repo,
		store:    store,
		audit:    audit,
		log:      log,
		maxWidth: maxWidth,
	}
}

func (uc *UploadImage) Execute(
	ctx context.Context,
	actor identity.Actor,
	opportunityID uint,
	file io.Reader,
) (string, error) {

	opp, err := uc.repo.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return "", err
	}
	if !actor.ManagesOrganization(opp.OrganizationID) {
		return "", booking.ErrUnauthorized
	}

	body, err := imaging.ToWebP(file, uc.maxWidth)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupported) {
			return "", ErrInvalidImage
		}
		return "", err
	}

	key := fmt.Sprintf("opportunities/%d/%s%s", opp.ID, uuid.NewString(), imaging.Extension)
	url, err := uc.store.Put(ctx, key, imaging.ContentType, body)
	if err != nil {
		return "", err
	}

	if err := uc.repo.SetOpportunityImage(ctx, opp.ID, url); err != nil {
		return "", err
	}

	uc.log.Info().
		Uint("opportunity_id", opp.ID).
		Int("bytes", len(body)).
		Msg("opportunity image stored")

	orgID := opp.OrganizationID
	uc.audit.Dispatch(audit.Event{
		OrganizationID: &orgID,
		UserID:         &actor.UserID,
		Action:         "opportunity_image_uploaded",
		Entity:         "opportunity",
		EntityID:       &opp.ID,
		Metadata:       map[string]any{"key": key},
	})

	return url, nil
}
