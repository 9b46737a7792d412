package identity

import (
	"context"
	"time"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

type Repository interface {
	// -------- Users --------
	CreateUser(
		ctx context.Context,
		user *models.User,
	) error

	GetUserByID(
		ctx context.Context,
		id uint,
	) (*models.User, error)

	GetUserByEmail(
		ctx context.Context,
		email string,
	) (*models.User, error)

	TouchLastLogin(
		ctx context.Context,
		userID uint,
		at time.Time,
	) error

	CountUsersByRole(
		ctx context.Context,
	) (map[Role]int64, error)

	// -------- Organizations --------

	// CreateOrganizationWithOwner persists both rows atomically and links
	// the owner to the new organization.
	CreateOrganizationWithOwner(
		ctx context.Context,
		org *models.Organization,
		owner *models.User,
	) error

	GetOrganization(
		ctx context.Context,
		id uint,
	) (*models.Organization, error)

	SlugExists(
		ctx context.Context,
		slug string,
	) (bool, error)
}
