package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/audit"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/auth"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/timezone"
)

var (
	ErrInvalidCredentials = httperr.ErrBusiness("invalid_credentials")
	ErrAccountDisabled    = httperr.ErrBusiness("account_disabled")
)

// maxSlugAttempts bounds the "-2", "-3" suffix search for a free slug.
const maxSlugAttempts = 20

// ======================================================
// INPUT / OUTPUT
// ======================================================

type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
	Phone    string
}

type RegisterOrganizationInput struct {
	RegisterInput

	OrganizationName string
	Description      string
	Website          string
	OrgPhone         string
	Address          string
	City             string
	State            string
	ZipCode          string
	Timezone         string
}

type Session struct {
	Token        string               `json:"token"`
	User         *models.User         `json:"user"`
	Organization *models.Organization `json:"organization,omitempty"`
}

// ======================================================
// USE CASE
// ======================================================

type Accounts struct {
	repo   identity.Repository
	tokens *auth.Tokens
	audit  *audit.Dispatcher
	log    zerolog.Logger
}

func New(
	repo identity.Repository,
	tokens *auth.Tokens,
	audit *audit.Dispatcher,
	log zerolog.Logger,
) *Accounts {
	return &Accounts{
		repo:   repo,
		tokens: tokens,
		audit:  audit,
		log:    log,
	}
}

// Register creates a volunteer account.
func (uc *Accounts) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	user, err := newUser(in, identity.RoleVolunteer)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	uc.log.Info().Uint("user_id", user.ID).Msg("volunteer registered")
	uc.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   "user_registered",
		Entity:   "user",
		EntityID: &user.ID,
	})

	return uc.session(user, nil)
}

// RegisterOrganization creates an organization and its first user in one
// step. The slug is derived from the name.
func (uc *Accounts) RegisterOrganization(ctx context.Context, in RegisterOrganizationInput) (*Session, error) {
	owner, err := newUser(in.RegisterInput, identity.RoleOrganization)
	if err != nil {
		return nil, err
	}

	s, err := uc.freeSlug(ctx, in.OrganizationName)
	if err != nil {
		return nil, err
	}

	tz := strings.TrimSpace(in.Timezone)
	if !timezone.IsValid(tz) {
		tz = timezone.Default()
	}

	org := &models.Organization{
		Name:         strings.TrimSpace(in.OrganizationName),
		Slug:         s,
		Description:  in.Description,
		Website:      in.Website,
		ContactEmail: owner.Email,
		Phone:        in.OrgPhone,
		Address:      in.Address,
		City:         in.City,
		State:        in.State,
		ZipCode:      in.ZipCode,
		Timezone:     tz,
	}

	if err := uc.repo.CreateOrganizationWithOwner(ctx, org, owner); err != nil {
		return nil, err
	}

	uc.log.Info().
		Uint("organization_id", org.ID).
		Str("slug", org.Slug).
		Msg("organization registered")

	uc.audit.Dispatch(audit.Event{
		OrganizationID: &org.ID,
		UserID:         &owner.ID,
		Action:         "organization_registered",
		Entity:         "organization",
		EntityID:       &org.ID,
	})

	return uc.session(owner, org)
}

func (uc *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := uc.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := uc.repo.TouchLastLogin(ctx, user.ID, timezone.Now()); err != nil {
		uc.log.Warn().Err(err).Uint("user_id", user.ID).Msg("last login not recorded")
	}

	return uc.session(user, user.Organization)
}

// Me returns the actor's profile. The actor comes from a verified token, so
// a missing user means the account was removed after the token was issued.
func (uc *Accounts) Me(ctx context.Context, actor identity.Actor) (*models.User, error) {
	return uc.repo.GetUserByID(ctx, actor.UserID)
}

// ======================================================
// HELPERS
// ======================================================

func (uc *Accounts) session(user *models.User, org *models.Organization) (*Session, error) {
	token, err := uc.tokens.Issue(ActorOf(user))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: user, Organization: org}, nil
}

func (uc *Accounts) freeSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", httperr.ErrBusiness("invalid_organization_name")
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := uc.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", identity.ErrAlreadyExists
}

// ActorOf is the identity a user acts as.
func ActorOf(u *models.User) identity.Actor {
	a := identity.Actor{UserID: u.ID, Role: identity.Role(u.Role)}
	if a.Role == identity.RoleOrganization {
		a.OrganizationID = u.OrganizationID
	}
	return a
}

func newUser(in RegisterInput, role identity.Role) (*models.User, error) {
	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &models.User{
		Email:        normalizeEmail(in.Email),
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hashed,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        in.Phone,
		Role:         string(role),
		IsActive:     true,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword is used by the administrator seed.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
