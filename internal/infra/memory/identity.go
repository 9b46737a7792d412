package memory

import (
	"context"
	"strings"
	"time"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertUserLocked(user)
}

func (s *Store) insertUserLocked(user *models.User) error {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) || strings.EqualFold(u.Username, user.Username) {
			return identity.ErrAlreadyExists
		}
	}

	now := s.now()
	user.ID = s.seq("users")
	user.CreatedAt = now
	user.UpdatedAt = now

	row := *user
	row.Organization = nil
	s.users[user.ID] = row
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return s.userLocked(u), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return s.userLocked(u), nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (s *Store) userLocked(u models.User) *models.User {
	if u.OrganizationID != nil {
		if org, ok := s.orgs[*u.OrganizationID]; ok {
			u.Organization = &org
		}
	}
	return &u
}

func (s *Store) TouchLastLogin(ctx context.Context, userID uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return identity.ErrUserNotFound
	}
	u.LastLogin = &at
	s.users[userID] = u
	return nil
}

func (s *Store) CountUsersByRole(ctx context.Context) (map[identity.Role]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[identity.Role]int64)
	for _, u := range s.users {
		out[identity.Role(u.Role)]++
	}
	return out, nil
}

func (s *Store) CreateOrganizationWithOwner(
	ctx context.Context,
	org *models.Organization,
	owner *models.User,
) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orgs {
		if o.Slug == org.Slug {
			return identity.ErrAlreadyExists
		}
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, owner.Email) || strings.EqualFold(u.Username, owner.Username) {
			return identity.ErrAlreadyExists
		}
	}

	now := s.now()
	org.ID = s.seq("organizations")
	org.CreatedAt = now
	org.UpdatedAt = now
	s.orgs[org.ID] = *org

	orgID := org.ID
	owner.OrganizationID = &orgID
	return s.insertUserLocked(owner)
}

func (s *Store) GetOrganization(ctx context.Context, id uint) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.orgs[id]
	if !ok {
		return nil, identity.ErrOrganizationNotFound
	}
	return &org, nil
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orgs {
		if o.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}
