package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

var _ identity.Repository = (*IdentityGormRepository)(nil)

type IdentityGormRepository struct {
	db *gorm.DB
}

func NewIdentityGormRepository(db *gorm.DB) *IdentityGormRepository {
	return &IdentityGormRepository{db: db}
}

// --------------------------------------------------
// Users
// --------------------------------------------------

func (r *IdentityGormRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit("Organization").Create(user).Error; err != nil {
		return mapCreateError(err)
	}
	return nil
}

func (r *IdentityGormRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Preload("Organization").First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *IdentityGormRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).
		Preload("Organization").
		Where("LOWER(email) = LOWER(?)", email).
		First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *IdentityGormRepository) TouchLastLogin(ctx context.Context, userID uint, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_login", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

func (r *IdentityGormRepository) CountUsersByRole(ctx context.Context) (map[identity.Role]int64, error) {
	var rows []struct {
		Role  string
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[identity.Role]int64, len(rows))
	for _, row := range rows {
		out[identity.Role(row.Role)] = row.Count
	}
	return out, nil
}

// --------------------------------------------------
// Organizations
// --------------------------------------------------

func (r *IdentityGormRepository) CreateOrganizationWithOwner(
	ctx context.Context,
	org *models.Organization,
	owner *models.User,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}

		orgID := org.ID
		owner.OrganizationID = &orgID
		return tx.Omit("Organization").Create(owner).Error
	})
	if err != nil {
		owner.OrganizationID = nil
		return mapCreateError(err)
	}
	return nil
}

func (r *IdentityGormRepository) GetOrganization(ctx context.Context, id uint) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *IdentityGormRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.Organization{}).
		Where("slug = ?", slug).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func mapCreateError(err error) error {
	if httperr.IsUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return identity.ErrAlreadyExists
	}
	return err
}
