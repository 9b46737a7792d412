package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/opportunity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

var _ domain.Repository = (*OpportunityGormRepository)(nil)

type OpportunityGormRepository struct {
	db *gorm.DB
}

func NewOpportunityGormRepository(db *gorm.DB) *OpportunityGormRepository {
	return &OpportunityGormRepository{db: db}
}

// withSlots preloads the organization and the slots in insertion order.
func (r *OpportunityGormRepository) withSlots(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Organization").
		Preload("TimeSlots", func(db *gorm.DB) *gorm.DB {
			return db.Order("time_slots.id ASC")
		})
}

func (r *OpportunityGormRepository) GetOpportunity(
	ctx context.Context,
	id uint,
) (*models.Opportunity, error) {

	var opp models.Opportunity
	if err := r.withSlots(ctx).First(&opp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &opp, nil
}

func (r *OpportunityGormRepository) ListActiveOpportunities(
	ctx context.Context,
	f domain.Filter,
) ([]models.Opportunity, error) {

	q := r.withSlots(ctx).Where("is_active = ?", true)

	if query := strings.TrimSpace(f.Query); query != "" {
		like := "%" + query + "%"
		q = q.Where("(title ILIKE ? OR description ILIKE ?)", like, like)
	}
	if category := strings.TrimSpace(f.Category); category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", category)
	}
	if f.Date != nil {
		q = q.Where("date = ?", f.Date.Format("2006-01-02"))
	}

	q = q.Order("date ASC, id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []models.Opportunity
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OpportunityGormRepository) ListMappableOpportunities(
	ctx context.Context,
) ([]models.Opportunity, error) {

	var out []models.Opportunity
	if err := r.withSlots(ctx).
		Where("is_active = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", true).
		Order("date ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOpportunity inserts the opportunity and its slots in one
// transaction.
func (r *OpportunityGormRepository) CreateOpportunity(
	ctx context.Context,
	opp *models.Opportunity,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slots := opp.TimeSlots
		opp.TimeSlots = nil

		if err := tx.Omit("Organization").Create(opp).Error; err != nil {
			opp.TimeSlots = slots
			return err
		}

		for i := range slots {
			slots[i].OpportunityID = opp.ID
		}
		if len(slots) > 0 {
			if err := tx.Create(&slots).Error; err != nil {
				opp.TimeSlots = slots
				return err
			}
		}

		opp.TimeSlots = slots
		return nil
	})
}

func (r *OpportunityGormRepository) SetOpportunityImage(
	ctx context.Context,
	id uint,
	url string,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("id = ?", id).
		Update("image_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OpportunityGormRepository) SetOpportunityActive(
	ctx context.Context,
	id uint,
	active bool,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OpportunityGormRepository) SetSlotAvailability(
	ctx context.Context,
	slotID uint,
	available bool,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.TimeSlot{}).
		Where("id = ?", slotID).
		Update("is_available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

func (r *OpportunityGormRepository) CountOpportunities(
	ctx context.Context,
) (domain.Counts, error) {

	var c domain.Counts
	err := r.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE is_active) AS active").
		Scan(&c).Error
	return c, err
}
