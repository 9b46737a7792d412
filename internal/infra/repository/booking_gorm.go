package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

var _ domain.Repository = (*BookingGormRepository)(nil)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

var confirmed = string(domain.StatusConfirmed)

// --------------------------------------------------
// Reservation
// --------------------------------------------------

// ReserveSlot locks the slot row (SELECT ... FOR UPDATE) so concurrent
// reservations on the same slot queue behind each other; the count, the
// decision and the insert all happen while the lock is held.
func (r *BookingGormRepository) ReserveSlot(
	ctx context.Context,
	slotID uint,
	decide domain.Decide,
) (*models.Booking, error) {

	var out *models.Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot models.TimeSlot
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&slot, slotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrSlotNotFound
			}
			return err
		}

		opp, err := loadOpportunity(tx, slot.OpportunityID)
		if err != nil {
			return err
		}

		var slotCount int64
		if err := tx.Model(&models.TimeSlot{}).
			Where("opportunity_id = ?", opp.ID).
			Count(&slotCount).Error; err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&models.Booking{}).
			Where("time_slot_id = ? AND status = ?", slot.ID, confirmed).
			Count(&n).Error; err != nil {
			return err
		}

		b, err := decide(domain.Reservation{
			Opportunity: *opp,
			Slot:        &slot,
			Confirmed:   int(n),
			SlotCount:   int(slotCount),
		})
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReserveFlat is ReserveSlot for opportunities without slots; the lock is
// taken on the opportunity row.
func (r *BookingGormRepository) ReserveFlat(
	ctx context.Context,
	opportunityID uint,
	decide domain.Decide,
) (*models.Booking, error) {

	var out *models.Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Opportunity
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&locked, opportunityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOpportunityNotFound
			}
			return err
		}

		opp, err := loadOpportunity(tx, locked.ID)
		if err != nil {
			return err
		}

		var slotCount int64
		if err := tx.Model(&models.TimeSlot{}).
			Where("opportunity_id = ?", opp.ID).
			Count(&slotCount).Error; err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&models.Booking{}).
			Where("opportunity_id = ? AND status = ?", opp.ID, confirmed).
			Count(&n).Error; err != nil {
			return err
		}

		b, err := decide(domain.Reservation{
			Opportunity: *opp,
			Confirmed:   int(n),
			SlotCount:   int(slotCount),
		})
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loadOpportunity(tx *gorm.DB, id uint) (*models.Opportunity, error) {
	var opp models.Opportunity
	if err := tx.Preload("Organization").First(&opp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOpportunityNotFound
		}
		return nil, err
	}
	return &opp, nil
}

// --------------------------------------------------
// Capacity reads
// --------------------------------------------------

func (r *BookingGormRepository) GetSlot(
	ctx context.Context,
	slotID uint,
) (*models.TimeSlot, error) {

	var slot models.TimeSlot
	if err := r.db.WithContext(ctx).First(&slot, slotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, err
	}
	return &slot, nil
}

type countRow struct {
	RefID uint
	Count int
}

func (r *BookingGormRepository) CountConfirmedBySlot(
	ctx context.Context,
	slotIDs []uint,
) (map[uint]int, error) {

	out := make(map[uint]int, len(slotIDs))
	if len(slotIDs) == 0 {
		return out, nil
	}

	var rows []countRow
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("time_slot_id AS ref_id, COUNT(*) AS count").
		Where("time_slot_id IN ? AND status = ?", slotIDs, confirmed).
		Group("time_slot_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.RefID] = row.Count
	}
	return out, nil
}

func (r *BookingGormRepository) CountConfirmedFlat(
	ctx context.Context,
	opportunityIDs []uint,
) (map[uint]int, error) {

	out := make(map[uint]int, len(opportunityIDs))
	if len(opportunityIDs) == 0 {
		return out, nil
	}

	var rows []countRow
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("opportunity_id AS ref_id, COUNT(*) AS count").
		Where("opportunity_id IN ? AND status = ?", opportunityIDs, confirmed).
		Group("opportunity_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.RefID] = row.Count
	}
	return out, nil
}

// --------------------------------------------------
// Booking (state change)
// --------------------------------------------------

func (r *BookingGormRepository) hydrated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Opportunity.Organization").
		Preload("TimeSlot")
}

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	bookingID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.hydrated(ctx).First(&b, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) TransitionBooking(
	ctx context.Context,
	bookingID uint,
	from domain.Status,
	to domain.Status,
	at time.Time,
) (bool, error) {

	updates := map[string]any{
		"status":     string(to),
		"updated_at": at,
	}
	switch to {
	case domain.StatusCancelled:
		updates["cancelled_at"] = at
	case domain.StatusCompleted:
		updates["completed_at"] = at
	}

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, string(from)).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, domain.ErrBookingNotFound
	}
	return false, nil
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *BookingGormRepository) ListBookingsForUser(
	ctx context.Context,
	userID uint,
) ([]models.Booking, error) {

	var out []models.Booking
	if err := r.hydrated(ctx).
		Where("user_id = ?", userID).
		Order("booking_time ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingGormRepository) ListBookings(
	ctx context.Context,
	f domain.Filter,
) ([]models.Booking, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.Booking{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.OpportunityID != 0 {
		q = q.Where("opportunity_id = ?", f.OpportunityID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Opportunity.Organization").Preload("TimeSlot").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []models.Booking
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *BookingGormRepository) SumCompletedHours(
	ctx context.Context,
	userID uint,
) (int, error) {

	var total int
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("COALESCE(SUM(hours), 0)").
		Where("user_id = ? AND status = ?", userID, string(domain.StatusCompleted)).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *BookingGormRepository) BookingStats(
	ctx context.Context,
	since time.Time,
) (domain.Stats, error) {

	var st domain.Stats
	completed := string(domain.StatusCompleted)

	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = ?) AS confirmed,
			COALESCE(SUM(hours) FILTER (WHERE status = ?), 0) AS completed_hours,
			COALESCE(SUM(hours) FILTER (WHERE status = ? AND completed_at >= ?), 0) AS completed_hours_from`,
			confirmed, completed, completed, since).
		Scan(&st).Error
	if err != nil {
		return domain.Stats{}, err
	}
	return st, nil
}
