package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/volunteer-scheduler/internal/db"
	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/ids"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

// These tests run against a real Postgres because row locks and FILTER
// aggregates cannot be exercised in memory. Point TEST_DATABASE_URL at a
// disposable database to enable them.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := dbpkg.NewDB(&config.Config{DBUrl: url})
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type pgFixture struct {
	db       *gorm.DB
	bookings *BookingGormRepository
	catalog  *OpportunityGormRepository
	tag      string
	orgID    uint
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	db := openTestDB(t)

	f := &pgFixture{
		db:       db,
		bookings: NewBookingGormRepository(db),
		catalog:  NewOpportunityGormRepository(db),
		tag:      fmt.Sprintf("%d", time.Now().UnixNano()),
	}

	org := models.Organization{Name: "Harbor " + f.tag, Slug: "harbor-" + f.tag, Timezone: "UTC"}
	owner := models.User{
		Email:        "owner-" + f.tag + "@example.com",
		Username:     "owner-" + f.tag,
		PasswordHash: "x",
		Role:         string(identity.RoleOrganization),
		IsActive:     true,
	}
	if err := NewIdentityGormRepository(db).CreateOrganizationWithOwner(context.Background(), &org, &owner); err != nil {
		t.Fatalf("seed organization: %v", err)
	}
	f.orgID = org.ID
	return f
}

func (f *pgFixture) user(t *testing.T, name string) uint {
	t.Helper()
	u := models.User{
		Email:        name + "-" + f.tag + "@example.com",
		Username:     name + "-" + f.tag,
		PasswordHash: "x",
		Role:         string(identity.RoleVolunteer),
		IsActive:     true,
	}
	if err := f.db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u.ID
}

func (f *pgFixture) opportunity(t *testing.T, flatSpots int, slotSpots ...int) *models.Opportunity {
	t.Helper()
	opp := &models.Opportunity{
		OrganizationID: f.orgID,
		Title:          "Shift " + f.tag,
		Description:    "Sort donations",
		Date:           time.Date(2030, time.January, 15, 0, 0, 0, 0, time.UTC),
		Hours:          3,
		SpotsAvailable: flatSpots,
		IsActive:       true,
	}
	for i, n := range slotSpots {
		opp.TimeSlots = append(opp.TimeSlots, models.TimeSlot{
			StartTime:      fmt.Sprintf("%d:00 AM", 8+i),
			SpotsAvailable: n,
			IsAvailable:    true,
		})
	}
	if err := f.catalog.CreateOpportunity(context.Background(), opp); err != nil {
		t.Fatalf("seed opportunity: %v", err)
	}
	return opp
}

// reserve books userID into slotID with the same checks the booking use
// case applies under the row lock.
func (f *pgFixture) reserve(slotID, userID uint) (*models.Booking, error) {
	return f.bookings.ReserveSlot(context.Background(), slotID, func(r domain.Reservation) (*models.Booking, error) {
		if domain.UsageOf(*r.Slot, r.Confirmed).IsFull() {
			return nil, domain.ErrCapacityExceeded
		}
		if !r.Slot.IsAvailable {
			return nil, domain.ErrSlotUnavailable
		}
		ref, err := ids.BookingReference()
		if err != nil {
			return nil, err
		}
		id := r.Slot.ID
		return &models.Booking{
			Reference:     ref,
			UserID:        userID,
			OpportunityID: r.Opportunity.ID,
			TimeSlotID:    &id,
			BookingTime:   r.Opportunity.Date,
			Hours:         r.Opportunity.Hours,
			Status:        string(domain.InitialStatus()),
		}, nil
	})
}

func (f *pgFixture) reserveFlat(oppID, userID uint) (*models.Booking, error) {
	return f.bookings.ReserveFlat(context.Background(), oppID, func(r domain.Reservation) (*models.Booking, error) {
		if r.Confirmed >= r.Opportunity.SpotsAvailable {
			return nil, domain.ErrCapacityExceeded
		}
		ref, err := ids.BookingReference()
		if err != nil {
			return nil, err
		}
		return &models.Booking{
			Reference:     ref,
			UserID:        userID,
			OpportunityID: r.Opportunity.ID,
			BookingTime:   r.Opportunity.Date,
			Hours:         r.Opportunity.Hours,
			Status:        string(domain.InitialStatus()),
		}, nil
	})
}

func TestReserveSlotSerializesUnderRowLock(t *testing.T) {
	f := newPGFixture(t)
	slotID := f.opportunity(t, 0, 1).TimeSlots[0].ID

	const n = 8
	users := make([]uint, n)
	for i := range users {
		users[i] = f.user(t, fmt.Sprintf("v%d", i))
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
	)
	for _, uid := range users {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			_, err := f.reserve(slotID, uid)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrCapacityExceeded):
				full++
			default:
				t.Errorf("reserve: %v", err)
			}
		}(uid)
	}
	wg.Wait()

	if ok != 1 || full != n-1 {
		t.Fatalf("ok=%d full=%d, want 1 and %d", ok, full, n-1)
	}

	counts, err := f.bookings.CountConfirmedBySlot(context.Background(), []uint{slotID})
	if err != nil {
		t.Fatalf("CountConfirmedBySlot: %v", err)
	}
	if counts[slotID] != 1 {
		t.Fatalf("confirmed = %d, want 1", counts[slotID])
	}
}

func TestCancelTransitionFreesTheSeat(t *testing.T) {
	f := newPGFixture(t)
	slotID := f.opportunity(t, 0, 1).TimeSlots[0].ID

	b, err := f.reserve(slotID, f.user(t, "ana"))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := f.reserve(slotID, f.user(t, "bob")); !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("second reserve: got %v, want capacity_exceeded", err)
	}

	changed, err := f.bookings.TransitionBooking(context.Background(), b.ID, domain.StatusConfirmed, domain.StatusCancelled, time.Now())
	if err != nil || !changed {
		t.Fatalf("cancel: changed=%v err=%v", changed, err)
	}

	stored, err := f.bookings.GetBooking(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if stored.Status != string(domain.StatusCancelled) || stored.CancelledAt == nil {
		t.Fatalf("unexpected booking %+v", stored)
	}

	if _, err := f.reserve(slotID, f.user(t, "cleo")); err != nil {
		t.Fatalf("reserve after cancel: %v", err)
	}
}

func TestTransitionAppliesOnce(t *testing.T) {
	f := newPGFixture(t)
	slotID := f.opportunity(t, 0, 2).TimeSlots[0].ID

	b, err := f.reserve(slotID, f.user(t, "ana"))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	at := time.Now()
	changed, err := f.bookings.TransitionBooking(context.Background(), b.ID, domain.StatusConfirmed, domain.StatusCompleted, at)
	if err != nil || !changed {
		t.Fatalf("first complete: changed=%v err=%v", changed, err)
	}

	changed, err = f.bookings.TransitionBooking(context.Background(), b.ID, domain.StatusConfirmed, domain.StatusCompleted, at)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if changed {
		t.Fatal("second complete reported a change")
	}

	if _, err := f.bookings.TransitionBooking(context.Background(), 1<<30, domain.StatusConfirmed, domain.StatusCompleted, at); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("missing booking: got %v, want booking_not_found", err)
	}
}

func TestCountsMapByReference(t *testing.T) {
	f := newPGFixture(t)

	slotted := f.opportunity(t, 0, 3, 3)
	first, second := slotted.TimeSlots[0].ID, slotted.TimeSlots[1].ID
	flat := f.opportunity(t, 5)

	for i := 0; i < 2; i++ {
		if _, err := f.reserve(first, f.user(t, fmt.Sprintf("s%d", i))); err != nil {
			t.Fatalf("reserve slot: %v", err)
		}
	}
	if _, err := f.reserve(second, f.user(t, "s9")); err != nil {
		t.Fatalf("reserve slot: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := f.reserveFlat(flat.ID, f.user(t, fmt.Sprintf("f%d", i))); err != nil {
			t.Fatalf("reserve flat: %v", err)
		}
	}

	bySlot, err := f.bookings.CountConfirmedBySlot(context.Background(), []uint{first, second, 1 << 30})
	if err != nil {
		t.Fatalf("CountConfirmedBySlot: %v", err)
	}
	if bySlot[first] != 2 || bySlot[second] != 1 || bySlot[1<<30] != 0 {
		t.Fatalf("by slot = %v", bySlot)
	}

	byOpp, err := f.bookings.CountConfirmedFlat(context.Background(), []uint{flat.ID})
	if err != nil {
		t.Fatalf("CountConfirmedFlat: %v", err)
	}
	if byOpp[flat.ID] != 3 {
		t.Fatalf("flat = %v", byOpp)
	}
}

func TestBookingStatsFilters(t *testing.T) {
	f := newPGFixture(t)
	slotID := f.opportunity(t, 0, 10).TimeSlots[0].ID
	since := time.Now().Add(-time.Minute)

	before, err := f.bookings.BookingStats(context.Background(), since)
	if err != nil {
		t.Fatalf("BookingStats: %v", err)
	}

	var made []*models.Booking
	for i := 0; i < 3; i++ {
		b, err := f.reserve(slotID, f.user(t, fmt.Sprintf("st%d", i)))
		if err != nil {
			t.Fatalf("reserve: %v", err)
		}
		made = append(made, b)
	}

	now := time.Now()
	if _, err := f.bookings.TransitionBooking(context.Background(), made[0].ID, domain.StatusConfirmed, domain.StatusCompleted, now); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.bookings.TransitionBooking(context.Background(), made[1].ID, domain.StatusConfirmed, domain.StatusCancelled, now); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	after, err := f.bookings.BookingStats(context.Background(), since)
	if err != nil {
		t.Fatalf("BookingStats: %v", err)
	}

	if d := after.Total - before.Total; d != 3 {
		t.Fatalf("total grew by %d, want 3", d)
	}
	if d := after.Confirmed - before.Confirmed; d != 1 {
		t.Fatalf("confirmed grew by %d, want 1", d)
	}
	if d := after.CompletedHours - before.CompletedHours; d != 3 {
		t.Fatalf("completed hours grew by %d, want 3", d)
	}
	if d := after.CompletedHoursFrom - before.CompletedHoursFrom; d != 3 {
		t.Fatalf("recent completed hours grew by %d, want 3", d)
	}
}

func TestClosedSlotPersists(t *testing.T) {
	f := newPGFixture(t)
	opp := f.opportunity(t, 0, 4)
	slotID := opp.TimeSlots[0].ID

	if err := f.catalog.SetSlotAvailability(context.Background(), slotID, false); err != nil {
		t.Fatalf("SetSlotAvailability: %v", err)
	}
	if _, err := f.reserve(slotID, f.user(t, "ana")); !errors.Is(err, domain.ErrSlotUnavailable) {
		t.Fatalf("reserve closed slot: got %v, want slot_unavailable", err)
	}
	if err := f.catalog.SetSlotAvailability(context.Background(), 1<<30, false); !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("missing slot: got %v", err)
	}

	if err := f.catalog.SetOpportunityActive(context.Background(), opp.ID, false); err != nil {
		t.Fatalf("SetOpportunityActive: %v", err)
	}
	stored, err := f.catalog.GetOpportunity(context.Background(), opp.ID)
	if err != nil {
		t.Fatalf("GetOpportunity: %v", err)
	}
	if stored.IsActive {
		t.Fatal("opportunity still active")
	}
}
