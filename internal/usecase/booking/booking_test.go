package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

// ======================================================
// FIXTURE
// ======================================================

type fixture struct {
	store *memory.Store
	audit *audit.Dispatcher

	create     *CreateBooking
	createFlat *CreateFlatBooking
	cancel     *CancelBooking
	complete   *CompleteBooking
	noShow     *MarkNoShow
	capacity   *Capacity
	dashboard  *VolunteerDashboard

	org   models.Organization
	owner identity.Actor
	admin identity.Actor
}

var eventDate = time.Date(2030, time.January, 15, 0, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	d := audit.NewDispatcher(audit.New(store), zerolog.Nop())
	t.Cleanup(func() { _ = d.Close(context.Background()) })

	log := zerolog.Nop()
	f := &fixture{
		store:      store,
		audit:      d,
		create:     NewCreateBooking(store, d, log),
		createFlat: NewCreateFlatBooking(store, d, log),
		cancel:     NewCancelBooking(store, d, log),
		complete:   NewCompleteBooking(store, d, log),
		noShow:     NewMarkNoShow(store, d, log),
		capacity:   NewCapacity(store, store),
		dashboard:  NewVolunteerDashboard(store),
	}

	f.org = models.Organization{Name: "Harbor Food Bank", Slug: "harbor-food-bank", Timezone: "UTC"}
	owner := models.User{Email: "org@example.com", Username: "harbor", Role: string(identity.RoleOrganization), IsActive: true}
	if err := store.CreateOrganizationWithOwner(context.Background(), &f.org, &owner); err != nil {
		t.Fatalf("seed organization: %v", err)
	}
	f.owner = identity.Actor{UserID: owner.ID, Role: identity.RoleOrganization, OrganizationID: owner.OrganizationID}

	admin := models.User{Email: "admin@example.com", Username: "admin", Role: string(identity.RoleAdmin), IsActive: true}
	if err := store.CreateUser(context.Background(), &admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	f.admin = identity.Actor{UserID: admin.ID, Role: identity.RoleAdmin}

	return f
}

func (f *fixture) volunteer(t *testing.T, name string) identity.Actor {
	t.Helper()

	u := models.User{
		Email:    name + "@example.com",
		Username: name,
		Role:     string(identity.RoleVolunteer),
		IsActive: true,
	}
	if err := f.store.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("seed volunteer: %v", err)
	}
	return identity.Actor{UserID: u.ID, Role: identity.RoleVolunteer}
}

func (f *fixture) opportunity(t *testing.T, date time.Time, slots ...models.TimeSlot) models.Opportunity {
	t.Helper()

	opp := models.Opportunity{
		OrganizationID: f.org.ID,
		Title:          "Pantry shift",
		Description:    "Sort and pack donations",
		Category:       "Food Security",
		Date:           date,
		Hours:          3,
		SpotsAvailable: 2,
		IsActive:       true,
		TimeSlots:      slots,
	}
	if err := f.store.CreateOpportunity(context.Background(), &opp); err != nil {
		t.Fatalf("seed opportunity: %v", err)
	}
	return opp
}

func slot(label string, spots int) models.TimeSlot {
	return models.TimeSlot{StartTime: label, SpotsAvailable: spots, IsAvailable: true}
}

func (f *fixture) book(t *testing.T, actor identity.Actor, slotID uint) *models.Booking {
	t.Helper()

	res, err := f.create.Execute(context.Background(), CreateBookingInput{SlotID: slotID, Actor: actor})
	if err != nil {
		t.Fatalf("book slot %d: %v", slotID, err)
	}
	return res.Booking
}

func (f *fixture) remaining(t *testing.T, slotID uint) int {
	t.Helper()

	v, err := f.capacity.ForSlot(context.Background(), slotID)
	if err != nil {
		t.Fatalf("ForSlot: %v", err)
	}
	return v.Remaining
}

// ======================================================
// CREATE
// ======================================================

func TestOverbookAttemptIsRejected(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate, slot("9:00 AM", 1))
	slotID := opp.TimeSlots[0].ID
	a, b := f.volunteer(t, "alice"), f.volunteer(t, "bob")

	res, err := f.create.Execute(context.Background(), CreateBookingInput{SlotID: slotID, Actor: a})
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if res.Booking.ID == 0 {
		t.Fatal("expected a booking id")
	}
	if res.Message != "Booking confirmed for 9:00 AM!" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if got := f.remaining(t, slotID); got != 0 {
		t.Fatalf("remaining after first booking = %d, want 0", got)
	}

	_, err = f.create.Execute(context.Background(), CreateBookingInput{SlotID: slotID, Actor: b})
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("second booking: got %v, want capacity_exceeded", err)
	}
	if got := f.remaining(t, slotID); got != 0 {
		t.Fatalf("remaining after rejected booking = %d, want 0", got)
	}
}

func TestCreateBookingFields(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate, slot("2:30 PM", 4))
	a := f.volunteer(t, "alice")

	res, err := f.create.Execute(context.Background(), CreateBookingInput{
		SlotID:           opp.TimeSlots[0].ID,
		Actor:            a,
		Notes:            "bringing gloves",
		EmergencyContact: "Sam",
		EmergencyPhone:   "555-0100",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	b := res.Booking
	if b.Status != string(domain.StatusConfirmed) {
		t.Fatalf("status = %q, want confirmed", b.Status)
	}
	if b.Hours != opp.Hours {
		t.Fatalf("hours = %d, want %d from the opportunity", b.Hours, opp.Hours)
	}
	want := time.Date(2030, time.January, 15, 14, 30, 0, 0, time.UTC)
	if !b.BookingTime.Equal(want) {
		t.Fatalf("booking_time = %v, want %v", b.BookingTime, want)
	}
	if b.Reference == "" || b.Notes != "bringing gloves" || b.EmergencyPhone != "555-0100" {
		t.Fatalf("unexpected booking %+v", b)
	}
}

func TestCreateBookingPreconditionOrder(t *testing.T) {
	f := newFixture(t)
	a := f.volunteer(t, "alice")

	full := slot("9:00 AM", 0)
	full.IsAvailable = false
	closed := slot("10:00 AM", 5)
	closed.IsAvailable = false
	opp := f.opportunity(t, eventDate, full, closed)

	cases := []struct {
		name   string
		slotID uint
		want   error
	}{
		{"missing slot", 9999, domain.ErrSlotNotFound},
		{"full wins over unavailable", opp.TimeSlots[0].ID, domain.ErrCapacityExceeded},
		{"unavailable with seats", opp.TimeSlots[1].ID, domain.ErrSlotUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.create.Execute(context.Background(), CreateBookingInput{SlotID: tc.slotID, Actor: a})
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	all, total, _ := f.store.ListBookings(context.Background(), domain.Filter{})
	if total != 0 || len(all) != 0 {
		t.Fatalf("failed attempts must not insert, found %d bookings", total)
	}
}

func TestCreateBookingRequiresActor(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate, slot("9:00 AM", 1))

	_, err := f.create.Execute(context.Background(), CreateBookingInput{SlotID: opp.TimeSlots[0].ID})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("got %v, want unauthorized", err)
	}
}

func TestMissingTargetIsReportedBeforeActor(t *testing.T) {
	f := newFixture(t)

	_, err := f.create.Execute(context.Background(), CreateBookingInput{SlotID: 9999})
	if !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("slot: got %v, want slot not found", err)
	}

	_, err = f.createFlat.Execute(context.Background(), CreateFlatBookingInput{OpportunityID: 9999})
	if !errors.Is(err, domain.ErrOpportunityNotFound) {
		t.Fatalf("flat: got %v, want opportunity not found", err)
	}
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	for _, capacity := range []int{1, 5} {
		t.Run(fmt.Sprintf("capacity %d", capacity), func(t *testing.T) {
			f := newFixture(t)
			opp := f.opportunity(t, eventDate, slot("9:00 AM", capacity))
			slotID := opp.TimeSlots[0].ID

			const n = 40
			actors := make([]identity.Actor, n)
			for i := range actors {
				actors[i] = f.volunteer(t, fmt.Sprintf("v%d", i))
			}

			var (
				wg       sync.WaitGroup
				mu       sync.Mutex
				ok       int
				rejected int
				other    []error
			)

			start := make(chan struct{})
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(actor identity.Actor) {
					defer wg.Done()
					<-start

					_, err := f.create.Execute(context.Background(), CreateBookingInput{SlotID: slotID, Actor: actor})

					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						ok++
					case errors.Is(err, domain.ErrCapacityExceeded):
						rejected++
					default:
						other = append(other, err)
					}
				}(actors[i])
			}
			close(start)
			wg.Wait()

			if len(other) > 0 {
				t.Fatalf("unexpected errors: %v", other)
			}
			if ok != capacity || rejected != n-capacity {
				t.Fatalf("got %d successes and %d rejections, want %d and %d", ok, rejected, capacity, n-capacity)
			}
			if got := f.remaining(t, slotID); got != 0 {
				t.Fatalf("remaining = %d, want 0", got)
			}

			v, _ := f.capacity.ForSlot(context.Background(), slotID)
			if v.RawRemaining != 0 {
				t.Fatalf("raw remaining = %d, slot was oversold", v.RawRemaining)
			}
		})
	}
}

// ======================================================
// CANCEL
// ======================================================

func TestCancelReleasesSeat(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate, slot("9:00 AM", 1))
	slotID := opp.TimeSlots[0].ID
	a := f.volunteer(t, "alice")

	b := f.book(t, a, slotID)
	before := f.remaining(t, slotID)

	got, err := f.cancel.Execute(context.Background(), b.ID, a)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != string(domain.StatusCancelled) || got.CancelledAt == nil {
		t.Fatalf("unexpected booking after cancel %+v", got)
	}
	if got.CompletedAt != nil {
		t.Fatal("cancel must not touch completed_at")
	}

	if after := f.remaining(t, slotID); after != before+1 {
		t.Fatalf("remaining went %d -> %d, want +1", before, after)
	}

	// the freed seat can be booked again
	f.book(t, f.volunteer(t, "bob"), slotID)
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate, slot("9:00 AM", 2))
	a := f.volunteer(t, "alice")
	b := f.book(t, a, opp.TimeSlots[0].ID)

	first, err := f.cancel.Execute(context.Background(), b.ID, a)
	if err != nil {
		t.Fatalf("first cancel: %v", err)
	}

	second, err := f.cancel.Execute(context.Background(), b.ID, a)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if second.Status != string(domain.StatusCancelled) {
		t.Fatalf("status = %q", second.Status)
	}
	if !second.CancelledAt.Equal(*first.CancelledAt) {
		t.Fatal("second cancel must not rewrite cancelled_at")
	}
}

func TestCancelByAnotherUserIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate, slot("9:00 AM", 2))
	a, b := f.volunteer(t, "alice"), f.volunteer(t, "bob")
	booking := f.book(t, a, opp.TimeSlots[0].ID)

	_, err := f.cancel.Execute(context.Background(), booking.ID, b)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("got %v, want unauthorized", err)
	}

	stored, _ := f.store.GetBooking(context.Background(), booking.ID)
	if stored.Status != string(domain.StatusConfirmed) {
		t.Fatalf("status = %q, want confirmed", stored.Status)
	}
}

func TestAdminCanCancelAnyBooking(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate, slot("9:00 AM", 2))
	a := f.volunteer(t, "alice")
	b := f.book(t, a, opp.TimeSlots[0].ID)

	got, err := f.cancel.Execute(context.Background(), b.ID, f.admin)
	if err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	if got.Status != string(domain.StatusCancelled) {
		t.Fatalf("status = %q", got.Status)
	}
}

func TestCancelMissingBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.cancel.Execute(context.Background(), 404, f.admin)
	if !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("got %v, want booking_not_found", err)
	}
}

func TestCancelCompletedBookingIsInvalidState(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate, slot("9:00 AM", 2))
	a := f.volunteer(t, "alice")
	b := f.book(t, a, opp.TimeSlots[0].ID)

	if _, err := f.complete.Execute(context.Background(), b.ID, f.admin); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err := f.cancel.Execute(context.Background(), b.ID, a)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("got %v, want invalid_state", err)
	}

	stored, _ := f.store.GetBooking(context.Background(), b.ID)
	if stored.Status != string(domain.StatusCompleted) {
		t.Fatalf("status = %q, want completed", stored.Status)
	}
}

// ======================================================
// COMPLETE / NO-SHOW
// ======================================================

func TestCompleteCreditsHoursOnce(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate, slot("9:00 AM", 2))
	a := f.volunteer(t, "alice")
	b := f.book(t, a, opp.TimeSlots[0].ID)

	got, err := f.complete.Execute(context.Background(), b.ID, f.admin)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.CompletedAt == nil {
		t.Fatal("expected completed_at")
	}

	_, err = f.complete.Execute(context.Background(), b.ID, f.admin)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("second complete: got %v, want invalid_state", err)
	}

	hours, _ := f.store.SumCompletedHours(context.Background(), a.UserID)
	if hours != opp.Hours {
		t.Fatalf("credited hours = %d, want %d", hours, opp.Hours)
	}
}

func TestNoShowPermissions(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate, slot("9:00 AM", 3))
	slotID := opp.TimeSlots[0].ID
	a := f.volunteer(t, "alice")
	b := f.book(t, a, slotID)

	if _, err := f.noShow.Execute(context.Background(), b.ID, a); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("volunteer no-show: got %v, want unauthorized", err)
	}

	other := f.org.ID + 100
	stranger := identity.Actor{UserID: 999, Role: identity.RoleOrganization, OrganizationID: &other}
	if _, err := f.noShow.Execute(context.Background(), b.ID, stranger); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("foreign organization no-show: got %v, want unauthorized", err)
	}

	before := f.remaining(t, slotID)
	got, err := f.noShow.Execute(context.Background(), b.ID, f.owner)
	if err != nil {
		t.Fatalf("owner no-show: %v", err)
	}
	if got.Status != string(domain.StatusNoShow) {
		t.Fatalf("status = %q", got.Status)
	}
	if after := f.remaining(t, slotID); after != before+1 {
		t.Fatalf("no-show must release the seat: %d -> %d", before, after)
	}
}

// ======================================================
// CAPACITY READS
// ======================================================

func TestOpportunityCapacityAggregation(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate,
		slot("9:00 AM", 15),
		slot("11:00 AM", 10),
		slot("1:00 PM", 10),
	)

	c, err := f.capacity.ForOpportunity(context.Background(), opp.ID)
	if err != nil {
		t.Fatalf("ForOpportunity: %v", err)
	}
	if c.Remaining != 35 || c.IsFull || c.Model != domain.ModelSlotted {
		t.Fatalf("empty opportunity: %+v", c.Summary)
	}

	for i := 0; i < 15; i++ {
		f.book(t, f.volunteer(t, fmt.Sprintf("v%d", i)), opp.TimeSlots[0].ID)
	}

	c, _ = f.capacity.ForOpportunity(context.Background(), opp.ID)
	if c.Remaining != 20 || c.IsFull {
		t.Fatalf("first slot filled: %+v", c.Summary)
	}
	if !c.Slots[0].IsFull || c.Slots[0].StartTime != "9:00 AM" {
		t.Fatalf("first slot view: %+v", c.Slots[0])
	}
}

func TestFlatCapacityFallback(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate)
	a, b, c := f.volunteer(t, "alice"), f.volunteer(t, "bob"), f.volunteer(t, "carol")

	for _, actor := range []identity.Actor{a, b} {
		if _, err := f.createFlat.Execute(context.Background(), CreateFlatBookingInput{OpportunityID: opp.ID, Actor: actor}); err != nil {
			t.Fatalf("flat booking: %v", err)
		}
	}

	_, err := f.createFlat.Execute(context.Background(), CreateFlatBookingInput{OpportunityID: opp.ID, Actor: c})
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("third flat booking: got %v, want capacity_exceeded", err)
	}

	sum, _ := f.capacity.ForOpportunity(context.Background(), opp.ID)
	if sum.Model != domain.ModelFlat || sum.Remaining != 0 || !sum.IsFull {
		t.Fatalf("flat summary: %+v", sum.Summary)
	}
}

func TestFlatBookingRejectsSlottedOpportunity(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate, slot("9:00 AM", 3))

	_, err := f.createFlat.Execute(context.Background(), CreateFlatBookingInput{OpportunityID: opp.ID, Actor: f.volunteer(t, "alice")})
	if !errors.Is(err, domain.ErrSlotRequired) {
		t.Fatalf("got %v, want slot_required", err)
	}
}

func TestListSlotsOrderedByTime(t *testing.T) {
	f := newFixture(t)
	opp := f.opportunity(t, eventDate,
		slot("1:00 PM", 1),
		slot("9:00 AM", 1),
		slot("11:00 AM", 1),
	)

	got, err := f.capacity.ListSlots(context.Background(), opp.ID)
	if err != nil {
		t.Fatalf("ListSlots: %v", err)
	}

	want := []string{"9:00 AM", "11:00 AM", "1:00 PM"}
	for i, v := range got {
		if v.StartTime != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, v.StartTime, want[i])
		}
	}

	if _, err := f.capacity.ListSlots(context.Background(), 404); !errors.Is(err, domain.ErrOpportunityNotFound) {
		t.Fatalf("missing opportunity: got %v", err)
	}
}

// ======================================================
// DASHBOARD
// ======================================================

func TestVolunteerDashboard(t *testing.T) {
	f := newFixture(t)
	a := f.volunteer(t, "alice")

	soon := f.opportunity(t, eventDate, slot("1:00 PM", 2), slot("9:00 AM", 2))
	old := f.opportunity(t, time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC), slot("10:00 AM", 2))

	f.book(t, a, soon.TimeSlots[0].ID)
	f.book(t, a, soon.TimeSlots[1].ID)
	done := f.book(t, a, old.TimeSlots[0].ID)
	if _, err := f.complete.Execute(context.Background(), done.ID, f.admin); err != nil {
		t.Fatalf("complete: %v", err)
	}

	f.dashboard.now = func() time.Time { return time.Date(2029, time.December, 1, 12, 0, 0, 0, time.UTC) }

	d, err := f.dashboard.Execute(context.Background(), a)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if len(d.Upcoming) != 1 || len(d.Upcoming[0].Bookings) != 2 {
		t.Fatalf("upcoming: %+v", d.Upcoming)
	}
	if slots := d.Upcoming[0].TimeSlots; slots[0] != "9:00 AM" || slots[1] != "1:00 PM" {
		t.Fatalf("upcoming slots not ordered: %v", slots)
	}
	if !d.Upcoming[0].Bookings[0].CanCancel {
		t.Fatal("booking weeks ahead must be cancellable")
	}
	if len(d.Past) != 1 || len(d.History) != 1 {
		t.Fatalf("past=%d history=%d, want 1 and 1", len(d.Past), len(d.History))
	}
	if d.TotalHours != old.Hours {
		t.Fatalf("total hours = %d, want %d", d.TotalHours, old.Hours)
	}
}
