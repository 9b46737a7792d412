package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
	usecase "github.com/BruksfildServices01/volunteer-scheduler/internal/usecase/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	create     *usecase.CreateBooking
	createFlat *usecase.CreateFlatBooking
	cancel     *usecase.CancelBooking
	complete   *usecase.CompleteBooking
	noShow     *usecase.MarkNoShow
	list       *usecase.ListBookings
	log        zerolog.Logger
}

func NewBookingHandler(
	create *usecase.CreateBooking,
	createFlat *usecase.CreateFlatBooking,
	cancel *usecase.CancelBooking,
	complete *usecase.CompleteBooking,
	noShow *usecase.MarkNoShow,
	list *usecase.ListBookings,
	log zerolog.Logger,
) *BookingHandler {
	return &BookingHandler{
		create:     create,
		createFlat: createFlat,
		cancel:     cancel,
		complete:   complete,
		noShow:     noShow,
		list:       list,
		log:        log,
	}
}

// ======================================================
// REQUESTS / RESPONSES
// ======================================================

type BookingDetails struct {
	Notes            string `json:"notes" binding:"max=2000"`
	EmergencyContact string `json:"emergency_contact" binding:"max=100"`
	EmergencyPhone   string `json:"emergency_phone" binding:"max=20"`
}

type CreateBookingRequest struct {
	TimeSlotID uint `json:"time_slot_id" binding:"required"`
	BookingDetails
}

type CreateBookingResponse struct {
	BookingID uint   `json:"booking_id"`
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

func createdResponse(res *usecase.CreateBookingResult) CreateBookingResponse {
	return CreateBookingResponse{
		BookingID: res.Booking.ID,
		Reference: res.Booking.Reference,
		Message:   res.Message,
	}
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", validators.Message(err))
		return
	}

	res, err := h.create.Execute(c.Request.Context(), usecase.CreateBookingInput{
		SlotID:           req.TimeSlotID,
		Actor:            actorOf(c),
		Notes:            req.Notes,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, createdResponse(res))
}

// CreateFlat books an opportunity that has no time slots.
func (h *BookingHandler) CreateFlat(c *gin.Context) {
	oppID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req BookingDetails
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "invalid_request", validators.Message(err))
			return
		}
	}

	res, err := h.createFlat.Execute(c.Request.Context(), usecase.CreateFlatBookingInput{
		OpportunityID:    oppID,
		Actor:            actorOf(c),
		Notes:            req.Notes,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, createdResponse(res))
}

// ======================================================
// STATUS CHANGES
// ======================================================

// Cancel serves both the owner route and the admin route; the use case
// decides who may cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cancel.Execute, "Booking cancelled.")
}

func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.complete.Execute, "Booking marked as completed.")
}

func (h *BookingHandler) NoShow(c *gin.Context) {
	h.transition(c, h.noShow.Execute, "Booking marked as no-show.")
}

type transitionFunc = func(ctx context.Context, bookingID uint, actor identity.Actor) (*models.Booking, error)

func (h *BookingHandler) transition(c *gin.Context, run transitionFunc, message string) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	b, err := run(c.Request.Context(), id, actorOf(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, gin.H{
		"booking_id": b.ID,
		"status":     b.Status,
		"message":    message,
	})
}

// ======================================================
// LISTING
// ======================================================

func (h *BookingHandler) AdminList(c *gin.Context) {
	p := paginate(c)

	res, err := h.list.All(c.Request.Context(), actorOf(c), domain.Filter{
		Status:        c.Query("status"),
		OpportunityID: queryID(c, "opportunity_id"),
		UserID:        queryID(c, "user_id"),
		Limit:         p.Limit,
		Offset:        p.Offset,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Page(c, res.Bookings, res.Total, p.Page, p.Limit)
}

// OrganizationList is the roster of one opportunity for the organization
// running it.
func (h *BookingHandler) OrganizationList(c *gin.Context) {
	oppID, ok := pathID(c, "id")
	if !ok {
		return
	}
	p := paginate(c)

	res, err := h.list.ForOpportunity(c.Request.Context(), actorOf(c), oppID, domain.Filter{
		Status: c.Query("status"),
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Page(c, res.Bookings, res.Total, p.Page, p.Limit)
}
