package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "github.com/BruksfildServices01/volunteer-scheduler/internal/domain/opportunity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/imaging"
	bookinguc "github.com/BruksfildServices01/volunteer-scheduler/internal/usecase/booking"
	usecase "github.com/BruksfildServices01/volunteer-scheduler/internal/usecase/opportunity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type OpportunityHandler struct {
	browse       *usecase.Browse
	create       *usecase.CreateOpportunity
	upload       *usecase.UploadImage // nil when no bucket is configured
	activate     *usecase.SetOpportunityActive
	availability *usecase.SetSlotAvailability
	capacity     *bookinguc.Capacity
	log          zerolog.Logger
}

func NewOpportunityHandler(
	browse *usecase.Browse,
	create *usecase.CreateOpportunity,
	upload *usecase.UploadImage,
	activate *usecase.SetOpportunityActive,
	availability *usecase.SetSlotAvailability,
	capacity *bookinguc.Capacity,
	log zerolog.Logger,
) *OpportunityHandler {
	return &OpportunityHandler{
		browse:       browse,
		create:       create,
		upload:       upload,
		activate:     activate,
		availability: availability,
		capacity:     capacity,
		log:          log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type TimeSlotRequest struct {
	StartTime      string `json:"start_time" binding:"required,clocklabel"`
	EndTime        string `json:"end_time" binding:"omitempty,clocklabel"`
	SpotsAvailable int    `json:"spots_available" binding:"required,min=1"`
}

type CreateOpportunityRequest struct {
	OrganizationID uint `json:"organization_id"`

	Title          string `json:"title" binding:"required,max=200"`
	Description    string `json:"description" binding:"required"`
	Category       string `json:"category" binding:"max=50"`
	Date           string `json:"date" binding:"required,datetime=2006-01-02"`
	Hours          int    `json:"hours" binding:"min=0,max=24"`
	SpotsAvailable int    `json:"spots_available" binding:"min=0"`

	Address   string   `json:"address" binding:"max=200"`
	City      string   `json:"city" binding:"max=100"`
	State     string   `json:"state" binding:"max=2"`
	ZipCode   string   `json:"zip_code" binding:"max=10"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" binding:"omitempty,longitude"`

	Requirements string `json:"requirements"`
	WhatToBring  string `json:"what_to_bring"`
	IsUrgent     bool   `json:"is_urgent"`

	TimeSlots []TimeSlotRequest `json:"time_slots" binding:"dive"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type SetAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// ======================================================
// CATALOG
// ======================================================

func (h *OpportunityHandler) Search(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	p := paginate(c)

	list, err := h.browse.Search(c.Request.Context(), domain.Filter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Date:     date,
		Limit:    p.Limit,
		Offset:   p.Offset,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.List(c, list)
}

func (h *OpportunityHandler) Map(c *gin.Context) {
	points, err := h.browse.Map(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	httpresp.List(c, points)
}

func (h *OpportunityHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	d, err := h.browse.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	httpresp.OK(c, d)
}

// ======================================================
// CAPACITY
// ======================================================

func (h *OpportunityHandler) Slots(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	slots, err := h.capacity.ListSlots(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	httpresp.List(c, slots)
}

func (h *OpportunityHandler) Capacity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	out, err := h.capacity.ForOpportunity(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	httpresp.OK(c, out)
}

func (h *OpportunityHandler) SlotCapacity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	out, err := h.capacity.ForSlot(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	httpresp.OK(c, out)
}

// ======================================================
// ORGANIZATION
// ======================================================

func (h *OpportunityHandler) Create(c *gin.Context) {
	var req CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", validators.Message(err))
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "date must look like 2006-01-02.")
		return
	}

	in := usecase.CreateOpportunityInput{
		Actor:          actorOf(c),
		OrganizationID: req.OrganizationID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Date:           date,
		Hours:          req.Hours,
		SpotsAvailable: req.SpotsAvailable,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Requirements:   req.Requirements,
		WhatToBring:    req.WhatToBring,
		IsUrgent:       req.IsUrgent,
	}
	for _, s := range req.TimeSlots {
		in.Slots = append(in.Slots, usecase.SlotInput{
			StartTime:      s.StartTime,
			EndTime:        s.EndTime,
			SpotsAvailable: s.SpotsAvailable,
		})
	}

	opp, err := h.create.Execute(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, opp)
}

func (h *OpportunityHandler) UploadImage(c *gin.Context) {
	if h.upload == nil {
		httperr.Write(c, http.StatusServiceUnavailable, "image_upload_disabled", "Image storage is not configured.")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, imaging.MaxUploadBytes)

	fh, err := c.FormFile("image")
	if err != nil {
		httperr.BadRequest(c, "missing_image", "Send the file in the image form field.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "Upload could not be read.")
		return
	}
	defer f.Close()

	url, err := h.upload.Execute(c.Request.Context(), actorOf(c), id, f)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, gin.H{"image_url": url})
}

func (h *OpportunityHandler) SetActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", validators.Message(err))
		return
	}

	opp, err := h.activate.Execute(c.Request.Context(), actorOf(c), id, *req.IsActive)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	httpresp.OK(c, opp)
}

func (h *OpportunityHandler) SetSlotAvailability(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", validators.Message(err))
		return
	}

	slot, err := h.availability.Execute(c.Request.Context(), actorOf(c), id, *req.IsAvailable)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	httpresp.OK(c, slot)
}
