package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/middleware"
)

type errorMapping struct {
	status  int
	message string
}

var businessErrors = map[string]errorMapping{
	// not found
	"slot_not_found":         {http.StatusNotFound, "Time slot not found."},
	"opportunity_not_found":  {http.StatusNotFound, "Opportunity not found."},
	"booking_not_found":      {http.StatusNotFound, "Booking not found."},
	"user_not_found":         {http.StatusNotFound, "User not found."},
	"organization_not_found": {http.StatusNotFound, "Organization not found."},

	// conflicts
	"capacity_exceeded":       {http.StatusConflict, "Sorry, this time slot is full."},
	"slot_unavailable":        {http.StatusConflict, "This time slot is no longer available."},
	"opportunity_unavailable": {http.StatusConflict, "This opportunity is no longer accepting volunteers."},
	"invalid_state":           {http.StatusConflict, "The booking cannot change from its current status."},
	"already_exists":          {http.StatusConflict, "An account with these details already exists."},

	// permissions
	"unauthorized":        {http.StatusForbidden, "You are not allowed to do this."},
	"forbidden_role":      {http.StatusForbidden, "Your role cannot perform this action."},
	"account_disabled":    {http.StatusForbidden, "This account is disabled."},
	"invalid_credentials": {http.StatusUnauthorized, "Invalid email or password."},

	// input
	"slot_required":             {http.StatusBadRequest, "This opportunity is booked by time slot."},
	"invalid_time_slots":        {http.StatusBadRequest, "Every time slot needs a valid time and at least one spot."},
	"invalid_capacity":          {http.StatusBadRequest, "An opportunity without time slots needs at least one spot."},
	"invalid_clock_label":       {http.StatusBadRequest, "Times must look like 9:00 AM."},
	"invalid_image":             {http.StatusBadRequest, "Upload a JPEG, PNG or WebP image."},
	"invalid_organization_name": {http.StatusBadRequest, "Organization name is invalid."},
}

// writeError is the single translation point from use case errors to HTTP.
func writeError(c *gin.Context, log zerolog.Logger, err error) {
	if code, ok := httperr.CodeOf(err); ok {
		mapped, known := businessErrors[code]
		if !known {
			mapped = errorMapping{http.StatusBadRequest, "Request could not be completed."}
		}
		httperr.Write(c, mapped.status, code, mapped.message)
		return
	}

	log.Error().
		Err(err).
		Str("request_id", c.GetString(middleware.ContextRequestID)).
		Str("route", c.FullPath()).
		Msg("request failed")

	httperr.Internal(c, "internal_error", "Something went wrong.")
}
