package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/audit"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/httpresp"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	store audit.Store
	log   zerolog.Logger
}

func NewAuditLogsHandler(store audit.Store, log zerolog.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{store: store, log: log}
}

// List is always scoped to the caller's organization for organization
// users; admins see everything or filter by organization_id.
func (h *AuditLogsHandler) List(c *gin.Context) {
	actor := actorOf(c)

	var f audit.Filter
	switch {
	case actor.IsAdmin():
		if id := queryID(c, "organization_id"); id != 0 {
			f.OrganizationID = &id
		}
	case actor.OrganizationID != nil:
		orgID := *actor.OrganizationID
		f.OrganizationID = &orgID
	default:
		httperr.Forbidden(c, "unauthorized", "You are not allowed to do this.")
		return
	}

	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	if to != nil {
		// inclusive end of day
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}

	p := paginate(c)
	f.Action = c.Query("action")
	f.Entity = c.Query("entity")
	f.From = from
	f.To = to
	f.Limit = p.Limit
	f.Offset = p.Offset

	logs, total, err := h.store.ListAudit(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Page(c, logs, total, p.Page, p.Limit)
}
