package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/usecase/account"
	bookinguc "github.com/BruksfildServices01/volunteer-scheduler/internal/usecase/booking"
)

type MeHandler struct {
	accounts  *account.Accounts
	dashboard *bookinguc.VolunteerDashboard
	log       zerolog.Logger
}

func NewMeHandler(
	accounts *account.Accounts,
	dashboard *bookinguc.VolunteerDashboard,
	log zerolog.Logger,
) *MeHandler {
	return &MeHandler{
		accounts:  accounts,
		dashboard: dashboard,
		log:       log,
	}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	user, err := h.accounts.Me(c.Request.Context(), actorOf(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, gin.H{
		"user":         user,
		"organization": user.Organization,
	})
}

// Bookings is the volunteer dashboard: upcoming and past bookings grouped
// by opportunity, completed history and credited hours.
func (h *MeHandler) Bookings(c *gin.Context) {
	d, err := h.dashboard.Execute(c.Request.Context(), actorOf(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	httpresp.OK(c, d)
}
