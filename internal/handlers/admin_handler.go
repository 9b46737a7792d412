package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/usecase/admin"
)

type AdminHandler struct {
	stats *admin.DashboardStats
	log   zerolog.Logger
}

func NewAdminHandler(stats *admin.DashboardStats, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{stats: stats, log: log}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	s, err := h.stats.Execute(c.Request.Context(), actorOf(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	httpresp.OK(c, s)
}
