package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tutortrack/scheduling-analytics-api/internal/middleware"
	"github.com/tutortrack/scheduling-analytics-api/internal/service"
	appErrors "github.com/tutortrack/scheduling-analytics-api/pkg/errors"
	"github.com/tutortrack/scheduling-analytics-api/pkg/response"
)

// DashboardHandler serves the composed dashboard overview.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs the dashboard handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Overview godoc
// @Summary Dashboard overview
// @Description Return the KPI summary plus the headline charts in one payload
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	if h.dashboard == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	spec, err := parseFilterSpec(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	overview, cacheHit, err := h.dashboard.Overview(c.Request.Context(), spec)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, overview, meta)
}
