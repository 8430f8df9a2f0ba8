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

// AnalyticsHandler exposes dashboard-ready analytics endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Aggregate godoc
// @Summary Run a named aggregation
// @Description Run a named aggregation over the filtered appointment dataset
// @Tags Analytics
// @Produce json
// @Param name path string true "Aggregation name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /analytics/aggregations/{name} [get]
func (h *AnalyticsHandler) Aggregate(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	spec, err := parseFilterSpec(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	result, cacheHit, err := h.analytics.Aggregate(c.Request.Context(), c.Param("name"), spec)
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
	response.JSON(c, http.StatusOK, result, meta)
}

// Names godoc
// @Summary List aggregations
// @Description List the registered aggregation names
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/aggregations [get]
func (h *AnalyticsHandler) Names(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"aggregations": h.analytics.Names()})
}

// Summary godoc
// @Summary Dataset KPI summary
// @Description Compute the KPI block over the filtered dataset
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	spec, err := parseFilterSpec(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.analytics.Summary(c.Request.Context(), spec)
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
	response.JSON(c, http.StatusOK, summary, meta)
}

// System godoc
// @Summary Instrumentation snapshot
// @Description Return cache, request and dataset load statistics
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	metrics := h.analytics.SystemMetrics()
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	if loadedAt := h.analytics.DatasetLoadedAt(); !loadedAt.IsZero() {
		meta["dataset_loaded_at"] = loadedAt.UTC()
	}
	response.JSON(c, http.StatusOK, metrics, meta)
}

// Reload godoc
// @Summary Reload the dataset
// @Description Rebuild the dataset snapshot and drop derived caches
// @Tags Datasets
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /datasets/reload [post]
func (h *AnalyticsHandler) Reload(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	if err := h.analytics.Reload(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"reloaded_at":        h.analytics.DatasetLoadedAt().UTC(),
		"processing_time_ms": time.Since(start).Milliseconds(),
	})
}
