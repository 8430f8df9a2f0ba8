package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
	"github.com/tutortrack/scheduling-analytics-api/internal/service"
)

type stubSource struct {
	dataset *models.RawDataset
}

func (s *stubSource) Load(context.Context) (*models.RawDataset, error) {
	return s.dataset, nil
}

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newAnalyticsHandlerFixture(t *testing.T) *AnalyticsHandler {
	t.Helper()
	raw := &models.RawDataset{
		Appointments: []models.Appointment{{
			ID:        "a1",
			TutorID:   "t1",
			CourseID:  "c1",
			Date:      time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			StartTime: models.ParseClockTime("09:00"),
			EndTime:   models.ParseClockTime("10:30"),
			Status:    "completed",
		}},
	}
	dataset := service.NewDatasetService(&stubSource{dataset: raw}, nil, zap.NewNop())
	require.NoError(t, dataset.Reload(context.Background()))

	analytics := service.NewAnalyticsService(service.AnalyticsServiceParams{
		Dataset: dataset,
		Cache:   service.NewCacheService(nil, nil, time.Minute, zap.NewNop(), false),
		Metrics: service.NewMetricsService(),
		Logger:  zap.NewNop(),
	})
	return NewAnalyticsHandler(analytics)
}

func analyticsRequest(t *testing.T, target, name string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	if name != "" {
		c.Params = gin.Params{{Key: "name", Value: name}}
	}
	return c, rec
}

func TestAnalyticsHandlerAggregate(t *testing.T) {
	handler := newAnalyticsHandlerFixture(t)
	c, rec := analyticsRequest(t, "/analytics/aggregations/appointments_per_tutor", "appointments_per_tutor")

	handler.Aggregate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "appointments_per_tutor", envelope.Data["name"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")
	assert.Equal(t, false, envelope.Meta["cache_hit"])
}

func TestAnalyticsHandlerAggregateUnknownName(t *testing.T) {
	handler := newAnalyticsHandlerFixture(t)
	c, rec := analyticsRequest(t, "/analytics/aggregations/appointments_per_galaxy", "appointments_per_galaxy")

	handler.Aggregate(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "UNKNOWN_AGGREGATION", envelope.Error["code"])
}

func TestAnalyticsHandlerAggregateInvalidFilter(t *testing.T) {
	handler := newAnalyticsHandlerFixture(t)
	c, rec := analyticsRequest(t, "/analytics/aggregations/appointments_per_tutor?duration=bogus", "appointments_per_tutor")

	handler.Aggregate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsHandlerSummary(t *testing.T) {
	handler := newAnalyticsHandlerFixture(t)
	c, rec := analyticsRequest(t, "/analytics/summary", "")

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(1), envelope.Data["total_appointments"])
	assert.InDelta(t, 1.5, envelope.Data["total_hours"].(float64), 1e-9)
}

func TestAnalyticsHandlerNames(t *testing.T) {
	handler := newAnalyticsHandlerFixture(t)
	c, rec := analyticsRequest(t, "/analytics/aggregations", "")

	handler.Names(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	names, ok := envelope.Data["aggregations"].([]interface{})
	require.True(t, ok)
	assert.Len(t, names, 21)
}

func TestAnalyticsHandlerReload(t *testing.T) {
	handler := newAnalyticsHandlerFixture(t)
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/datasets/reload", nil)

	handler.Reload(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Data, "reloaded_at")
}
