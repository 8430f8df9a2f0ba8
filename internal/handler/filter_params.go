package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
	appErrors "github.com/tutortrack/scheduling-analytics-api/pkg/errors"
)

// parseFilterSpec builds a FilterSpec from the shared query parameter
// conventions used by every analytics endpoint.
func parseFilterSpec(c *gin.Context) (models.FilterSpec, error) {
	spec := models.FilterSpec{
		TutorIDs:             splitParam(c.Query("tutor_ids")),
		CourseIDs:            splitParam(c.Query("course_ids")),
		Statuses:             splitParam(c.Query("status")),
		BookingTypes:         splitParam(c.Query("booking_type")),
		ConfirmationStatuses: splitParam(c.Query("confirmation_status")),
		DayType:              c.Query("day_type"),
	}

	if raw := c.Query("start_date"); raw != "" {
		parsed, ok := models.ParseDate(raw)
		if !ok {
			return spec, appErrors.Clone(appErrors.ErrValidation, "invalid start_date parameter")
		}
		spec.StartDate = &parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, ok := models.ParseDate(raw)
		if !ok {
			return spec, appErrors.Clone(appErrors.ErrValidation, "invalid end_date parameter")
		}
		spec.EndDate = &parsed
	}

	duration, err := models.ParseDurationFilter(c.Query("duration"))
	if err != nil {
		return spec, appErrors.Clone(appErrors.ErrValidation, "invalid duration parameter")
	}
	spec.Duration = duration

	if spec.StartHourFrom, err = parseHourParam(c, "shift_start_hour"); err != nil {
		return spec, err
	}
	if spec.StartHourTo, err = parseHourParam(c, "shift_end_hour"); err != nil {
		return spec, err
	}

	return spec, nil
}

func parseHourParam(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	hour, err := strconv.Atoi(raw)
	if err != nil || hour < 0 || hour > 23 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter")
	}
	return &hour, nil
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
