package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutortrack/scheduling-analytics-api/internal/service"
	appErrors "github.com/tutortrack/scheduling-analytics-api/pkg/errors"
	"github.com/tutortrack/scheduling-analytics-api/pkg/response"
)

// ExportHandler renders aggregation results as downloadable files.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Aggregation godoc
// @Summary Export an aggregation
// @Description Render a named aggregation to CSV or PDF
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param name path string true "Aggregation name"
// @Param format query string true "Export format" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/aggregations/{name} [get]
func (h *ExportHandler) Aggregation(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	spec, err := parseFilterSpec(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req := service.ExportRequest{
		Aggregation: c.Param("name"),
		Format:      service.ExportFormat(c.DefaultQuery("format", "csv")),
		Filter:      spec,
	}

	result, err := h.exports.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Token != "" {
		c.Header("X-Download-Token", result.Token)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}

// Download godoc
// @Summary Download an archived export
// @Description Stream a previously rendered export by its download token
// @Tags Exports
// @Produce application/octet-stream
// @Param token path string true "Download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/archive/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	file, filename, err := h.exports.OpenArchived(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
