package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
	appErrors "github.com/tutortrack/scheduling-analytics-api/pkg/errors"
	"github.com/tutortrack/scheduling-analytics-api/pkg/export"
	"github.com/tutortrack/scheduling-analytics-api/pkg/jobs"
	"github.com/tutortrack/scheduling-analytics-api/pkg/storage"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type fileArchive interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportFormat enumerates supported export encodings.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportRequest describes one export invocation.
type ExportRequest struct {
	Aggregation string       `validate:"required"`
	Format      ExportFormat `validate:"required,oneof=csv pdf"`
	Filter      models.FilterSpec
}

// ExportResult is the rendered payload plus download metadata.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
	Token       string
	ExpiresAt   time.Time
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	ArchiveTTL time.Duration
}

// ExportService renders aggregation results to CSV or PDF. Rendered
// files are returned to the caller immediately and archived on disk in
// the background; an HMAC token allows re-downloading the archived copy
// until it expires.
type ExportService struct {
	analytics *AnalyticsService
	csv       csvRenderer
	pdf       pdfRenderer
	archive   fileArchive
	signer    *storage.TokenSigner
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
}

// ExportServiceParams bundles dependencies for NewExportService.
type ExportServiceParams struct {
	Analytics *AnalyticsService
	Archive   fileArchive
	Signer    *storage.TokenSigner
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    ExportConfig
}

type archiveJobPayload struct {
	Filename string
	Data     []byte
}

// NewExportService constructs an ExportService. Start must be called
// before exports are generated so archive writes have workers.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	cfg := params.Config
	if cfg.ArchiveTTL <= 0 {
		cfg.ArchiveTTL = 24 * time.Hour
	}

	s := &ExportService{
		analytics: params.Analytics,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		archive:   params.Archive,
		signer:    params.Signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
	s.queue = jobs.NewQueue("export-archive", s.handleArchiveJob, jobs.QueueConfig{
		Workers: 1,
		Logger:  logger,
	})
	return s
}

// Start launches the background archive workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the archive workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Generate renders the named aggregation into the requested format.
func (s *ExportService) Generate(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}

	result, _, err := s.analytics.Aggregate(ctx, req.Aggregation, req.Filter)
	if err != nil {
		return nil, err
	}

	dataset := buildExportDataset(result)
	title := strings.ReplaceAll(req.Aggregation, "_", " ")

	var payload []byte
	var contentType string
	switch req.Format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		err = fmt.Errorf("unsupported format %s", req.Format)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "export rendering failed")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("%s_%s_%s.%s", req.Aggregation, time.Now().UTC().Format("20060102_150405"), exportID[:8], req.Format)

	out := &ExportResult{Filename: filename, ContentType: contentType, Payload: payload}
	if s.archive != nil && s.signer != nil {
		token, expiresAt, signErr := s.signer.Generate(exportID, filename)
		if signErr != nil {
			s.logger.Warn("export token generation failed", zap.Error(signErr))
		} else {
			out.Token = token
			out.ExpiresAt = expiresAt
		}
		if err := s.queue.Enqueue(jobs.Job{
			ID:      exportID,
			Type:    "archive",
			Payload: archiveJobPayload{Filename: filename, Data: payload},
		}); err != nil {
			s.logger.Warn("export archive enqueue failed", zap.String("filename", filename), zap.Error(err))
		}
	}
	return out, nil
}

// OpenArchived validates a download token and opens the archived file.
func (s *ExportService) OpenArchived(token string) (*os.File, string, error) {
	if s.archive == nil || s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export archive disabled")
	}
	_, filename, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.archive.Open(filename)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "archived export not found")
	}
	return file, filename, nil
}

// Cleanup removes archived exports older than the configured TTL.
func (s *ExportService) Cleanup() ([]string, error) {
	if s.archive == nil {
		return nil, nil
	}
	return s.archive.CleanupOlderThan(s.cfg.ArchiveTTL)
}

func (s *ExportService) handleArchiveJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(archiveJobPayload)
	if !ok {
		return fmt.Errorf("unexpected archive payload for job %s", job.ID)
	}
	if _, err := s.archive.Save(payload.Filename, payload.Data); err != nil {
		return err
	}
	s.logger.Debug("export archived", zap.String("filename", payload.Filename))
	return nil
}

func buildExportDataset(result *models.AggregationResult) export.Dataset {
	rows := make([][]string, 0, len(result.Series))
	for _, point := range result.Series {
		value := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", point.Value), "0"), ".")
		rows = append(rows, []string{point.Label, value})
	}
	return export.Dataset{
		Headers: []string{"Label", "Value"},
		Rows:    rows,
	}
}
