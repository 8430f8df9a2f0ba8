package service

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutortrack/scheduling-analytics-api/internal/models"
	appErrors "github.com/tutortrack/scheduling-analytics-api/pkg/errors"
	"github.com/tutortrack/scheduling-analytics-api/pkg/storage"
)

type fakeArchive struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func (f *fakeArchive) Save(filename string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[filename] = data
	return filename, nil
}

func (f *fakeArchive) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (f *fakeArchive) CleanupOlderThan(_ time.Duration) ([]string, error) {
	return nil, nil
}

func (f *fakeArchive) has(filename string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.saved[filename]
	return ok
}

func newExportFixture(t *testing.T, archive *fakeArchive) *ExportService {
	t.Helper()
	analytics, _ := newAnalyticsFixture(t, nil)

	params := ExportServiceParams{
		Analytics: analytics,
		Logger:    zap.NewNop(),
		Config:    ExportConfig{ArchiveTTL: time.Hour},
	}
	if archive != nil {
		params.Archive = archive
		params.Signer = storage.NewTokenSigner("secret", time.Hour)
	}
	svc := NewExportService(params)
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func TestExportServiceGenerateCSV(t *testing.T) {
	svc := newExportFixture(t, nil)

	result, err := svc.Generate(context.Background(), ExportRequest{
		Aggregation: "appointments_per_tutor",
		Format:      ExportFormatCSV,
	})
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "appointments_per_tutor_"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	assert.Contains(t, body, "Label,Value")
	assert.Contains(t, body, "Dana Reyes,1")
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc := newExportFixture(t, nil)

	result, err := svc.Generate(context.Background(), ExportRequest{
		Aggregation: "appointments_per_weekday",
		Format:      ExportFormatPDF,
	})
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportServiceGenerateValidatesFormat(t *testing.T) {
	svc := newExportFixture(t, nil)

	_, err := svc.Generate(context.Background(), ExportRequest{
		Aggregation: "appointments_per_tutor",
		Format:      "xlsx",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportServiceGenerateUnknownAggregation(t *testing.T) {
	svc := newExportFixture(t, nil)

	_, err := svc.Generate(context.Background(), ExportRequest{
		Aggregation: "appointments_per_galaxy",
		Format:      ExportFormatCSV,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUnknownAggregation)
}

func TestExportServiceArchivesInBackground(t *testing.T) {
	archive := &fakeArchive{}
	svc := newExportFixture(t, archive)

	result, err := svc.Generate(context.Background(), ExportRequest{
		Aggregation: "appointments_per_tutor",
		Format:      ExportFormatCSV,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.False(t, result.ExpiresAt.IsZero())

	require.Eventually(t, func() bool {
		return archive.has(result.Filename)
	}, time.Second, 10*time.Millisecond)
}

func TestExportServiceFilteredExport(t *testing.T) {
	svc := newExportFixture(t, nil)

	result, err := svc.Generate(context.Background(), ExportRequest{
		Aggregation: "appointments_per_tutor",
		Format:      ExportFormatCSV,
		Filter:      models.FilterSpec{Statuses: []string{"no-show"}},
	})
	require.NoError(t, err)
	assert.NotContains(t, string(result.Payload), "Dana Reyes")
}
