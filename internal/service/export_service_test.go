package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registry-api/internal/dto"
	"github.com/noah-isme/course-registry-api/internal/models"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
	"github.com/noah-isme/course-registry-api/pkg/storage"
)

func newTestExportService(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	reg := newTestRegistry(t)
	seedRegistry(t, reg, []string{"S1", "S2", "S3"}, map[string]int{"C1": 2})
	for _, id := range []string{"S1", "S2", "S3"} {
		_, _ = reg.EnrollStudentInCourse(id, "C1")
	}
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewExportService(reg, store, signer, ExportConfig{APIPrefix: "/api/v1"}, NewMetricsService(), nil, nil, nil)
	return svc, store
}

func tokenFromURL(t *testing.T, raw string) string {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return parsed.Query().Get("token")
}

func TestExportServiceRosterCSV(t *testing.T) {
	svc, _ := newTestExportService(t)
	ctx := context.Background()

	resp, err := svc.Generate(ctx, dto.ExportRequest{Kind: models.ExportKindRoster, Format: models.ReportFormatCSV, CourseCode: "C1"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.URL, "/api/v1/exports/download?token="))

	download, err := svc.Resolve(ctx, tokenFromURL(t, resp.URL))
	require.NoError(t, err)
	defer download.File.Close() //nolint:errcheck
	assert.Equal(t, "text/csv", download.ContentType)
	assert.True(t, strings.HasPrefix(download.Filename, "roster_C1_"))

	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"student_id", "full_name", "status", "waitlist_position"}, records[0])
	assert.Equal(t, []string{"S3", "Name S3", "waitlisted", "1"}, records[3])
}

func TestExportServiceActivityAndCoursesPDF(t *testing.T) {
	svc, _ := newTestExportService(t)
	ctx := context.Background()

	for _, kind := range []models.ExportKind{models.ExportKindActivity, models.ExportKindCourses} {
		resp, err := svc.Generate(ctx, dto.ExportRequest{Kind: kind, Format: models.ReportFormatPDF, Last: 2})
		require.NoError(t, err, kind)
		download, err := svc.Resolve(ctx, tokenFromURL(t, resp.URL))
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", download.ContentType)
		head := make([]byte, 4)
		_, err = io.ReadFull(download.File, head)
		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(head))
		require.NoError(t, download.File.Close())
	}
}

func TestExportServiceValidation(t *testing.T) {
	svc, _ := newTestExportService(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, dto.ExportRequest{Kind: models.ExportKindRoster, Format: models.ReportFormatCSV})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Generate(ctx, dto.ExportRequest{Kind: "grades", Format: models.ReportFormatCSV})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Generate(ctx, dto.ExportRequest{Kind: models.ExportKindRoster, Format: models.ReportFormatCSV, CourseCode: "NOPE"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Resolve(ctx, "")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = svc.Resolve(ctx, "garbage")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestExportServiceCleanup(t *testing.T) {
	svc, _ := newTestExportService(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, dto.ExportRequest{Kind: models.ExportKindCourses, Format: models.ReportFormatCSV})
	require.NoError(t, err)

	removed, err := svc.Cleanup(time.Hour)
	require.NoError(t, err)
	assert.Empty(t, removed)

	time.Sleep(5 * time.Millisecond)
	removed, err = svc.Cleanup(time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, removed, 1)
}
