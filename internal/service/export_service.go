package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-registry-api/internal/dto"
	"github.com/noah-isme/course-registry-api/internal/models"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
	"github.com/noah-isme/course-registry-api/pkg/export"
	"github.com/noah-isme/course-registry-api/pkg/storage"
)

type exportRegistry interface {
	ListCourseStudents(courseCode string) (models.CourseRoster, error)
	GetStudent(id string) (models.Student, error)
	Courses() []models.Course
	Activity() []models.ActivityLogEntry
	RecentActivity(n int) []models.ActivityLogEntry
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportDownload is an opened export ready to stream.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
}

// ExportService renders registry datasets to CSV or PDF, stores them and
// hands out signed download URLs.
type ExportService struct {
	registry  exportRegistry
	storage   fileStorage
	signer    *storage.SignedURLSigner
	csv       csvRenderer
	pdf       pdfRenderer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the pkg/export defaults.
func NewExportService(registry exportRegistry, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, metrics *MetricsService, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		registry:  registry,
		storage:   store,
		signer:    signer,
		csv:       csv,
		pdf:       pdf,
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Generate renders the requested dataset and returns its signed download URL.
func (s *ExportService) Generate(ctx context.Context, req dto.ExportRequest) (*dto.ExportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	dataset, err := s.buildDataset(req)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch req.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	id := uuid.NewString()
	relPath, err := s.storage.Save(s.buildFilename(req, id), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}
	s.metrics.RecordExport(req.Kind, req.Format)
	s.logger.Info("export generated", zap.String("id", id), zap.String("kind", string(req.Kind)), zap.String("format", string(req.Format)), zap.Int("rows", len(dataset.Rows)))

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &dto.ExportResponse{
		ID:        id,
		Kind:      req.Kind,
		Format:    req.Format,
		URL:       fmt.Sprintf("%s/exports/download?token=%s", prefix, token),
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// Resolve validates a download token and opens the referenced file.
func (s *ExportService) Resolve(ctx context.Context, token string) (*ExportDownload, error) {
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "token is required")
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	contentType := "text/csv"
	if strings.HasSuffix(relPath, ".pdf") {
		contentType = "application/pdf"
	}
	return &ExportDownload{File: file, Filename: filepath.Base(relPath), ContentType: contentType}, nil
}

// Cleanup removes exports older than ttl, or the configured TTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *ExportService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Cleanup(0)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				s.logger.Info("export cleanup", zap.Int("removed", len(removed)))
			}
		}
	}
}

func (s *ExportService) buildFilename(req dto.ExportRequest, id string) string {
	parts := []string{string(req.Kind)}
	if req.Kind == models.ExportKindRoster {
		parts = append(parts, sanitizeFilename(req.CourseCode))
	}
	parts = append(parts, s.now().UTC().Format("20060102_150405"), id[:8])
	return strings.Join(parts, "_") + "." + string(req.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 64 {
		return result[:64]
	}
	return result
}

func (s *ExportService) buildDataset(req dto.ExportRequest) (export.Dataset, error) {
	switch req.Kind {
	case models.ExportKindRoster:
		return s.rosterDataset(req.CourseCode)
	case models.ExportKindActivity:
		return s.activityDataset(req.Last), nil
	case models.ExportKindCourses:
		return s.coursesDataset(), nil
	default:
		return export.Dataset{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export kind %s", req.Kind))
	}
}

func (s *ExportService) rosterDataset(code string) (export.Dataset, error) {
	roster, err := s.registry.ListCourseStudents(code)
	if err != nil {
		return export.Dataset{}, err
	}
	title := fmt.Sprintf("%s %s (%s) - %d/%d enrolled", roster.Code, roster.Title, roster.Instructor, roster.CurrentEnrollment, roster.Capacity)
	data := export.NewDataset(title, "student_id", "full_name", "status", "waitlist_position")
	for _, id := range roster.EnrolledStudents {
		data.Append(id, s.studentName(id), "enrolled", "")
	}
	for i, id := range roster.Waitlist {
		data.Append(id, s.studentName(id), "waitlisted", strconv.Itoa(i+1))
	}
	return data, nil
}

func (s *ExportService) studentName(id string) string {
	student, err := s.registry.GetStudent(id)
	if err != nil {
		return ""
	}
	return student.FullName
}

func (s *ExportService) activityDataset(last int) export.Dataset {
	entries := s.registry.Activity()
	if last > 0 {
		entries = s.registry.RecentActivity(last)
	}
	data := export.NewDataset("Activity log", "seq", "timestamp", "action", "student_id", "course_code", "details")
	for _, entry := range entries {
		data.Append(strconv.FormatUint(entry.Seq, 10), entry.Timestamp, string(entry.Action), entry.StudentID, entry.CourseCode, entry.Details)
	}
	return data
}

func (s *ExportService) coursesDataset() export.Dataset {
	data := export.NewDataset("Courses", "code", "title", "instructor", "capacity", "enrolled", "waitlist")
	for _, course := range s.registry.Courses() {
		data.Append(course.Code, course.Title, course.Instructor,
			strconv.Itoa(course.Capacity), strconv.Itoa(course.CurrentEnrollment), strconv.Itoa(course.WaitlistSize))
	}
	return data
}
