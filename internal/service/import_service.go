package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/course-registry-api/internal/models"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
)

// DefaultCourseCapacity applies when a bulk record omits or garbles the capacity.
const DefaultCourseCapacity = 30

const maxLineBytes = 1 << 20

// ImportFormat selects the bulk load parser.
type ImportFormat string

// Supported bulk load formats.
const (
	ImportFormatLines ImportFormat = "lines"
	ImportFormatYAML  ImportFormat = "yaml"
)

type importRegistry interface {
	AddStudent(id, fullName string) error
	AddCourse(code, title, instructor string, capacity int) error
	EnrollStudentInCourse(studentID, courseCode string) (models.EnrollmentResult, error)
	RecordLoad(details string) models.ActivityLogEntry
}

// YAMLDocument is the structured bulk load format.
type YAMLDocument struct {
	Students []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"students"`
	Courses []struct {
		Code       string `yaml:"code"`
		Title      string `yaml:"title"`
		Instructor string `yaml:"instructor"`
		Capacity   *int   `yaml:"capacity"`
	} `yaml:"courses"`
	Enrollments []struct {
		Student string `yaml:"student"`
		Course  string `yaml:"course"`
	} `yaml:"enrollments"`
}

// ImportService replays bulk files into the registry, one engine call per record.
type ImportService struct {
	registry importRegistry
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewImportService constructs the import service.
func NewImportService(registry importRegistry, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{registry: registry, cache: cache, metrics: metrics, logger: logger}
}

// DetectFormat picks YAML for .yaml/.yml names or YAML content types and the
// line format otherwise.
func DetectFormat(name, contentType string) ImportFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return ImportFormatYAML
	}
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "yaml") {
		return ImportFormatYAML
	}
	return ImportFormatLines
}

// LoadFile opens path and loads it in the format implied by its extension.
func (s *ImportService) LoadFile(ctx context.Context, path string) (*models.LoadSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		s.logger.Warn("could not open bulk file", zap.String("file", path), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, appErrors.ErrLoadFailed.Status, "could not open file "+path)
	}
	defer file.Close() //nolint:errcheck
	return s.Load(ctx, path, DetectFormat(path, ""), file)
}

// Load replays r. On success a LOAD_FILE activity entry closes the load. A
// read failure returns ErrLoadFailed with the tallies applied so far and no
// LOAD_FILE entry.
func (s *ImportService) Load(ctx context.Context, source string, format ImportFormat, r io.Reader) (*models.LoadSummary, error) {
	summary := &models.LoadSummary{Source: source}
	s.logger.Info("loading bulk data", zap.String("source", source), zap.String("format", string(format)))

	var err error
	if format == ImportFormatYAML {
		err = s.loadYAML(ctx, r, summary)
	} else {
		err = s.loadLines(ctx, r, summary)
	}
	s.metrics.RecordLoad(*summary)
	if err != nil {
		s.cache.InvalidateRegistry(ctx)
		s.logger.Warn("bulk load aborted", zap.String("source", source), zap.Int("lines", summary.LinesRead), zap.Error(err))
		return summary, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, appErrors.ErrLoadFailed.Status,
			fmt.Sprintf("load failed after %d lines", summary.LinesRead))
	}

	s.registry.RecordLoad(fmt.Sprintf("Loaded %d students, %d courses, %d enrollments from %s",
		summary.StudentsLoaded, summary.CoursesLoaded, summary.EnrollmentsLoaded, source))
	s.cache.InvalidateRegistry(ctx)
	s.logger.Info("load complete",
		zap.String("source", source),
		zap.Int("students", summary.StudentsLoaded),
		zap.Int("courses", summary.CoursesLoaded),
		zap.Int("enrollments", summary.EnrollmentsLoaded),
		zap.Int("warnings", len(summary.Warnings)))
	return summary, nil
}

func (s *ImportService) loadLines(ctx context.Context, r io.Reader, summary *models.LoadSummary) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.LinesRead++
		s.applyLine(strings.TrimSuffix(scanner.Text(), "\r"), summary.LinesRead, summary)
	}
	return scanner.Err()
}

// applyLine interprets one record. The final field of each tag takes the rest
// of the line, so names and titles may not contain commas before it.
func (s *ImportService) applyLine(line string, lineNumber int, summary *models.LoadSummary) {
	if line == "" || line[0] == '#' {
		return
	}
	tag, rest, _ := strings.Cut(line, ",")
	switch tag {
	case "STUDENT":
		id, name, _ := strings.Cut(rest, ",")
		if s.registry.AddStudent(id, name) == nil {
			summary.StudentsLoaded++
			return
		}
		s.warn(summary, fmt.Sprintf("Could not add student %s (line %d)", id, lineNumber))
	case "COURSE":
		fields := strings.SplitN(rest, ",", 4)
		for len(fields) < 4 {
			fields = append(fields, "")
		}
		code, title, instructor := fields[0], fields[1], fields[2]
		capacity := DefaultCourseCapacity
		if fields[3] != "" {
			parsed, err := parseLeadingInt(fields[3])
			if err != nil {
				s.warn(summary, fmt.Sprintf("Invalid capacity for course %s, using default %d (line %d)", code, DefaultCourseCapacity, lineNumber))
			} else {
				capacity = parsed
			}
		}
		if s.registry.AddCourse(code, title, instructor, capacity) == nil {
			summary.CoursesLoaded++
			return
		}
		s.warn(summary, fmt.Sprintf("Could not add course %s (line %d)", code, lineNumber))
	case "ENROLL":
		studentID, courseCode, _ := strings.Cut(rest, ",")
		if _, err := s.registry.EnrollStudentInCourse(studentID, courseCode); err == nil {
			summary.EnrollmentsLoaded++
			return
		}
		s.warn(summary, fmt.Sprintf("Could not enroll student %s in course %s (line %d)", studentID, courseCode, lineNumber))
	default:
		s.warn(summary, fmt.Sprintf("Unknown command '%s' on line %d", tag, lineNumber))
	}
}

func (s *ImportService) loadYAML(ctx context.Context, r io.Reader, summary *models.LoadSummary) error {
	var doc YAMLDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}

	for i, student := range doc.Students {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.LinesRead++
		if s.registry.AddStudent(student.ID, student.Name) == nil {
			summary.StudentsLoaded++
			continue
		}
		s.warn(summary, fmt.Sprintf("Could not add student %s (students[%d])", student.ID, i))
	}
	for i, course := range doc.Courses {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.LinesRead++
		capacity := DefaultCourseCapacity
		if course.Capacity != nil {
			capacity = *course.Capacity
		}
		if s.registry.AddCourse(course.Code, course.Title, course.Instructor, capacity) == nil {
			summary.CoursesLoaded++
			continue
		}
		s.warn(summary, fmt.Sprintf("Could not add course %s (courses[%d])", course.Code, i))
	}
	for i, enrollment := range doc.Enrollments {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.LinesRead++
		if _, err := s.registry.EnrollStudentInCourse(enrollment.Student, enrollment.Course); err == nil {
			summary.EnrollmentsLoaded++
			continue
		}
		s.warn(summary, fmt.Sprintf("Could not enroll student %s in course %s (enrollments[%d])", enrollment.Student, enrollment.Course, i))
	}
	return nil
}

func (s *ImportService) warn(summary *models.LoadSummary, message string) {
	summary.Warnings = append(summary.Warnings, message)
	s.logger.Warn(message, zap.String("source", summary.Source))
}

// parseLeadingInt reads an optionally signed integer prefix after leading
// whitespace and ignores whatever follows it, so "25 seats" yields 25.
func parseLeadingInt(raw string) (int, error) {
	trimmed := strings.TrimLeft(raw, " \t")
	end := 0
	if end < len(trimmed) && (trimmed[end] == '+' || trimmed[end] == '-') {
		end++
	}
	digits := end
	for end < len(trimmed) && trimmed[end] >= '0' && trimmed[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, fmt.Errorf("no digits in %q", raw)
	}
	return strconv.Atoi(trimmed[:end])
}
