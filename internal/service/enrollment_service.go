package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-registry-api/internal/dto"
	"github.com/noah-isme/course-registry-api/internal/models"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
)

type enrollmentRegistry interface {
	EnrollStudentInCourse(studentID, courseCode string) (models.EnrollmentResult, error)
	DropStudentFromCourse(studentID, courseCode string) (models.DropResult, error)
	GetStudentsByInstructor(instructor string) map[string]string
}

// EnrollmentService handles enroll, drop and instructor roster use-cases.
type EnrollmentService struct {
	registry  enrollmentRegistry
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(registry enrollmentRegistry, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{registry: registry, cache: cache, metrics: metrics, validator: validate, logger: logger, cacheTTL: cacheTTL}
}

// Enroll asks for a seat. A waitlisted outcome is returned together with
// ErrWaitlisted so callers can report the position.
func (s *EnrollmentService) Enroll(ctx context.Context, req dto.EnrollRequest) (*models.EnrollmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	result, err := s.registry.EnrollStudentInCourse(req.StudentID, req.CourseCode)
	if result.Outcome != "" {
		s.metrics.RecordEnrollment(result.Outcome)
	}
	switch {
	case err == nil:
		s.cache.InvalidateRegistry(ctx)
		return &result, nil
	case errors.Is(err, appErrors.ErrWaitlisted):
		return &result, err
	default:
		return nil, err
	}
}

// Drop frees the student's seat and reports any waitlist promotion.
func (s *EnrollmentService) Drop(ctx context.Context, studentID, courseCode string) (*models.DropResult, error) {
	result, err := s.registry.DropStudentFromCourse(studentID, courseCode)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordDrop(result)
	s.cache.InvalidateRegistry(ctx)
	if result.PromotedID != "" {
		s.logger.Info("waitlist promotion",
			zap.String("course_code", courseCode),
			zap.String("dropped", studentID),
			zap.String("promoted", result.PromotedID))
	}
	return &result, nil
}

// StudentsByInstructor returns enrolled students of every course taught by
// instructor. The bool reports a cache hit.
func (s *EnrollmentService) StudentsByInstructor(ctx context.Context, instructor string) (*models.InstructorRoster, bool, error) {
	if instructor == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "instructor is required")
	}
	key := instructorCachePrefix + instructor
	var cached models.InstructorRoster
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	gen := s.cache.Generation()
	roster := models.InstructorRoster{Instructor: instructor, Students: s.registry.GetStudentsByInstructor(instructor)}
	_, _ = s.cache.SetIfCurrent(ctx, key, roster, s.cacheTTL, gen)
	return &roster, false, nil
}
