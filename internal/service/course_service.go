package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-registry-api/internal/dto"
	"github.com/noah-isme/course-registry-api/internal/models"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
)

type courseRegistry interface {
	AddCourse(code, title, instructor string, capacity int) error
	RemoveCourse(code string) error
	UpdateCourse(code string, update models.CourseUpdate) error
	GetCourse(code string) (models.Course, error)
	Courses() []models.Course
	SearchCourseByTitle(title string) (string, bool)
	ListCourseStudents(courseCode string) (models.CourseRoster, error)
}

// CourseService handles course use-cases over the registry.
type CourseService struct {
	registry  courseRegistry
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(registry courseRegistry, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{registry: registry, cache: cache, validator: validate, logger: logger}
}

// List returns courses ordered by code. Title performs the exact title search
// (first match only); Instructor keeps courses taught by that exact name.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	var courses []models.Course
	if filter.Title != "" {
		courses = []models.Course{}
		if code, ok := s.registry.SearchCourseByTitle(filter.Title); ok {
			course, err := s.registry.GetCourse(code)
			if err != nil {
				return nil, nil, err
			}
			courses = append(courses, course)
		}
	} else {
		courses = s.registry.Courses()
	}

	if filter.Instructor != "" {
		kept := courses[:0]
		for _, course := range courses {
			if course.Instructor == filter.Instructor {
				kept = append(kept, course)
			}
		}
		courses = kept
	}
	items, pagination := paginate(courses, filter.Page, filter.PageSize)
	return items, pagination, nil
}

// Get returns one course snapshot.
func (s *CourseService) Get(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.registry.GetCourse(code)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Create registers a new course.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := s.registry.AddCourse(req.Code, req.Title, req.Instructor, *req.Capacity); err != nil {
		return nil, err
	}
	s.cache.InvalidateRegistry(ctx)
	return s.Get(ctx, req.Code)
}

// Update applies the meaningful fields of req.
func (s *CourseService) Update(ctx context.Context, code string, req dto.UpdateCourseRequest) (*models.Course, error) {
	if err := s.registry.UpdateCourse(code, req.ToModel()); err != nil {
		return nil, err
	}
	s.cache.InvalidateRegistry(ctx)
	return s.Get(ctx, code)
}

// Delete removes the course and its enrollments.
func (s *CourseService) Delete(ctx context.Context, code string) error {
	if err := s.registry.RemoveCourse(code); err != nil {
		return err
	}
	s.cache.InvalidateRegistry(ctx)
	s.logger.Info("course removed", zap.String("course_code", code))
	return nil
}

// Roster returns enrolled students and the ordered waitlist.
func (s *CourseService) Roster(ctx context.Context, code string) (*models.CourseRoster, error) {
	roster, err := s.registry.ListCourseStudents(code)
	if err != nil {
		return nil, err
	}
	return &roster, nil
}
