package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-registry-api/internal/dto"
	"github.com/noah-isme/course-registry-api/internal/models"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
)

type studentRegistry interface {
	AddStudent(id, fullName string) error
	RemoveStudent(id string) error
	UpdateStudent(id, newName string) error
	GetStudent(id string) (models.Student, error)
	Students() []models.Student
	SearchStudentByName(name string) (string, bool)
	ListStudentCourses(studentID string) (models.StudentCourses, error)
}

// StudentService handles student use-cases over the registry.
type StudentService struct {
	registry  studentRegistry
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(registry studentRegistry, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{registry: registry, cache: cache, validator: validate, logger: logger}
}

// List returns students ordered by ID. A non-empty Name performs the exact
// name search and yields at most the first match.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.Name != "" {
		matches := []models.Student{}
		if id, ok := s.registry.SearchStudentByName(filter.Name); ok {
			student, err := s.registry.GetStudent(id)
			if err != nil {
				return nil, nil, err
			}
			matches = append(matches, student)
		}
		items, pagination := paginate(matches, filter.Page, filter.PageSize)
		return items, pagination, nil
	}
	items, pagination := paginate(s.registry.Students(), filter.Page, filter.PageSize)
	return items, pagination, nil
}

// Get returns one student snapshot.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.registry.GetStudent(id)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if err := s.registry.AddStudent(req.ID, req.FullName); err != nil {
		return nil, err
	}
	s.cache.InvalidateRegistry(ctx)
	return s.Get(ctx, req.ID)
}

// Update overwrites the student's name.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.registry.UpdateStudent(id, req.FullName); err != nil {
		return nil, err
	}
	s.cache.InvalidateRegistry(ctx)
	return s.Get(ctx, id)
}

// Delete removes the student, dropping every enrollment.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.registry.RemoveStudent(id); err != nil {
		return err
	}
	s.cache.InvalidateRegistry(ctx)
	s.logger.Info("student removed", zap.String("student_id", id))
	return nil
}

// Courses lists the courses the student is enrolled in.
func (s *StudentService) Courses(ctx context.Context, id string) (*models.StudentCourses, error) {
	courses, err := s.registry.ListStudentCourses(id)
	if err != nil {
		return nil, err
	}
	return &courses, nil
}
