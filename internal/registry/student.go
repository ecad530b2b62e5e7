package registry

import (
	"sort"

	"github.com/noah-isme/course-registry-api/internal/models"
)

// Student holds a name and the set of course codes the student is enrolled in.
// Waitlist membership is not tracked here.
type Student struct {
	id       string
	fullName string
	courses  map[string]struct{}
}

// NewStudent creates a student with no enrollments.
func NewStudent(id, fullName string) *Student {
	return &Student{id: id, fullName: fullName, courses: make(map[string]struct{})}
}

// ID returns the immutable student ID.
func (s *Student) ID() string { return s.id }

// FullName returns the student's name.
func (s *Student) FullName() string { return s.fullName }

// SetFullName replaces the name, empty included.
func (s *Student) SetFullName(fullName string) { s.fullName = fullName }

// EnrollInCourse adds courseCode. Empty and repeated codes are silent no-ops.
func (s *Student) EnrollInCourse(courseCode string) {
	if courseCode == "" {
		return
	}
	s.courses[courseCode] = struct{}{}
}

// DropCourse removes courseCode. Empty and absent codes are silent no-ops.
func (s *Student) DropCourse(courseCode string) {
	if courseCode == "" {
		return
	}
	delete(s.courses, courseCode)
}

// IsEnrolledIn reports whether courseCode is in the student's course set.
func (s *Student) IsEnrolledIn(courseCode string) bool {
	_, ok := s.courses[courseCode]
	return ok
}

// EnrollmentCount returns the number of enrolled courses.
func (s *Student) EnrollmentCount() int { return len(s.courses) }

// Courses returns the enrolled course codes in sorted order.
func (s *Student) Courses() []string {
	codes := make([]string, 0, len(s.courses))
	for code := range s.courses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Snapshot copies the student into its read-only view.
func (s *Student) Snapshot() models.Student {
	return models.Student{
		ID:              s.id,
		FullName:        s.fullName,
		EnrolledCourses: s.Courses(),
		EnrollmentCount: len(s.courses),
	}
}
