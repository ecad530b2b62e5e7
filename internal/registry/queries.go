package registry

import (
	"sort"

	"github.com/noah-isme/course-registry-api/internal/models"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
)

// StudentExists reports whether id is registered.
func (r *Registry) StudentExists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.students[id]
	return ok
}

// CourseExists reports whether code is registered.
func (r *Registry) CourseExists(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.courses[code]
	return ok
}

// GetStudent returns a snapshot of one student.
func (r *Registry) GetStudent(id string) (models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	student, ok := r.students[id]
	if !ok {
		return models.Student{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student.Snapshot(), nil
}

// GetCourse returns a snapshot of one course.
func (r *Registry) GetCourse(code string) (models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	course, ok := r.courses[code]
	if !ok {
		return models.Course{}, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course.Snapshot(), nil
}

// IsEnrolled reports whether studentID holds a seat in courseCode.
func (r *Registry) IsEnrolled(studentID, courseCode string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	course, ok := r.courses[courseCode]
	return ok && course.IsEnrolled(studentID)
}

// Students returns every student ordered by ID.
func (r *Registry) Students() []models.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Student, 0, len(r.students))
	for _, id := range sortedKeys(r.students) {
		out = append(out, r.students[id].Snapshot())
	}
	return out
}

// Courses returns every course ordered by code.
func (r *Registry) Courses() []models.Course {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Course, 0, len(r.courses))
	for _, code := range sortedKeys(r.courses) {
		out = append(out, r.courses[code].Snapshot())
	}
	return out
}

// ListStudentCourses returns the courses the student is enrolled in.
func (r *Registry) ListStudentCourses(studentID string) (models.StudentCourses, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	student, ok := r.students[studentID]
	if !ok {
		return models.StudentCourses{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	result := models.StudentCourses{StudentID: student.ID(), FullName: student.FullName(), Courses: []models.Course{}}
	for _, code := range student.Courses() {
		if course, ok := r.courses[code]; ok {
			result.Courses = append(result.Courses, course.Snapshot())
		}
	}
	return result, nil
}

// ListCourseStudents returns the course roster and its waitlist in arrival order.
func (r *Registry) ListCourseStudents(courseCode string) (models.CourseRoster, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	course, ok := r.courses[courseCode]
	if !ok {
		return models.CourseRoster{}, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course.Roster(), nil
}

// SearchStudentByName returns the ID of the first student, in ID order, whose
// name matches exactly.
func (r *Registry) SearchStudentByName(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range sortedKeys(r.students) {
		if r.students[id].FullName() == name {
			return id, true
		}
	}
	return "", false
}

// SearchCourseByTitle returns the code of the first course, in code order,
// whose title matches exactly.
func (r *Registry) SearchCourseByTitle(title string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, code := range sortedKeys(r.courses) {
		if r.courses[code].Title() == title {
			return code, true
		}
	}
	return "", false
}

// GetStudentsByInstructor maps ID to name for every student enrolled, not
// waitlisted, in any course taught by instructor.
func (r *Registry) GetStudentsByInstructor(instructor string) map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]string)
	for _, course := range r.courses {
		if course.Instructor() != instructor {
			continue
		}
		for _, id := range course.EnrolledStudents() {
			if student, ok := r.students[id]; ok {
				result[id] = student.FullName()
			}
		}
	}
	return result
}

// Statistics returns aggregate counters. The average is omitted when there are no courses.
func (r *Registry) Statistics() models.Statistics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := models.Statistics{
		TotalStudents:   len(r.students),
		TotalCourses:    len(r.courses),
		TotalActivities: r.activity.Len(),
	}
	for _, student := range r.students {
		stats.TotalEnrollments += student.EnrollmentCount()
	}
	if stats.TotalCourses > 0 {
		avg := float64(stats.TotalEnrollments) / float64(stats.TotalCourses)
		stats.AverageEnrollmentsPerCourse = &avg
	}
	return stats
}

// Activity returns the full audit trail in insertion order.
func (r *Registry) Activity() []models.ActivityLogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activity.All()
}

// RecentActivity returns the last n audit entries; see ActivityLog.Recent.
func (r *Registry) RecentActivity(n int) []models.ActivityLogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activity.Recent(n)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
