// Package registry is the enrollment engine: it owns students, courses and
// the activity log, and keeps the student ⇄ course relationship consistent
// across enroll, drop, waitlist promotion and cascading removal.
package registry

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-registry-api/internal/models"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
)

// Options configures a Registry.
type Options struct {
	// LegacyConsistency reproduces the original tool: promotions are not
	// mirrored into the promoted student and removeStudent leaves the
	// student's waitlist entries behind. Both leave the registry
	// inconsistent, so it is off by default.
	LegacyConsistency bool
	Clock             func() time.Time
	Logger            *zap.Logger
	// OnAppend observes every activity entry. It runs under the registry
	// lock and must not block.
	OnAppend func(models.ActivityLogEntry)
}

// Registry owns the student and course stores plus the activity log. Each
// exported operation is one critical section.
type Registry struct {
	mu       sync.RWMutex
	students map[string]*Student
	courses  map[string]*Course
	activity *ActivityLog
	legacy   bool
	logger   *zap.Logger
}

// New constructs an empty registry.
func New(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		students: make(map[string]*Student),
		courses:  make(map[string]*Course),
		activity: NewActivityLog(opts.Clock, opts.OnAppend),
		legacy:   opts.LegacyConsistency,
		logger:   logger,
	}
}

// LegacyConsistency reports whether the registry runs in compatibility mode.
func (r *Registry) LegacyConsistency() bool {
	return r.legacy
}

// AddStudent registers a new student.
func (r *Registry) AddStudent(id, fullName string) error {
	if id == "" || fullName == "" {
		return r.reject(appErrors.ErrValidation, "student id and name are required", zap.String("student_id", id))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.students[id]; exists {
		return r.reject(appErrors.ErrConflict, "student already exists", zap.String("student_id", id))
	}
	r.students[id] = NewStudent(id, fullName)
	r.record(models.ActivityAddStudent, id, "", "Added student: "+fullName)
	return nil
}

// RemoveStudent deletes a student after dropping every enrollment, which may
// promote waitlisted students in the affected courses.
func (r *Registry) RemoveStudent(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	student, ok := r.students[id]
	if !ok {
		return r.reject(appErrors.ErrNotFound, "student not found", zap.String("student_id", id))
	}

	var promotions []string
	for _, code := range student.Courses() {
		course, ok := r.courses[code]
		if !ok {
			continue
		}
		if result, dropped := course.Drop(id); dropped {
			if note := r.mirrorPromotion(result); note != "" {
				promotions = append(promotions, note)
			}
		}
	}
	if !r.legacy {
		for _, course := range r.courses {
			course.RemoveFromWaitlist(id)
		}
	}

	delete(r.students, id)
	r.record(models.ActivityRemoveStudent, id, "", withPromotions("Removed student: "+student.FullName(), promotions))
	return nil
}

// UpdateStudent overwrites the student's name unconditionally.
func (r *Registry) UpdateStudent(id, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	student, ok := r.students[id]
	if !ok {
		return r.reject(appErrors.ErrNotFound, "student not found", zap.String("student_id", id))
	}
	oldName := student.FullName()
	student.SetFullName(newName)
	r.record(models.ActivityUpdateStudent, id, "", fmt.Sprintf("Updated name from %s to %s", oldName, newName))
	return nil
}

// AddCourse registers a new course. A capacity of zero is allowed and sends
// every enrollment to the waitlist.
func (r *Registry) AddCourse(code, title, instructor string, capacity int) error {
	if code == "" || title == "" || instructor == "" {
		return r.reject(appErrors.ErrValidation, "course code, title and instructor are required", zap.String("course_code", code))
	}
	if capacity < 0 {
		return r.reject(appErrors.ErrValidation, "course capacity cannot be negative", zap.String("course_code", code), zap.Int("capacity", capacity))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.courses[code]; exists {
		return r.reject(appErrors.ErrConflict, "course already exists", zap.String("course_code", code))
	}
	r.courses[code] = NewCourse(code, title, instructor, capacity)
	r.record(models.ActivityAddCourse, "", code, fmt.Sprintf("Added course: %s by %s", title, instructor))
	return nil
}

// RemoveCourse deletes a course and strips it from every enrolled student.
// Waitlisted students hold no back-reference, so the waitlist goes with the course.
func (r *Registry) RemoveCourse(code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	course, ok := r.courses[code]
	if !ok {
		return r.reject(appErrors.ErrNotFound, "course not found", zap.String("course_code", code))
	}
	for _, studentID := range course.EnrolledStudents() {
		if student, ok := r.students[studentID]; ok {
			student.DropCourse(code)
		}
	}
	delete(r.courses, code)
	r.record(models.ActivityRemoveCourse, "", code, "Removed course: "+course.Title())
	return nil
}

// UpdateCourse applies the meaningful fields of update: non-empty title and
// instructor, and a strictly positive capacity no smaller than the current
// enrollment. Everything else is left unchanged.
func (r *Registry) UpdateCourse(code string, update models.CourseUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	course, ok := r.courses[code]
	if !ok {
		return r.reject(appErrors.ErrNotFound, "course not found", zap.String("course_code", code))
	}
	oldTitle := course.Title()
	details := ""
	if update.Title != nil && *update.Title != "" {
		course.SetTitle(*update.Title)
	}
	if update.Instructor != nil && *update.Instructor != "" {
		course.SetInstructor(*update.Instructor)
	}
	if update.Capacity != nil && *update.Capacity > 0 {
		if *update.Capacity >= course.CurrentEnrollment() {
			course.SetCapacity(*update.Capacity)
		} else {
			r.logger.Warn("capacity below current enrollment ignored",
				zap.String("course_code", code),
				zap.Int("capacity", *update.Capacity),
				zap.Int("enrolled", course.CurrentEnrollment()))
			details = fmt.Sprintf(" (capacity unchanged: %d below enrollment %d)", *update.Capacity, course.CurrentEnrollment())
		}
	}
	r.record(models.ActivityUpdateCourse, "", code, fmt.Sprintf("Updated course from %s to %s", oldTitle, course.Title())+details)
	return nil
}

// EnrollStudentInCourse asks the course for a seat. Only an Enrolled outcome
// succeeds; a Waitlisted outcome returns ErrWaitlisted even though the
// student now sits on the waitlist.
func (r *Registry) EnrollStudentInCourse(studentID, courseCode string) (models.EnrollmentResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := models.EnrollmentResult{StudentID: studentID, CourseCode: courseCode, Outcome: models.EnrollOutcomeRejected}
	student, course, err := r.pair(studentID, courseCode, "enroll")
	if err != nil {
		return result, err
	}

	result.Outcome = course.Enroll(studentID)
	switch result.Outcome {
	case models.EnrollOutcomeEnrolled:
		student.EnrollInCourse(courseCode)
		r.record(models.ActivityEnroll, studentID, courseCode, fmt.Sprintf("Enrolled %s in %s", student.FullName(), course.Title()))
		return result, nil
	case models.EnrollOutcomeWaitlisted:
		result.WaitlistPosition = course.WaitlistPosition(studentID)
		r.logger.Info("student waitlisted",
			zap.String("student_id", studentID),
			zap.String("course_code", courseCode),
			zap.Int("position", result.WaitlistPosition))
		return result, appErrors.Clone(appErrors.ErrWaitlisted,
			fmt.Sprintf("course %s is full, student %s waitlisted at position %d", courseCode, studentID, result.WaitlistPosition))
	default:
		if course.IsWaitlisted(studentID) {
			result.WaitlistPosition = course.WaitlistPosition(studentID)
			return result, r.reject(appErrors.ErrConflict, "student already on waitlist", zap.String("student_id", studentID), zap.String("course_code", courseCode))
		}
		return result, r.reject(appErrors.ErrConflict, "student already enrolled in course", zap.String("student_id", studentID), zap.String("course_code", courseCode))
	}
}

// DropStudentFromCourse frees the student's seat. When the course promotes
// the head of its waitlist, the promoted student's enrollments are updated in
// the same critical section.
func (r *Registry) DropStudentFromCourse(studentID, courseCode string) (models.DropResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	student, course, err := r.pair(studentID, courseCode, "drop")
	if err != nil {
		return models.DropResult{}, err
	}
	result, ok := course.Drop(studentID)
	if !ok {
		return models.DropResult{}, r.reject(appErrors.ErrNotFound, "student is not enrolled in course", zap.String("student_id", studentID), zap.String("course_code", courseCode))
	}
	student.DropCourse(courseCode)

	var promotions []string
	if note := r.mirrorPromotion(result); note != "" {
		promotions = append(promotions, note)
	}
	r.record(models.ActivityDrop, studentID, courseCode,
		withPromotions(fmt.Sprintf("Dropped %s from %s", student.FullName(), course.Title()), promotions))
	return result, nil
}

// RecordLoad appends the LOAD_FILE entry that closes a bulk load.
func (r *Registry) RecordLoad(details string) models.ActivityLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record(models.ActivityLoadFile, "", "", details)
}

func (r *Registry) pair(studentID, courseCode, op string) (*Student, *Course, error) {
	student, studentOK := r.students[studentID]
	course, courseOK := r.courses[courseCode]
	switch {
	case !studentOK && !courseOK:
		return nil, nil, r.reject(appErrors.ErrNotFound, "student and course not found", zap.String("op", op), zap.String("student_id", studentID), zap.String("course_code", courseCode))
	case !studentOK:
		return nil, nil, r.reject(appErrors.ErrNotFound, "student not found", zap.String("op", op), zap.String("student_id", studentID))
	case !courseOK:
		return nil, nil, r.reject(appErrors.ErrNotFound, "course not found", zap.String("op", op), zap.String("course_code", courseCode))
	}
	return student, course, nil
}

// mirrorPromotion enrolls the promoted student on the student side. It returns
// a note for the activity details, or "" when nothing was promoted or the
// registry runs in legacy mode.
func (r *Registry) mirrorPromotion(result models.DropResult) string {
	if result.PromotedID == "" || r.legacy {
		return ""
	}
	promoted, ok := r.students[result.PromotedID]
	if !ok {
		r.logger.Warn("promoted student missing from registry",
			zap.String("student_id", result.PromotedID),
			zap.String("course_code", result.CourseCode))
		return ""
	}
	promoted.EnrollInCourse(result.CourseCode)
	r.logger.Debug("waitlist promotion",
		zap.String("student_id", result.PromotedID),
		zap.String("course_code", result.CourseCode))
	return fmt.Sprintf("promoted %s into %s", result.PromotedID, result.CourseCode)
}

func (r *Registry) record(action models.ActivityAction, studentID, courseCode, details string) models.ActivityLogEntry {
	entry := r.activity.Append(action, studentID, courseCode, details)
	r.logger.Debug("registry mutation",
		zap.Uint64("seq", entry.Seq),
		zap.String("action", string(action)),
		zap.String("student_id", studentID),
		zap.String("course_code", courseCode))
	return entry
}

func (r *Registry) reject(base *appErrors.Error, message string, fields ...zap.Field) error {
	r.logger.Warn(message, fields...)
	return appErrors.Clone(base, message)
}

func withPromotions(details string, promotions []string) string {
	if len(promotions) == 0 {
		return details
	}
	return details + " (" + strings.Join(promotions, "; ") + ")"
}
