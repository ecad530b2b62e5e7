package dto

import "github.com/noah-isme/course-registry-api/internal/models"

// CreateStudentRequest captures POST /students payload.
type CreateStudentRequest struct {
	ID       string `json:"id" validate:"required,max=64"`
	FullName string `json:"full_name" validate:"required"`
}

// UpdateStudentRequest captures PUT /students/:id payload. The name is
// written as given, including the empty string.
type UpdateStudentRequest struct {
	FullName string `json:"full_name"`
}

// CreateCourseRequest captures POST /courses payload.
type CreateCourseRequest struct {
	Code       string `json:"code" validate:"required,max=32"`
	Title      string `json:"title" validate:"required"`
	Instructor string `json:"instructor" validate:"required"`
	Capacity   *int   `json:"capacity" validate:"required,min=0"`
}

// UpdateCourseRequest captures PATCH /courses/:code payload. Omitted, empty
// and non-positive values leave the field unchanged.
type UpdateCourseRequest struct {
	Title      *string `json:"title,omitempty"`
	Instructor *string `json:"instructor,omitempty"`
	Capacity   *int    `json:"capacity,omitempty"`
}

// ToModel converts the payload into the engine update.
func (r UpdateCourseRequest) ToModel() models.CourseUpdate {
	return models.CourseUpdate{Title: r.Title, Instructor: r.Instructor, Capacity: r.Capacity}
}

// EnrollRequest captures POST /enrollments payload.
type EnrollRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	CourseCode string `json:"course_code" validate:"required"`
}

// ExportRequest captures POST /exports payload.
type ExportRequest struct {
	Kind       models.ExportKind   `json:"kind" validate:"required,oneof=roster activity courses"`
	Format     models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
	CourseCode string              `json:"course_code" validate:"required_if=Kind roster"`
	Last       int                 `json:"last" validate:"min=0"`
}

// ExportResponse describes a rendered export ready for download.
type ExportResponse struct {
	ID        string              `json:"id"`
	Kind      models.ExportKind   `json:"kind"`
	Format    models.ReportFormat `json:"format"`
	URL       string              `json:"url"`
	ExpiresAt string              `json:"expires_at"`
}
