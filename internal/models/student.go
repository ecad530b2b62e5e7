package models

// Student is a read-only snapshot of a student and the course codes they are enrolled in.
type Student struct {
	ID              string   `json:"id"`
	FullName        string   `json:"full_name"`
	EnrolledCourses []string `json:"enrolled_courses"`
	EnrollmentCount int      `json:"enrollment_count"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Name     string
	Page     int
	PageSize int
}

// StudentCourses pairs a student with snapshots of every course they are enrolled in.
type StudentCourses struct {
	StudentID string   `json:"student_id"`
	FullName  string   `json:"full_name"`
	Courses   []Course `json:"courses"`
}
