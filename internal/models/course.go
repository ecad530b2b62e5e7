package models

// Course is a read-only snapshot of a course and its seat utilisation.
type Course struct {
	Code              string `json:"code"`
	Title             string `json:"title"`
	Instructor        string `json:"instructor"`
	Capacity          int    `json:"capacity"`
	CurrentEnrollment int    `json:"current_enrollment"`
	WaitlistSize      int    `json:"waitlist_size"`
}

// CourseRoster lists the enrolled students and the ordered waitlist of a course.
type CourseRoster struct {
	Course
	EnrolledStudents []string `json:"enrolled_students"`
	Waitlist         []string `json:"waitlist"`
}

// CourseFilter defines filter criteria for listing courses.
type CourseFilter struct {
	Title      string
	Instructor string
	Page       int
	PageSize   int
}

// CourseUpdate carries optional course changes. Nil or meaningless values are ignored.
type CourseUpdate struct {
	Title      *string
	Instructor *string
	Capacity   *int
}
