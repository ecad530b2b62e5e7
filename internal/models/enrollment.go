package models

// EnrollOutcome is the seat decision a course makes for an enrollment attempt.
type EnrollOutcome string

// Possible enrollment outcomes.
const (
	EnrollOutcomeEnrolled   EnrollOutcome = "ENROLLED"
	EnrollOutcomeWaitlisted EnrollOutcome = "WAITLISTED"
	EnrollOutcomeRejected   EnrollOutcome = "REJECTED"
)

// EnrollmentResult reports the outcome of an enrollment request.
type EnrollmentResult struct {
	StudentID        string        `json:"student_id"`
	CourseCode       string        `json:"course_code"`
	Outcome          EnrollOutcome `json:"outcome"`
	WaitlistPosition int           `json:"waitlist_position,omitempty"`
}

// DropResult reports who left a course and who, if anyone, was promoted from its waitlist.
type DropResult struct {
	StudentID  string `json:"student_id"`
	CourseCode string `json:"course_code"`
	PromotedID string `json:"promoted_student_id,omitempty"`
}

// InstructorRoster maps student IDs to names for everyone enrolled with one instructor.
type InstructorRoster struct {
	Instructor string            `json:"instructor"`
	Students   map[string]string `json:"students"`
}
