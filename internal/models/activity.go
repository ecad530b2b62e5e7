package models

// ActivityAction tags an audit entry with the mutation that produced it.
type ActivityAction string

// Activity actions recorded by the registry.
const (
	ActivityAddStudent    ActivityAction = "ADD STUDENT"
	ActivityRemoveStudent ActivityAction = "REMOVE STUDENT"
	ActivityUpdateStudent ActivityAction = "UPDATE STUDENT"
	ActivityAddCourse     ActivityAction = "ADD COURSE"
	ActivityRemoveCourse  ActivityAction = "REMOVE COURSE"
	ActivityUpdateCourse  ActivityAction = "UPDATE COURSE"
	ActivityEnroll        ActivityAction = "ENROLL"
	ActivityDrop          ActivityAction = "DROP"
	ActivityLoadFile      ActivityAction = "LOAD_FILE"
)

// ActivityLogEntry is one immutable record of the audit trail.
type ActivityLogEntry struct {
	Seq        uint64         `db:"seq" json:"seq" yaml:"seq"`
	Timestamp  string         `db:"logged_at" json:"timestamp" yaml:"timestamp"`
	Action     ActivityAction `db:"action" json:"action" yaml:"action"`
	StudentID  string         `db:"student_id" json:"student_id,omitempty" yaml:"student_id,omitempty"`
	CourseCode string         `db:"course_code" json:"course_code,omitempty" yaml:"course_code,omitempty"`
	Details    string         `db:"details" json:"details" yaml:"details"`
}

// ArchivedActivity is an activity entry persisted to the audit archive.
type ArchivedActivity struct {
	ID string `db:"id" json:"id"`
	ActivityLogEntry
	InstanceID string `db:"instance_id" json:"instance_id"`
}

// ActivityFilter narrows archived activity queries.
type ActivityFilter struct {
	InstanceID string
	StudentID  string
	CourseCode string
	Action     ActivityAction
	Limit      int
	Offset     int
}
