package registry

import (
	"sort"

	"github.com/noah-isme/course-registry-api/internal/models"
)

// Course owns its roster and waitlist. It never references students or the registry.
type Course struct {
	code       string
	title      string
	instructor string
	capacity   int
	enrolled   map[string]struct{}
	waitlist   *Waitlist
}

// NewCourse creates a course with no enrolled or waiting students.
func NewCourse(code, title, instructor string, capacity int) *Course {
	return &Course{
		code:       code,
		title:      title,
		instructor: instructor,
		capacity:   capacity,
		enrolled:   make(map[string]struct{}),
		waitlist:   NewWaitlist(),
	}
}

// Code returns the immutable course code.
func (c *Course) Code() string { return c.code }

// Title returns the course title.
func (c *Course) Title() string { return c.title }

// Instructor returns the instructor's name.
func (c *Course) Instructor() string { return c.instructor }

// Capacity returns the number of seats.
func (c *Course) Capacity() int { return c.capacity }

// CurrentEnrollment is always the size of the enrolled set.
func (c *Course) CurrentEnrollment() int { return len(c.enrolled) }

// WaitlistSize returns how many students are waiting for a seat.
func (c *Course) WaitlistSize() int { return c.waitlist.Len() }

// SetTitle replaces the title as given.
func (c *Course) SetTitle(title string) { c.title = title }

// SetInstructor replaces the instructor as given.
func (c *Course) SetInstructor(instructor string) { c.instructor = instructor }

// SetCapacity changes the seat count. Waitlisted students are not promoted.
func (c *Course) SetCapacity(capacity int) { c.capacity = capacity }

// HasAvailableSeats reports whether another student can be seated.
func (c *Course) HasAvailableSeats() bool { return c.CurrentEnrollment() < c.capacity }

// IsFull is the negation of HasAvailableSeats.
func (c *Course) IsFull() bool { return c.CurrentEnrollment() >= c.capacity }

// IsEnrolled reports whether studentID holds a seat.
func (c *Course) IsEnrolled(studentID string) bool {
	_, ok := c.enrolled[studentID]
	return ok
}

// IsWaitlisted reports whether studentID is waiting for a seat.
func (c *Course) IsWaitlisted(studentID string) bool {
	return c.waitlist.Contains(studentID)
}

// WaitlistPosition returns the 1-based waitlist place of studentID, or 0.
func (c *Course) WaitlistPosition(studentID string) int {
	return c.waitlist.Position(studentID)
}

// Enroll seats studentID when a seat is free and queues it otherwise.
// A waitlisted student who finds a free seat (after a capacity increase)
// leaves the waitlist and takes the seat.
func (c *Course) Enroll(studentID string) models.EnrollOutcome {
	if studentID == "" || c.IsEnrolled(studentID) {
		return models.EnrollOutcomeRejected
	}
	if c.HasAvailableSeats() {
		c.waitlist.Remove(studentID)
		c.enrolled[studentID] = struct{}{}
		return models.EnrollOutcomeEnrolled
	}
	if !c.waitlist.Push(studentID) {
		return models.EnrollOutcomeRejected
	}
	return models.EnrollOutcomeWaitlisted
}

// Drop frees studentID's seat and promotes the head of the waitlist into it.
// It returns false, without mutating, when studentID is empty or not enrolled.
func (c *Course) Drop(studentID string) (models.DropResult, bool) {
	if studentID == "" || !c.IsEnrolled(studentID) {
		return models.DropResult{}, false
	}
	delete(c.enrolled, studentID)
	result := models.DropResult{StudentID: studentID, CourseCode: c.code}
	if next, ok := c.waitlist.Pop(); ok {
		c.enrolled[next] = struct{}{}
		result.PromotedID = next
	}
	return result, true
}

// RemoveFromWaitlist purges studentID from the waitlist without touching seats.
func (c *Course) RemoveFromWaitlist(studentID string) bool {
	return c.waitlist.Remove(studentID)
}

// EnrolledStudents returns the enrolled IDs in sorted order.
func (c *Course) EnrolledStudents() []string {
	ids := make([]string, 0, len(c.enrolled))
	for id := range c.enrolled {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Waitlist returns the waiting IDs in arrival order.
func (c *Course) Waitlist() []string {
	return c.waitlist.Items()
}

// Snapshot copies the course into its read-only view.
func (c *Course) Snapshot() models.Course {
	return models.Course{
		Code:              c.code,
		Title:             c.title,
		Instructor:        c.instructor,
		Capacity:          c.capacity,
		CurrentEnrollment: c.CurrentEnrollment(),
		WaitlistSize:      c.waitlist.Len(),
	}
}

// Roster copies the course together with its enrolled set and waitlist.
func (c *Course) Roster() models.CourseRoster {
	return models.CourseRoster{
		Course:           c.Snapshot(),
		EnrolledStudents: c.EnrolledStudents(),
		Waitlist:         c.Waitlist(),
	}
}
