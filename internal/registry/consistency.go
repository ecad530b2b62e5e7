package registry

import "fmt"

// Inconsistencies lists every violation of the course and cross-entity
// invariants. A registry in legacy mode is expected to report some after
// promotions; the corrected mode must always return an empty slice.
func (r *Registry) Inconsistencies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var problems []string
	for _, code := range sortedKeys(r.courses) {
		course := r.courses[code]
		if course.CurrentEnrollment() > course.Capacity() {
			problems = append(problems, fmt.Sprintf("course %s: enrollment %d exceeds capacity %d", code, course.CurrentEnrollment(), course.Capacity()))
		}
		for _, id := range course.EnrolledStudents() {
			if course.IsWaitlisted(id) {
				problems = append(problems, fmt.Sprintf("course %s: student %s both enrolled and waitlisted", code, id))
			}
			student, ok := r.students[id]
			if !ok {
				problems = append(problems, fmt.Sprintf("course %s: enrolled student %s does not exist", code, id))
				continue
			}
			if !student.IsEnrolledIn(code) {
				problems = append(problems, fmt.Sprintf("course %s: student %s missing back-reference", code, id))
			}
		}
		for _, id := range course.Waitlist() {
			if _, ok := r.students[id]; !ok {
				problems = append(problems, fmt.Sprintf("course %s: waitlisted student %s does not exist", code, id))
			}
		}
	}
	for _, id := range sortedKeys(r.students) {
		for _, code := range r.students[id].Courses() {
			course, ok := r.courses[code]
			if !ok {
				problems = append(problems, fmt.Sprintf("student %s: enrolled course %s does not exist", id, code))
				continue
			}
			if !course.IsEnrolled(id) {
				problems = append(problems, fmt.Sprintf("student %s: course %s has no matching seat", id, code))
			}
		}
	}
	return problems
}
