package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/noah-isme/course-registry-api/internal/models"
	"github.com/noah-isme/course-registry-api/internal/registry"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the demonstration scenario",
	Long: `Populate an empty registry with five students and five courses, fill
PHYS101 past capacity to build a waitlist, run the searches and finally drop
S003 from PHYS101 so the head of the waitlist is promoted.

Run with --legacy to see the promoted student's course list stay stale.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd.OutOrStdout(), newRegistry())
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

type demoCourse struct {
	code, title, instructor string
	capacity                int
}

var (
	demoStudents = [][2]string{
		{"S001", "Alice Johnson"},
		{"S002", "Bob Smith"},
		{"S003", "Carol Davis"},
		{"S004", "David Wilson"},
		{"S005", "Eva Brown"},
	}
	demoCourses = []demoCourse{
		{"CS101", "Introduction to Computer Science", "Dr. Smith", 25},
		{"MATH201", "Calculus I", "Dr. Johnson", 30},
		{"ENG101", "English Composition", "Dr. Davis", 20},
		{"PHYS101", "Physics I", "Dr. Wilson", 15},
		{"HIST101", "World History", "Dr. Brown", 35},
	}
	demoEnrollments = [][2]string{
		{"S001", "CS101"}, {"S001", "MATH201"},
		{"S002", "CS101"}, {"S002", "ENG101"},
		{"S003", "MATH201"}, {"S003", "PHYS101"},
		{"S004", "HIST101"},
		{"S005", "CS101"}, {"S005", "MATH201"}, {"S005", "ENG101"},
	}
)

func runDemo(w io.Writer, reg *registry.Registry) error {
	step := func(n int, title string) { fmt.Fprintf(w, "\n%d. %s\n", n, title) }
	report := func(err error) {
		if err != nil {
			fmt.Fprintf(w, "  %v\n", err)
		}
	}

	fmt.Fprintln(w, "=== DEMO ===")

	step(1, "Adding students")
	for _, s := range demoStudents {
		report(reg.AddStudent(s[0], s[1]))
	}

	step(2, "Adding courses")
	for _, c := range demoCourses {
		report(reg.AddCourse(c.code, c.title, c.instructor, c.capacity))
	}

	step(3, "Enrolling students")
	for _, e := range demoEnrollments {
		_, err := reg.EnrollStudentInCourse(e[0], e[1])
		report(err)
	}

	step(4, "Filling PHYS101 past capacity")
	for i := 6; i <= 20; i++ {
		id := fmt.Sprintf("S%03d", i)
		report(reg.AddStudent(id, fmt.Sprintf("Student%d", i)))
		result, err := reg.EnrollStudentInCourse(id, "PHYS101")
		if result.Outcome == models.EnrollOutcomeWaitlisted {
			fmt.Fprintf(w, "  %s waitlisted at position %d\n", id, result.WaitlistPosition)
			continue
		}
		report(err)
	}

	step(5, "Registry contents")
	if err := printStudents(w, reg.Students()); err != nil {
		return err
	}
	if err := printCourses(w, reg.Courses()); err != nil {
		return err
	}
	if err := printStatistics(w, reg.Statistics()); err != nil {
		return err
	}

	step(6, "Searching")
	if id, ok := reg.SearchStudentByName("Alice Johnson"); ok {
		fmt.Fprintf(w, "Found student: %s\n", id)
	}
	if code, ok := reg.SearchCourseByTitle("Introduction to Computer Science"); ok {
		fmt.Fprintf(w, "Found course: %s\n", code)
	}

	step(7, "Students by instructor")
	if err := printInstructorRoster(w, models.InstructorRoster{
		Instructor: "Dr. Smith",
		Students:   reg.GetStudentsByInstructor("Dr. Smith"),
	}); err != nil {
		return err
	}

	step(8, "Rosters")
	if err := printStudentCoursesFor(w, reg, "S003"); err != nil {
		return err
	}
	if err := printRosterFor(w, reg, "PHYS101"); err != nil {
		return err
	}

	step(9, "Recent activity")
	if err := printActivity(w, reg.RecentActivity(10)); err != nil {
		return err
	}

	step(10, "Dropping S003 from PHYS101")
	result, err := reg.DropStudentFromCourse("S003", "PHYS101")
	report(err)
	if result.PromotedID != "" {
		fmt.Fprintf(w, "Promoted %s from the waitlist\n", result.PromotedID)
	}
	if err := printStudentCoursesFor(w, reg, "S003"); err != nil {
		return err
	}

	step(11, "PHYS101 after the drop")
	if err := printRosterFor(w, reg, "PHYS101"); err != nil {
		return err
	}
	if result.PromotedID != "" {
		if err := printStudentCoursesFor(w, reg, result.PromotedID); err != nil {
			return err
		}
	}
	for _, problem := range reg.Inconsistencies() {
		fmt.Fprintf(w, "inconsistency: %s\n", problem)
	}

	fmt.Fprintln(w, "\n=== DEMO COMPLETE ===")
	return printRecent(w, reg)
}

func printRosterFor(w io.Writer, reg *registry.Registry, code string) error {
	roster, err := reg.ListCourseStudents(code)
	if err != nil {
		fmt.Fprintf(w, "  %v\n", err)
		return nil
	}
	return printRoster(w, roster)
}

func printStudentCoursesFor(w io.Writer, reg *registry.Registry, id string) error {
	courses, err := reg.ListStudentCourses(id)
	if err != nil {
		fmt.Fprintf(w, "  %v\n", err)
		return nil
	}
	return printStudentCourses(w, courses)
}
