package models

// LoadSummary tallies the records replayed by a bulk load.
type LoadSummary struct {
	Source            string   `json:"source"`
	StudentsLoaded    int      `json:"students_loaded"`
	CoursesLoaded     int      `json:"courses_loaded"`
	EnrollmentsLoaded int      `json:"enrollments_loaded"`
	LinesRead         int      `json:"lines_read"`
	Warnings          []string `json:"warnings,omitempty"`
}

// ReportFormat enumerates supported export formats.
type ReportFormat string

// Supported export formats.
const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ExportKind enumerates the datasets that can be exported.
type ExportKind string

// Supported export datasets.
const (
	ExportKindRoster   ExportKind = "roster"
	ExportKindActivity ExportKind = "activity"
	ExportKindCourses  ExportKind = "courses"
)
