package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/course-registry-api/internal/models"
	"github.com/noah-isme/course-registry-api/internal/registry"
	"github.com/noah-isme/course-registry-api/internal/service"
	"github.com/noah-isme/course-registry-api/pkg/config"
	"github.com/noah-isme/course-registry-api/pkg/logger"
)

var (
	version   = "dev"
	legacy    bool
	recent    int
	output    string
	logLevel  string
	cliLogger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "registrar",
	Short:         "Course registry command line",
	Long:          `Load registry files, run the demonstration scenario and print statistics without starting the HTTP server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch output {
		case "table", "json", "yaml":
		default:
			return fmt.Errorf("unknown output format %q (want table, json or yaml)", output)
		}
		l, err := logger.Build(config.EnvDevelopment, config.LogConfig{Level: logLevel, Format: "console"})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cliLogger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cliLogger != nil {
			_ = cliLogger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&legacy, "legacy", false,
		"reproduce the original consistency behaviour (promotions not mirrored, waitlists kept on removal)")
	rootCmd.PersistentFlags().IntVar(&recent, "recent", 0,
		"print the N most recent activity entries when done")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table",
		"output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"diagnostic log level")
}

func newRegistry() *registry.Registry {
	return registry.New(registry.Options{LegacyConsistency: legacy, Logger: cliLogger})
}

func newImporter(reg *registry.Registry) *service.ImportService {
	return service.NewImportService(reg, nil, nil, cliLogger)
}

// render writes v as JSON or YAML, or calls table for the default format.
func render(w io.Writer, v interface{}, table func(*tabwriter.Writer)) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close() //nolint:errcheck
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func printStatistics(w io.Writer, stats models.Statistics) error {
	return render(w, stats, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Total students:\t%d\n", stats.TotalStudents)
		fmt.Fprintf(tw, "Total courses:\t%d\n", stats.TotalCourses)
		fmt.Fprintf(tw, "Total enrollments:\t%d\n", stats.TotalEnrollments)
		fmt.Fprintf(tw, "Total activities:\t%d\n", stats.TotalActivities)
		if stats.AverageEnrollmentsPerCourse != nil {
			fmt.Fprintf(tw, "Average enrollments per course:\t%.2f\n", *stats.AverageEnrollmentsPerCourse)
		}
	})
}

func printStudents(w io.Writer, students []models.Student) error {
	return render(w, students, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tNAME\tCOURSES")
		for _, s := range students {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.FullName, strings.Join(s.EnrolledCourses, ","))
		}
	})
}

func printCourses(w io.Writer, courses []models.Course) error {
	return render(w, courses, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "CODE\tTITLE\tINSTRUCTOR\tENROLLED\tWAITLIST")
		for _, c := range courses {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\n", c.Code, c.Title, c.Instructor, c.CurrentEnrollment, c.Capacity, c.WaitlistSize)
		}
	})
}

func printRoster(w io.Writer, roster models.CourseRoster) error {
	return render(w, roster, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "%s\t%s (%s)\t%d/%d\n", roster.Code, roster.Title, roster.Instructor, roster.CurrentEnrollment, roster.Capacity)
		for _, id := range roster.EnrolledStudents {
			fmt.Fprintf(tw, "  enrolled\t%s\t\n", id)
		}
		for i, id := range roster.Waitlist {
			fmt.Fprintf(tw, "  waitlist #%d\t%s\t\n", i+1, id)
		}
	})
}

func printStudentCourses(w io.Writer, sc models.StudentCourses) error {
	return render(w, sc, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "%s\t%s\n", sc.StudentID, sc.FullName)
		for _, c := range sc.Courses {
			fmt.Fprintf(tw, "  %s\t%s\n", c.Code, c.Title)
		}
	})
}

func printInstructorRoster(w io.Writer, roster models.InstructorRoster) error {
	return render(w, roster, func(tw *tabwriter.Writer) {
		ids := make([]string, 0, len(roster.Students))
		for id := range roster.Students {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fmt.Fprintf(tw, "Students taught by %s:\n", roster.Instructor)
		for _, id := range ids {
			fmt.Fprintf(tw, "  %s\t%s\n", id, roster.Students[id])
		}
	})
}

func printActivity(w io.Writer, entries []models.ActivityLogEntry) error {
	return render(w, entries, func(tw *tabwriter.Writer) {
		for _, e := range entries {
			fmt.Fprintf(tw, "[%s]\t%s\t%s\n", e.Timestamp, e.Action, e.Details)
		}
	})
}

func printRecent(w io.Writer, reg *registry.Registry) error {
	if recent <= 0 {
		return nil
	}
	fmt.Fprintf(w, "\nRecent activity (%d):\n", recent)
	return printActivity(w, reg.RecentActivity(recent))
}
