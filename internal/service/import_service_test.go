package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registry-api/internal/models"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
)

const sampleLines = `# sample registry
STUDENT,S001,Alice Smith
STUDENT,S002,Bob Jones
STUDENT,S001,Duplicate
COURSE,CS101,Intro to CS,Dr. Johnson,2
COURSE,MATH201,Calculus,Dr. Brown
COURSE,ENG101,Writing,Dr. Lee,lots
COURSE,PHYS101,Physics,Dr. Newton,25 seats

ENROLL,S001,CS101
ENROLL,S002,CS101
ENROLL,S001,CS101
ENROLL,S009,CS101
GRADE,S001,A
`

func TestImportServiceLoadLines(t *testing.T) {
	reg := newTestRegistry(t)
	svc := NewImportService(reg, nil, nil, nil)

	summary, err := svc.Load(context.Background(), "sample.txt", ImportFormatLines, strings.NewReader(sampleLines))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.StudentsLoaded)
	assert.Equal(t, 4, summary.CoursesLoaded)
	assert.Equal(t, 2, summary.EnrollmentsLoaded)
	assert.Len(t, summary.Warnings, 5)
	assert.Contains(t, summary.Warnings, "Unknown command 'GRADE' on line 14")

	math, err := reg.GetCourse("MATH201")
	require.NoError(t, err)
	assert.Equal(t, DefaultCourseCapacity, math.Capacity)
	eng, err := reg.GetCourse("ENG101")
	require.NoError(t, err)
	assert.Equal(t, DefaultCourseCapacity, eng.Capacity)
	phys, err := reg.GetCourse("PHYS101")
	require.NoError(t, err)
	assert.Equal(t, 25, phys.Capacity)

	log := reg.Activity()
	last := log[len(log)-1]
	assert.Equal(t, models.ActivityLoadFile, last.Action)
	assert.Equal(t, "Loaded 2 students, 4 courses, 2 enrollments from sample.txt", last.Details)
}

func TestImportServiceNegativeCapacityRejectsCourseLine(t *testing.T) {
	reg := newTestRegistry(t)
	svc := NewImportService(reg, nil, nil, nil)

	summary, err := svc.Load(context.Background(), "neg.txt", ImportFormatLines, strings.NewReader("COURSE,X,Topology,Dr. Ito,-5\n"))
	require.NoError(t, err)
	assert.Zero(t, summary.CoursesLoaded)
	assert.Equal(t, []string{"Could not add course X (line 1)"}, summary.Warnings)
	assert.False(t, reg.CourseExists("X"))
}

func TestImportServiceWaitlistedEnrollmentIsNotCounted(t *testing.T) {
	reg := newTestRegistry(t)
	svc := NewImportService(reg, nil, nil, nil)
	input := "STUDENT,S1,A\r\nSTUDENT,S2,B\r\nCOURSE,C1,Title,Dr. X,1\r\nENROLL,S1,C1\r\nENROLL,S2,C1\r\n"

	summary, err := svc.Load(context.Background(), "crlf.txt", ImportFormatLines, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EnrollmentsLoaded)

	student, err := reg.GetStudent("S2")
	require.NoError(t, err)
	assert.Equal(t, "B", student.FullName)
	roster, err := reg.ListCourseStudents("C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"S2"}, roster.Waitlist)
}

func TestImportServiceLoadYAML(t *testing.T) {
	reg := newTestRegistry(t)
	svc := NewImportService(reg, nil, nil, nil)
	doc := `
students:
  - {id: S1, name: Alice}
  - {id: S2, name: Bob}
courses:
  - {code: C1, title: Algebra, instructor: Dr. Smith, capacity: 1}
  - {code: C2, title: Biology, instructor: Dr. Jones}
enrollments:
  - {student: S1, course: C1}
  - {student: S2, course: C1}
  - {student: S2, course: C2}
`
	summary, err := svc.Load(context.Background(), "seed.yaml", ImportFormatYAML, strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.StudentsLoaded)
	assert.Equal(t, 2, summary.CoursesLoaded)
	assert.Equal(t, 2, summary.EnrollmentsLoaded)
	assert.Len(t, summary.Warnings, 1)

	course, err := reg.GetCourse("C2")
	require.NoError(t, err)
	assert.Equal(t, DefaultCourseCapacity, course.Capacity)
}

func TestImportServiceReadFailureSkipsLoadEntry(t *testing.T) {
	reg := newTestRegistry(t)
	svc := NewImportService(reg, nil, nil, nil)

	summary, err := svc.Load(context.Background(), "bad.yaml", ImportFormatYAML, strings.NewReader("students: [unterminated"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrLoadFailed))
	require.NotNil(t, summary)
	assert.Empty(t, reg.Activity())
}

func TestImportServiceEmptyLoadRefreshesCachedStatistics(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	metrics := NewMetricsService()
	cache := newTestCache(metrics)
	stats := NewStatisticsService(reg, cache, metrics, time.Minute)
	svc := NewImportService(reg, cache, metrics, nil)

	before, hit, err := stats.Get(ctx)
	require.NoError(t, err)
	require.False(t, hit)
	_, hit, err = stats.Get(ctx)
	require.NoError(t, err)
	require.True(t, hit)

	summary, err := svc.Load(ctx, "comments.txt", ImportFormatLines, strings.NewReader("# only a comment\n"))
	require.NoError(t, err)
	assert.Zero(t, summary.StudentsLoaded+summary.CoursesLoaded+summary.EnrollmentsLoaded)

	after, hit, err := stats.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, before.TotalActivities+1, after.TotalActivities)
	assert.Equal(t, reg.Statistics().TotalActivities, after.TotalActivities)
}

func TestImportServiceLoadFile(t *testing.T) {
	reg := newTestRegistry(t)
	svc := NewImportService(reg, nil, nil, nil)

	_, err := svc.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, errors.Is(err, appErrors.ErrLoadFailed))

	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("STUDENT,S1,Alice\n"), 0o600))
	summary, err := svc.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.StudentsLoaded)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, ImportFormatYAML, DetectFormat("seed.YML", ""))
	assert.Equal(t, ImportFormatYAML, DetectFormat("upload", "application/x-yaml"))
	assert.Equal(t, ImportFormatLines, DetectFormat("seed.csv", "text/csv"))
}

func TestParseLeadingInt(t *testing.T) {
	cases := map[string]int{"25": 25, " 7": 7, "-3": -3, "25 seats": 25, "+4x": 4}
	for raw, want := range cases {
		got, err := parseLeadingInt(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"", "lots", "-", " x1"} {
		_, err := parseLeadingInt(raw)
		assert.Error(t, err, raw)
	}
}
