package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registry-api/internal/registry"
)

func TestRunDemoPromotesWaitlistHead(t *testing.T) {
	var out bytes.Buffer
	reg := registry.New(registry.Options{})

	require.NoError(t, runDemo(&out, reg))

	text := out.String()
	assert.Contains(t, text, "Found student: S001")
	assert.Contains(t, text, "Found course: CS101")
	assert.Contains(t, text, "S020 waitlisted at position 1")
	assert.Contains(t, text, "Promoted S020 from the waitlist")
	assert.NotContains(t, text, "inconsistency")

	roster, err := reg.ListCourseStudents("PHYS101")
	require.NoError(t, err)
	assert.Len(t, roster.EnrolledStudents, 15)
	assert.Empty(t, roster.Waitlist)
	assert.Contains(t, roster.EnrolledStudents, "S020")
}

func TestRunDemoLegacyLeavesPromotedStudentStale(t *testing.T) {
	var out bytes.Buffer
	reg := registry.New(registry.Options{LegacyConsistency: true})

	require.NoError(t, runDemo(&out, reg))
	assert.Contains(t, out.String(), "inconsistency")
}

func TestLoadCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.txt")
	require.NoError(t, os.WriteFile(path, []byte("STUDENT,S1,Alice\nCOURSE,C1,Algebra,Dr. Smith,2\nENROLL,S1,C1\n"), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"load", path, "-o", "json"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "Loaded 1 students, 1 courses, 1 enrollments from "+path)
	assert.Contains(t, out.String(), `"total_enrollments": 1`)
}
