package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registry-api/internal/dto"
	"github.com/noah-isme/course-registry-api/internal/models"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
)

func TestEnrollmentServiceEnrollOutcomes(t *testing.T) {
	reg := newTestRegistry(t)
	seedRegistry(t, reg, []string{"S1", "S2", "S3"}, map[string]int{"C1": 2})
	metrics := NewMetricsService()
	svc := NewEnrollmentService(reg, newTestCache(metrics), metrics, nil, nil, time.Minute)
	ctx := context.Background()

	for _, id := range []string{"S1", "S2"} {
		result, err := svc.Enroll(ctx, dto.EnrollRequest{StudentID: id, CourseCode: "C1"})
		require.NoError(t, err)
		assert.Equal(t, models.EnrollOutcomeEnrolled, result.Outcome)
	}

	result, err := svc.Enroll(ctx, dto.EnrollRequest{StudentID: "S3", CourseCode: "C1"})
	require.True(t, errors.Is(err, appErrors.ErrWaitlisted))
	require.NotNil(t, result)
	assert.Equal(t, models.EnrollOutcomeWaitlisted, result.Outcome)
	assert.Equal(t, 1, result.WaitlistPosition)

	_, err = svc.Enroll(ctx, dto.EnrollRequest{StudentID: "S1", CourseCode: "C1"})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	_, err = svc.Enroll(ctx, dto.EnrollRequest{StudentID: "S9", CourseCode: "C1"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Enroll(ctx, dto.EnrollRequest{StudentID: "S1"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.EnrollmentsTotal)
	assert.Equal(t, uint64(1), snapshot.WaitlistedTotal)
}

func TestEnrollmentServiceDropPromotesWaitlistHead(t *testing.T) {
	reg := newTestRegistry(t)
	seedRegistry(t, reg, []string{"S1", "S2", "S3"}, map[string]int{"C1": 1})
	metrics := NewMetricsService()
	svc := NewEnrollmentService(reg, nil, metrics, nil, nil, time.Minute)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, dto.EnrollRequest{StudentID: "S1", CourseCode: "C1"})
	require.NoError(t, err)
	_, _ = svc.Enroll(ctx, dto.EnrollRequest{StudentID: "S2", CourseCode: "C1"})
	_, _ = svc.Enroll(ctx, dto.EnrollRequest{StudentID: "S3", CourseCode: "C1"})

	result, err := svc.Drop(ctx, "S1", "C1")
	require.NoError(t, err)
	assert.Equal(t, "S2", result.PromotedID)
	assert.Equal(t, uint64(1), metrics.Snapshot().PromotionsTotal)

	roster, err := reg.ListCourseStudents("C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"S2"}, roster.EnrolledStudents)
	assert.Equal(t, []string{"S3"}, roster.Waitlist)

	_, err = svc.Drop(ctx, "S1", "C1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestEnrollmentServiceInstructorRosterIsCachedUntilMutation(t *testing.T) {
	reg := newTestRegistry(t)
	seedRegistry(t, reg, []string{"S1", "S2"}, map[string]int{"C1": 5})
	metrics := NewMetricsService()
	cache := newTestCache(metrics)
	svc := NewEnrollmentService(reg, cache, metrics, nil, nil, time.Minute)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, dto.EnrollRequest{StudentID: "S1", CourseCode: "C1"})
	require.NoError(t, err)

	roster, hit, err := svc.StudentsByInstructor(ctx, "Dr. Smith")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, map[string]string{"S1": "Name S1"}, roster.Students)

	roster, hit, err = svc.StudentsByInstructor(ctx, "Dr. Smith")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, roster.Students, 1)

	_, err = svc.Enroll(ctx, dto.EnrollRequest{StudentID: "S2", CourseCode: "C1"})
	require.NoError(t, err)

	roster, hit, err = svc.StudentsByInstructor(ctx, "Dr. Smith")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, roster.Students, 2)

	_, _, err = svc.StudentsByInstructor(ctx, "")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestStatisticsServiceCachesUntilInvalidated(t *testing.T) {
	reg := newTestRegistry(t)
	seedRegistry(t, reg, []string{"S1"}, map[string]int{"C1": 5})
	metrics := NewMetricsService()
	cache := newTestCache(metrics)
	stats := NewStatisticsService(reg, cache, metrics, time.Minute)
	students := NewStudentService(reg, cache, nil, nil)
	ctx := context.Background()

	first, hit, err := stats.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, first.TotalStudents)
	require.NotNil(t, first.AverageEnrollmentsPerCourse)

	_, hit, err = stats.Get(ctx)
	require.NoError(t, err)
	assert.True(t, hit)

	_, err = students.Create(ctx, dto.CreateStudentRequest{ID: "S2", FullName: "Bob"})
	require.NoError(t, err)

	fresh, hit, err := stats.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, fresh.TotalStudents)

	system := stats.System()
	assert.Equal(t, uint64(1), system.CacheHits)
	assert.Equal(t, uint64(2), system.CacheMisses)
}
