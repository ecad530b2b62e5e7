package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registry-api/internal/dto"
	"github.com/noah-isme/course-registry-api/internal/models"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
)

func TestStudentServiceCreateAndGet(t *testing.T) {
	reg := newTestRegistry(t)
	svc := NewStudentService(reg, nil, nil, nil)
	ctx := context.Background()

	student, err := svc.Create(ctx, dto.CreateStudentRequest{ID: "S1", FullName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", student.FullName)
	assert.Empty(t, student.EnrolledCourses)

	_, err = svc.Create(ctx, dto.CreateStudentRequest{ID: "S1", FullName: "Bob"})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	_, err = svc.Create(ctx, dto.CreateStudentRequest{ID: "", FullName: "Bob"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Get(ctx, "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceListSearchesExactName(t *testing.T) {
	reg := newTestRegistry(t)
	seedRegistry(t, reg, []string{"S1", "S2", "S3"}, nil)
	svc := NewStudentService(reg, nil, nil, nil)
	ctx := context.Background()

	all, pagination, err := svc.List(ctx, models.StudentFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "S1", all[0].ID)
	assert.Equal(t, 3, pagination.TotalCount)

	found, _, err := svc.List(ctx, models.StudentFilter{Name: "Name S2"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "S2", found[0].ID)

	none, _, err := svc.List(ctx, models.StudentFilter{Name: "name s2"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStudentServiceUpdateAllowsEmptyName(t *testing.T) {
	reg := newTestRegistry(t)
	seedRegistry(t, reg, []string{"S1"}, nil)
	svc := NewStudentService(reg, nil, nil, nil)

	student, err := svc.Update(context.Background(), "S1", dto.UpdateStudentRequest{FullName: ""})
	require.NoError(t, err)
	assert.Equal(t, "", student.FullName)

	_, err = svc.Update(context.Background(), "S9", dto.UpdateStudentRequest{FullName: "X"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceDeleteDropsEnrollments(t *testing.T) {
	reg := newTestRegistry(t)
	seedRegistry(t, reg, []string{"S1", "S2"}, map[string]int{"C1": 1})
	_, err := reg.EnrollStudentInCourse("S1", "C1")
	require.NoError(t, err)
	_, err = reg.EnrollStudentInCourse("S2", "C1")
	require.True(t, errors.Is(err, appErrors.ErrWaitlisted))

	svc := NewStudentService(reg, nil, nil, nil)
	require.NoError(t, svc.Delete(context.Background(), "S1"))

	courses, err := svc.Courses(context.Background(), "S2")
	require.NoError(t, err)
	require.Len(t, courses.Courses, 1)
	assert.Equal(t, "C1", courses.Courses[0].Code)
	assert.Empty(t, reg.Inconsistencies())
}
