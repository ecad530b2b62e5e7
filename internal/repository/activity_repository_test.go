package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registry-api/internal/models"
)

func newActivityRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var activityColumns = []string{"id", "instance_id", "seq", "logged_at", "action", "student_id", "course_code", "details"}

func TestActivityRepositoryEnsureSchema(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS activity_logs")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewActivityRepository(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryInsertAssignsID(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_logs")).
		WithArgs(sqlmock.AnyArg(), "node-1", sqlmock.AnyArg(), "2025-07-30 09:15:00", "ENROLL", "S001", "CS101", "Enrolled Alice Johnson in Intro").
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.ArchivedActivity{
		ActivityLogEntry: models.ActivityLogEntry{
			Seq:        7,
			Timestamp:  "2025-07-30 09:15:00",
			Action:     models.ActivityEnroll,
			StudentID:  "S001",
			CourseCode: "CS101",
			Details:    "Enrolled Alice Johnson in Intro",
		},
		InstanceID: "node-1",
	}
	require.NoError(t, NewActivityRepository(db).Insert(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(activityColumns).
		AddRow("a-1", "node-1", 3, "2025-07-30 09:15:00", "DROP", "S003", "PHYS101", "Dropped Carol Davis from Physics I")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, instance_id, seq, logged_at, action, student_id, course_code, details\n\tFROM activity_logs WHERE student_id = $1 AND action = $2 ORDER BY logged_at DESC, seq DESC LIMIT 10 OFFSET 0")).
		WithArgs("S003", "DROP").
		WillReturnRows(rows)

	items, err := NewActivityRepository(db).List(context.Background(), models.ActivityFilter{StudentID: "S003", Action: models.ActivityDrop, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint64(3), items[0].Seq)
	assert.Equal(t, "PHYS101", items[0].CourseCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryCount(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM activity_logs WHERE course_code = $1")).
		WithArgs("CS101").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	total, err := NewActivityRepository(db).Count(context.Background(), models.ActivityFilter{CourseCode: "CS101"})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
