package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-registry-api/internal/models"
)

const activitySchema = `CREATE TABLE IF NOT EXISTS activity_logs (
	id          UUID PRIMARY KEY,
	instance_id TEXT NOT NULL,
	seq         BIGINT NOT NULL,
	logged_at   TEXT NOT NULL,
	action      TEXT NOT NULL,
	student_id  TEXT NOT NULL DEFAULT '',
	course_code TEXT NOT NULL DEFAULT '',
	details     TEXT NOT NULL DEFAULT '',
	UNIQUE (instance_id, seq)
)`

// ActivityRepository archives registry activity entries in Postgres.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// EnsureSchema creates the activity_logs table when missing.
func (r *ActivityRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, activitySchema); err != nil {
		return fmt.Errorf("ensure activity schema: %w", err)
	}
	return nil
}

// Insert stores one entry. Replays of the same (instance_id, seq) are ignored
// so retried jobs never duplicate rows.
func (r *ActivityRepository) Insert(ctx context.Context, entry *models.ArchivedActivity) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `INSERT INTO activity_logs (id, instance_id, seq, logged_at, action, student_id, course_code, details)
	VALUES (:id, :instance_id, :seq, :logged_at, :action, :student_id, :course_code, :details)
	ON CONFLICT (instance_id, seq) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// List returns archived entries newest first.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.ArchivedActivity, error) {
	where, args := buildActivityWhere(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT id, instance_id, seq, logged_at, action, student_id, course_code, details
	FROM activity_logs%s ORDER BY logged_at DESC, seq DESC LIMIT %d OFFSET %d`, where, limit, offset)

	items := make([]models.ArchivedActivity, 0)
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return items, nil
}

// Count returns the number of archived entries matching filter.
func (r *ActivityRepository) Count(ctx context.Context, filter models.ActivityFilter) (int, error) {
	where, args := buildActivityWhere(filter)
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM activity_logs"+where, args...); err != nil {
		return 0, fmt.Errorf("count activity: %w", err)
	}
	return total, nil
}

func buildActivityWhere(filter models.ActivityFilter) (string, []interface{}) {
	args := make([]interface{}, 0, 4)
	conditions := make([]string, 0, 4)
	add := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.InstanceID != "" {
		add("instance_id", filter.InstanceID)
	}
	if filter.StudentID != "" {
		add("student_id", filter.StudentID)
	}
	if filter.CourseCode != "" {
		add("course_code", filter.CourseCode)
	}
	if filter.Action != "" {
		add("action", string(filter.Action))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
