package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/biosecret/tasktracker/common"
	"github.com/biosecret/tasktracker/database"
	"github.com/biosecret/tasktracker/models"
)

var taskColumns = []string{
	"task_id", "user_id", "title", "description", "estimate", "status", "completed_at", "logged_time",
}

const returningTask = "RETURNING task_id, user_id, title, description, estimate, status, completed_at, logged_time"

// TaskStore lưu task trên PostgreSQL. Mọi câu lệnh trên task có sẵn đều lọc
// theo cả task_id và user_id.
type TaskStore struct {
	db      database.DBTX
	builder squirrel.StatementBuilderType
}

func NewTaskStore(db database.DBTX) *TaskStore {
	return &TaskStore{db: db, builder: newBuilder()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t           models.Task
		status      string
		description sql.NullString
		completedAt sql.NullTime
		loggedTime  sql.NullFloat64
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &description, &t.Estimate, &status, &completedAt, &loggedTime)
	if err != nil {
		return models.Task{}, err
	}
	t.Status = models.TaskStatus(status)
	if description.Valid {
		d := description.String
		t.Description = &d
	}
	if completedAt.Valid {
		c := completedAt.Time
		t.CompletedAt = &c
	}
	t.LoggedTime = loggedTime.Float64
	return t, nil
}

func (r *TaskStore) queryOne(ctx context.Context, query string, args []any) (models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, common.ErrNotFound
		}
		return models.Task{}, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func owned(userID, taskID int64) squirrel.Eq {
	return squirrel.Eq{"task_id": taskID, "user_id": userID}
}

func (r *TaskStore) Create(ctx context.Context, t models.Task) (models.Task, error) {
	query, args, err := r.builder.
		Insert("tasks").
		Columns("user_id", "title", "description", "estimate", "status", "completed_at", "logged_time").
		Values(t.UserID, t.Title, t.Description, t.Estimate, string(t.Status), t.CompletedAt, t.LoggedTime).
		Suffix(returningTask).
		ToSql()
	if err != nil {
		return models.Task{}, fmt.Errorf("build query: %w", err)
	}
	return r.queryOne(ctx, query, args)
}

// ListByUser trả về task của user, sắp xếp theo id
func (r *TaskStore) ListByUser(ctx context.Context, userID int64) ([]models.Task, error) {
	query, args, err := r.builder.
		Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("task_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tasks, nil
}

func (r *TaskStore) GetForUser(ctx context.Context, userID, taskID int64) (models.Task, error) {
	query, args, err := r.builder.
		Select(taskColumns...).
		From("tasks").
		Where(owned(userID, taskID)).
		ToSql()
	if err != nil {
		return models.Task{}, fmt.Errorf("build query: %w", err)
	}
	return r.queryOne(ctx, query, args)
}

// Update cập nhật các trường khác nil của patch
func (r *TaskStore) Update(ctx context.Context, userID, taskID int64, patch models.TaskPatch) (models.Task, error) {
	set := map[string]any{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Estimate != nil {
		set["estimate"] = *patch.Estimate
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.CompletedAt != nil {
		set["completed_at"] = *patch.CompletedAt
	}
	if patch.LoggedTime != nil {
		set["logged_time"] = *patch.LoggedTime
	}
	if len(set) == 0 {
		return r.GetForUser(ctx, userID, taskID)
	}

	query, args, err := r.builder.
		Update("tasks").
		SetMap(set).
		Where(owned(userID, taskID)).
		Suffix(returningTask).
		ToSql()
	if err != nil {
		return models.Task{}, fmt.Errorf("build query: %w", err)
	}
	return r.queryOne(ctx, query, args)
}

// AddLoggedTime cộng delta vào logged_time trong một câu lệnh duy nhất
func (r *TaskStore) AddLoggedTime(ctx context.Context, userID, taskID int64, delta float64) (models.Task, error) {
	query, args, err := r.builder.
		Update("tasks").
		Set("logged_time", squirrel.Expr("COALESCE(logged_time, 0) + ?", delta)).
		Where(owned(userID, taskID)).
		Suffix(returningTask).
		ToSql()
	if err != nil {
		return models.Task{}, fmt.Errorf("build query: %w", err)
	}

	t, err := r.queryOne(ctx, query, args)
	if isOutOfRange(err) {
		return models.Task{}, errLoggedTimeOverflow()
	}
	return t, err
}

// Delete xóa task; không có hàng nào bị xóa thì trả về common.ErrNotFound
func (r *TaskStore) Delete(ctx context.Context, userID, taskID int64) error {
	query, args, err := r.builder.
		Delete("tasks").
		Where(owned(userID, taskID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n != 1 {
		return common.ErrNotFound
	}
	return nil
}
