package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/biosecret/tasktracker/common"
	"github.com/biosecret/tasktracker/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskRowColumns = []string{"task_id", "user_id", "title", "description", "estimate", "status", "completed_at", "logged_time"}

const returningQ = `RETURNING task_id, user_id, title, description, estimate, status, completed_at, logged_time$`

func newTaskStoreWithMock(t *testing.T) (*TaskStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewTaskStore(db), mock
}

func taskRow(id int64, loggedTime float64) *sqlmock.Rows {
	return sqlmock.NewRows(taskRowColumns).
		AddRow(id, int64(1), "Test Task", nil, 2.5, "To do", nil, loggedTime)
}

func TestTaskStore_Create(t *testing.T) {
	repo, mock := newTaskStoreWithMock(t)

	mock.ExpectQuery(`^INSERT INTO tasks \(user_id,title,description,estimate,status,completed_at,logged_time\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6,\$7\) `+returningQ).
		WithArgs(int64(1), "Test Task", nil, 2.5, "To do", nil, 0.0).
		WillReturnRows(taskRow(10, 0))

	got, err := repo.Create(context.Background(), models.Task{
		UserID: 1, Title: "Test Task", Estimate: 2.5, Status: models.StatusTodo,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ID)
	assert.Equal(t, models.StatusTodo, got.Status)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.CompletedAt)
}

func TestTaskStore_ListByUser(t *testing.T) {
	repo, mock := newTaskStoreWithMock(t)

	done := time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(taskRowColumns).
		AddRow(int64(1), int64(7), "First", "notes", 1.0, "Done", done, 1.5).
		AddRow(int64(3), int64(7), "Second", nil, 4.0, "In Progress", nil, 0.0)

	mock.ExpectQuery(`^SELECT task_id, user_id, title, description, estimate, status, completed_at, logged_time FROM tasks WHERE user_id = \$1 ORDER BY task_id$`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "notes", *got[0].Description)
	assert.Equal(t, done, *got[0].CompletedAt)
	assert.Equal(t, 1.5, got[0].LoggedTime)
	assert.Equal(t, models.StatusInProgress, got[1].Status)
}

func TestTaskStore_ListByUser_Empty(t *testing.T) {
	repo, mock := newTaskStoreWithMock(t)

	mock.ExpectQuery(`FROM tasks WHERE user_id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	got, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTaskStore_GetForUser_ChecksOwner(t *testing.T) {
	repo, mock := newTaskStoreWithMock(t)

	mock.ExpectQuery(`FROM tasks WHERE task_id = \$1 AND user_id = \$2$`).
		WithArgs(int64(5), int64(2)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetForUser(context.Background(), 2, 5)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTaskStore_Update_OnlySuppliedFields(t *testing.T) {
	repo, mock := newTaskStoreWithMock(t)

	mock.ExpectQuery(`^UPDATE tasks SET status = \$1, title = \$2 WHERE task_id = \$3 AND user_id = \$4 `+returningQ).
		WithArgs("Done", "Updated Task", int64(5), int64(1)).
		WillReturnRows(taskRow(5, 0))

	title := "Updated Task"
	status := models.StatusDone
	_, err := repo.Update(context.Background(), 1, 5, models.TaskPatch{Title: &title, Status: &status})
	require.NoError(t, err)
}

func TestTaskStore_Update_EmptyPatchReads(t *testing.T) {
	repo, mock := newTaskStoreWithMock(t)

	mock.ExpectQuery(`^SELECT .* FROM tasks WHERE task_id = \$1 AND user_id = \$2$`).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(taskRow(5, 0))

	got, err := repo.Update(context.Background(), 1, 5, models.TaskPatch{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)
}

func TestTaskStore_Update_NotOwned(t *testing.T) {
	repo, mock := newTaskStoreWithMock(t)

	mock.ExpectQuery(`^UPDATE tasks SET estimate = \$1`).
		WithArgs(3.0, int64(5), int64(9)).
		WillReturnError(sql.ErrNoRows)

	est := 3.0
	_, err := repo.Update(context.Background(), 9, 5, models.TaskPatch{Estimate: &est})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTaskStore_AddLoggedTime_IsSingleStatement(t *testing.T) {
	repo, mock := newTaskStoreWithMock(t)

	mock.ExpectQuery(`^UPDATE tasks SET logged_time = COALESCE\(logged_time, 0\) \+ \$1 WHERE task_id = \$2 AND user_id = \$3 `+returningQ).
		WithArgs(1.5, int64(5), int64(1)).
		WillReturnRows(taskRow(5, 1.5))

	got, err := repo.AddLoggedTime(context.Background(), 1, 5, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got.LoggedTime)
}

func TestTaskStore_AddLoggedTime_DBError(t *testing.T) {
	repo, mock := newTaskStoreWithMock(t)

	mock.ExpectQuery(`^UPDATE tasks SET logged_time`).
		WithArgs(1.0, int64(5), int64(1)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.AddLoggedTime(context.Background(), 1, 5, 1.0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, err.Error(), "db error: connection reset")
}

func TestTaskStore_AddLoggedTime_Overflow(t *testing.T) {
	repo, mock := newTaskStoreWithMock(t)

	mock.ExpectQuery(`^UPDATE tasks SET logged_time`).
		WithArgs(1.7e308, int64(5), int64(1)).
		WillReturnError(&pgconn.PgError{Code: "22003", Message: "value out of range: overflow"})

	_, err := repo.AddLoggedTime(context.Background(), 1, 5, 1.7e308)

	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "logged_time", verr.Fields[0].Field)
	assert.Equal(t, "Logged time is too large", verr.Fields[0].Message)
}

func TestTaskStore_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "owned row", affected: 1},
		{name: "missing or foreign row", affected: 0, wantErr: common.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTaskStoreWithMock(t)

			mock.ExpectExec(`^DELETE FROM tasks WHERE task_id = \$1 AND user_id = \$2$`).
				WithArgs(int64(5), int64(1)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.Delete(context.Background(), 1, 5)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
