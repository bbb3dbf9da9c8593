package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/biosecret/tasktracker/common"
	"github.com/biosecret/tasktracker/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUsers_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUsers()

	u, err := users.Create(ctx, "alice@example.com", "h1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	_, err = users.Create(ctx, "alice@example.com", "h2")
	assert.ErrorIs(t, err, common.ErrEmailTaken)
	assert.Equal(t, 1, users.Count())

	// email phân biệt hoa thường
	_, err = users.Create(ctx, "Alice@example.com", "h3")
	assert.NoError(t, err)

	got, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "h1", got.PasswordHash)

	_, err = users.GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryTasks_Ownership(t *testing.T) {
	ctx := context.Background()
	tasks := NewMemoryTasks()

	created, err := tasks.Create(ctx, models.Task{UserID: 1, Title: "Mine", Estimate: 1, Status: models.StatusTodo})
	require.NoError(t, err)

	_, err = tasks.GetForUser(ctx, 2, created.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	title := "Stolen"
	_, err = tasks.Update(ctx, 2, created.ID, models.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = tasks.AddLoggedTime(ctx, 2, created.ID, 1)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, tasks.Delete(ctx, 2, created.ID), common.ErrNotFound)

	list, err := tasks.ListByUser(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := tasks.GetForUser(ctx, 1, created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("task changed (-want +got):\n%s", diff)
	}
}

func TestMemoryTasks_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	tasks := NewMemoryTasks()

	desc := "original"
	created, err := tasks.Create(ctx, models.Task{UserID: 1, Title: "T", Description: &desc, Status: models.StatusTodo})
	require.NoError(t, err)

	desc = "mutated input"
	*created.Description = "mutated output"

	got, err := tasks.GetForUser(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", *got.Description)
}

func TestMemoryTasks_DeleteThenGet(t *testing.T) {
	ctx := context.Background()
	tasks := NewMemoryTasks()

	created, err := tasks.Create(ctx, models.Task{UserID: 1, Title: "T", Status: models.StatusTodo})
	require.NoError(t, err)

	require.NoError(t, tasks.Delete(ctx, 1, created.ID))
	_, err = tasks.GetForUser(ctx, 1, created.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, tasks.Delete(ctx, 1, created.ID), common.ErrNotFound)
}

func TestMemoryTasks_ConcurrentLogTimeLosesNothing(t *testing.T) {
	ctx := context.Background()
	tasks := NewMemoryTasks()

	created, err := tasks.Create(ctx, models.Task{UserID: 1, Title: "T", Status: models.StatusTodo})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tasks.AddLoggedTime(ctx, 1, created.ID, 0.5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := tasks.GetForUser(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.LoggedTime)
}

func TestMemoryTasks_ListSortedByID(t *testing.T) {
	ctx := context.Background()
	tasks := NewMemoryTasks()
	for _, title := range []string{"a", "b", "c"} {
		_, err := tasks.Create(ctx, models.Task{UserID: 3, Title: title, Status: models.StatusTodo})
		require.NoError(t, err)
	}
	_, err := tasks.Create(ctx, models.Task{UserID: 4, Title: "other", Status: models.StatusTodo})
	require.NoError(t, err)

	list, err := tasks.ListByUser(ctx, 3)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, list[i].Title)
	}
}

func TestMemoryTasks_AddLoggedTimeOverflow(t *testing.T) {
	ctx := context.Background()
	tasks := NewMemoryTasks()

	created, err := tasks.Create(ctx, models.Task{UserID: 1, Title: "Big", Estimate: 1, Status: models.StatusTodo, LoggedTime: 1.7e308})
	require.NoError(t, err)

	_, err = tasks.AddLoggedTime(ctx, 1, created.ID, 1.7e308)
	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "logged_time", verr.Fields[0].Field)

	// tổng cũ không bị thay đổi
	got, err := tasks.GetForUser(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.7e308, got.LoggedTime)
}
