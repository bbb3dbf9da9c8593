package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatus_Valid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, TaskStatus("Invalid").Valid())
	assert.False(t, TaskStatus("done").Valid())
	assert.False(t, TaskStatus("").Valid())
}

func TestTaskPatch_ApplyKeepsUnsetFields(t *testing.T) {
	desc := "old"
	orig := Task{ID: 1, UserID: 2, Title: "Write report", Description: &desc, Estimate: 3, Status: StatusTodo, LoggedTime: 1}

	title := "Write final report"
	status := StatusDone
	done := time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)
	got := TaskPatch{Title: &title, Status: &status, CompletedAt: &done}.Apply(orig)

	assert.Equal(t, "Write final report", got.Title)
	assert.Equal(t, StatusDone, got.Status)
	assert.Equal(t, done, *got.CompletedAt)
	assert.Equal(t, 3.0, got.Estimate)
	assert.Equal(t, 1.0, got.LoggedTime)
	assert.Equal(t, "old", *got.Description)

	// giá trị gốc không bị thay đổi
	assert.Equal(t, "Write report", orig.Title)
	assert.Nil(t, orig.CompletedAt)
}

func TestTaskPatch_Empty(t *testing.T) {
	assert.True(t, TaskPatch{}.Empty())
	est := 0.0
	assert.False(t, TaskPatch{Estimate: &est}.Empty())
}
