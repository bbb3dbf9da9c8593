package events

import (
	"time"

	"github.com/biosecret/tasktracker/models"
	"github.com/google/uuid"
)

type Type string

const (
	TaskCreated Type = "task.created"
	TaskUpdated Type = "task.updated"
	TimeLogged  Type = "task.time_logged"
	TaskDeleted Type = "task.deleted"
)

// TaskEvent mô tả một thay đổi thành công của task. Task là nil khi xóa.
type TaskEvent struct {
	ID     string       `json:"id"`
	Type   Type         `json:"type"`
	UserID int64        `json:"user_id"`
	TaskID int64        `json:"task_id"`
	Task   *models.Task `json:"task,omitempty"`
	At     time.Time    `json:"at"`
}

func NewTaskEvent(typ Type, userID, taskID int64, task *models.Task) TaskEvent {
	return TaskEvent{
		ID:     uuid.NewString(),
		Type:   typ,
		UserID: userID,
		TaskID: taskID,
		Task:   task,
		At:     time.Now().UTC(),
	}
}

// Publisher nhận task event; chạy trên goroutine của request nên không được block lâu
type Publisher interface {
	Publish(ev TaskEvent)
}

// Fanout chuyển event tới từng publisher theo thứ tự
type Fanout []Publisher

func (f Fanout) Publish(ev TaskEvent) {
	for _, p := range f {
		p.Publish(ev)
	}
}
