package models

import "time"

// TaskStatus là trạng thái của một task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "To do"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

// Statuses liệt kê các trạng thái hợp lệ theo thứ tự hiển thị
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

// Valid kiểm tra s có thuộc danh sách trạng thái hay không
func (s TaskStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Task là một công việc thuộc về đúng một user.
// Store luôn trả về bản sao nên giá trị Task không đổi sau khi trả về.
type Task struct {
	ID          int64      `json:"task_id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Estimate    float64    `json:"estimate"`
	Status      TaskStatus `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
	LoggedTime  float64    `json:"loggedtime"`
}

// TaskPatch chứa các trường cần cập nhật. Trường nil giữ nguyên giá trị cũ.
type TaskPatch struct {
	Title       *string
	Description *string
	Estimate    *float64
	Status      *TaskStatus
	CompletedAt *time.Time
	LoggedTime  *float64
}

// Empty trả về true nếu patch không thay đổi gì
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Estimate == nil &&
		p.Status == nil && p.CompletedAt == nil && p.LoggedTime == nil
}

// Apply trả về bản sao của t sau khi áp dụng patch
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Estimate != nil {
		t.Estimate = *p.Estimate
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.CompletedAt != nil {
		c := *p.CompletedAt
		t.CompletedAt = &c
	}
	if p.LoggedTime != nil {
		t.LoggedTime = *p.LoggedTime
	}
	return t
}
