package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/biosecret/tasktracker/common"
	"github.com/biosecret/tasktracker/events"
	"github.com/biosecret/tasktracker/models"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// TaskRepository là store task. Trừ Create và ListByUser, mọi hàm trả về
// common.ErrNotFound khi task không tồn tại hoặc thuộc người khác.
type TaskRepository interface {
	Create(ctx context.Context, t models.Task) (models.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Task, error)
	GetForUser(ctx context.Context, userID, taskID int64) (models.Task, error)
	Update(ctx context.Context, userID, taskID int64, patch models.TaskPatch) (models.Task, error)
	AddLoggedTime(ctx context.Context, userID, taskID int64, delta float64) (models.Task, error)
	Delete(ctx context.Context, userID, taskID int64) error
}

// NewTask là dữ liệu đầu vào khi tạo task
type NewTask struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Estimate    *float64 `json:"estimate" validate:"required,gte=0"`
	Status      string   `json:"status" validate:"required,taskstatus"`
	Description *string  `json:"description"`
	CompletedAt *string  `json:"completed_at" validate:"omitempty,isodate"`
	LoggedTime  *float64 `json:"loggedtime" validate:"omitempty,gte=0"`
}

// TaskChanges là dữ liệu cập nhật task. Trường nil giữ nguyên.
type TaskChanges struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Estimate    *float64 `json:"estimate" validate:"omitempty,gte=0"`
	Status      *string  `json:"status" validate:"omitempty,taskstatus"`
	Description *string  `json:"description"`
	CompletedAt *string  `json:"completed_at" validate:"omitempty,isodate"`
	LoggedTime  *float64 `json:"loggedtime" validate:"omitempty,gte=0"`
}

type timeLogInput struct {
	LoggedTime *float64 `json:"logged_time" validate:"required,gte=0"`
}

// TaskService kiểm tra dữ liệu, giới hạn theo chủ sở hữu và phát event cho mỗi thay đổi
type TaskService struct {
	tasks     TaskRepository
	publisher events.Publisher
	validate  *validator.Validate
	log       zerolog.Logger
}

// NewTaskService tạo service; publisher có thể nil
func NewTaskService(tasks TaskRepository, publisher events.Publisher, log zerolog.Logger) *TaskService {
	return &TaskService{tasks: tasks, publisher: publisher, validate: newValidator(), log: log}
}

func (s *TaskService) publish(typ events.Type, userID, taskID int64, t *models.Task) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(events.NewTaskEvent(typ, userID, taskID, t))
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// blankToNil coi chuỗi rỗng như không gửi
func blankToNil(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	return p
}

func dateOf(p *string) *time.Time {
	if p == nil {
		return nil
	}
	t, ok := parseDate(*p)
	if !ok {
		return nil
	}
	return &t
}

// Create kiểm tra dữ liệu và tạo task cho userID
func (s *TaskService) Create(ctx context.Context, userID int64, in NewTask) (models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Status = strings.TrimSpace(in.Status)
	in.Description = trimPtr(in.Description)
	in.CompletedAt = blankToNil(in.CompletedAt)
	if err := check(s.validate, in); err != nil {
		return models.Task{}, err
	}

	t := models.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Estimate:    *in.Estimate,
		Status:      models.TaskStatus(in.Status),
		CompletedAt: dateOf(in.CompletedAt),
	}
	if in.LoggedTime != nil {
		t.LoggedTime = *in.LoggedTime
	}

	created, err := s.tasks.Create(ctx, t)
	if err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}

	s.log.Info().Int64("task_id", created.ID).Int64("user_id", userID).Msg("Task created")
	s.publish(events.TaskCreated, userID, created.ID, &created)
	return created, nil
}

// List chỉ trả về task của người gọi
func (s *TaskService) List(ctx context.Context, userID int64) ([]models.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	s.log.Debug().Int64("user_id", userID).Int("count", len(tasks)).Msg("Tasks retrieved")
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID int64) (models.Task, error) {
	t, err := s.tasks.GetForUser(ctx, userID, taskID)
	if err != nil {
		return models.Task{}, wrapStoreErr("get task", err)
	}
	return t, nil
}

// Update chỉ kiểm tra và áp dụng các trường được gửi.
// loggedtime ở đây ghi đè tổng; dùng LogTime để cộng thêm.
func (s *TaskService) Update(ctx context.Context, userID, taskID int64, in TaskChanges) (models.Task, error) {
	in.Title = trimPtr(in.Title)
	in.Status = trimPtr(in.Status)
	in.Description = trimPtr(in.Description)
	in.CompletedAt = blankToNil(in.CompletedAt)
	if err := check(s.validate, in); err != nil {
		return models.Task{}, err
	}

	patch := models.TaskPatch{
		Title:       in.Title,
		Description: in.Description,
		Estimate:    in.Estimate,
		CompletedAt: dateOf(in.CompletedAt),
		LoggedTime:  in.LoggedTime,
	}
	if in.Status != nil {
		st := models.TaskStatus(*in.Status)
		patch.Status = &st
	}

	updated, err := s.tasks.Update(ctx, userID, taskID, patch)
	if err != nil {
		return models.Task{}, wrapStoreErr("update task", err)
	}

	if !patch.Empty() {
		s.log.Info().Int64("task_id", taskID).Int64("user_id", userID).Msg("Task updated")
		s.publish(events.TaskUpdated, userID, taskID, &updated)
	}
	return updated, nil
}

// LogTime cộng delta giờ vào logged_time. Delta âm hoặc thiếu bị từ chối.
func (s *TaskService) LogTime(ctx context.Context, userID, taskID int64, delta *float64) (models.Task, error) {
	if err := check(s.validate, timeLogInput{LoggedTime: delta}); err != nil {
		return models.Task{}, err
	}

	updated, err := s.tasks.AddLoggedTime(ctx, userID, taskID, *delta)
	if err != nil {
		return models.Task{}, wrapStoreErr("log time", err)
	}

	s.log.Info().Int64("task_id", taskID).Int64("user_id", userID).Float64("logged_time", *delta).Msg("Time logged")
	s.publish(events.TimeLogged, userID, taskID, &updated)
	return updated, nil
}

// Delete xóa đúng một task của người gọi
func (s *TaskService) Delete(ctx context.Context, userID, taskID int64) error {
	if err := s.tasks.Delete(ctx, userID, taskID); err != nil {
		return wrapStoreErr("delete task", err)
	}

	s.log.Info().Int64("task_id", taskID).Int64("user_id", userID).Msg("Task deleted")
	s.publish(events.TaskDeleted, userID, taskID, nil)
	return nil
}

// wrapStoreErr giữ nguyên ErrNotFound, các lỗi khác được bọc thêm ngữ cảnh
func wrapStoreErr(op string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
