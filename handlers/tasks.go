package handlers

import (
	"context"
	"strconv"

	"github.com/biosecret/tasktracker/common"
	"github.com/biosecret/tasktracker/middleware"
	"github.com/biosecret/tasktracker/models"
	"github.com/biosecret/tasktracker/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// TaskService là phần nghiệp vụ task, mọi thao tác đều theo user id của người gọi
type TaskService interface {
	Create(ctx context.Context, userID int64, in services.NewTask) (models.Task, error)
	List(ctx context.Context, userID int64) ([]models.Task, error)
	Get(ctx context.Context, userID, taskID int64) (models.Task, error)
	Update(ctx context.Context, userID, taskID int64, in services.TaskChanges) (models.Task, error)
	LogTime(ctx context.Context, userID, taskID int64, delta *float64) (models.Task, error)
	Delete(ctx context.Context, userID, taskID int64) error
}

type TaskHandler struct {
	svc TaskService
	log zerolog.Logger
}

func NewTaskHandler(svc TaskService, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, log: log}
}

// TimeLog là body của PATCH /api/tasks/:id/time
type TimeLog struct {
	LoggedTime *float64 `json:"logged_time" example:"1.5"`
}

// ids lấy user id từ middleware và task id từ URL.
// Task id không phải số nguyên dương được coi như task không tồn tại.
func ids(c *fiber.Ctx) (userID, taskID int64, err error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return 0, 0, common.ErrUnauthorized
	}
	taskID, perr := strconv.ParseInt(c.Params("id"), 10, 64)
	if perr != nil || taskID <= 0 {
		return 0, 0, common.ErrNotFound
	}
	return userID, taskID, nil
}

// Create tạo task mới cho người dùng hiện tại
//
//	@Summary	Create a task
//	@Tags		tasks
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		services.NewTask	true	"task"
//	@Success	201		{object}	models.Task
//	@Failure	400		{object}	validationResponse
//	@Failure	401		{object}	errorResponse
//	@Failure	403		{object}	errorResponse
//	@Router		/api/tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, h.log, common.ErrUnauthorized)
	}

	var in services.NewTask
	if err := decodeJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}

	task, err := h.svc.Create(c.UserContext(), userID, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// List trả về tất cả task của người dùng hiện tại
//
//	@Summary	List own tasks
//	@Tags		tasks
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		models.Task
//	@Failure	401	{object}	errorResponse
//	@Failure	403	{object}	errorResponse
//	@Router		/api/tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, h.log, common.ErrUnauthorized)
	}

	tasks, err := h.svc.List(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusOK).JSON(tasks)
}

// Get lấy một task theo ID
//
//	@Summary	Get a task
//	@Tags		tasks
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"task id"
//	@Success	200	{object}	models.Task
//	@Failure	404	{object}	errorResponse
//	@Router		/api/tasks/{id} [get]
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	userID, taskID, err := ids(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	task, err := h.svc.Get(c.UserContext(), userID, taskID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusOK).JSON(task)
}

// Update cập nhật các trường được gửi lên
//
//	@Summary	Update a task
//	@Tags		tasks
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int					true	"task id"
//	@Param		body	body		services.TaskChanges	true	"fields to change"
//	@Success	200		{object}	models.Task
//	@Failure	400		{object}	validationResponse
//	@Failure	404		{object}	errorResponse
//	@Router		/api/tasks/{id} [patch]
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	userID, taskID, err := ids(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var in services.TaskChanges
	if err := decodeJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}

	task, err := h.svc.Update(c.UserContext(), userID, taskID, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusOK).JSON(task)
}

// LogTime cộng thêm thời gian làm việc vào task
//
//	@Summary	Add logged time
//	@Tags		tasks
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int		true	"task id"
//	@Param		body	body		TimeLog	true	"hours to add"
//	@Success	200		{object}	models.Task
//	@Failure	400		{object}	validationResponse
//	@Failure	404		{object}	errorResponse
//	@Router		/api/tasks/{id}/time [patch]
func (h *TaskHandler) LogTime(c *fiber.Ctx) error {
	userID, taskID, err := ids(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var in TimeLog
	if err := decodeJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}

	task, err := h.svc.LogTime(c.UserContext(), userID, taskID, in.LoggedTime)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusOK).JSON(task)
}

// Delete xóa một task
//
//	@Summary	Delete a task
//	@Tags		tasks
//	@Security	BearerAuth
//	@Param		id	path	int	true	"task id"
//	@Success	204
//	@Failure	404	{object}	errorResponse
//	@Router		/api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	userID, taskID, err := ids(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.svc.Delete(c.UserContext(), userID, taskID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
