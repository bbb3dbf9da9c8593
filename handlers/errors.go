package handlers

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/biosecret/tasktracker/common"
	"github.com/biosecret/tasktracker/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const (
	msgInternal      = "Internal server error"
	msgTaskNotFound  = "Task not found or not authorized"
	msgEmailTaken    = "Email already registered"
	msgBadCredential = "Invalid credentials"
	msgNoToken       = "No token provided"
	msgInvalidToken  = "Invalid token"
	msgBadBody       = "Request body must be valid JSON"
)

// errorResponse là body cho mọi lỗi không phải lỗi validation
type errorResponse struct {
	Error string `json:"error"`
}

// validationResponse là body trả về khi dữ liệu không hợp lệ
type validationResponse struct {
	Errors []common.FieldError `json:"errors"`
}

// respondError chuyển lỗi từ service thành HTTP response.
// Lỗi không xác định được ghi log và trả về thông báo chung.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(validationResponse{Errors: verr.Fields})
	case errors.Is(err, common.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{msgTaskNotFound})
	case errors.Is(err, common.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(errorResponse{msgEmailTaken})
	case errors.Is(err, common.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{msgBadCredential})
	case errors.Is(err, common.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{msgNoToken})
	case errors.Is(err, common.ErrInvalidToken):
		return c.Status(fiber.StatusForbidden).JSON(errorResponse{msgInvalidToken})
	}

	ev := log.Error().Err(err).
		Str("request_id", middleware.RequestID(c)).
		Str("method", c.Method()).
		Str("path", c.Path())
	if id, ok := middleware.UserID(c); ok {
		ev = ev.Int64("user_id", id)
	}
	ev.Msg("Request failed")

	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{msgInternal})
}

// ErrorHandler xử lý lỗi trả về từ handler hoặc middleware mà chưa được respondError xử lý
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(errorResponse{fe.Message})
		}
		return respondError(c, log, err)
	}
}

// decodeJSON đọc body JSON vào out. Body rỗng hoặc sai cú pháp là lỗi validation của trường "body".
func decodeJSON(c *fiber.Ctx, out any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return common.NewValidationError("body", msgBadBody)
	}

	if err := c.App().Config().JSONDecoder(body, out); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) && te.Field != "" {
			return common.NewValidationError(te.Field, "Invalid value type")
		}
		return common.NewValidationError("body", msgBadBody)
	}
	return nil
}
