package common

import (
	"errors"
	"strings"
)

var (
	// Lỗi từ store
	ErrNotFound = errors.New("not found")

	// Lỗi xác thực
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid token")

	ErrInternal = errors.New("internal error")
)

// FieldError là lỗi của một trường dữ liệu
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError gom tất cả lỗi validation của một request
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidationError tạo ValidationError với một trường duy nhất
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
