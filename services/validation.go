package services

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/biosecret/tasktracker/common"
	"github.com/biosecret/tasktracker/models"
	"github.com/go-playground/validator/v10"
)

// dateLayouts là các định dạng ISO 8601 chấp nhận cho completed_at
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseDate parse ngày hoặc thời điểm ISO 8601; không có múi giờ thì coi là UTC
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// messages ánh xạ "<trường json>.<tag>" sang thông báo trả về client
var messages = map[string]string{
	"email.required":       "Invalid email format",
	"email.email":          "Invalid email format",
	"password.required":    "Password is required",
	"password.min":         "Password must be at least 6 characters",
	"password.max":         "Password must be at most 72 bytes",
	"title.required":       "Title is required",
	"title.min":            "Title cannot be empty",
	"estimate.required":    "Estimate must be a positive number",
	"estimate.gte":         "Estimate must be a positive number",
	"status.required":      "Status must be To do, In Progress, or Done",
	"status.taskstatus":    "Status must be To do, In Progress, or Done",
	"loggedtime.gte":       "Logged time must be a positive number",
	"logged_time.required": "Logged time must be a positive number",
	"logged_time.gte":      "Logged time must be a positive number",
	"completed_at.isodate": "Completed at must be a valid ISO 8601 date",
	"title.max":            "Title must be at most 255 characters",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return models.TaskStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := parseDate(fl.Field().String())
		return ok
	})

	return v
}

// check chạy validator và chuyển lỗi thành *common.ValidationError, mỗi trường một lỗi
func check(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &common.ValidationError{}
	seen := map[string]bool{}
	for _, fe := range verrs {
		field := fe.Field()
		if seen[field] {
			continue
		}
		seen[field] = true

		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		out.Fields = append(out.Fields, common.FieldError{Field: field, Message: msg})
	}
	return out
}
