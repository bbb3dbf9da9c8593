package repository

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/biosecret/tasktracker/common"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// uniqueViolation là SQLSTATE khi vi phạm UNIQUE
	uniqueViolation = "23505"
	// numericOutOfRange là SQLSTATE khi phép tính số vượt giới hạn kiểu
	numericOutOfRange = "22003"
)

// errLoggedTimeOverflow trả về khi tổng logged_time không còn là số hữu hạn
func errLoggedTimeOverflow() error {
	return common.NewValidationError("logged_time", "Logged time is too large")
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == numericOutOfRange
}
