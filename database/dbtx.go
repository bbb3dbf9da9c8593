package database

import (
	"context"
	"database/sql"
)

// DBTX là phần chung của *sql.DB và *sql.Tx mà các repository sử dụng
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
