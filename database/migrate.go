package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/biosecret/tasktracker/database/migrations"
	"github.com/pressly/goose/v3"
)

// gooseUp được tách ra để test có thể thay thế
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Migrate tạo hoặc cập nhật các bảng bằng migration nhúng trong binary
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUp(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
