package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver cho database/sql
	"github.com/rs/zerolog"
)

// OpenPostgreSQL mở kết nối tới PostgreSQL và kiểm tra bằng Ping
func OpenPostgreSQL(ctx context.Context, uri string, log zerolog.Logger) (*sql.DB, error) {
	if uri == "" {
		return nil, errors.New("you must set your 'DATABASE_URL' environmental variable")
	}

	db, err := sql.Open("pgx", uri)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot connect to PostgreSQL: %w", err)
	}

	log.Info().Msg("Connected to PostgreSQL successfully")
	return db, nil
}

// ClosePostgreSQL đóng kết nối với PostgreSQL
func ClosePostgreSQL(db *sql.DB, log zerolog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database connection")
		return
	}
	log.Info().Msg("Database connection closed")
}
