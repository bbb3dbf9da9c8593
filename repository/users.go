package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/biosecret/tasktracker/common"
	"github.com/biosecret/tasktracker/database"
	"github.com/biosecret/tasktracker/models"
)

type UserStore struct {
	db      database.DBTX
	builder squirrel.StatementBuilderType
}

func NewUserStore(db database.DBTX) *UserStore {
	return &UserStore{db: db, builder: newBuilder()}
}

// Create thêm người dùng; email trùng trả về common.ErrEmailTaken
func (r *UserStore) Create(ctx context.Context, email, passwordHash string) (models.User, error) {
	query, args, err := r.builder.
		Insert("users").
		Columns("email", "password").
		Values(email, passwordHash).
		Suffix("RETURNING user_id").
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("build query: %w", err)
	}

	u := models.User{Email: email, PasswordHash: passwordHash}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&u.ID); err != nil {
		if isUniqueViolation(err) {
			return models.User{}, common.ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// GetByEmail tìm người dùng theo email (phân biệt hoa thường)
func (r *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	query, args, err := r.builder.
		Select("user_id", "email", "password").
		From("users").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("build query: %w", err)
	}

	var u models.User
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, common.ErrNotFound
		}
		return models.User{}, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}
