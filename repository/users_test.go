package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/biosecret/tasktracker/common"
	"github.com/jackc/pgx/v5/pgconn"
)

func newUserStoreWithMock(t *testing.T) (*UserStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db), mock
}

const insertUserQ = `(?s)^INSERT INTO users \(email,password\) VALUES \(\$1,\$2\) RETURNING user_id$`
const selectUserQ = `(?s)^SELECT user_id, email, password FROM users WHERE email = \$1$`

func TestUserStore_Create_Success(t *testing.T) {
	repo, mock := newUserStoreWithMock(t)

	mock.ExpectQuery(insertUserQ).
		WithArgs("alice@example.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(42)))

	u, err := repo.Create(context.Background(), "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if u.ID != 42 || u.Email != "alice@example.com" || u.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUserStore_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserStoreWithMock(t)

	mock.ExpectQuery(insertUserQ).
		WithArgs("alice@example.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), "alice@example.com", "hash")
	if !errors.Is(err, common.ErrEmailTaken) {
		t.Fatalf("want common.ErrEmailTaken, got %v", err)
	}
}

func TestUserStore_Create_DBError(t *testing.T) {
	repo, mock := newUserStoreWithMock(t)

	mock.ExpectQuery(insertUserQ).
		WithArgs("alice@example.com", "hash").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "alice@example.com", "hash")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUserStore_GetByEmail_Found(t *testing.T) {
	repo, mock := newUserStoreWithMock(t)

	mock.ExpectQuery(selectUserQ).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "password"}).
			AddRow(int64(1), "alice@example.com", "$2a$10$hash"))

	u, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if u.ID != 1 || u.PasswordHash != "$2a$10$hash" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserStore_GetByEmail_NotFound(t *testing.T) {
	repo, mock := newUserStoreWithMock(t)

	mock.ExpectQuery(selectUserQ).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestUserStore_GetByEmail_DBError(t *testing.T) {
	repo, mock := newUserStoreWithMock(t)

	mock.ExpectQuery(selectUserQ).
		WithArgs("alice@example.com").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err == nil || errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
