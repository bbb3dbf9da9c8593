package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/biosecret/tasktracker/common"
	"github.com/biosecret/tasktracker/models"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository là store người dùng mà AuthService cần
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// TokenIssuer tạo access token cho user id
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

const maxPasswordBytes = 72

type signupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthService xử lý đăng ký và đăng nhập
type AuthService struct {
	users    UserRepository
	tokens   TokenIssuer
	cost     int
	validate *validator.Validate
	log      zerolog.Logger

	// dummyHash dùng để so khớp khi email không tồn tại,
	// để cả hai trường hợp đăng nhập sai đều tốn một lần bcrypt
	dummyHash []byte
}

func NewAuthService(users UserRepository, tokens TokenIssuer, bcryptCost int, log zerolog.Logger) (*AuthService, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("could not prepare password hashing: %w", err)
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		cost:      bcryptCost,
		validate:  newValidator(),
		log:       log,
		dummyHash: dummy,
	}, nil
}

// Signup lưu người dùng mới với mật khẩu đã hash bằng bcrypt.
// Email đã tồn tại trả về common.ErrEmailTaken và không thay đổi gì.
func (s *AuthService) Signup(ctx context.Context, email, password string) (models.User, error) {
	if err := check(s.validate, signupInput{Email: email, Password: password}); err != nil {
		return models.User{}, err
	}

	// bcrypt chỉ nhận tối đa 72 byte, tag max của validator đếm theo ký tự
	if len(password) > maxPasswordBytes {
		return models.User{}, common.NewValidationError("password", messages["password.max"])
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return models.User{}, common.ErrEmailTaken
	case !errors.Is(err, common.ErrNotFound):
		return models.User{}, fmt.Errorf("look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return models.User{}, common.NewValidationError("password", messages["password.max"])
	}
	if err != nil {
		return models.User{}, fmt.Errorf("could not hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, string(hash))
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return models.User{}, err
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("email", email).Msg("User created")
	return user, nil
}

// Login kiểm tra thông tin đăng nhập và trả về token.
// Sai email hay sai mật khẩu đều trả về common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if err := check(s.validate, loginInput{Email: email, Password: password}); err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Msg("User logged in")
	return token, nil
}
