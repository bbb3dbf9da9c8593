package handlers

import (
	"context"

	"github.com/biosecret/tasktracker/models"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AuthService là phần nghiệp vụ đăng ký và đăng nhập
type AuthService interface {
	Signup(ctx context.Context, email, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthHandler struct {
	svc AuthService
	log zerolog.Logger
}

func NewAuthHandler(svc AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

// Credentials là body của signup và login
type Credentials struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"secret1"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Signup đăng ký người dùng mới
//
//	@Summary	Register a user
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		Credentials	true	"email and password"
//	@Success	201		{object}	messageResponse
//	@Failure	400		{object}	validationResponse
//	@Failure	409		{object}	errorResponse
//	@Failure	500		{object}	errorResponse
//	@Router		/api/auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in Credentials
	if err := decodeJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}

	if _, err := h.svc.Signup(c.UserContext(), in.Email, in.Password); err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(messageResponse{Message: "User created"})
}

// Login kiểm tra thông tin đăng nhập và trả về access token
//
//	@Summary	Log in
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		Credentials	true	"email and password"
//	@Success	200		{object}	tokenResponse
//	@Failure	400		{object}	validationResponse
//	@Failure	401		{object}	errorResponse
//	@Failure	500		{object}	errorResponse
//	@Router		/api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in Credentials
	if err := decodeJSON(c, &in); err != nil {
		return respondError(c, h.log, err)
	}

	token, err := h.svc.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusOK).JSON(tokenResponse{Token: token})
}
