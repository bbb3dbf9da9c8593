package router

import (
	"github.com/biosecret/tasktracker/handlers"
	"github.com/biosecret/tasktracker/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Handlers gom các handler và middleware cần để đăng ký route
type Handlers struct {
	Env      string
	Auth     *handlers.AuthHandler
	Tasks    *handlers.TaskHandler
	Events   *handlers.EventsHandler
	Verifier middleware.TokenVerifier
	Log      zerolog.Logger
}

func SetupRoutes(app *fiber.App, h Handlers) {
	app.Get("/health", handlers.HandleHealthCheck(h.Env))

	auth := app.Group("/api/auth")
	auth.Post("/signup", h.Auth.Signup)
	auth.Post("/login", h.Auth.Login)

	api := app.Group("/api", middleware.JWTMiddleware(h.Verifier, h.Log))

	// /tasks/events phải đăng ký trước /tasks/:id
	api.Get("/tasks/events", h.Events.Stream)
	api.Get("/tasks", h.Tasks.List)
	api.Post("/tasks", h.Tasks.Create)
	api.Get("/tasks/:id", h.Tasks.Get)
	api.Patch("/tasks/:id", h.Tasks.Update)
	api.Patch("/tasks/:id/time", h.Tasks.LogTime)
	api.Delete("/tasks/:id", h.Tasks.Delete)
}
