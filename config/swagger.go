package config

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "github.com/biosecret/tasktracker/docs"
)

// AddSwaggerRoutes đăng ký Swagger UI tại /swagger/*
func AddSwaggerRoutes(app *fiber.App) {
	app.Get("/swagger/*", swagger.New(swagger.Config{
		Title:       "Task Tracker API",
		DeepLinking: true,
	}))
}
