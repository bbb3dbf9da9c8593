package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

// HandleHealthCheck trả về trạng thái của service
//
//	@Summary	Health check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	healthResponse
//	@Router		/health [get]
func HandleHealthCheck(env string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(healthResponse{
			Status:      "OK",
			Timestamp:   time.Now().UTC(),
			Environment: env,
		})
	}
}
