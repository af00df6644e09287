package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is anything that can report backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status" example:"healthy"`
}

// HealthCheck godoc
// @Summary      Readiness probe
// @Description  Checks metadata store connectivity.
// @Tags         health
// @Produce      json
// @Success      200  {object}  envelope[healthResponse]
// @Failure      503  {object}  errorPayload
// @Router       /health [get]
func HealthCheck(p Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return writeOK(c, fiber.StatusOK, healthResponse{Status: "healthy"})
	}
}

// LivenessProbe godoc
// @Summary      Liveness probe
// @Tags         health
// @Success      200
// @Router       /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
