package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheckFunc checks one dependency.
type HealthCheckFunc func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheckFunc
}

// NewHealthHandler reports on the named dependencies. Nil checks are skipped.
func NewHealthHandler(checks map[string]HealthCheckFunc) *HealthHandler {
	active := make(map[string]HealthCheckFunc, len(checks))
	for name, check := range checks {
		if check != nil {
			active[name] = check
		}
	}
	return &HealthHandler{checks: active}
}

func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	services := fiber.Map{}
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			services[name] = err.Error()
			healthy = false
			continue
		}
		services[name] = "connected"
	}

	status, code := "ok", fiber.StatusOK
	if !healthy {
		status, code = "degraded", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"version":  "1.0.0",
		"services": services,
	})
}
