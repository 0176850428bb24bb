package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wanderguide/marketplace-api/internal/dto"
)

// MaintenanceChecker reports whether write traffic is currently suspended.
type MaintenanceChecker interface {
	MaintenanceMode(ctx context.Context) bool
}

// Paths that keep accepting writes during maintenance.
var maintenanceSkipPaths = []string{
	"/api/health",
	"/api/auth/",
	"/api/admin/",
}

// Maintenance rejects mutating requests with 503 while the maintenance_mode
// setting is on. Reads are always served.
func Maintenance(checker MaintenanceChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		path := c.Path()
		for _, skip := range maintenanceSkipPaths {
			if strings.HasPrefix(path, skip) {
				return c.Next()
			}
		}

		if checker.MaintenanceMode(c.UserContext()) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: "The marketplace is in maintenance mode. Please try again later.",
			})
		}
		return c.Next()
	}
}
