package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wanderguide/marketplace-api/internal/config"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/identity"
	"github.com/wanderguide/marketplace-api/internal/models"
	"gorm.io/gorm"
)

// RoleRequired admits callers whose stored role is one of roles. Emails listed
// in ADMIN_EMAILS always pass. The role is read from the database so demoted
// accounts lose access before their token expires.
func RoleRequired(db *gorm.DB, cfg *config.Config, roles ...string) fiber.Handler {
	adminEmails := parseCSV(strings.ToLower(cfg.AdminEmails))

	return func(c *fiber.Ctx) error {
		caller, err := identity.GetCaller(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
		}

		if contains(adminEmails, strings.ToLower(caller.Email)) {
			return c.Next()
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).Select("id", "role").First(&user, "id = ?", caller.ID).Error; err == nil {
			if contains(roles, user.Role) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "Insufficient permissions"})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
