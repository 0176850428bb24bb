package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/wanderguide/marketplace-api/internal/config"
	"github.com/wanderguide/marketplace-api/internal/handlers"
	"github.com/wanderguide/marketplace-api/internal/middleware"
	"github.com/wanderguide/marketplace-api/internal/models"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Health        *handlers.HealthHandler
	Settings      *handlers.SettingsHandler
	Moderation    *handlers.ModerationHandler
	Cities        *handlers.CityHandler
	Guides        *handlers.GuideHandler
	Availability  *handlers.AvailabilityHandler
	Reservations  *handlers.ReservationHandler
	Reviews       *handlers.ReviewHandler
	Conversations *handlers.ConversationHandler
	Contact       *handlers.ContactHandler
	Admin         *handlers.AdminHandler
	Dev           *handlers.DevHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, maintenance middleware.MaintenanceChecker, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter per IP
	api.Use(limiter.New(limiter.Config{
		Max:               cfg.RateLimitMax,
		Expiration:        cfg.RateLimitWindow,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	api.Use(middleware.Maintenance(maintenance))

	api.Get("/health", h.Health.Check)
	api.Get("/config", h.Settings.GetConfig)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	// JWT is applied per route so public routes stay public
	jwt := middleware.JWTProtected(cfg)
	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Get("/auth/me", jwt, h.Auth.Me)

	// Catalogue (public)
	api.Get("/cities", h.Cities.List)
	api.Get("/cities/:slug", h.Cities.Get)
	api.Get("/guides", h.Guides.List)

	// Guide self-service; registered before /guides/:handle
	api.Put("/guides/me", jwt, h.Guides.UpsertMe)
	api.Post("/guides/availability", jwt, h.Availability.Create)
	api.Get("/guides/:handle", h.Guides.Get)
	api.Get("/guides/:handle/availability", h.Availability.ListForGuide)

	api.Get("/travelers/me", jwt, h.Guides.GetTravelerMe)
	api.Put("/travelers/me", jwt, h.Guides.UpdateTravelerMe)

	api.Get("/availability/:id", h.Availability.Get)
	api.Patch("/availability/:id", jwt, h.Availability.Update)
	api.Delete("/availability/:id", jwt, h.Availability.Delete)

	// Reservations
	api.Post("/reservations/quote", h.Reservations.Quote)
	api.Post("/reservations", jwt, h.Reservations.Create)
	api.Get("/reservations", jwt, h.Reservations.ListMine)
	api.Get("/reservations/:id", jwt, h.Reservations.Get)
	api.Patch("/reservations/:id", jwt, h.Reservations.Update)

	// Reviews
	api.Get("/reviews", h.Reviews.List)
	api.Post("/reviews", jwt, h.Reviews.Create)
	api.Patch("/reviews/:id", jwt, h.Reviews.Update)

	// Messaging
	api.Get("/conversations", jwt, h.Conversations.List)
	api.Get("/conversations/:id/messages", jwt, h.Conversations.Messages)
	api.Post("/conversations/:id/messages", jwt, h.Conversations.Send)

	// Moderation: user endpoints
	api.Post("/reports", jwt, h.Moderation.CreateReport)
	api.Get("/blocks", jwt, h.Moderation.ListBlocked)
	api.Post("/blocks", jwt, h.Moderation.BlockUser)
	api.Delete("/blocks/:id", jwt, h.Moderation.UnblockUser)

	// Contact & newsletter (storage only)
	api.Post("/contact", h.Contact.Submit)
	api.Post("/newsletter/subscribe", h.Contact.Subscribe)
	api.Get("/newsletter/confirm/:token", h.Contact.Confirm)

	// Dev tools; handlers answer 404 in production
	api.Post("/seed", h.Dev.Seed)
	api.Post("/reset", h.Dev.Reset)

	// Admin panel. Reports are open to all staff roles, the rest to admins.
	adminOnly := middleware.RoleRequired(db, cfg, models.RoleAdmin)
	staff := middleware.RoleRequired(db, cfg, models.RoleAdmin, models.RoleModerator, models.RoleSupport)

	admin := api.Group("/admin", jwt)
	admin.Get("/reports", staff, h.Moderation.ListReports)
	admin.Put("/reports/:id", staff, h.Moderation.ActionReport)

	admin.Get("/users", adminOnly, h.Admin.Users)
	admin.Get("/guides", adminOnly, h.Admin.Guides)
	admin.Patch("/guides/:uid/verify", adminOnly, h.Admin.VerifyGuide)
	admin.Get("/bookings", adminOnly, h.Admin.Bookings)

	admin.Get("/cities", adminOnly, h.Cities.List)
	admin.Post("/cities", adminOnly, h.Cities.Create)
	admin.Put("/cities/:id", adminOnly, h.Cities.Update)
	admin.Delete("/cities/:id", adminOnly, h.Cities.Delete)

	admin.Put("/settings/:key", adminOnly, h.Settings.SetKey)
	admin.Delete("/settings/:key", adminOnly, h.Settings.DeleteKey)
}
