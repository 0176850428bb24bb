package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wanderguide/marketplace-api/internal/cache"
	"github.com/wanderguide/marketplace-api/internal/dto"
)

type HealthHandler struct {
	pingDB func() error
	cache  cache.Cache
}

func NewHealthHandler(pingDB func() error, c cache.Cache) *HealthHandler {
	return &HealthHandler{pingDB: pingDB, cache: c}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"

	dbStatus := "ok"
	if err := h.pingDB(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
		status = "degraded"
	}

	cacheStatus := "ok"
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.cache.Ping(ctx); err != nil {
		cacheStatus = "unhealthy: " + err.Error()
		status = "degraded"
	}

	code := fiber.StatusOK
	if dbStatus != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Cache:     cacheStatus,
	})
}
