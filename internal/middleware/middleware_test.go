package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderguide/marketplace-api/internal/config"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/testutil"
)

const testSecret = "middleware-test-secret"

func signToken(t *testing.T, u *models.User) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID.String(),
		"email": u.Email,
		"role":  u.Role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestRoleRequired(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{JWTSecret: testSecret, AdminEmails: "Owner@Example.com"}

	app := fiber.New()
	app.Get("/staff", JWTProtected(cfg), RoleRequired(db, cfg, models.RoleAdmin, models.RoleSupport), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	traveler := testutil.CreateUser(t, db, models.RoleTraveler)
	support := testutil.CreateUser(t, db, models.RoleSupport)
	owner := &models.User{Email: "owner@example.com", Password: "x", Role: models.RoleTraveler, DisplayName: "Owner"}
	require.NoError(t, db.Create(owner).Error)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"traveler", signToken(t, traveler), http.StatusForbidden},
		{"support", signToken(t, support), http.StatusOK},
		{"admin email", signToken(t, owner), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/staff", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	// A token minted before demotion stops working once the stored role changes.
	token := signToken(t, support)
	require.NoError(t, db.Model(support).Update("role", models.RoleTraveler).Error)
	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

type maintenanceFlag bool

func (m maintenanceFlag) MaintenanceMode(context.Context) bool { return bool(m) }

func TestMaintenance(t *testing.T) {
	newApp := func(on bool) *fiber.App {
		app := fiber.New()
		app.Use(Maintenance(maintenanceFlag(on)))
		handler := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }
		app.Get("/api/guides", handler)
		app.Post("/api/reservations", handler)
		app.Post("/api/auth/login", handler)
		app.Put("/api/admin/settings/x", handler)
		return app
	}

	tests := []struct {
		on     bool
		method string
		path   string
		status int
	}{
		{false, http.MethodPost, "/api/reservations", http.StatusNoContent},
		{true, http.MethodPost, "/api/reservations", http.StatusServiceUnavailable},
		{true, http.MethodGet, "/api/guides", http.StatusNoContent},
		{true, http.MethodPost, "/api/auth/login", http.StatusNoContent},
		{true, http.MethodPut, "/api/admin/settings/x", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, err := newApp(tt.on).Test(httptest.NewRequest(tt.method, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestParseCSV(t *testing.T) {
	assert.Equal(t, []string{"a@x.io", "b@x.io"}, parseCSV(" a@x.io, ,b@x.io "))
	assert.Nil(t, parseCSV(""))
}
