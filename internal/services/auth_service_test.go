package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/testutil"
)

func TestAuthRegisterLoginRefresh(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := testConfig()
	svc := NewAuthService(db, cfg)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Email:       "  Maria@Example.com ",
		Password:    "correct horse",
		Role:        models.RoleTraveler,
		DisplayName: "Maria",
	})
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", resp.User.Email)
	assert.Equal(t, models.RoleTraveler, resp.User.Role)
	assert.NotEmpty(t, resp.RefreshToken)

	// Travelers get an empty profile row on sign up.
	var count int64
	require.NoError(t, db.Model(&models.TravelerProfile{}).Where("uid = ?", resp.User.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte(cfg.JWTSecret), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, models.RoleTraveler, claims["role"])

	_, err = svc.Register(ctx, &dto.RegisterRequest{Email: "maria@example.com", Password: "another pass", Role: models.RoleGuide, DisplayName: "M"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "maria@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "MARIA@example.com", Password: "correct horse"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The rotated token cannot be replayed.
	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx, &dto.LogoutRequest{RefreshToken: refreshed.RefreshToken}))
	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: refreshed.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	me, err := svc.Me(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", me.DisplayName)
}

func TestAuthRegister_RejectsStaffRoles(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "sneaky@example.com", Password: "password1", Role: models.RoleAdmin, DisplayName: "Sneaky",
	})
	assert.ErrorIs(t, err, ErrRoleNotAllowed)
}
