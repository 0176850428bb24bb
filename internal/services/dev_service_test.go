package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderguide/marketplace-api/internal/cache"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/testutil"
)

func TestDevSeedAndReset(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewDevService(db, noCache())
	ctx := context.Background()

	first, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(seedCities), first.Cities)
	assert.Equal(t, 2, first.Users)
	assert.Equal(t, 3, first.Slots)

	second, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, *second)

	var city models.City
	require.NoError(t, db.Where("slug = ?", "ciudad-de-mexico").First(&city).Error)

	login, err := NewAuthService(db, testConfig()).Login(ctx, &dto.LoginRequest{Email: "guide@demo.local", Password: DemoPassword})
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuide, login.User.Role)

	require.NoError(t, svc.Reset(ctx))
	for _, m := range []interface{}{&models.User{}, &models.City{}, &models.AvailabilitySlot{}, &models.GuideProfile{}} {
		var count int64
		require.NoError(t, db.Unscoped().Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestDevSeedAndReset_InvalidateCatalogCache(t *testing.T) {
	db := testutil.NewDB(t)
	mem := testutil.NewMemCache()
	loader := cache.NewLoader(mem, time.Minute)
	dev := NewDevService(db, loader)
	cities := NewCityService(db, loader)
	guides := NewGuideService(db, loader)
	ctx := context.Background()

	list, err := cities.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, total, err := guides.List(ctx, dto.GuideFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	require.True(t, mem.Has(cityListKey))

	_, err = dev.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, mem.Has(cityListKey))

	list, err = cities.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(seedCities))
	_, err = cities.GetBySlug(ctx, "porto")
	require.NoError(t, err)
	require.True(t, mem.Has(citySlugKey("porto")))
	_, total, err = guides.List(ctx, dto.GuideFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	require.NoError(t, dev.Reset(ctx))
	assert.False(t, mem.Has(cityListKey))
	assert.False(t, mem.Has(citySlugKey("porto")))

	list, err = cities.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = cities.GetBySlug(ctx, "porto")
	assert.ErrorIs(t, err, ErrCityNotFound)
	_, total, err = guides.List(ctx, dto.GuideFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
