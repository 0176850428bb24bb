package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/testutil"
)

func TestAdminListings(t *testing.T) {
	db := testutil.NewDB(t)
	admin := NewAdminService(db)
	guides := NewGuideService(db, noCache())
	ctx := context.Background()

	testutil.CreateUser(t, db, models.RoleTraveler)
	testutil.CreateUser(t, db, models.RoleTraveler)
	g1, _ := testutil.CreateGuide(t, db, nil)
	testutil.CreateGuide(t, db, nil)

	users, total, err := admin.ListUsers(ctx, models.RoleTraveler, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 1)

	_, total, err = admin.ListUsers(ctx, "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	_, err = guides.SetVerified(ctx, g1.ID, true)
	require.NoError(t, err)

	verified := true
	rows, total, err := admin.ListGuides(ctx, &verified, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, g1.ID, rows[0].UID)

	_, total, err = admin.ListGuides(ctx, nil, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
