// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wanderguide/marketplace-api/internal/database"
	"github.com/wanderguide/marketplace-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with all tables migrated.
// A single connection keeps every statement on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	return open(t, "file:"+uuid.NewString()+"?mode=memory&cache=shared&_busy_timeout=5000", 1)
}

// NewFileDB opens a WAL-mode SQLite file under t.TempDir with a pool of
// conns connections, so concurrent transactions really run on separate
// connections. Write transactions begin IMMEDIATE and wait on the busy
// timeout instead of failing a lock upgrade.
func NewFileDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marketplace.db")
	return open(t, "file:"+path+"?_journal_mode=WAL&_busy_timeout=10000&_txlock=immediate", conns)
}

func open(t *testing.T, dsn string, conns int) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	u := &models.User{
		Email:       role + "-" + uuid.NewString()[:8] + "@example.com",
		Password:    "x",
		Role:        role,
		DisplayName: "Test " + role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateGuide creates a guide user with a profile. rate may be nil for the
// legacy flat-tier pricing path.
func CreateGuide(t *testing.T, db *gorm.DB, rate *int64) (*models.User, *models.GuideProfile) {
	t.Helper()
	u := CreateUser(t, db, models.RoleGuide)
	p := &models.GuideProfile{
		UID:          u.ID,
		Handle:       "guide-" + u.ID.String()[:8],
		DisplayName:  u.DisplayName,
		Languages:    []string{"en"},
		Themes:       []string{"food"},
		PriceH4:      120,
		PriceH6:      170,
		PriceH8:      220,
		BaseRateHour: rate,
		MaxGroupSize: 6,
	}
	require.NoError(t, db.Create(p).Error)
	return u, p
}

func CreateSlot(t *testing.T, db *gorm.DB, guideID uuid.UUID, start time.Time, hours int, status models.SlotStatus) *models.AvailabilitySlot {
	t.Helper()
	s := &models.AvailabilitySlot{
		GuideID:       guideID,
		StartTime:     start.UTC(),
		EndTime:       start.UTC().Add(time.Duration(hours) * time.Hour),
		DurationHours: hours,
		Status:        status,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

func Int64(v int64) *int64 { return &v }
