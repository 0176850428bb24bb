package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wanderguide/marketplace-api/internal/cache"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const DemoPassword = "demo-password"

type seedCity struct {
	Name, Country, Timezone string
	Lat, Lng                float64
}

var seedCities = []seedCity{
	{"Lisboa", "PT", "Europe/Lisbon", 38.7223, -9.1393},
	{"Porto", "PT", "Europe/Lisbon", 41.1579, -8.6291},
	{"Sevilla", "ES", "Europe/Madrid", 37.3891, -5.9845},
	{"Ciudad de México", "MX", "America/Mexico_City", 19.4326, -99.1332},
	{"Kyōto", "JP", "Asia/Tokyo", 35.0116, 135.7681},
}

type SeedResult struct {
	Cities int `json:"cities"`
	Users  int `json:"users"`
	Slots  int `json:"slots"`
}

// DevService seeds and wipes marketplace data outside production.
type DevService struct {
	db     *gorm.DB
	loader *cache.Loader
	now    func() time.Time
}

func NewDevService(db *gorm.DB, loader *cache.Loader) *DevService {
	return &DevService{db: db, loader: loader, now: time.Now}
}

// Seed inserts reference cities and demo accounts. Rows that already exist
// are left alone, so repeated calls are safe.
func (s *DevService) Seed(ctx context.Context) (*SeedResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	result := &SeedResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var first *models.City
		for _, sc := range seedCities {
			city := models.City{
				Name:        sc.Name,
				CountryCode: sc.Country,
				Slug:        utils.Slugify(sc.Name),
				Latitude:    sc.Lat,
				Longitude:   sc.Lng,
				Timezone:    sc.Timezone,
			}
			created, err := firstOrCreate(tx, &city, "slug = ?", city.Slug)
			if err != nil {
				return err
			}
			if created {
				result.Cities++
			}
			if first == nil {
				first = &city
			}
		}

		traveler := models.User{Email: "traveler@demo.local", Password: string(hash), Role: models.RoleTraveler, DisplayName: "Demo Traveler"}
		created, err := firstOrCreate(tx, &traveler, "email = ?", traveler.Email)
		if err != nil {
			return err
		}
		if created {
			result.Users++
			if err := tx.Create(&models.TravelerProfile{UID: traveler.ID, PreferredLanguage: "en"}).Error; err != nil {
				return err
			}
		}

		guide := models.User{Email: "guide@demo.local", Password: string(hash), Role: models.RoleGuide, DisplayName: "Ana Guia"}
		created, err = firstOrCreate(tx, &guide, "email = ?", guide.Email)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		result.Users++

		rate := int64(30)
		profile := models.GuideProfile{
			UID:          guide.ID,
			Handle:       utils.Slugify(guide.DisplayName),
			DisplayName:  guide.DisplayName,
			CityID:       &first.ID,
			Location:     first.Name,
			Bio:          "Food markets, tiled facades and hidden viewpoints.",
			Languages:    []string{"en", "pt"},
			Themes:       []string{"food", "history"},
			PriceH4:      120,
			PriceH6:      170,
			PriceH8:      216,
			BaseRateHour: &rate,
			MaxGroupSize: 6,
			Verified:     true,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		day := s.now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
		for i, hours := range []int{4, 6, 8} {
			start := day.Add(time.Duration(i)*24*time.Hour + 9*time.Hour)
			slot := models.AvailabilitySlot{
				GuideID:       guide.ID,
				StartTime:     start,
				EndTime:       start.Add(time.Duration(hours) * time.Hour),
				DurationHours: hours,
				Status:        models.SlotOpen,
			}
			if err := tx.Create(&slot).Error; err != nil {
				return err
			}
			result.Slots++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slugs := make([]string, len(seedCities))
	for i, sc := range seedCities {
		slugs[i] = utils.Slugify(sc.Name)
	}
	s.invalidateCatalog(ctx, slugs)
	return result, nil
}

// firstOrCreate loads the row matching where into dst, or creates dst.
func firstOrCreate(tx *gorm.DB, dst interface{}, where string, args ...interface{}) (bool, error) {
	err := tx.Where(where, args...).First(dst).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, tx.Create(dst).Error
}

// Reset deletes all marketplace rows, children first. Settings and system
// logs are kept.
func (s *DevService) Reset(ctx context.Context) error {
	tables := []interface{}{
		&models.Message{},
		&models.Conversation{},
		&models.Review{},
		&models.Booking{},
		&models.Reservation{},
		&models.AvailabilitySlot{},
		&models.Report{},
		&models.Block{},
		&models.GuideProfile{},
		&models.TravelerProfile{},
		&models.City{},
		&models.ContactMessage{},
		&models.NewsletterSubscription{},
		&models.RefreshToken{},
		&models.User{},
	}
	var slugs []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.City{}).Pluck("slug", &slugs).Error; err != nil {
			return err
		}
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()
		for _, m := range tables {
			if err := all.Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidateCatalog(ctx, slugs)
	return nil
}

// invalidateCatalog drops the cached city list, the given city slugs and
// every cached guide search page.
func (s *DevService) invalidateCatalog(ctx context.Context, slugs []string) {
	keys := make([]string, 0, len(slugs)+1)
	keys = append(keys, cityListKey)
	for _, slug := range slugs {
		keys = append(keys, citySlugKey(slug))
	}
	s.loader.Invalidate(ctx, keys...)
	s.loader.Bump(ctx, guideListNamespace)
}
