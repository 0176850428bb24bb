package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/wanderguide/marketplace-api/internal/config"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/pricing"
	"gorm.io/gorm"
)

var ErrSettingNotFound = errors.New("setting not found")

type SettingsService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewSettingsService(db *gorm.DB, cfg *config.Config) *SettingsService {
	return &SettingsService{db: db, cfg: cfg}
}

// SeedDefaults inserts policy keys that do not exist yet.
func (s *SettingsService) SeedDefaults(ctx context.Context) error {
	defaults := []models.PlatformSetting{
		{Key: models.SettingTravelerFeePercent, Value: strconv.Itoa(s.cfg.TravelerFeePercent), Type: "int", Public: true},
		{Key: models.SettingCommissionPercent, Value: strconv.Itoa(s.cfg.CommissionPercent), Type: "int", Public: true},
		{Key: models.SettingCommissionMin, Value: strconv.FormatInt(s.cfg.CommissionMin, 10), Type: "int", Public: true},
		{Key: models.SettingMaintenanceMode, Value: "false", Type: "bool", Public: true},
	}

	db := s.db.WithContext(ctx)
	for i := range defaults {
		var count int64
		if err := db.Model(&models.PlatformSetting{}).Where("key = ?", defaults[i].Key).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&defaults[i]).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// Public returns decoded values of all public settings.
func (s *SettingsService) Public(ctx context.Context) (map[string]interface{}, error) {
	var rows []models.PlatformSetting
	if err := s.db.WithContext(ctx).Where("public = ?", true).Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[string]interface{}, len(rows))
	for _, row := range rows {
		result[row.Key] = decodeSetting(row)
	}
	return result, nil
}

func (s *SettingsService) Set(ctx context.Context, key, value, typ string, public *bool) (*models.PlatformSetting, error) {
	if typ == "" {
		typ = "string"
	}
	if err := checkSettingValue(value, typ); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var row models.PlatformSetting
	err := db.Where("key = ?", key).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.PlatformSetting{Key: key, Value: value, Type: typ, Public: true}
		if public != nil {
			row.Public = *public
		}
		if err := db.Create(&row).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		row.Value = value
		row.Type = typ
		if public != nil {
			row.Public = *public
		}
		if err := db.Save(&row).Error; err != nil {
			return nil, err
		}
	}
	return &row, nil
}

func (s *SettingsService) Delete(ctx context.Context, key string) error {
	result := s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.PlatformSetting{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}
	return nil
}

// Policy reads the fee and commission policy inside tx, falling back to the
// configured defaults for missing or malformed rows.
func (s *SettingsService) Policy(tx *gorm.DB) pricing.Policy {
	policy := pricing.Policy{
		TravelerFeePercent: s.cfg.TravelerFeePercent,
		CommissionPercent:  s.cfg.CommissionPercent,
		CommissionMin:      s.cfg.CommissionMin,
	}

	var rows []models.PlatformSetting
	keys := []string{models.SettingTravelerFeePercent, models.SettingCommissionPercent, models.SettingCommissionMin}
	if err := tx.Where("key IN ?", keys).Find(&rows).Error; err != nil {
		return policy
	}
	for _, row := range rows {
		n, err := strconv.ParseInt(row.Value, 10, 64)
		if err != nil || n < 0 {
			continue
		}
		switch row.Key {
		case models.SettingTravelerFeePercent:
			policy.TravelerFeePercent = int(n)
		case models.SettingCommissionPercent:
			policy.CommissionPercent = int(n)
		case models.SettingCommissionMin:
			policy.CommissionMin = n
		}
	}
	return policy
}

func decodeSetting(row models.PlatformSetting) interface{} {
	var value interface{}
	switch row.Type {
	case "bool":
		value, _ = strconv.ParseBool(row.Value)
	case "int":
		value, _ = strconv.Atoi(row.Value)
	case "json":
		_ = json.Unmarshal([]byte(row.Value), &value)
	default:
		value = row.Value
	}
	return value
}

func checkSettingValue(value, typ string) error {
	var err error
	switch typ {
	case "bool":
		_, err = strconv.ParseBool(value)
	case "int":
		_, err = strconv.Atoi(value)
	case "json":
		if !json.Valid([]byte(value)) {
			err = errors.New("invalid json")
		}
	}
	if err != nil {
		return &ValidationError{Message: "value does not match type " + typ}
	}
	return nil
}

// MaintenanceMode reports the maintenance_mode flag. Lookup failures read as off.
func (s *SettingsService) MaintenanceMode(ctx context.Context) bool {
	var row models.PlatformSetting
	if err := s.db.WithContext(ctx).Where("key = ?", models.SettingMaintenanceMode).First(&row).Error; err != nil {
		return false
	}
	on, _ := strconv.ParseBool(row.Value)
	return on
}
