package infrastructure

import (
	"context"
	"errors"
	"strings"

	"github.com/mervel/storefront/core/settings/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type storeSettingModel struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"column:value"`
}

func (storeSettingModel) TableName() string {
	return "store_settings"
}

type SettingsGormRepository struct {
	db *gorm.DB
}

func NewSettingsGormRepository(db *gorm.DB) *SettingsGormRepository {
	return &SettingsGormRepository{db: db}
}

func (r *SettingsGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&storeSettingModel{})
}

// Get returns "" for keys that were never set.
func (r *SettingsGormRepository) Get(ctx context.Context, key string) (string, error) {
	var m storeSettingModel
	if err := r.db.WithContext(ctx).First(&m, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(m.Value), nil
}

func (r *SettingsGormRepository) Set(ctx context.Context, key string, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
	}).Create(&storeSettingModel{
		Key:   key,
		Value: value,
	}).Error
}

func (r *SettingsGormRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&storeSettingModel{}, "key = ?", key).Error
}

func (r *SettingsGormRepository) All(ctx context.Context) ([]domain.Setting, error) {
	var models []storeSettingModel
	if err := r.db.WithContext(ctx).Order("key").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Setting, len(models))
	for i, m := range models {
		out[i] = domain.Setting{Key: m.Key, Value: m.Value}
	}
	return out, nil
}
