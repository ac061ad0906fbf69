package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mervel/storefront/imagery/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type imageCacheModel struct {
	Key       string `gorm:"primaryKey;column:cache_key;size:255"`
	URL       string `gorm:"column:url;type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (imageCacheModel) TableName() string {
	return "image_cache"
}

// GormStore is the durable image cache backed by the main database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InitSchema(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&imageCacheModel{})
}

func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var m imageCacheModel
	err := s.db.WithContext(ctx).First(&m, "cache_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return m.URL, true, nil
}

func (s *GormStore) Set(ctx context.Context, key, url string) error {
	m := imageCacheModel{Key: key, URL: url}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "updated_at"}),
	}).Create(&m).Error
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&imageCacheModel{}, "cache_key = ?", key).Error
}

func (s *GormStore) Scan(ctx context.Context, prefix string) ([]domain.Entry, error) {
	var rows []struct {
		Key  string
		Size int
	}
	err := s.db.WithContext(ctx).Model(&imageCacheModel{}).
		Select("cache_key AS key, LENGTH(url) AS size").
		Where("cache_key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("cache_key").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Entry, len(rows))
	for i, r := range rows {
		out[i] = domain.Entry{Key: r.Key, Size: r.Size}
	}
	return out, nil
}

func (s *GormStore) Clear(ctx context.Context, prefix string) (int, error) {
	res := s.db.WithContext(ctx).Where("cache_key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").Delete(&imageCacheModel{})
	return int(res.RowsAffected), res.Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
