package application

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	coreconfig "github.com/mervel/storefront/core/config"
	"github.com/mervel/storefront/core/settings/domain"
	"github.com/mervel/storefront/core/settings/infrastructure"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var prefixVersion = regexp.MustCompile(`v(\d+)-$`)

type SettingsService struct {
	repo     domain.ISettingsRepository
	defaults domain.StoreSettings
}

func NewSettingsService(db *gorm.DB, cfg *coreconfig.Config) *SettingsService {
	return NewSettingsServiceWithRepo(infrastructure.NewSettingsGormRepository(db), cfg)
}

func NewSettingsServiceWithRepo(repo domain.ISettingsRepository, cfg *coreconfig.Config) *SettingsService {
	return &SettingsService{
		repo: repo,
		defaults: domain.StoreSettings{
			ShippingFee:           cfg.Storefront.ShippingFee,
			FreeShippingThreshold: cfg.Storefront.FreeShippingThreshold,
			ComboDiscount:         cfg.Storefront.ComboDiscount,
			ImageCachePrefix:      cfg.Imagery.CachePrefix,
		},
	}
}

func (s *SettingsService) InitSchema(ctx context.Context) error {
	return s.repo.InitSchema(ctx)
}

// GetStoreSettings merges stored overrides onto the configured defaults.
func (s *SettingsService) GetStoreSettings(ctx context.Context) (domain.StoreSettings, error) {
	out := s.defaults

	if val, err := s.repo.Get(ctx, domain.KeyShippingFee); err != nil {
		return out, err
	} else if n, err := strconv.ParseInt(val, 10, 64); err == nil && n >= 0 {
		out.ShippingFee = n
	}
	if val, err := s.repo.Get(ctx, domain.KeyFreeShippingThreshold); err != nil {
		return out, err
	} else if n, err := strconv.ParseInt(val, 10, 64); err == nil && n >= 0 {
		out.FreeShippingThreshold = n
	}
	if val, err := s.repo.Get(ctx, domain.KeyComboDiscount); err != nil {
		return out, err
	} else if f, err := strconv.ParseFloat(val, 64); err == nil && f >= 0 && f < 1 {
		out.ComboDiscount = f
	}
	if val, err := s.repo.Get(ctx, domain.KeyImageCachePrefix); err != nil {
		return out, err
	} else if val != "" {
		out.ImageCachePrefix = val
	}
	return out, nil
}

func (s *SettingsService) SetShippingFee(ctx context.Context, v int64) error {
	if v < 0 {
		v = 0
	}
	return s.repo.Set(ctx, domain.KeyShippingFee, fmt.Sprintf("%d", v))
}

func (s *SettingsService) SetFreeShippingThreshold(ctx context.Context, v int64) error {
	if v < 0 {
		v = 0
	}
	return s.repo.Set(ctx, domain.KeyFreeShippingThreshold, fmt.Sprintf("%d", v))
}

func (s *SettingsService) SetComboDiscount(ctx context.Context, v float64) error {
	if v < 0 || v >= 1 {
		return fmt.Errorf("combo discount must be in [0, 1), got %v", v)
	}
	return s.repo.Set(ctx, domain.KeyComboDiscount, strconv.FormatFloat(v, 'f', -1, 64))
}

// ImageCachePrefix returns the active image cache prefix.
func (s *SettingsService) ImageCachePrefix(ctx context.Context) (string, error) {
	val, err := s.repo.Get(ctx, domain.KeyImageCachePrefix)
	if err != nil {
		return "", err
	}
	if val == "" {
		return s.defaults.ImageCachePrefix, nil
	}
	return val, nil
}

// BumpImageCachePrefix moves the image cache to the next version ("-v4-" -> "-v5-"),
// which orphans every entry written under the old prefix.
func (s *SettingsService) BumpImageCachePrefix(ctx context.Context) (string, error) {
	current, err := s.ImageCachePrefix(ctx)
	if err != nil {
		return "", err
	}
	next := NextCachePrefix(current)
	if err := s.repo.Set(ctx, domain.KeyImageCachePrefix, next); err != nil {
		return "", err
	}
	logrus.Infof("[SETTINGS] Image cache prefix bumped %s -> %s", current, next)
	return next, nil
}

// NextCachePrefix increments a trailing "v<N>-" marker, or appends "v2-".
func NextCachePrefix(prefix string) string {
	m := prefixVersion.FindStringSubmatchIndex(prefix)
	if m == nil {
		if prefix != "" && !strings.HasSuffix(prefix, "-") {
			prefix += "-"
		}
		return prefix + "v2-"
	}
	n, _ := strconv.Atoi(prefix[m[2]:m[3]])
	return prefix[:m[0]] + "v" + strconv.Itoa(n+1) + "-"
}
