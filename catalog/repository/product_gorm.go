package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mervel/storefront/catalog/domain"
	"gorm.io/gorm"
)

// --- Persistence Model ---

type productModel struct {
	ID              string `gorm:"primaryKey"`
	Slug            string `gorm:"uniqueIndex:idx_products_slug;not null"`
	Name            string `gorm:"not null"`
	Description     string
	LongDescription string
	Category        string `gorm:"index:idx_products_category"`
	DefaultVolume   string `gorm:"default:'100ml'"`
	Variants        string `gorm:"type:text;default:'[]'"` // JSON
	Notes           string `gorm:"type:text;default:'{}'"` // JSON
	Longevity       *int
	Sillage         *int
	ImageURL        string
	Badge           string
	Stock           int       `gorm:"default:0"`
	IsActive        bool      `gorm:"index:idx_products_active"`
	CreatedAt       time.Time `gorm:"not null;index:idx_products_created"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (productModel) TableName() string {
	return "products"
}

// --- Repository Implementation ---

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&productModel{})
}

func (r *ProductGormRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	model, err := toProductModel(product)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (r *ProductGormRepository) Update(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now().UTC()
	model, err := toProductModel(product)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&productModel{ID: product.ID}).Select("*").Omit("created_at").Updates(&model)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return domain.ErrDuplicateSlug
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductGormRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&productModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductGormRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var m productModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return fromProductModel(m)
}

func (r *ProductGormRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var m productModel
	if err := r.db.WithContext(ctx).First(&m, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return fromProductModel(m)
}

func (r *ProductGormRepository) ListBySlugs(ctx context.Context, slugs []string) ([]*domain.Product, error) {
	if len(slugs) == 0 {
		return []*domain.Product{}, nil
	}
	var models []productModel
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&models).Error; err != nil {
		return nil, err
	}
	return fromProductModels(models)
}

// List returns products newest first.
func (r *ProductGormRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	query := r.db.WithContext(ctx).Model(&productModel{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", pattern, pattern)
	}

	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var models []productModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return fromProductModels(models)
}

func (r *ProductGormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&productModel{}).Count(&n).Error
	return n, err
}

func isDuplicate(err error) bool {
	msg := err.Error()
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// --- Mappers ---

func toProductModel(p *domain.Product) (productModel, error) {
	variants := p.Variants
	if variants == nil {
		variants = []domain.Variant{}
	}
	variantsJSON, err := json.Marshal(variants)
	if err != nil {
		return productModel{}, fmt.Errorf("marshal variants: %w", err)
	}

	notes := p.Notes
	if notes.Top == nil {
		notes.Top = []string{}
	}
	if notes.Heart == nil {
		notes.Heart = []string{}
	}
	if notes.Base == nil {
		notes.Base = []string{}
	}
	notesJSON, err := json.Marshal(notes)
	if err != nil {
		return productModel{}, fmt.Errorf("marshal notes: %w", err)
	}

	volume := p.DefaultVolume
	if volume == "" {
		volume = domain.DefaultVolume
	}

	return productModel{
		ID:              p.ID,
		Slug:            p.Slug,
		Name:            p.Name,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Category:        p.Category,
		DefaultVolume:   volume,
		Variants:        string(variantsJSON),
		Notes:           string(notesJSON),
		Longevity:       p.Longevity,
		Sillage:         p.Sillage,
		ImageURL:        p.ImageURL,
		Badge:           p.Badge,
		Stock:           p.Stock,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}, nil
}

func fromProductModel(m productModel) (*domain.Product, error) {
	p := &domain.Product{
		ID:              m.ID,
		Slug:            m.Slug,
		Name:            m.Name,
		Description:     m.Description,
		LongDescription: m.LongDescription,
		Category:        m.Category,
		DefaultVolume:   m.DefaultVolume,
		Longevity:       m.Longevity,
		Sillage:         m.Sillage,
		ImageURL:        m.ImageURL,
		Badge:           m.Badge,
		Stock:           m.Stock,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}

	if m.Variants != "" {
		_ = json.Unmarshal([]byte(m.Variants), &p.Variants)
	}
	if p.Variants == nil {
		p.Variants = []domain.Variant{}
	}
	if m.Notes != "" {
		_ = json.Unmarshal([]byte(m.Notes), &p.Notes)
	}
	return p, nil
}

func fromProductModels(models []productModel) ([]*domain.Product, error) {
	out := make([]*domain.Product, len(models))
	for i, m := range models {
		p, err := fromProductModel(m)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
