package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mervel/storefront/blog/domain"
	"gorm.io/gorm"
)

type postModel struct {
	ID              string `gorm:"primaryKey"`
	Title           string `gorm:"not null"`
	Slug            string `gorm:"uniqueIndex:idx_blog_posts_slug;not null"`
	Excerpt         *string
	Content         string `gorm:"type:text;not null"`
	CoverImage      *string
	MetaTitle       *string
	MetaDescription *string
	Keywords        string `gorm:"type:text;default:'[]'"` // JSON
	Author          string `gorm:"not null"`
	IsPublished     bool   `gorm:"index:idx_blog_posts_published"`
	PublishedAt     *time.Time
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (postModel) TableName() string {
	return "blog_posts"
}

type PostGormRepository struct {
	db *gorm.DB
}

func NewPostGormRepository(db *gorm.DB) *PostGormRepository {
	return &PostGormRepository{db: db}
}

func (r *PostGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&postModel{})
}

func (r *PostGormRepository) Create(ctx context.Context, post *domain.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	model, err := toPostModel(post)
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

func (r *PostGormRepository) Update(ctx context.Context, post *domain.Post) error {
	post.UpdatedAt = time.Now().UTC()
	model, err := toPostModel(post)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&postModel{ID: post.ID}).Select("*").Omit("created_at").Updates(&model)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return domain.ErrDuplicateSlug
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostGormRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&postModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostGormRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostGormRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *PostGormRepository) first(ctx context.Context, cond string, arg any) (*domain.Post, error) {
	var m postModel
	if err := r.db.WithContext(ctx).First(&m, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	return fromPostModel(m)
}

func (r *PostGormRepository) List(ctx context.Context, filter domain.PostFilter) ([]*domain.Post, error) {
	query := r.db.WithContext(ctx).Model(&postModel{})
	if filter.PublishedOnly {
		query = query.Where("is_published = ?", true).Order("published_at DESC")
	} else {
		query = query.Order("created_at DESC")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var models []postModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Post, 0, len(models))
	for _, m := range models {
		p, err := fromPostModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func isDuplicate(err error) bool {
	msg := err.Error()
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func toPostModel(p *domain.Post) (postModel, error) {
	keywords := p.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	raw, err := json.Marshal(keywords)
	if err != nil {
		return postModel{}, fmt.Errorf("marshal keywords: %w", err)
	}
	return postModel{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Excerpt:         p.Excerpt,
		Content:         p.Content,
		CoverImage:      p.CoverImage,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		Keywords:        string(raw),
		Author:          p.Author,
		IsPublished:     p.IsPublished,
		PublishedAt:     p.PublishedAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}, nil
}

func fromPostModel(m postModel) (*domain.Post, error) {
	p := &domain.Post{
		ID:              m.ID,
		Title:           m.Title,
		Slug:            m.Slug,
		Excerpt:         m.Excerpt,
		Content:         m.Content,
		CoverImage:      m.CoverImage,
		MetaTitle:       m.MetaTitle,
		MetaDescription: m.MetaDescription,
		Author:          m.Author,
		IsPublished:     m.IsPublished,
		PublishedAt:     m.PublishedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Keywords != "" {
		if err := json.Unmarshal([]byte(m.Keywords), &p.Keywords); err != nil {
			return nil, fmt.Errorf("decode keywords for post %s: %w", m.ID, err)
		}
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	return p, nil
}
