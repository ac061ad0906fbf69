package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrDuplicateSlug = errors.New("a post with this slug already exists")
)

// Post is a blog article. Content is markdown.
type Post struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         *string    `json:"excerpt"`
	Content         string     `json:"content"`
	CoverImage      *string    `json:"cover_image"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
	Keywords        []string   `json:"keywords"`
	Author          string     `json:"author"`
	IsPublished     bool       `json:"is_published"`
	PublishedAt     *time.Time `json:"published_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// DefaultAuthor is used when a post is saved without an author.
const DefaultAuthor = "Mervel Team"

// PostFilter narrows List. PublishedOnly orders by published_at, otherwise by created_at.
type PostFilter struct {
	PublishedOnly bool
	Limit         int
	Offset        int
}

type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, filter PostFilter) ([]*Post, error)
}
