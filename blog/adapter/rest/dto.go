package rest

import (
	"time"

	"github.com/mervel/storefront/blog/domain"
)

// PostRequest is the admin create/update payload.
type PostRequest struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Excerpt         *string  `json:"excerpt"`
	Content         string   `json:"content"`
	CoverImage      *string  `json:"cover_image"`
	MetaTitle       *string  `json:"meta_title"`
	MetaDescription *string  `json:"meta_description"`
	Keywords        []string `json:"keywords"`
	Author          string   `json:"author"`
	IsPublished     bool     `json:"is_published"`
}

func (r PostRequest) apply(p *domain.Post) {
	p.Title = r.Title
	p.Slug = r.Slug
	p.Excerpt = r.Excerpt
	p.Content = r.Content
	p.CoverImage = r.CoverImage
	p.MetaTitle = r.MetaTitle
	p.MetaDescription = r.MetaDescription
	p.Keywords = r.Keywords
	p.Author = r.Author
	p.IsPublished = r.IsPublished
}

// PostSummary is the listing projection; content is omitted.
type PostSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     *string    `json:"excerpt"`
	CoverImage  *string    `json:"cover_image"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"published_at"`
	Keywords    []string   `json:"keywords"`
}

func summarize(posts []*domain.Post) []PostSummary {
	out := make([]PostSummary, len(posts))
	for i, p := range posts {
		out[i] = PostSummary{
			ID:          p.ID,
			Title:       p.Title,
			Slug:        p.Slug,
			Excerpt:     p.Excerpt,
			CoverImage:  p.CoverImage,
			Author:      p.Author,
			PublishedAt: p.PublishedAt,
			Keywords:    p.Keywords,
		}
	}
	return out
}
