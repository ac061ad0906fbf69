package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mervel/storefront/blog/domain"
	"github.com/mervel/storefront/validations"
	"github.com/sirupsen/logrus"
)

type PostService struct {
	repo domain.PostRepository
	now  func() time.Time
}

func NewPostService(repo domain.PostRepository) *PostService {
	return &PostService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// ListPublished returns published posts, most recently published first.
func (s *PostService) ListPublished(ctx context.Context) ([]*domain.Post, error) {
	posts, err := s.repo.List(ctx, domain.PostFilter{PublishedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	return posts, nil
}

// GetPublished hides drafts behind ErrPostNotFound.
func (s *PostService) GetPublished(ctx context.Context, slug string) (*domain.Post, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.IsPublished {
		return nil, domain.ErrPostNotFound
	}
	return p, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PostService) List(ctx context.Context, filter domain.PostFilter) ([]*domain.Post, error) {
	return s.repo.List(ctx, filter)
}

func (s *PostService) Create(ctx context.Context, p *domain.Post) error {
	s.normalize(p)
	if err := validations.ValidatePost(ctx, p); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	logrus.Infof("[BLOG] Post %s created", p.Slug)
	return nil
}

func (s *PostService) Update(ctx context.Context, p *domain.Post) error {
	s.normalize(p)
	if err := validations.ValidatePost(ctx, p); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	logrus.Infof("[BLOG] Post %s updated", p.Slug)
	return nil
}

func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logrus.Infof("[BLOG] Post %s deleted", id)
	return nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrPostNotFound)
}

// normalize stamps published_at the first time a post is published and
// clears it when the post goes back to draft.
func (s *PostService) normalize(p *domain.Post) {
	p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
	p.Title = strings.TrimSpace(p.Title)
	p.Author = strings.TrimSpace(p.Author)
	if p.Author == "" {
		p.Author = domain.DefaultAuthor
	}
	p.Excerpt = trimOptional(p.Excerpt)
	p.CoverImage = trimOptional(p.CoverImage)
	p.MetaTitle = trimOptional(p.MetaTitle)
	p.MetaDescription = trimOptional(p.MetaDescription)

	switch {
	case p.IsPublished && p.PublishedAt == nil:
		now := s.now()
		p.PublishedAt = &now
	case !p.IsPublished:
		p.PublishedAt = nil
	}
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
