package application

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	blog "github.com/mervel/storefront/blog/domain"
	catalog "github.com/mervel/storefront/catalog/domain"
	"github.com/sirupsen/logrus"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

type page struct {
	path       string
	changeFreq string
	priority   string
}

var staticPages = []page{
	{"/", "weekly", "1.0"},
	{"/categories", "weekly", "0.8"},
	{"/track-order", "monthly", "0.4"},
	{"/auth", "monthly", "0.3"},
}

type ProductSource interface {
	List(ctx context.Context, filter catalog.ProductFilter) ([]*catalog.Product, error)
	Collections() []catalog.Combo
}

type PostSource interface {
	ListPublished(ctx context.Context) ([]*blog.Post, error)
}

type Builder struct {
	baseURL  string
	products ProductSource
	posts    PostSource
	now      func() time.Time
}

// NewBuilder accepts a nil PostSource when the blog is not mounted.
func NewBuilder(baseURL string, products ProductSource, posts PostSource) *Builder {
	return &Builder{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		products: products,
		posts:    posts,
		now:      time.Now,
	}
}

// Build lists fixed pages, collections, active products and published posts.
// A failing source is logged and skipped so the static part is always served.
func (b *Builder) Build(ctx context.Context) URLSet {
	today := b.now().UTC().Format("2006-01-02")
	set := URLSet{Xmlns: xmlns}
	add := func(path, freq, priority string) {
		set.URLs = append(set.URLs, URL{Loc: b.baseURL + path, LastMod: today, ChangeFreq: freq, Priority: priority})
	}

	for _, p := range staticPages {
		add(p.path, p.changeFreq, p.priority)
	}
	for _, c := range b.products.Collections() {
		add("/collection/"+c.ID, "weekly", "0.7")
	}

	products, err := b.products.List(ctx, catalog.ProductFilter{ActiveOnly: true})
	if err != nil {
		logrus.WithError(err).Warn("[SITEMAP] Could not fetch products, using static pages only")
	}
	for _, p := range products {
		add("/product/"+p.Slug, "weekly", "0.8")
	}

	add("/blog", "daily", "0.7")
	if b.posts != nil {
		posts, err := b.posts.ListPublished(ctx)
		if err != nil {
			logrus.WithError(err).Warn("[SITEMAP] Could not fetch blog posts")
		}
		for _, p := range posts {
			add("/blog/"+p.Slug, "weekly", "0.6")
		}
	}

	logrus.Debugf("[SITEMAP] Generated sitemap with %d URLs", len(set.URLs))
	return set
}

// Render returns the sitemap document with the XML declaration.
func (b *Builder) Render(ctx context.Context) ([]byte, error) {
	body, err := xml.MarshalIndent(b.Build(ctx), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
