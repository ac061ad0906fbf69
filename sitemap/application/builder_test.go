package application

import (
	"context"
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	blog "github.com/mervel/storefront/blog/domain"
	catalog "github.com/mervel/storefront/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProducts struct {
	products []*catalog.Product
	err      error
}

func (s stubProducts) List(context.Context, catalog.ProductFilter) ([]*catalog.Product, error) {
	return s.products, s.err
}

func (s stubProducts) Collections() []catalog.Combo { return catalog.Combos() }

type stubPosts []*blog.Post

func (s stubPosts) ListPublished(context.Context) ([]*blog.Post, error) { return s, nil }

func fixedBuilder(products ProductSource, posts PostSource) *Builder {
	b := NewBuilder("https://shop.example.com/", products, posts)
	b.now = func() time.Time { return time.Date(2025, 7, 4, 23, 0, 0, 0, time.UTC) }
	return b
}

func TestBuilder_Build(t *testing.T) {
	b := fixedBuilder(
		stubProducts{products: []*catalog.Product{{Slug: "midnight-fern"}, {Slug: "velvet-rose"}}},
		stubPosts{{Slug: "layering-oud"}},
	)

	set := b.Build(context.Background())

	// 4 static + 2 collections + 2 products + blog index + 1 post
	require.Len(t, set.URLs, 10)
	assert.Equal(t, URL{Loc: "https://shop.example.com/", LastMod: "2025-07-04", ChangeFreq: "weekly", Priority: "1.0"}, set.URLs[0])
	assert.Equal(t, "https://shop.example.com/collection/dark-elegance", set.URLs[4].Loc)
	assert.Equal(t, URL{Loc: "https://shop.example.com/product/midnight-fern", LastMod: "2025-07-04", ChangeFreq: "weekly", Priority: "0.8"}, set.URLs[6])
	assert.Equal(t, "daily", set.URLs[8].ChangeFreq)
	assert.Equal(t, URL{Loc: "https://shop.example.com/blog/layering-oud", LastMod: "2025-07-04", ChangeFreq: "weekly", Priority: "0.6"}, set.URLs[9])
}

func TestBuilder_ProductFailureKeepsStaticPages(t *testing.T) {
	b := fixedBuilder(stubProducts{err: errors.New("db down")}, nil)

	set := b.Build(context.Background())
	assert.Len(t, set.URLs, 7)
}

func TestBuilder_Render(t *testing.T) {
	b := fixedBuilder(stubProducts{}, nil)

	out, err := b.Render(context.Background())
	require.NoError(t, err)
	doc := string(out)
	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, doc, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, doc, "<loc>https://shop.example.com/track-order</loc>")

	var parsed URLSet
	require.NoError(t, xml.Unmarshal(out, &parsed))
	assert.Len(t, parsed.URLs, 7)
}
