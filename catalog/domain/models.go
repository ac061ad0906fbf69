package domain

import (
	"sort"
	"time"
)

// Variant is one sellable volume of a fragrance.
type Variant struct {
	Volume string `json:"volume"`
	Price  int64  `json:"price"`
}

// Notes is the olfactory pyramid.
type Notes struct {
	Top   []string `json:"top"`
	Heart []string `json:"heart"`
	Base  []string `json:"base"`
}

// Product is a perfume in the catalog. Slug doubles as the public product id
// used by carts, orders and the image cache.
type Product struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	LongDescription string    `json:"long_description"`
	Category        string    `json:"category"`
	DefaultVolume   string    `json:"default_volume"`
	Variants        []Variant `json:"variants"`
	Notes           Notes     `json:"notes"`
	Longevity       *int      `json:"longevity"`
	Sillage         *int      `json:"sillage"`
	ImageURL        string    `json:"image_url"`
	Badge           string    `json:"badge"`
	Stock           int       `json:"stock"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

const DefaultVolume = "100ml"

// Categories drive the image prompt palette and the analytics breakdown.
const (
	CategoryWoody  = "woody"
	CategorySpicy  = "spicy"
	CategoryFloral = "floral"
	CategoryMusk   = "musk"
)

// MinPrice is the cheapest variant price, 0 when the product has no variants.
func (p Product) MinPrice() int64 {
	if len(p.Variants) == 0 {
		return 0
	}
	min := p.Variants[0].Price
	for _, v := range p.Variants[1:] {
		if v.Price < min {
			min = v.Price
		}
	}
	return min
}

// MaxPrice is the most expensive variant price, 0 when the product has no variants.
func (p Product) MaxPrice() int64 {
	var max int64
	for _, v := range p.Variants {
		if v.Price > max {
			max = v.Price
		}
	}
	return max
}

// PriceFor returns the price of the given volume.
func (p Product) PriceFor(volume string) (int64, bool) {
	for _, v := range p.Variants {
		if v.Volume == volume {
			return v.Price, true
		}
	}
	return 0, false
}

// SortVariants orders variants by ascending price.
func (p *Product) SortVariants() {
	sort.SliceStable(p.Variants, func(i, j int) bool {
		return p.Variants[i].Price < p.Variants[j].Price
	})
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	ActiveOnly bool
	Category   string
	Search     string
	Limit      int
	Offset     int
}
