package rest

import "github.com/mervel/storefront/catalog/domain"

// ProductRequest is the admin create/update payload.
type ProductRequest struct {
	Slug            string           `json:"slug"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	LongDescription string           `json:"long_description"`
	Category        string           `json:"category"`
	DefaultVolume   string           `json:"default_volume"`
	Variants        []domain.Variant `json:"variants"`
	Notes           domain.Notes     `json:"notes"`
	Longevity       *int             `json:"longevity"`
	Sillage         *int             `json:"sillage"`
	ImageURL        string           `json:"image_url"`
	Badge           string           `json:"badge"`
	Stock           int              `json:"stock"`
	IsActive        *bool            `json:"is_active"`
}

func (r ProductRequest) apply(p *domain.Product) {
	p.Slug = r.Slug
	p.Name = r.Name
	p.Description = r.Description
	p.LongDescription = r.LongDescription
	p.Category = r.Category
	p.DefaultVolume = r.DefaultVolume
	p.Variants = r.Variants
	p.Notes = r.Notes
	p.Longevity = r.Longevity
	p.Sillage = r.Sillage
	p.ImageURL = r.ImageURL
	p.Badge = r.Badge
	p.Stock = r.Stock
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	} else if p.ID == "" {
		p.IsActive = true
	}
}

// CollectionResponse is a combo with its resolved products.
type CollectionResponse struct {
	domain.Combo
	Products []*domain.Product `json:"products"`
}
