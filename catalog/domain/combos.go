package domain

// Combo is a fixed bundle of products sold together at a percentage discount.
type Combo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Subtitle    string   `json:"subtitle"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	ProductIDs  []string `json:"product_ids"`
}

var combos = []Combo{
	{
		ID:          "dark-elegance",
		Name:        "Dark Elegance",
		Subtitle:    "Signature Series",
		Description: "A regal harmony of three deep, mysterious fragrances. The damp cedar of ancient pine forests, the dark roses of midnight, and the freshness of moonlit dew. Together they create an unforgettable experience.",
		Image:       "/statics/collections/collection-group-1.jpg",
		ProductIDs:  []string{"midnight-fern", "velvet-rose", "forest-rain"},
	},
	{
		ID:          "golden-opulence",
		Name:        "Golden Opulence",
		Subtitle:    "Premium Collection",
		Description: "The ultimate expression of luxury, a golden anthology of three premium fragrances. Rare oriental agarwood, sacred incense, and royal saffron blend together to form this exquisite collection.",
		Image:       "/statics/collections/collection-group-2.jpg",
		ProductIDs:  []string{"oud-mystique", "gold-resin", "silk-saffron"},
	},
}

// Combos returns a copy of the curated collections.
func Combos() []Combo {
	out := make([]Combo, len(combos))
	for i, c := range combos {
		c.ProductIDs = append([]string(nil), c.ProductIDs...)
		out[i] = c
	}
	return out
}

// FindCombo looks a collection up by id.
func FindCombo(id string) (Combo, bool) {
	for _, c := range Combos() {
		if c.ID == id {
			return c, true
		}
	}
	return Combo{}, false
}
