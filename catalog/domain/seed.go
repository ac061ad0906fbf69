package domain

type seedEntry struct {
	slug, name, category, badge string
	price50, price100          int64
	top, heart, base           []string
	longevity, sillage         int
}

var seedCatalog = []seedEntry{
	{"midnight-fern", "Midnight Fern", CategoryWoody, "Bestseller", 1800, 3200, []string{"Bergamot", "Green Fern"}, []string{"Lavender", "Geranium"}, []string{"Cedarwood", "Oakmoss"}, 4, 4},
	{"oud-mystique", "Oud Mystique", CategorySpicy, "Premium", 3500, 6200, []string{"Saffron", "Cardamom"}, []string{"Agarwood", "Rose"}, []string{"Sandalwood", "Amber"}, 5, 5},
	{"velvet-rose", "Velvet Rose", CategoryFloral, "", 1600, 2800, []string{"Pink Pepper", "Lychee"}, []string{"Damask Rose", "Peony"}, []string{"Patchouli", "Musk"}, 4, 3},
	{"shadow-musk", "Shadow Musk", CategoryMusk, "", 1400, 2400, []string{"Aldehydes", "Pear"}, []string{"Orris", "White Musk"}, []string{"Cashmeran", "Ambrette"}, 3, 3},
	{"gold-resin", "Gold Resin", CategorySpicy, "", 2200, 3900, []string{"Elemi", "Mandarin"}, []string{"Labdanum", "Benzoin"}, []string{"Amber", "Vanilla"}, 5, 4},
	{"forest-rain", "Forest Rain", CategoryWoody, "New", 1500, 2600, []string{"Petrichor", "Galbanum"}, []string{"Violet Leaf", "Moss"}, []string{"Vetiver", "Cedar"}, 3, 3},
	{"dark-amber", "Dark Amber", CategorySpicy, "", 2000, 3500, []string{"Cinnamon", "Plum"}, []string{"Tobacco", "Honey"}, []string{"Amber", "Tonka Bean"}, 5, 4},
	{"eclipse", "Eclipse", CategoryMusk, "", 1700, 3000, []string{"Blackberry", "Bergamot"}, []string{"Violet", "Iris"}, []string{"Musk", "Vetiver"}, 4, 3},
	{"savage-root", "Savage Root", CategoryWoody, "", 1900, 3300, []string{"Ginger", "Grapefruit"}, []string{"Cypriol", "Clary Sage"}, []string{"Vetiver", "Leather"}, 4, 4},
	{"noir-jasmine", "Noir Jasmine", CategoryFloral, "", 1800, 3100, []string{"Neroli", "Mandarin"}, []string{"Jasmine Sambac", "Tuberose"}, []string{"Sandalwood", "Musk"}, 4, 4},
	{"crimson-veil", "Crimson Veil", CategoryFloral, "Limited", 2100, 3700, []string{"Raspberry", "Pink Pepper"}, []string{"Black Orchid", "Rose"}, []string{"Patchouli", "Vanilla"}, 4, 4},
	{"obsidian-night", "Obsidian Night", CategoryWoody, "", 2300, 4000, []string{"Bergamot", "Black Pepper"}, []string{"Lavender", "Incense"}, []string{"Ebony Wood", "Ambergris"}, 5, 4},
	{"silk-saffron", "Silk Saffron", CategorySpicy, "Premium", 3200, 5600, []string{"Saffron", "Pink Pepper"}, []string{"Rose", "Jasmine"}, []string{"Oud", "Amber"}, 5, 4},
	{"phantom-wood", "Phantom Wood", CategoryWoody, "", 1700, 2900, []string{"Juniper", "Pine"}, []string{"Birch Tar", "Cypress"}, []string{"Guaiac Wood", "Cedar"}, 4, 3},
	{"velvet-noir", "Velvet Noir", CategoryFloral, "", 2000, 3500, []string{"Blackcurrant", "Violet"}, []string{"Iris", "Heliotrope"}, []string{"Suede", "Musk"}, 4, 3},
	{"ember-crown", "Ember Crown", CategorySpicy, "", 1900, 3400, []string{"Cinnamon", "Pink Peppercorn"}, []string{"Clove", "Orange Blossom"}, []string{"Benzoin", "Tonka Bean"}, 4, 4},
	{"jade-lotus", "Jade Lotus", CategoryFloral, "New", 1500, 2700, []string{"Green Tea", "Yuzu"}, []string{"Lotus", "Water Lily"}, []string{"White Musk", "Bamboo"}, 3, 2},
	{"serpent-smoke", "Serpent Smoke", CategoryWoody, "", 2400, 4200, []string{"Elemi", "Black Pepper"}, []string{"Frankincense", "Myrrh"}, []string{"Oud", "Leather"}, 5, 5},
	{"lunar-bloom", "Lunar Bloom", CategoryMusk, "", 1600, 2800, []string{"Pear", "Aldehydes"}, []string{"Magnolia", "Peony"}, []string{"White Musk", "Cashmere Wood"}, 3, 3},
	{"abyssal-leather", "Abyssal Leather", CategoryWoody, "", 2600, 4500, []string{"Saffron", "Raspberry"}, []string{"Leather", "Birch"}, []string{"Oud", "Patchouli"}, 5, 4},
}

// SeedProducts returns the launch catalog used to populate an empty store.
func SeedProducts() []*Product {
	out := make([]*Product, len(seedCatalog))
	for i, e := range seedCatalog {
		longevity, sillage := e.longevity, e.sillage
		out[i] = &Product{
			Slug:          e.slug,
			Name:          e.name,
			Description:   e.name + " eau de parfum.",
			Category:      e.category,
			DefaultVolume: DefaultVolume,
			Variants:      []Variant{{Volume: "50ml", Price: e.price50}, {Volume: "100ml", Price: e.price100}},
			Notes:         Notes{Top: e.top, Heart: e.heart, Base: e.base},
			Longevity:     &longevity,
			Sillage:       &sillage,
			ImageURL:      "/statics/products/" + e.slug + ".jpg",
			Badge:         e.badge,
			Stock:         50,
			IsActive:      true,
		}
	}
	return out
}
