// Package models defines the canonical domain records served by the
// storefront. Records are produced by the normalizer, held by value in both
// cache tiers, and replaced wholesale on resynchronization.
package models

// Product is a single catalog item. Slug is the identity key and is
// compared case-insensitively everywhere.
type Product struct {
	Slug        string   `json:"slug" db:"slug"`
	Name        string   `json:"name" db:"name"`
	Description string   `json:"description" db:"description"`
	PriceCents  int      `json:"priceCents" db:"price_cents"`
	Per         string   `json:"per" db:"per"`
	ImageURL    string   `json:"imageUrl" db:"image_url"`
	InStock     bool     `json:"inStock" db:"in_stock"`
	Featured    bool     `json:"featured" db:"featured"`
	Badges      []string `json:"badges" db:"-"`
}

// HomePage is the storefront landing content. The featured list is stored and
// replaced as one unit together with the text fields, never merged.
type HomePage struct {
	HeroTitle        string    `json:"heroTitle"`
	HeroSubtitle     string    `json:"heroSubtitle"`
	PromoText        string    `json:"promoText"`
	HeroImageURL     string    `json:"heroImageUrl"`
	FeaturedProducts []Product `json:"featuredProducts"`
}

// HasData reports whether the record carries any usable content. It is the
// emptiness check shared by the read path and the resync retry loop.
func (h HomePage) HasData() bool {
	return h.HeroTitle != "" ||
		h.HeroSubtitle != "" ||
		h.PromoText != "" ||
		len(h.FeaturedProducts) > 0
}

// Theme is the fixed set of storefront style tokens. Every token falls back
// independently to its default; partial overrides from the CMS are the
// expected usage pattern.
type Theme struct {
	Name             string `json:"name"`
	Background       string `json:"background"`
	BackgroundAccent string `json:"backgroundAccent"`
	Card             string `json:"card"`
	CardSoft         string `json:"cardSoft"`
	Text             string `json:"text"`
	Muted            string `json:"muted"`
	Accent           string `json:"accent"`
	Accent2          string `json:"accent2"`
	TopbarBg         string `json:"topbarBg"`
	TopbarBorder     string `json:"topbarBorder"`
	HeroGradient1    string `json:"heroGradient1"`
	HeroGradient2    string `json:"heroGradient2"`
	HeroGradient3    string `json:"heroGradient3"`
	HeroOverlay1     string `json:"heroOverlay1"`
	HeroOverlay2     string `json:"heroOverlay2"`
	Glow             string `json:"glow"`
	Shadow           string `json:"shadow"`
}

// DefaultTheme returns the built-in storefront theme.
func DefaultTheme() Theme {
	return Theme{
		Name:             "nutesshop",
		Background:       "#14100c",
		BackgroundAccent: "#1d1712",
		Card:             "#241c15",
		CardSoft:         "#2c231b",
		Text:             "#f4ede4",
		Muted:            "#a89b8c",
		Accent:           "#d9a441",
		Accent2:          "#8c5a2b",
		TopbarBg:         "rgba(20, 16, 12, 0.92)",
		TopbarBorder:     "rgba(217, 164, 65, 0.18)",
		HeroGradient1:    "#2c1f12",
		HeroGradient2:    "#3a2a16",
		HeroGradient3:    "#1a140e",
		HeroOverlay1:     "rgba(217, 164, 65, 0.12)",
		HeroOverlay2:     "rgba(140, 90, 43, 0.10)",
		Glow:             "rgba(217, 164, 65, 0.35)",
		Shadow:           "rgba(0, 0, 0, 0.45)",
	}
}
