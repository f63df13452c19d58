package strapi

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/nutesshop/storefront/internal/models"
)

// The CMS emits entities in one of two wire shapes. The nested-relational
// shape wraps fields in an "attributes" object and related media in "data"
// envelopes; the flattened shape puts the same fields at the entity's top
// level and drops the envelopes. A payload is never intentionally mixed, but
// detection runs per entity so one malformed entry cannot skew its siblings.
//
// Only canonical record types leave this file; shape-specific structure is
// never visible to callers.

// MapProducts converts a raw catalog payload into canonical products.
// Entities missing a slug or name are dropped; the remaining entities keep
// their origin order. A payload that does not match either shape yields an
// empty slice, never an error.
func MapProducts(raw json.RawMessage, baseURL string) []models.Product {
	entities := dataEntities(raw)
	products := make([]models.Product, 0, len(entities))
	for _, entity := range entities {
		if product, ok := mapProduct(entity, baseURL); ok {
			products = append(products, product)
		}
	}
	return products
}

// MapHome converts a raw home page payload into the canonical record.
// Missing fields default to empty; featured products are validated entity by
// entity with the same rules as the catalog.
func MapHome(raw json.RawMessage, baseURL string) models.HomePage {
	var home models.HomePage

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || isNull(envelope.Data) {
		return home
	}

	attrs, ok := entityAttributes(envelope.Data)
	if !ok {
		return home
	}

	home.HeroTitle = stringAttr(attrs, "heroTitle")
	home.HeroSubtitle = stringAttr(attrs, "heroSubtitle")
	home.PromoText = stringAttr(attrs, "promoText")
	home.HeroImageURL = resolveURL(firstMediaURL(attrs["heroImage"]), baseURL)

	featured := relatedEntities(attrs["featuredProducts"])
	home.FeaturedProducts = make([]models.Product, 0, len(featured))
	for _, entity := range featured {
		if product, ok := mapProduct(entity, baseURL); ok {
			home.FeaturedProducts = append(home.FeaturedProducts, product)
		}
	}

	return home
}

// MapTheme converts a raw theme payload into the canonical theme. Each token
// falls back independently to its default when absent or not a string;
// partial overrides are the expected usage pattern.
func MapTheme(raw json.RawMessage) models.Theme {
	theme := models.DefaultTheme()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || isNull(envelope.Data) {
		return theme
	}

	attrs, ok := entityAttributes(envelope.Data)
	if !ok {
		return theme
	}

	tokens := map[string]*string{
		"name":             &theme.Name,
		"background":       &theme.Background,
		"backgroundAccent": &theme.BackgroundAccent,
		"card":             &theme.Card,
		"cardSoft":         &theme.CardSoft,
		"text":             &theme.Text,
		"muted":            &theme.Muted,
		"accent":           &theme.Accent,
		"accent2":          &theme.Accent2,
		"topbarBg":         &theme.TopbarBg,
		"topbarBorder":     &theme.TopbarBorder,
		"heroGradient1":    &theme.HeroGradient1,
		"heroGradient2":    &theme.HeroGradient2,
		"heroGradient3":    &theme.HeroGradient3,
		"heroOverlay1":     &theme.HeroOverlay1,
		"heroOverlay2":     &theme.HeroOverlay2,
		"glow":             &theme.Glow,
		"shadow":           &theme.Shadow,
	}
	for key, target := range tokens {
		if value := stringAttr(attrs, key); value != "" {
			*target = value
		}
	}

	return theme
}

// mapProduct normalizes one catalog entity in either wire shape. The second
// return value is false when the entity fails the slug/name invariant or
// matches neither shape.
func mapProduct(entity json.RawMessage, baseURL string) (models.Product, bool) {
	attrs, ok := entityAttributes(entity)
	if !ok {
		return models.Product{}, false
	}

	slug := strings.TrimSpace(stringAttr(attrs, "slug"))
	name := strings.TrimSpace(stringAttr(attrs, "name"))
	if slug == "" || name == "" {
		return models.Product{}, false
	}

	priceCents, per := mapPrice(attrs["price"])

	return models.Product{
		Slug:        slug,
		Name:        name,
		Description: stringAttr(attrs, "description"),
		PriceCents:  priceCents,
		Per:         per,
		ImageURL:    resolveURL(firstMediaURL(attrs["images"]), baseURL),
		InStock:     boolAttr(attrs, "inStock"),
		Featured:    boolAttr(attrs, "featured"),
		Badges:      mapBadges(attrs["badges"]),
	}, true
}

// entityAttributes resolves an entity to its field set regardless of wire
// shape. An entity carrying any top-level key beyond the identity fields is
// flattened and its top level is the field set; otherwise the nested
// "attributes" object is.
func entityAttributes(entity json.RawMessage) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entity, &fields); err != nil {
		return nil, false
	}

	flattened := false
	for key := range fields {
		switch key {
		case "id", "attributes":
		default:
			flattened = true
		}
	}
	if flattened {
		return fields, true
	}

	attrsRaw, ok := fields["attributes"]
	if !ok || isNull(attrsRaw) {
		return nil, false
	}
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(attrsRaw, &attrs); err != nil {
		return nil, false
	}
	return attrs, true
}

// dataEntities unwraps a top-level {"data": [...]} envelope.
func dataEntities(raw json.RawMessage) []json.RawMessage {
	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil
	}
	return envelope.Data
}

// relatedEntities resolves a relation field to its entity list: either a
// {"data": [...]} envelope (nested shape) or a bare array (flattened shape).
func relatedEntities(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}

	var wrapper struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Data != nil {
		return wrapper.Data
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	return nil
}

// firstMediaURL extracts the first media item's url from any supported media
// field shape: a {"data": ...} envelope around a single entry or a list, an
// entry with nested attributes, a direct {"url": ...} object, or a bare
// array of such objects.
func firstMediaURL(raw json.RawMessage) string {
	if len(raw) == 0 || isNull(raw) {
		return ""
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Data) > 0 && !isNull(wrapper.Data) {
		return firstMediaURL(wrapper.Data)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return ""
		}
		return firstMediaURL(list[0])
	}

	var media struct {
		URL        string `json:"url"`
		Attributes struct {
			URL string `json:"url"`
		} `json:"attributes"`
	}
	if err := json.Unmarshal(raw, &media); err != nil {
		return ""
	}
	if media.URL != "" {
		return media.URL
	}
	return media.Attributes.URL
}

// mapPrice reads a price component. A missing or malformed component yields
// zero minor units and the default pricing unit.
func mapPrice(raw json.RawMessage) (int, string) {
	per := "each"
	if len(raw) == 0 || isNull(raw) {
		return 0, per
	}

	var price struct {
		Amount json.Number `json:"amount"`
		Per    string      `json:"per"`
	}
	if err := json.Unmarshal(raw, &price); err != nil {
		return 0, per
	}
	if price.Per != "" {
		per = price.Per
	}
	return minorUnits(price.Amount), per
}

// minorUnits converts a decimal amount to integer currency minor units,
// rounding half away from zero. The conversion works on the number's decimal
// text so that amounts like 12.345 round to 1235 rather than drifting
// through binary floating point.
func minorUnits(amount json.Number) int {
	text := string(amount)
	if text == "" {
		return 0
	}

	if strings.ContainsAny(text, "eE") {
		value, err := amount.Float64()
		if err != nil {
			return 0
		}
		return int(math.Round(value * 100))
	}

	negative := strings.HasPrefix(text, "-")
	text = strings.TrimPrefix(strings.TrimPrefix(text, "-"), "+")

	intPart, fracPart, _ := strings.Cut(text, ".")
	if intPart == "" {
		intPart = "0"
	}
	fracPart += "000"

	units, err := strconv.ParseInt(intPart+fracPart[:2], 10, 64)
	if err != nil {
		return 0
	}
	if fracPart[2] >= '5' {
		units++
	}
	if negative {
		units = -units
	}
	return int(units)
}

// mapBadges maps label-bearing badge components to their labels, dropping
// blanks and preserving order.
func mapBadges(raw json.RawMessage) []string {
	entities := relatedEntities(raw)
	if entities == nil {
		return []string{}
	}

	labels := make([]string, 0, len(entities))
	for _, entity := range entities {
		var badge struct {
			Label string `json:"label"`
		}
		if err := json.Unmarshal(entity, &badge); err != nil {
			continue
		}
		if strings.TrimSpace(badge.Label) == "" {
			continue
		}
		labels = append(labels, badge.Label)
	}
	return labels
}

// stringAttr returns the string value of a field, or "" when the field is
// absent or not a JSON string.
func stringAttr(attrs map[string]json.RawMessage, key string) string {
	raw, ok := attrs[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

// boolAttr returns the boolean value of a field; absent or wrong-typed is
// false.
func boolAttr(attrs map[string]json.RawMessage, key string) bool {
	raw, ok := attrs[key]
	if !ok {
		return false
	}
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return false
	}
	return value
}

// resolveURL makes an origin-relative media path absolute against the
// configured base address. Already-absolute URLs pass through unchanged.
func resolveURL(url, baseURL string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(url), "http") {
		return url
	}
	return strings.TrimRight(baseURL, "/") + url
}

// isNull reports whether a raw JSON value is the literal null.
func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
