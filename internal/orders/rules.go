// Package orders validates checkout requests against the live catalog and
// persists accepted orders.
package orders

import "strings"

// AllowedCity is the only city delivery orders may target.
const AllowedCity = "Cape Town"

// PickupLocation is a fixed collection point.
type PickupLocation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PickupLocations lists the fixed collection points, in display order.
var PickupLocations = []PickupLocation{
	{ID: "CT_WATERFRONT", Name: "V&A Waterfront Pickup Point"},
	{ID: "CT_CBD", Name: "Cape Town CBD Pickup Point"},
	{ID: "CT_CLAREMONT", Name: "Claremont Pickup Point"},
}

// IsAllowedCity reports whether a delivery city is serviceable.
func IsAllowedCity(city string) bool {
	return strings.EqualFold(strings.TrimSpace(city), AllowedCity)
}

// IsPickupLocation reports whether the id names a known pickup point.
func IsPickupLocation(id string) bool {
	for _, loc := range PickupLocations {
		if loc.ID == id {
			return true
		}
	}
	return false
}
