package models

// CheckoutRequest is the inbound checkout payload.
type CheckoutRequest struct {
	CustomerName    string           `json:"customerName"`
	CustomerEmail   string           `json:"customerEmail"`
	FulfillmentType string           `json:"fulfillmentType"` // "Delivery" or "Pickup"
	Delivery        *DeliveryAddress `json:"delivery,omitempty"`
	Pickup          *PickupDetails   `json:"pickup,omitempty"`
	Items           []CheckoutItem   `json:"items"`
}

// DeliveryAddress is the delivery destination for a checkout.
type DeliveryAddress struct {
	City         string `json:"city"`
	Suburb       string `json:"suburb"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	PostalCode   string `json:"postalCode"`
}

// PickupDetails names the pickup point for a checkout.
type PickupDetails struct {
	LocationID string `json:"locationId"`
}

// CheckoutItem is one line of a checkout request.
type CheckoutItem struct {
	ProductSlug string `json:"productSlug"`
	Quantity    int    `json:"quantity"`
}

// CreateOrderRequest is a validated order ready for persistence. Prices are
// resolved from the catalog at validation time, never trusted from the client.
type CreateOrderRequest struct {
	CustomerName    string
	CustomerEmail   string
	FulfillmentType string
	City            string
	Delivery        *DeliveryAddress
	Pickup          *PickupDetails
	Items           []OrderItem
}

// OrderItem is one priced line of an order.
type OrderItem struct {
	ProductSlug    string `db:"product_slug"`
	ProductName    string `db:"product_name"`
	UnitPriceCents int    `db:"unit_price_cents"`
	Quantity       int    `db:"quantity"`
}

// TotalCents returns the order total in currency minor units.
func (r CreateOrderRequest) TotalCents() int {
	total := 0
	for _, item := range r.Items {
		total += item.UnitPriceCents * item.Quantity
	}
	return total
}
