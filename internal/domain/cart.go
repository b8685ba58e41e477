package domain

import "time"

// CartItem is a stored cart entry. PK: user_id, SK: product_id.
// Pricing data is not stored here; lines are composed against the live
// product at read time; orders snapshot them at creation.
type CartItem struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	ProductID string    `json:"product_id" dynamodbav:"product_id"`
	Quantity  int       `json:"quantity" dynamodbav:"quantity"`
	AddedAt   time.Time `json:"added" dynamodbav:"added_at"`
}

// CartLine is a priced view of one cart entry, the unit consumed by the
// pricing engine and the order snapshot.
type CartLine struct {
	ProductID       string `json:"product_id"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	UnitListPrice   string `json:"unit_list_price"`
	DiscountPercent int    `json:"discount_percent"`
	LineTotal       string `json:"line_total"`
}
