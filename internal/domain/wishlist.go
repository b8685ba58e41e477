package domain

import "time"

// WishlistItem links a user to a saved product. PK: user_id, SK: product_id,
// so adding the same product twice is a no-op.
type WishlistItem struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	ProductID string    `json:"product_id" dynamodbav:"product_id"`
	AddedAt   time.Time `json:"added" dynamodbav:"added_at"`
}
