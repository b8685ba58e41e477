package domain

import "time"

// Review is a customer's rating and comment for a product. New and edited
// reviews start unapproved and are hidden from the public listing until an
// admin approves them.
type Review struct {
	ReviewID  string    `json:"id" dynamodbav:"review_id"`
	ProductID string    `json:"product_id" dynamodbav:"product_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Rating    int       `json:"rating" dynamodbav:"rating"`
	Comment   string    `json:"comment,omitempty" dynamodbav:"comment"`
	Approved  bool      `json:"approved" dynamodbav:"approved"`
	PostedAt  time.Time `json:"posted" dynamodbav:"posted_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}
