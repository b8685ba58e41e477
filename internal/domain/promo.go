package domain

import "time"

// Coupon is a percentage discount code managed by admins.
type Coupon struct {
	Code            string    `json:"code" dynamodbav:"code"`
	Description     string    `json:"description" dynamodbav:"description"`
	DiscountPercent int       `json:"discount_percent" dynamodbav:"discount_percent"`
	Active          bool      `json:"active" dynamodbav:"active"`
	ExpiresAt       *int64    `json:"expires_at,omitempty" dynamodbav:"expires_at"`
	CreatedAt       time.Time `json:"created" dynamodbav:"created_at"`
}

type CouponInput struct {
	Code            string `json:"code" validate:"required,alphanum,uppercase"`
	Description     string `json:"description"`
	DiscountPercent int    `json:"discount_percent" validate:"gt=0,lte=100"`
	Active          *bool  `json:"active"`
	ExpiresAt       *int64 `json:"expires_at"`
}

// GiftCard carries a prepaid balance stored as a 2-decimal currency string.
type GiftCard struct {
	Code           string    `json:"code" dynamodbav:"code"`
	Balance        string    `json:"balance" dynamodbav:"balance"`
	RecipientEmail string    `json:"recipient_email" dynamodbav:"recipient_email"`
	Message        string    `json:"message,omitempty" dynamodbav:"message"`
	Active         bool      `json:"active" dynamodbav:"active"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}

type GiftCardInput struct {
	Balance        string `json:"balance" validate:"required"`
	RecipientEmail string `json:"recipient_email" validate:"required,email"`
	Message        string `json:"message"`
}
