package domain

import "time"

type Address struct {
	AddressID     string    `json:"id" dynamodbav:"address_id"`
	UserID        string    `json:"user_id" dynamodbav:"user_id"`
	RecipientName string    `json:"recipient_name" dynamodbav:"recipient_name"`
	StreetAddress string    `json:"street_address" dynamodbav:"street_address"`
	Landmark      string    `json:"landmark,omitempty" dynamodbav:"landmark"`
	City          string    `json:"city" dynamodbav:"city"`
	State         string    `json:"state" dynamodbav:"state"`
	Pincode       string    `json:"pincode" dynamodbav:"pincode"`
	PhoneNumber   string    `json:"phone_number" dynamodbav:"phone_number"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

type AddressInput struct {
	RecipientName string `json:"recipient_name" validate:"required"`
	StreetAddress string `json:"street_address" validate:"required"`
	Landmark      string `json:"landmark"`
	City          string `json:"city" validate:"required"`
	State         string `json:"state" validate:"required"`
	Pincode       string `json:"pincode" validate:"required"`
	PhoneNumber   string `json:"phone_number" validate:"required"`
}
