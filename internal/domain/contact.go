package domain

import "time"

type ContactMessage struct {
	MessageID string    `json:"id" dynamodbav:"message_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Email     string    `json:"email" dynamodbav:"email"`
	Subject   string    `json:"subject" dynamodbav:"subject"`
	Body      string    `json:"body" dynamodbav:"body"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

type ContactInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// NewsletterSubscription is keyed by email; subscribing twice is a no-op.
type NewsletterSubscription struct {
	Email     string    `json:"email" dynamodbav:"email"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}
