package domain

import "time"

const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

type User struct {
	UserID          string     `json:"id" dynamodbav:"user_id"`
	Email           string     `json:"email" dynamodbav:"email"`
	Phone           *string    `json:"phone" dynamodbav:"phone"`
	PasswordHash    string     `json:"-" dynamodbav:"password_hash"`
	Role            string     `json:"role" dynamodbav:"role"`
	FirstName       string     `json:"first_name" dynamodbav:"first_name"`
	LastName        string     `json:"last_name" dynamodbav:"last_name"`
	PreferredSize   string     `json:"preferred_size,omitempty" dynamodbav:"preferred_size"`
	Gender          string     `json:"gender,omitempty" dynamodbav:"gender"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty" dynamodbav:"date_of_birth"`
	NewsletterOptIn bool       `json:"newsletter_opt_in" dynamodbav:"newsletter_opt_in"`
	EmailVerified   bool       `json:"email_verified" dynamodbav:"email_verified"`
	// CredentialsUpdated is false until the bootstrap admin rotates the default
	// password. Customers always have it set to true.
	CredentialsUpdated bool      `json:"credentials_updated" dynamodbav:"credentials_updated"`
	Enable             int       `json:"enable" dynamodbav:"enable"`
	CreatedAt          time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time `json:"updated" dynamodbav:"updated_at"`
}

type RegisterRequest struct {
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string  `json:"confirm_password" validate:"required"`
	Phone           *string `json:"phone"`
	FirstName       string  `json:"first_name" validate:"required"`
	LastName        string  `json:"last_name" validate:"required"`
	PreferredSize   string  `json:"preferred_size"`
	Gender          string  `json:"gender"`
	DateOfBirth     string  `json:"date_of_birth"` // expected format: YYYY-MM-DD
	NewsletterOptIn *bool   `json:"newsletter_opt_in"`
	TermsAccepted   bool    `json:"terms_accepted" validate:"required"`
}

type UpdateProfileRequest struct {
	Phone           *string `json:"phone"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	PreferredSize   *string `json:"preferred_size"`
	Gender          *string `json:"gender"`
	DateOfBirth     *string `json:"date_of_birth"` // expected format: YYYY-MM-DD
	NewsletterOptIn *bool   `json:"newsletter_opt_in"`
}
