package domain

// Verification purposes. A token is scoped to exactly one flow.
const (
	PurposeRegistration  = "REGISTRATION"
	PurposePasswordReset = "PASSWORD_RESET"
	PurposeEmailChange   = "EMAIL_CHANGE"
)

// VerificationToken stores a single-use 6-digit OTP tying a verification
// attempt to an account.
//
// PK: owner_id only, so at most one live token exists per owner regardless of
// purpose. Issuing a new token always supersedes the previous one.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type VerificationToken struct {
	OwnerID string `json:"owner_id" dynamodbav:"owner_id"`
	Code    string `json:"-" dynamodbav:"code"`
	Purpose string `json:"purpose" dynamodbav:"purpose"`
	// NewEmail holds the candidate address for EMAIL_CHANGE tokens. The token
	// stays linked to the existing account; the rename is applied only after
	// successful verification.
	NewEmail  string `json:"new_email,omitempty" dynamodbav:"new_email"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

func ValidPurpose(p string) bool {
	switch p {
	case PurposeRegistration, PurposePasswordReset, PurposeEmailChange:
		return true
	}
	return false
}
