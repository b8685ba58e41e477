package http

import (
	"github.com/boutique-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/boutique-api/internal/infrastructure/jwt"
	"github.com/boutique-api/internal/infrastructure/payment"
	s3infra "github.com/boutique-api/internal/infrastructure/s3"
	"github.com/boutique-api/internal/infrastructure/smtp"
	"github.com/boutique-api/internal/infrastructure/sns"
	"github.com/boutique-api/internal/pkg/clock"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	VerificationRepo *dynamo.VerificationRepo
	OrderRepo        *dynamo.OrderRepo
	ProductRepo      *dynamo.ProductRepo
	CartRepo         *dynamo.CartRepo
	AddressRepo      *dynamo.AddressRepo
	CouponRepo       *dynamo.CouponRepo
	GiftCardRepo     *dynamo.GiftCardRepo
	ContactRepo      *dynamo.ContactRepo
	NewsletterRepo   *dynamo.NewsletterRepo
	ReviewRepo       *dynamo.ReviewRepo
	WishlistRepo     *dynamo.WishlistRepo

	S3Store       *s3infra.Store
	Mailer        smtp.Mailer
	SMSSender     sns.SMSSender
	JWTProvider   *jwtinfra.Provider
	PaymentClient *payment.Client

	// Clock defaults to the system clock when nil.
	Clock clock.Clock
}
