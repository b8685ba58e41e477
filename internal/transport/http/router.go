package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/boutique-api/internal/application/address"
	"github.com/boutique-api/internal/application/auth"
	"github.com/boutique-api/internal/application/cart"
	"github.com/boutique-api/internal/application/catalog"
	"github.com/boutique-api/internal/application/contact"
	"github.com/boutique-api/internal/application/order"
	"github.com/boutique-api/internal/application/promo"
	"github.com/boutique-api/internal/application/review"
	"github.com/boutique-api/internal/application/user"
	"github.com/boutique-api/internal/application/verification"
	"github.com/boutique-api/internal/application/wishlist"
	"github.com/boutique-api/internal/config"
	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/pkg/clock"
	"github.com/boutique-api/internal/transport/http/handler"
	appmiddleware "github.com/boutique-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	clk := deps.Clock
	if clk == nil {
		clk = clock.System{}
	}

	verificationSvc := verification.NewService(deps.VerificationRepo, deps.Mailer, deps.SMSSender, clk)
	userSvc := user.NewService(deps.UserRepo, verificationSvc, clk)
	authSvc := auth.NewService(deps.UserRepo, deps.JWTProvider)
	contactSvc := contact.NewService(deps.ContactRepo, deps.NewsletterRepo, deps.UserRepo, deps.Mailer, clk)
	catalogSvc := catalog.NewService(deps.ProductRepo, deps.S3Store, contactSvc, clk)
	cartSvc := cart.NewService(deps.CartRepo, deps.ProductRepo, clk)
	addressSvc := address.NewService(deps.AddressRepo, clk)
	orderSvc := order.NewService(deps.OrderRepo, cartSvc, deps.AddressRepo, deps.Mailer, clk)
	promoSvc := promo.NewService(deps.CouponRepo, deps.GiftCardRepo, deps.Mailer, clk)
	reviewSvc := review.NewService(deps.ReviewRepo, deps.ProductRepo, clk)
	wishlistSvc := wishlist.NewService(deps.WishlistRepo, deps.ProductRepo, clk)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	productH := handler.NewProductHandler(catalogSvc)
	cartH := handler.NewCartHandler(cartSvc)
	orderH := handler.NewOrderHandler(orderSvc, userSvc)
	addressH := handler.NewAddressHandler(addressSvc)
	promoH := handler.NewPromoHandler(promoSvc)
	contactH := handler.NewContactHandler(contactSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)
	wishlistH := handler.NewWishlistHandler(wishlistSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/register", userH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/register/confirm", userH.ConfirmRegistration)
		r.With(sensitiveRL.Limit).Post("/auth/register/resend", userH.ResendCode)
		r.With(sensitiveRL.Limit).Post("/auth/password-reset", userH.RequestPasswordReset)
		r.With(sensitiveRL.Limit).Post("/auth/password-reset/confirm", userH.ResetPassword)

		r.Get("/products", productH.List)
		r.Get("/products/clearance", productH.ListClearance)
		r.Get("/products/category/{category}", productH.ListByCategory)
		r.Get("/products/{id}", productH.Get)
		r.Get("/products/{id}/reviews", reviewH.ListForProduct)

		r.Post("/contact", contactH.Submit)
		r.Post("/newsletter/subscribe", contactH.Subscribe)
		r.Post("/newsletter/unsubscribe", contactH.Unsubscribe)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/me", userH.Me)
			r.Put("/me", userH.UpdateProfile)
			r.Post("/me/change-password", userH.ChangePassword)
			r.Post("/me/change-email", userH.InitiateEmailChange)
			r.Post("/me/change-email/confirm", userH.FinalizeEmailChange)

			r.Get("/cart", cartH.Get)
			r.Post("/cart/items", cartH.Add)
			r.Put("/cart/items/{productID}", cartH.UpdateQuantity)
			r.Delete("/cart/items/{productID}", cartH.Remove)
			r.Delete("/cart", cartH.Clear)

			r.Get("/addresses", addressH.List)
			r.Post("/addresses", addressH.Create)
			r.Get("/addresses/{id}", addressH.Get)
			r.Put("/addresses/{id}", addressH.Update)
			r.Delete("/addresses/{id}", addressH.Delete)

			r.Post("/orders", orderH.Create)
			r.Get("/orders", orderH.ListMine)
			r.Get("/orders/{id}", orderH.Get)
			r.Post("/orders/{id}/cancel", orderH.Cancel)
			r.Post("/orders/{id}/return", orderH.RequestReturn)

			r.Post("/products/{id}/reviews", reviewH.Submit)

			r.Get("/wishlist", wishlistH.List)
			r.Post("/wishlist/{productID}", wishlistH.Add)
			r.Delete("/wishlist/{productID}", wishlistH.Remove)

			r.Get("/coupons/{code}", promoH.GetCoupon)
			r.Get("/gift-cards/{code}", promoH.GetGiftCard)
			r.Post("/gift-cards/{code}/redeem", promoH.RedeemGiftCard)

			if deps.PaymentClient != nil {
				paymentH := handler.NewPaymentHandler(deps.PaymentClient, cartSvc)
				r.Post("/payments/intent", paymentH.CreateIntent)
			}

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Get("/users/{id}", userH.Get)
				r.Delete("/users/{id}", userH.Delete)

				r.Post("/products", productH.Create)
				r.Put("/products/{id}", productH.Update)
				r.Delete("/products/{id}", productH.Delete)
				r.Post("/products/{id}/image", productH.UploadImage)

				r.Get("/admin/orders", orderH.ListAll)
				r.Put("/admin/orders/{id}/status", orderH.SetStatus)

				r.Get("/coupons", promoH.ListCoupons)
				r.Post("/coupons", promoH.CreateCoupon)
				r.Delete("/coupons/{code}", promoH.DeleteCoupon)
				r.Post("/gift-cards", promoH.IssueGiftCard)

				r.Get("/admin/reviews", reviewH.ListPending)
				r.Post("/admin/reviews/{id}/approve", reviewH.Approve)
				r.Delete("/admin/reviews/{id}", reviewH.Delete)

				r.Get("/contact", contactH.ListMessages)
				r.Delete("/contact/{id}", contactH.DeleteMessage)
				r.Get("/newsletter", contactH.ListSubscriptions)
			})
		})
	})

	return r
}
