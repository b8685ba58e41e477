package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	userapp "github.com/boutique-api/internal/application/user"
	"github.com/boutique-api/internal/application/verification"
	"github.com/boutique-api/internal/config"
	"github.com/boutique-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/boutique-api/internal/infrastructure/jwt"
	"github.com/boutique-api/internal/infrastructure/payment"
	s3infra "github.com/boutique-api/internal/infrastructure/s3"
	"github.com/boutique-api/internal/infrastructure/smtp"
	"github.com/boutique-api/internal/infrastructure/sns"
	"github.com/boutique-api/internal/pkg/clock"
	transporthttp "github.com/boutique-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider is optional; auth routes pass through when keys are missing.
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTExpiry); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store for product images.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender is optional.
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	// Payment client is optional; checkout falls back to pay-on-delivery.
	var paymentClient *payment.Client
	if cfg.PaymentAPIKey != "" {
		paymentClient = payment.NewClient(cfg.PaymentAPIKey, cfg.PaymentBaseURL)
	} else {
		log.Println("WARN: payment client not configured")
	}

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.Verifications),
		OrderRepo:        dynamo.NewOrderRepo(dynamoClient, cfg.DynamoTables.Orders),
		ProductRepo:      dynamo.NewProductRepo(dynamoClient, cfg.DynamoTables.Products),
		CartRepo:         dynamo.NewCartRepo(dynamoClient, cfg.DynamoTables.Carts),
		AddressRepo:      dynamo.NewAddressRepo(dynamoClient, cfg.DynamoTables.Addresses),
		CouponRepo:       dynamo.NewCouponRepo(dynamoClient, cfg.DynamoTables.Coupons),
		GiftCardRepo:     dynamo.NewGiftCardRepo(dynamoClient, cfg.DynamoTables.GiftCards),
		ContactRepo:      dynamo.NewContactRepo(dynamoClient, cfg.DynamoTables.Contacts),
		NewsletterRepo:   dynamo.NewNewsletterRepo(dynamoClient, cfg.DynamoTables.Newsletter),
		ReviewRepo:       dynamo.NewReviewRepo(dynamoClient, cfg.DynamoTables.Reviews),
		WishlistRepo:     dynamo.NewWishlistRepo(dynamoClient, cfg.DynamoTables.Wishlists),
		S3Store:          s3Store,
		Mailer:           mailer,
		SMSSender:        smsSender,
		JWTProvider:      jwtProvider,
		PaymentClient:    paymentClient,
	}

	// Seed the bootstrap admin account before taking traffic.
	clk := clock.System{}
	verificationSvc := verification.NewService(deps.VerificationRepo, mailer, smsSender, clk)
	userSvc := userapp.NewService(deps.UserRepo, verificationSvc, clk)
	if err := userSvc.EnsureDefaultAdmin(context.Background(), cfg.DefaultAdminEmail, cfg.DefaultAdminPassword); err != nil {
		log.Printf("WARN: could not ensure default admin: %v", err)
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
