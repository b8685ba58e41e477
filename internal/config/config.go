package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	S3BucketName string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	PaymentAPIKey  string
	PaymentBaseURL string

	DefaultAdminEmail    string
	DefaultAdminPassword string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Verifications string
	Orders        string
	Products      string
	Carts         string
	Addresses     string
	Coupons       string
	GiftCards     string
	Contacts      string
	Newsletter    string
	Reviews       string
	Wishlists     string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Verifications: getEnv("DYNAMO_TABLE_VERIFICATIONS", "verification_tokens"),
			Orders:        getEnv("DYNAMO_TABLE_ORDERS", "orders"),
			Products:      getEnv("DYNAMO_TABLE_PRODUCTS", "products"),
			Carts:         getEnv("DYNAMO_TABLE_CARTS", "cart_items"),
			Addresses:     getEnv("DYNAMO_TABLE_ADDRESSES", "addresses"),
			Coupons:       getEnv("DYNAMO_TABLE_COUPONS", "coupons"),
			GiftCards:     getEnv("DYNAMO_TABLE_GIFT_CARDS", "gift_cards"),
			Contacts:      getEnv("DYNAMO_TABLE_CONTACTS", "contact_messages"),
			Newsletter:    getEnv("DYNAMO_TABLE_NEWSLETTER", "newsletter_subscriptions"),
			Reviews:       getEnv("DYNAMO_TABLE_REVIEWS", "product_reviews"),
			Wishlists:     getEnv("DYNAMO_TABLE_WISHLISTS", "wishlists"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "boutique-product-images"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@boutique.example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		PaymentAPIKey:  getEnv("PAYMENT_API_KEY", ""),
		PaymentBaseURL: getEnv("PAYMENT_BASE_URL", "https://api.stripe.com"),

		DefaultAdminEmail:    getEnv("DEFAULT_ADMIN_EMAIL", "admin@boutique.example.com"),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
