package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every setting the API, the seeder and the index tool read from the environment.
type Config struct {
	Port    int    `validate:"gt=0,lte=65535"`
	GinMode string `validate:"oneof=debug release test"`

	MongoURI string `validate:"required"`
	MongoDB  string `validate:"required"`

	JWTSecret       string        `validate:"required,min=16"`
	JWTAccessTTL    time.Duration `validate:"gt=0"`
	JWTRefreshTTL   time.Duration `validate:"gtfield=JWTAccessTTL"`
	StripeSecretKey string
	StripeWebhook   string
	StripeCurrency  string `validate:"len=3"`

	MediaBaseURL        string `validate:"omitempty,url"`
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	RedisURL      string
	RabbitMQURL   string
	RabbitMQQueue string

	GeminiAPIKey string
	GeminiModel  string

	CORSOrigins []string

	CacheFreshTTL time.Duration `validate:"gt=0"`
	CacheStaleTTL time.Duration `validate:"gte=0"`

	ShippingFee           float64 `validate:"gte=0"`
	FreeShippingThreshold float64 `validate:"gte=0"`
	TaxRate               float64 `validate:"gte=0,lt=1"`

	SeedAdminEmail    string `validate:"omitempty,email"`
	SeedAdminPassword string

	LogLevel  string
	LogFormat string `validate:"oneof=text json"`
}

var configValidator = validator.New()

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using process environment")
	}

	cfg := &Config{
		Port:    getInt("PORT", 8080),
		GinMode: getEnv("GIN_MODE", "release"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "technova"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTAccessTTL:    getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		JWTRefreshTTL:   getDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhook:   strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET")),
		StripeCurrency:  strings.ToUpper(getEnv("STRIPE_CURRENCY", "USD")),

		MediaBaseURL:        strings.TrimRight(os.Getenv("MEDIA_BASE_URL"), "/"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		RedisURL:      os.Getenv("REDIS_URL"),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		RabbitMQQueue: getEnv("RABBITMQ_QUEUE", "technova_events"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),

		CacheFreshTTL: getDuration("CACHE_FRESH_TTL", 30*time.Second),
		CacheStaleTTL: getDuration("CACHE_STALE_TTL", 5*time.Minute),

		ShippingFee:           getFloat("SHIPPING_FEE", 9.99),
		FreeShippingThreshold: getFloat("FREE_SHIPPING_THRESHOLD", 99),
		TaxRate:               getFloat("TAX_RATE", 0.08),

		SeedAdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
		logrus.Warnf("Ignoring invalid integer for %s: %q", key, val)
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
		logrus.Warnf("Ignoring invalid number for %s: %q", key, val)
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		logrus.Warnf("Ignoring invalid duration for %s: %q", key, val)
	}
	return defaultVal
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
