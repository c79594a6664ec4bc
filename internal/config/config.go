package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	AuthModeJWT      = "jwt"
	AuthModeFirebase = "firebase"
)

// Config is the process configuration. It is built once at startup and
// handed to components through fx; nothing below cmd reads the environment.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	AutoMigrate bool

	Auth       AuthConfig
	RevenueCat RevenueCatConfig
	Redis      RedisConfig
	S3         S3Config

	PriceCacheTTL    time.Duration
	RenderFontPath   string
	CORSAllowOrigins []string
}

type AuthConfig struct {
	Mode              string
	JWTSecret         string
	FirebaseProjectID string
}

type RevenueCatConfig struct {
	APIKey    string
	ProjectID string
	BaseURL   string
	// WebhookToken is the shared secret expected as "Bearer <token>" on webhook deliveries.
	WebhookToken string
	// WebhookSigningSecret switches webhook authentication to an HMAC-SHA256 body signature.
	WebhookSigningSecret string
	// Timeout of zero leaves the outbound verification call unbounded.
	Timeout time.Duration
}

type RedisConfig struct {
	URL string
}

type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func (c Config) IsDevelopment() bool {
	return c.Env == "dev" || c.Env == "development" || c.Env == "local"
}

// Load reads an optional .env file and then the process environment.
// A missing .env is fine; an unreadable or malformed one is an error.
// It does not validate; callers pick the checks they need.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:        v.GetString("PORT"),
		Env:         v.GetString("APP_ENV"),
		DatabaseURL: v.GetString("POSTGRES_URL"),
		AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		Auth: AuthConfig{
			Mode:              strings.ToLower(v.GetString("AUTH_MODE")),
			JWTSecret:         v.GetString("JWT_SECRET"),
			FirebaseProjectID: v.GetString("FIREBASE_PROJECT_ID"),
		},
		RevenueCat: RevenueCatConfig{
			APIKey:               v.GetString("REVENUECAT_API_KEY"),
			ProjectID:            v.GetString("REVENUECAT_PROJECT_ID"),
			BaseURL:              strings.TrimRight(v.GetString("REVENUECAT_BASE_URL"), "/"),
			WebhookToken:         v.GetString("REVENUECAT_WEBHOOK_TOKEN"),
			WebhookSigningSecret: v.GetString("REVENUECAT_WEBHOOK_SIGNING_SECRET"),
			Timeout:              v.GetDuration("REVENUECAT_TIMEOUT"),
		},
		Redis: RedisConfig{URL: v.GetString("REDIS_URL")},
		S3: S3Config{
			Region:    v.GetString("S3_REGION"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
		},
		PriceCacheTTL:    v.GetDuration("PRICE_CACHE_TTL"),
		RenderFontPath:   v.GetString("RENDER_FONT_PATH"),
		CORSAllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("AUTH_MODE", AuthModeJWT)
	v.SetDefault("REVENUECAT_BASE_URL", "https://api.revenuecat.com")
	v.SetDefault("REVENUECAT_TIMEOUT", "0s")
	v.SetDefault("PRICE_CACHE_TTL", "5m")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
}

// Validate reports the first setting that would keep the service from starting.
// Missing RevenueCat credentials are allowed: the affected paths fail per request.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("POSTGRES_URL is required")
	}
	switch c.Auth.Mode {
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case AuthModeFirebase:
		if c.Auth.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required when AUTH_MODE=firebase")
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.Auth.Mode)
	}
	if c.PriceCacheTTL < 0 || c.RevenueCat.Timeout < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
