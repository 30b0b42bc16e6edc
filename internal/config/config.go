package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds all portal configuration values from environment.
type Config struct {
	AppPort        string `envconfig:"PORTAL_ADDR" default:":8080"`
	DatabaseURL    string `envconfig:"DATABASE_URL" required:"true"`
	ClinicTimezone string `envconfig:"CLINIC_TIMEZONE" default:"UTC"`

	S3        S3Config
	Ticket    TicketConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

// S3Config describes the S3-compatible object store holding appointment photos.
type S3Config struct {
	Endpoint     string `envconfig:"S3_ENDPOINT" default:"https://storage.yandexcloud.net"`
	Region       string `envconfig:"S3_REGION" default:"ru-central1"`
	Bucket       string `envconfig:"S3_BUCKET_NAME" default:"vet-clinic-b1gfvqa88jrcvav48j25"`
	AccessKey    string `envconfig:"AWS_ACCESS_KEY_ID"`
	SecretKey    string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	EnsureBucket bool   `envconfig:"S3_ENSURE_BUCKET" default:"false"`
	PhotoPrefix  string `envconfig:"PHOTO_KEY_PREFIX" default:"appointments"`
	UploadPrefix string `envconfig:"UPLOAD_KEY_PREFIX" default:"uploads"`
}

// TicketConfig configures the outbound call to the internal ticket gateway and
// the inbound internal ticket endpoint. Both values may be empty; the ticket
// features then refuse requests instead of failing startup.
type TicketConfig struct {
	APIURL         string        `envconfig:"TICKET_API_URL"`
	InternalSecret string        `envconfig:"TICKET_INTERNAL_SECRET"`
	Timeout        time.Duration `envconfig:"TICKET_TIMEOUT" default:"10s"`
	CabinetPrefix  string        `envconfig:"CABINET_PREFIX" default:"K"`
}

// AuthConfig holds the key used to verify caller tokens issued by the identity system.
type AuthConfig struct {
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
}

// RateLimitConfig enables the Redis backed limiter on the ticket route when RedisAddr is set.
type RateLimitConfig struct {
	RedisAddr string `envconfig:"REDIS_ADDR"`
	PerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"30"`
}

// GatewayConfig holds the configuration of the internal ticket gateway service.
type GatewayConfig struct {
	AppPort        string        `envconfig:"GATEWAY_ADDR" default:":8090"`
	PortalURL      string        `envconfig:"PORTAL_INTERNAL_URL" required:"true"`
	InternalSecret string        `envconfig:"TICKET_INTERNAL_SECRET" required:"true"`
	TicketsBucket  string        `envconfig:"TICKETS_BUCKET" required:"true"`
	URLTTL         time.Duration `envconfig:"TICKET_URL_TTL" default:"5m"`
	ClinicTimezone string        `envconfig:"CLINIC_TIMEZONE" default:"UTC"`
	Timeout        time.Duration `envconfig:"TICKET_TIMEOUT" default:"10s"`

	S3 S3Config
}

// Configured reports whether both the gateway base URL and the shared secret are present.
func (t TicketConfig) Configured() bool {
	return strings.TrimSpace(t.APIURL) != "" && strings.TrimSpace(t.InternalSecret) != ""
}

// HasCredentials reports whether static S3 credentials were supplied.
func (s S3Config) HasCredentials() bool {
	return s.AccessKey != "" && s.SecretKey != ""
}

// LoadConfig loads portal configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" || strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, fmt.Errorf("DATABASE_URL and JWT_SECRET must not be empty")
	}
	if err := cfg.S3.validate(); err != nil {
		return nil, err
	}
	if cfg.Ticket.APIURL != "" {
		if _, err := url.ParseRequestURI(cfg.Ticket.APIURL); err != nil {
			return nil, fmt.Errorf("invalid TICKET_API_URL: %v", err)
		}
	}
	if cfg.RateLimit.PerMinute <= 0 {
		cfg.RateLimit.PerMinute = 30
	}
	return &cfg, nil
}

// LoadGatewayConfig loads ticket gateway configuration from environment variables.
func LoadGatewayConfig() (*GatewayConfig, error) {
	var cfg GatewayConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load gateway config: %w", err)
	}
	if err := cfg.S3.validate(); err != nil {
		return nil, err
	}
	if _, err := url.ParseRequestURI(cfg.PortalURL); err != nil {
		return nil, fmt.Errorf("invalid PORTAL_INTERNAL_URL: %v", err)
	}
	return &cfg, nil
}

func (s S3Config) validate() error {
	u, err := url.Parse(s.Endpoint)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid S3_ENDPOINT %q", s.Endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("S3_ENDPOINT must use http or https, got %q", u.Scheme)
	}
	if strings.TrimSpace(s.Bucket) == "" {
		return fmt.Errorf("S3_BUCKET_NAME must not be empty")
	}
	return nil
}

// ConnectDatabase initializes a GORM database connection to PostgreSQL.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}
