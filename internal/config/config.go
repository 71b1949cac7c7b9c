// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Email providers accepted in EMAIL_PROVIDER.
const (
	EmailProviderResend = "resend"
	EmailProviderSMTP   = "smtp"
	EmailProviderLog    = "log"
)

// Contact sinks accepted in CONTACT_SINK.
const (
	ContactSinkStore  = "store"
	ContactSinkNotion = "notion"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API listens on (e.g. :3000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the address of the gRPC health endpoint (e.g. :9090).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Env is the application environment ("development", "production"). Controls cookie naming and dev-only features.
	Env string `mapstructure:"APP_ENV"`

	// AdminUsername is the single administrator identity allowed to log in.
	AdminUsername string `mapstructure:"ADMIN_USERNAME"`
	// AdminPasswordHash is the bcrypt hash of the administrator password (see cmd/hashpassword).
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`
	// AdminEmail receives login codes and contact notifications.
	AdminEmail string `mapstructure:"ADMIN_EMAIL"`

	// SessionSecret signs session JWTs with HS256 when no key pair is configured.
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	// SessionPrivateKey is a PEM private key (RSA or ECDSA) or a path to one; with SessionPublicKey switches to RS256/ES256.
	SessionPrivateKey string `mapstructure:"SESSION_PRIVATE_KEY"`
	SessionPublicKey  string `mapstructure:"SESSION_PUBLIC_KEY"`
	SessionIssuer     string `mapstructure:"SESSION_ISSUER"`
	SessionAudience   string `mapstructure:"SESSION_AUDIENCE"`
	// SessionTTLRaw is the session lifetime (e.g. "24h").
	SessionTTLRaw string `mapstructure:"SESSION_TTL"`
	// OTPTTLRaw is the login code lifetime (e.g. "5m").
	OTPTTLRaw string `mapstructure:"OTP_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// DevOTPEnabled keeps issued codes in memory and serves them on GET /dev/otp. Refused when Env is production.
	DevOTPEnabled bool `mapstructure:"DEV_OTP_ENABLED"`

	// EmailProvider is one of resend, smtp, log.
	EmailProvider string `mapstructure:"EMAIL_PROVIDER"`
	EmailFrom     string `mapstructure:"EMAIL_FROM"`
	ResendAPIKey  string `mapstructure:"RESEND_API_KEY"`
	ResendBaseURL string `mapstructure:"RESEND_BASE_URL"`
	SMTPHost      string `mapstructure:"SMTP_HOST"`
	SMTPPort      int    `mapstructure:"SMTP_PORT"`
	SMTPUsername  string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword  string `mapstructure:"SMTP_PASSWORD"`

	// ContactSink is where accepted contact submissions go: store (contact_inquiries table) or notion.
	ContactSink      string `mapstructure:"CONTACT_SINK"`
	NotionAPIKey     string `mapstructure:"NOTION_API_KEY"`
	NotionDatabaseID string `mapstructure:"NOTION_DATABASE_ID"`

	// RateLimitWindowRaw is the fixed window length (e.g. "60s").
	RateLimitWindowRaw string `mapstructure:"RATE_LIMIT_WINDOW"`
	// RateLimitMax is the number of requests allowed per key per window.
	RateLimitMax int `mapstructure:"RATE_LIMIT_MAX"`
	// RateLimitRedisURL switches the limiter to a shared Redis counter when set.
	RateLimitRedisURL string `mapstructure:"RATE_LIMIT_REDIS_URL"`

	// CORSAllowedOrigins is a comma-separated list of browser origins.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	// PolicyFile is an optional path to a Rego route access policy; the embedded default is used when empty.
	PolicyFile string `mapstructure:"POLICY_FILE"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint; empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`

	// Telemetry (optional). When Kafka brokers are set, security events are also written to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	TelemetryKafkaTopic   string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the telemetry worker to push logs (e.g. http://localhost:3100).
	LokiURL      string `mapstructure:"LOKI_URL"`
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if fields are invalid;
// requirements that only the HTTP server has are checked by ValidateServer.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":3000")
	v.SetDefault("GRPC_ADDR", ":9090")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("ADMIN_USERNAME", "")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_PRIVATE_KEY", "")
	v.SetDefault("SESSION_PUBLIC_KEY", "")
	v.SetDefault("SESSION_ISSUER", "research-platform")
	v.SetDefault("SESSION_AUDIENCE", "research-admin")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("OTP_TTL", "5m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("DEV_OTP_ENABLED", false)
	v.SetDefault("EMAIL_PROVIDER", EmailProviderResend)
	v.SetDefault("EMAIL_FROM", "Research <onboarding@resend.dev>")
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("RESEND_BASE_URL", "https://api.resend.com")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("CONTACT_SINK", ContactSinkStore)
	v.SetDefault("NOTION_API_KEY", "")
	v.SetDefault("NOTION_DATABASE_ID", "")
	v.SetDefault("RATE_LIMIT_WINDOW", "60s")
	v.SetDefault("RATE_LIMIT_MAX", 5)
	v.SetDefault("RATE_LIMIT_REDIS_URL", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("POLICY_FILE", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "research-platform")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "research-telemetry")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "research-telemetry-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.DevOTPEnabled && cfg.IsProduction() {
		return nil, errors.New("config: DEV_OTP_ENABLED must not be true when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.RateLimitMax <= 0 {
		return nil, errors.New("config: RATE_LIMIT_MAX must be positive")
	}

	cfg.EmailProvider = strings.ToLower(strings.TrimSpace(cfg.EmailProvider))
	switch cfg.EmailProvider {
	case EmailProviderResend, EmailProviderSMTP, EmailProviderLog:
	default:
		return nil, fmt.Errorf("config: EMAIL_PROVIDER must be one of resend, smtp, log; got %q", cfg.EmailProvider)
	}
	if cfg.EmailProvider == EmailProviderLog && cfg.IsProduction() {
		return nil, errors.New("config: EMAIL_PROVIDER=log must not be used when APP_ENV=production")
	}

	cfg.ContactSink = strings.ToLower(strings.TrimSpace(cfg.ContactSink))
	switch cfg.ContactSink {
	case ContactSinkStore, ContactSinkNotion:
	default:
		return nil, fmt.Errorf("config: CONTACT_SINK must be store or notion; got %q", cfg.ContactSink)
	}

	return &cfg, nil
}

// ValidateServer enumerates every field the HTTP server needs and reports all missing ones at once.
func (c *Config) ValidateServer() error {
	var missing []string
	req := func(name, val string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}
	req("DATABASE_URL", c.DatabaseURL)
	req("ADMIN_USERNAME", c.AdminUsername)
	req("ADMIN_PASSWORD_HASH", c.AdminPasswordHash)
	req("ADMIN_EMAIL", c.AdminEmail)
	if !c.HasSessionKeyPair() {
		req("SESSION_SECRET", c.SessionSecret)
	}
	switch c.EmailProvider {
	case EmailProviderResend:
		req("RESEND_API_KEY", c.ResendAPIKey)
	case EmailProviderSMTP:
		req("SMTP_HOST", c.SMTPHost)
	}
	if c.ContactSink == ContactSinkNotion {
		req("NOTION_API_KEY", c.NotionAPIKey)
		req("NOTION_DATABASE_ID", c.NotionDatabaseID)
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// HasSessionKeyPair reports whether both session key settings are present.
func (c *Config) HasSessionKeyPair() bool {
	return c.SessionPrivateKey != "" && c.SessionPublicKey != ""
}

// SessionTTL parses SessionTTLRaw. Returns 24h if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	return parseDuration(c.SessionTTLRaw, 24*time.Hour)
}

// OTPTTL parses OTPTTLRaw. Returns 5m if unset or invalid.
func (c *Config) OTPTTL() time.Duration {
	return parseDuration(c.OTPTTLRaw, 5*time.Minute)
}

// RateLimitWindow parses RateLimitWindowRaw. Returns 60s if unset or invalid.
func (c *Config) RateLimitWindow() time.Duration {
	return parseDuration(c.RateLimitWindowRaw, 60*time.Second)
}

func parseDuration(raw string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// CORSOrigins returns the allowed origins from the comma-separated config.
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.TelemetryKafkaBrokers)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
