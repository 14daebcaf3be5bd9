package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	LogLevel       string
	LogFormat      string   // "json" | "text"
	AllowedOrigins []string // CORS allowed origins
	TrustedProxies []string // IPs or CIDRs whose X-Forwarded-For is believed; empty trusts none

	OTP     OTPConfig
	Preview PreviewConfig

	EmailAllowedDomain string
	OwnerEmail         string
	FreeServerLimit    int

	StateBackend string // "memory" | "dynamo" | "s3"
	OTPBackend   string // "memory" | "redis"
	RedisURL     string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string
	S3StatePrefix  string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SMTPHost     string // empty disables SMTP delivery
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSTopicARN string // empty disables SNS delivery
	SNSRegion   string
}

// OTPConfig controls code lifetime and brute-force limits.
type OTPConfig struct {
	TTL           time.Duration
	MaxAttempts   int
	SweepInterval time.Duration // 0 keeps expiry purely lazy
}

// PreviewConfig controls the simulated inbox.
type PreviewConfig struct {
	Capacity  int
	ListLimit int
	Freshness time.Duration
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	PanelState string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
		OTP: OTPConfig{
			TTL:           getEnvDuration("OTP_TTL", 5*time.Minute),
			MaxAttempts:   getEnvInt("OTP_MAX_ATTEMPTS", 3),
			SweepInterval: getEnvDuration("OTP_SWEEP_INTERVAL", 0),
		},
		Preview: PreviewConfig{
			Capacity:  getEnvInt("PREVIEW_CAPACITY", 10),
			ListLimit: getEnvInt("PREVIEW_LIST_LIMIT", 5),
			Freshness: getEnvDuration("PREVIEW_FRESHNESS", 5*time.Minute),
		},
		EmailAllowedDomain: getEnv("EMAIL_ALLOWED_DOMAIN", "gmail.com"),
		OwnerEmail:         strings.ToLower(getEnv("OWNER_EMAIL", "")),
		FreeServerLimit:    getEnvInt("FREE_SERVER_LIMIT", 1),
		StateBackend:       getEnv("STATE_BACKEND", "memory"),
		OTPBackend:         getEnv("OTP_BACKEND", "memory"),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL:     getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:       getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			PanelState: getEnv("DYNAMO_TABLE_PANEL_STATE", "panel_state"),
		},
		S3BucketName:      getEnv("S3_BUCKET_NAME", "thlight-panel"),
		S3StatePrefix:     getEnv("S3_STATE_PREFIX", "state/"),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:          getEnv("SMTP_FROM", "noreply@thlight.local"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SNSTopicARN:       getEnv("SNS_TOPIC_ARN", ""),
		SNSRegion:         getEnv("SNS_REGION", "us-east-1"),
	}
}

// IsOwner reports whether email belongs to the panel owner.
func (c *Config) IsOwner(email string) bool {
	return c.OwnerEmail != "" && strings.EqualFold(c.OwnerEmail, email)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
