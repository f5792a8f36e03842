package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (BIZDESK_ prefix), flags, or YAML config files.
type Config struct {
	Addr string `default:"0.0.0.0:8080" usage:"API server listen address"`

	Store       string `default:"mongo" usage:"Storage backend: mongo or postgres"`
	MongoURL    string `usage:"MongoDB connection URI (BIZDESK_MONGO_URL)" flag:"mongo-url"`
	MongoDB     string `default:"bizdesk" usage:"MongoDB database name" flag:"mongo-db"`
	DatabaseURL string `usage:"PostgreSQL connection URL (BIZDESK_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	Auth      AuthConfig
	Export    ExportConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// AuthConfig configures the single operator account and session tokens.
type AuthConfig struct {
	Username   string        `default:"admin" usage:"Operator username"`
	Password   string        `usage:"Operator password (BIZDESK_AUTH_PASSWORD)" flag:"auth-password"`
	SigningKey string        `usage:"JWT signing key (BIZDESK_AUTH_SIGNINGKEY)" flag:"auth-signing-key"`
	Pepper     string        `usage:"HMAC pepper for session token hashing" flag:"auth-pepper"`
	SessionTTL time.Duration `default:"24h" usage:"Session token lifetime" flag:"session-ttl"`
}

// ExportConfig controls where report spreadsheets are written and shared.
type ExportConfig struct {
	Dir       string        `default:"/tmp/bizdesk-exports" usage:"Local directory for generated spreadsheets" flag:"export-dir"`
	S3Enabled bool          `default:"false" usage:"Upload exports to S3 and share presigned links" flag:"export-s3"`
	S3Bucket  string        `usage:"S3 bucket for shared exports" flag:"export-s3-bucket"`
	S3Prefix  string        `default:"reports/" usage:"Key prefix for exports in the bucket" flag:"export-s3-prefix"`
	ShareTTL  time.Duration `default:"24h" usage:"Presigned export link lifetime" flag:"export-share-ttl"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "BIZDESK",
		Files:     []string{"config.yaml", "/etc/bizdesk/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	switch cfg.Store {
	case "mongo":
		if cfg.MongoURL == "" {
			return nil, errors.New("mongo URI is required: set BIZDESK_MONGO_URL")
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("database URL is required: set BIZDESK_DATABASE_URL or DATABASE_URL")
		}
	default:
		return nil, errors.Errorf("unknown store %q: want mongo or postgres", cfg.Store)
	}

	if cfg.Auth.Password == "" {
		return nil, errors.New("operator password is required: set BIZDESK_AUTH_PASSWORD")
	}
	if cfg.Auth.SigningKey == "" {
		return nil, errors.New("JWT signing key is required: set BIZDESK_AUTH_SIGNINGKEY")
	}
	if cfg.Export.S3Enabled && cfg.Export.S3Bucket == "" {
		return nil, errors.New("S3 exports enabled but no bucket: set BIZDESK_EXPORT_S3BUCKET")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's BIZDESK_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if c.MongoURL == "" {
		if v := os.Getenv("MONGODB_URI"); v != "" {
			c.MongoURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
