package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Auth modes accepted by AuthConfig.Mode.
const (
	AuthModeFirebase = "firebase"
	AuthModeJWT      = "jwt"
)

// Config is the root application configuration.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"development"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Firebase FirebaseConfig `yaml:"firebase"`
	Storage  StorageConfig  `yaml:"storage"`
	Mail     MailConfig     `yaml:"mail"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"PORT"                    env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	BodyLimit       string        `yaml:"body_limit"       env:"SERVER_BODY_LIMIT"       env-default:"10M"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL and MongoDB connection settings.
type DatabaseConfig struct {
	PostgresDSN     string        `yaml:"postgres_dsn"      env:"POSTGRES_CONN_STR"          env-required:"true"`
	MaxOpenConns    int           `yaml:"max_open_conns"    env:"POSTGRES_MAX_OPEN_CONNS"    env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns"    env:"POSTGRES_MAX_IDLE_CONNS"    env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"POSTGRES_CONN_MAX_LIFETIME" env-default:"1h"`
	MongoURI        string        `yaml:"mongo_uri"         env:"MONGO_URI"                  env-required:"true"`
	MongoDatabase   string        `yaml:"mongo_database"    env:"MONGO_DATABASE"             env-default:"recipehub"`
}

// AuthConfig selects how bearer tokens are verified.
type AuthConfig struct {
	Mode      string        `yaml:"mode"       env:"AUTH_MODE"       env-default:"firebase"`
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTIssuer string        `yaml:"jwt_issuer" env:"JWT_ISSUER"      env-default:"recipe-hub"`
	TokenTTL  time.Duration `yaml:"token_ttl"  env:"JWT_TOKEN_TTL"   env-default:"24h"`
}

// FirebaseConfig holds Firebase Admin SDK settings.
type FirebaseConfig struct {
	CredentialsPath       string `yaml:"credentials_path"       env:"FIREBASE_CREDENTIALS_PATH"       env-default:"./firebase_credentials.json"`
	ProjectID             string `yaml:"project_id"             env:"FIREBASE_PROJECT_ID"`
	MembershipsCollection string `yaml:"memberships_collection" env:"FIREBASE_MEMBERSHIPS_COLLECTION" env-default:"organization_memberships"`
}

// StorageConfig holds S3 settings for recipe media. Uploads are disabled when Bucket is empty.
type StorageConfig struct {
	Bucket          string `yaml:"bucket"            env:"S3_BUCKET"`
	Region          string `yaml:"region"            env:"S3_REGION"            env-default:"us-east-1"`
	Endpoint        string `yaml:"endpoint"          env:"S3_ENDPOINT"`
	PublicBaseURL   string `yaml:"public_base_url"   env:"S3_PUBLIC_BASE_URL"`
	AccessKeyID     string `yaml:"access_key_id"     env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"  env:"S3_MAX_UPLOAD_BYTES"  env-default:"5242880"`
}

// MailConfig holds SMTP settings. Mail is disabled when Host is empty.
type MailConfig struct {
	Host       string `yaml:"host"        env:"SMTP_HOST"`
	Port       int    `yaml:"port"        env:"SMTP_PORT"          env-default:"587"`
	Username   string `yaml:"username"    env:"SMTP_AUTH_EMAIL"`
	Password   string `yaml:"password"    env:"SMTP_AUTH_PASSWORD"`
	SenderName string `yaml:"sender_name" env:"SMTP_SENDER_NAME"   env-default:"Recipe Hub"`
}

// Enabled reports whether outgoing mail is configured.
func (m MailConfig) Enabled() bool { return m.Host != "" }

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

// Origins splits AllowedOrigins on commas.
func (c CORSConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults. A .env file in the working directory is
// loaded into the environment first when present.
// The YAML path comes from CONFIG_PATH (fallback "./config.yaml"); if that
// file is missing and CONFIG_PATH was not set, only ENV and defaults are used.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks cross-field constraints cleanenv cannot express.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	switch c.Auth.Mode {
	case AuthModeFirebase:
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=%s", AuthModeJWT)
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.Auth.Mode)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Storage.Bucket != "" && c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("S3_MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}
