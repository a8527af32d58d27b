package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8080},
		Auth:    AuthConfig{Mode: AuthModeFirebase},
		Log:     LogConfig{Level: "info", Format: "json"},
		Storage: StorageConfig{MaxUploadBytes: 1024},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "out of range",
		},
		{
			name:    "jwt mode without secret",
			mutate:  func(c *Config) { c.Auth.Mode = AuthModeJWT },
			wantErr: "JWT_SECRET is required",
		},
		{
			name: "jwt mode with secret",
			mutate: func(c *Config) {
				c.Auth.Mode = AuthModeJWT
				c.Auth.JWTSecret = "s3cret"
			},
		},
		{
			name:    "unknown auth mode",
			mutate:  func(c *Config) { c.Auth.Mode = "basic" },
			wantErr: `unknown auth mode "basic"`,
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "unknown log format",
		},
		{
			name:   "text log format is case insensitive",
			mutate: func(c *Config) { c.Log.Format = "TEXT" },
		},
		{
			name: "bucket without upload limit",
			mutate: func(c *Config) {
				c.Storage.Bucket = "media"
				c.Storage.MaxUploadBytes = 0
			},
			wantErr: "S3_MAX_UPLOAD_BYTES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCORSOrigins(t *testing.T) {
	c := CORSConfig{AllowedOrigins: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Origins())
	assert.Nil(t, CORSConfig{}.Origins())
}

func TestMailEnabled(t *testing.T) {
	assert.False(t, MailConfig{}.Enabled())
	assert.True(t, MailConfig{Host: "smtp.example.com"}.Enabled())
}

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	unsetEnv(t, "CONFIG_PATH", "AUTH_MODE", "JWT_SECRET", "SMTP_HOST", "S3_BUCKET", "LOG_FORMAT", "SERVER_HOST")
	t.Setenv("POSTGRES_CONN_STR", "postgres://localhost/recipes")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TOKEN_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "postgres://localhost/recipes", cfg.Database.PostgresDSN)
	assert.Equal(t, "recipehub", cfg.Database.MongoDatabase)
	assert.Equal(t, AuthModeFirebase, cfg.Auth.Mode)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "organization_memberships", cfg.Firebase.MembershipsCollection)
	assert.False(t, cfg.Mail.Enabled())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Chdir(t.TempDir())
	unsetEnv(t, "CONFIG_PATH", "POSTGRES_CONN_STR", "MONGO_URI")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestLoad_YAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 7000
database:
  postgres_dsn: postgres://yaml/recipes
  mongo_uri: mongodb://yaml:27017
auth:
  mode: jwt
  jwt_secret: from-yaml
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Chdir(dir)
	unsetEnv(t, "POSTGRES_CONN_STR", "MONGO_URI", "AUTH_MODE", "JWT_SECRET", "LOG_FORMAT")
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "7100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, "postgres://yaml/recipes", cfg.Database.PostgresDSN)
	assert.Equal(t, AuthModeJWT, cfg.Auth.Mode)
	assert.Equal(t, "from-yaml", cfg.Auth.JWTSecret)
}
