package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig_Defaults(t *testing.T) {
	cfg, err := ReadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "jwt", cfg.Authentication.Token.Format)
	assert.Equal(t, 24, cfg.Authentication.Token.TTLHours)
	assert.Equal(t, "contacts", cfg.Mongo.Collection)
	assert.Equal(t, "server_info.log", cfg.Logging.Audit.InfoPath)
	assert.Equal(t, "server_error.log", cfg.Logging.Audit.ErrorPath)
	assert.True(t, cfg.Errors.ExposeStorageErrors)
}

func TestReadConfig_LegacyEnvNames(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("ADMIN_EMAIL", "admin@codecrest.dev")
	t.Setenv("ADMIN_PASSWORD", "s3cret")
	t.Setenv("JWT_SECRET", "signing-key")
	t.Setenv("DB_URL", "mongodb://db:27017")

	cfg, err := ReadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "admin@codecrest.dev", cfg.Admin.Email)
	assert.Equal(t, "s3cret", cfg.Admin.Password)
	assert.Equal(t, "signing-key", cfg.Authentication.Token.Secret)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
}

func TestReadConfig_PrefixedEnvWins(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "legacy@codecrest.dev")
	t.Setenv("CODECREST_ADMIN_EMAIL", "prefixed@codecrest.dev")

	cfg, err := ReadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "prefixed@codecrest.dev", cfg.Admin.Email)
}

func TestReadConfig_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: 9000
mongo:
  database: agency
authentication:
  token:
    format: paseto
    secret: from-file
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "agency", cfg.Mongo.Database)
	assert.Equal(t, "paseto", cfg.Authentication.Token.Format)
	assert.Equal(t, "from-file", cfg.Authentication.Token.Secret)
}

func TestReadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CODECREST_MONGO_DATABASE=fromdotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CODECREST_MONGO_DATABASE") })

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "fromdotenv", cfg.Mongo.Database)
}

func TestReadConfig_DotEnvSingleQuotedHash(t *testing.T) {
	const hash = "$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNoaGFzaA"

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADMIN_PASSWORD='"+hash+"'\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ADMIN_PASSWORD") })

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, hash, cfg.Admin.Password)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server: ServerConfig{Port: 5000, Environment: "development"},
			Mongo:  MongoConfig{URI: "mongodb://localhost", Database: "d", Collection: "c"},
			Authentication: AuthenticationConfig{Token: TokenConfig{
				Format: "jwt", TTLHours: 24,
			}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid development config", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "unknown token format", mutate: func(c *Config) { c.Authentication.Token.Format = "saml" }, wantErr: true},
		{name: "non-positive ttl", mutate: func(c *Config) { c.Authentication.Token.TTLHours = 0 }, wantErr: true},
		{name: "missing mongo uri", mutate: func(c *Config) { c.Mongo.URI = " " }, wantErr: true},
		{
			name: "production without secret",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
			},
			wantErr: true,
		},
		{
			name: "production with fallback secret",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Authentication.Token.Secret = FallbackTokenSecret
			},
			wantErr: true,
		},
		{
			name: "production with real secret",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Authentication.Token.Secret = "a-real-secret"
			},
		},
		{name: "email enabled without from", mutate: func(c *Config) { c.Email.Enabled = true }, wantErr: true},
		{name: "loki enabled without endpoint", mutate: func(c *Config) { c.Logging.Output.Loki.Enabled = true }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
