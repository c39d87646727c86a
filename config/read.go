package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "CODECREST"

	// FallbackTokenSecret signs tokens when no secret is configured.
	// It is public knowledge, so production refuses to start with it.
	FallbackTokenSecret = "fallback_secret_key"
)

// legacyEnv maps config keys to the bare variable names the site's
// deployment has always used. The prefixed form takes precedence.
var legacyEnv = map[string]string{
	"server.port":                 "PORT",
	"admin.email":                 "ADMIN_EMAIL",
	"admin.password":              "ADMIN_PASSWORD",
	"authentication.token.secret": "JWT_SECRET",
	"mongo.uri":                   "DB_URL",
}

func ReadConfig(configPath string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(filepath.Join(configPath, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType(ConfigFormat)
	v.AddConfigPath(configPath)

	// e.g. CODECREST_MONGO_URI overrides mongo.uri
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	// The config file is optional in container deployments.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.cors.enabled", true)
	v.SetDefault("server.cors.allow_origins", []string{"*"})
	v.SetDefault("server.cors.allow_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors.allow_headers", []string{"Content-Type", "Authorization"})
	v.SetDefault("server.cors.allow_credentials", false)
	v.SetDefault("server.cors.max_age_seconds", 0)

	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")

	v.SetDefault("authentication.token.format", "jwt")
	v.SetDefault("authentication.token.secret", "")
	v.SetDefault("authentication.token.issuer", "codecrest")
	v.SetDefault("authentication.token.ttl_hours", 24)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "codecrest")
	v.SetDefault("mongo.collection", "contacts")
	v.SetDefault("mongo.connect_timeout_seconds", 10)
	v.SetDefault("mongo.operation_timeout_seconds", 10)
	v.SetDefault("mongo.max_pool_size", 0)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.from", "")
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.use_tls", false)
	v.SetDefault("email.smtp.timeout_seconds", 30)

	v.SetDefault("nats.url", "")

	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.service_name", "codecrest_backend")
	v.SetDefault("observability.service_version", "dev")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.otlp_endpoint", "")
	v.SetDefault("observability.tracing.otlp_insecure", false)
	v.SetDefault("observability.tracing.sampling_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", false)
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output.stdout", true)
	v.SetDefault("logging.output.file.enabled", false)
	v.SetDefault("logging.output.file.path", "logs/app.log")
	v.SetDefault("logging.output.file.max_size_mb", 50)
	v.SetDefault("logging.output.file.max_backups", 5)
	v.SetDefault("logging.output.file.max_age_days", 30)
	v.SetDefault("logging.output.file.compress", false)
	v.SetDefault("logging.output.loki.enabled", false)
	v.SetDefault("logging.output.loki.endpoint", "")
	v.SetDefault("logging.output.loki.tenant_id", "")
	v.SetDefault("logging.output.loki.username", "")
	v.SetDefault("logging.output.loki.password", "")
	v.SetDefault("logging.audit.enabled", true)
	v.SetDefault("logging.audit.info_path", "server_info.log")
	v.SetDefault("logging.audit.error_path", "server_error.log")
	v.SetDefault("logging.audit.max_size_mb", 20)
	v.SetDefault("logging.audit.max_backups", 3)
	v.SetDefault("logging.audit.max_age_days", 90)

	v.SetDefault("errors.expose_storage_errors", true)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Mongo.URI) == "" {
		return errors.New("mongo.uri is required")
	}
	if c.Mongo.Database == "" || c.Mongo.Collection == "" {
		return errors.New("mongo.database and mongo.collection are required")
	}

	switch strings.ToLower(c.Authentication.Token.Format) {
	case "jwt", "paseto":
	default:
		return fmt.Errorf("authentication.token.format must be jwt or paseto, got %q", c.Authentication.Token.Format)
	}
	if c.Authentication.Token.TTLHours <= 0 {
		return errors.New("authentication.token.ttl_hours must be positive")
	}

	secret := strings.TrimSpace(c.Authentication.Token.Secret)
	if c.IsProduction() && (secret == "" || secret == FallbackTokenSecret) {
		return errors.New("authentication.token.secret must be set in production")
	}

	if c.Logging.Output.Loki.Enabled && strings.TrimSpace(c.Logging.Output.Loki.Endpoint) == "" {
		return errors.New("logging.output.loki.endpoint is required when loki is enabled")
	}

	if c.Email.Enabled && strings.TrimSpace(c.Email.From) == "" {
		return errors.New("email.from is required when email is enabled")
	}

	// Admin credentials are deliberately not validated here: login
	// reports a configuration error instead of the process refusing
	// to serve public submissions.
	return nil
}
