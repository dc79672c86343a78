package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	StorageDriverJSON   = "json"
	StorageDriverPebble = "pebble"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Site     SiteConfig     `mapstructure:"site"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig selects and locates the guest message store
type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	DataDir   string `mapstructure:"data_dir"`
	FileName  string `mapstructure:"file_name"`
	PebbleDir string `mapstructure:"pebble_dir"`
}

// AdminConfig holds the single-operator admin credentials
type AdminConfig struct {
	PasswordHash string        `mapstructure:"password_hash"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	ExpiresIn    time.Duration `mapstructure:"expires_in"`
	Issuer       string        `mapstructure:"issuer"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SiteConfig locates static assets served by the API
type SiteConfig struct {
	PublicDir string `mapstructure:"public_dir"`
}

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Wedding Guestbook")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Storage defaults
	v.SetDefault("storage.driver", StorageDriverJSON)
	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.file_name", "guest-messages.json")
	v.SetDefault("storage.pebble_dir", "data/guest-messages.db")

	// Admin defaults (disabled until a password hash is set)
	v.SetDefault("admin.password_hash", "")
	v.SetDefault("admin.jwt_secret", "")
	v.SetDefault("admin.expires_in", "12h")
	v.SetDefault("admin.issuer", "wedding-guestbook")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.filename", "")

	// Security defaults
	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.rate_limit_requests", 20)
	v.SetDefault("security.rate_limit_window", "1m")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)

	// Site defaults
	v.SetDefault("site.public_dir", "public")
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "APP_NAME")
	v.BindEnv("app.version", "APP_VERSION")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("app.debug", "APP_DEBUG")

	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	v.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")
	v.BindEnv("server.request_timeout", "SERVER_REQUEST_TIMEOUT")
	v.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")

	// Storage
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.data_dir", "DATA_DIR")
	v.BindEnv("storage.file_name", "STORAGE_FILE_NAME")
	v.BindEnv("storage.pebble_dir", "STORAGE_PEBBLE_DIR")

	// Admin
	v.BindEnv("admin.password_hash", "ADMIN_PASSWORD_HASH")
	v.BindEnv("admin.jwt_secret", "ADMIN_JWT_SECRET")
	v.BindEnv("admin.expires_in", "ADMIN_TOKEN_EXPIRES_IN")
	v.BindEnv("admin.issuer", "ADMIN_TOKEN_ISSUER")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.format", "LOG_FORMAT")
	v.BindEnv("logger.output", "LOG_OUTPUT")
	v.BindEnv("logger.filename", "LOG_FILENAME")

	// Security
	v.BindEnv("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("security.rate_limit_requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("security.rate_limit_window", "RATE_LIMIT_WINDOW")

	// Metrics
	v.BindEnv("metrics.enabled", "ENABLE_METRICS")

	// Site
	v.BindEnv("site.public_dir", "PUBLIC_DIR")
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	switch cfg.Storage.Driver {
	case StorageDriverJSON:
		if cfg.Storage.DataDir == "" || cfg.Storage.FileName == "" {
			return fmt.Errorf("storage data dir and file name are required")
		}
	case StorageDriverPebble:
		if cfg.Storage.PebbleDir == "" {
			return fmt.Errorf("storage pebble dir is required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Admin.Enabled() && cfg.Admin.JWTSecret == "" {
		return fmt.Errorf("admin jwt secret must be set when an admin password hash is configured")
	}

	if cfg.Security.RateLimitRequests < 0 {
		return fmt.Errorf("rate limit requests cannot be negative")
	}

	return nil
}

// MessagesFile returns the path of the JSON message file
func (cfg *StorageConfig) MessagesFile() string {
	return filepath.Join(cfg.DataDir, cfg.FileName)
}

// Enabled reports whether admin routes are protected
func (cfg *AdminConfig) Enabled() bool {
	return cfg.PasswordHash != ""
}

// Address returns the host:port the server listens on
func (cfg *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}
