package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/database"
	bookshelfhttp "github.com/sagarc03/bookshelf/http"
)

// DevJWTSecret is the signing secret used when none is configured.
// Serving with it logs a warning.
const DevJWTSecret = "bookshelf-dev-secret"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for bookshelf.
type Config struct {
	Env      string                   `mapstructure:"env" validate:"omitempty,oneof=dev development test prod production"`
	Server   ServerConfig             `mapstructure:"server"`
	Service  ServiceConfig            `mapstructure:"service"`
	Database database.Config          `mapstructure:"database"`
	Storage  StorageConfig            `mapstructure:"storage"`
	Auth     AuthConfig               `mapstructure:"auth"`
	CORS     bookshelfhttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig                `mapstructure:"log"`
}

// IsProduction reports whether Env names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize int64 `mapstructure:"max_upload_size" validate:"min=1"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	// CleanupTimeout bounds blob cleanup after a failed upload, in seconds.
	CleanupTimeout int `mapstructure:"cleanup_timeout" validate:"min=1"`
	// OrphanGrace is the minimum age of a blob before cleanup may remove it.
	OrphanGrace time.Duration `mapstructure:"orphan_grace" validate:"min=0"`
}

// StorageConfig holds file storage configuration.
type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AuthConfig holds password hashing and token configuration.
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" validate:"required,min=1m"`
	BcryptCost int           `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"storage-path": "storage.path",
	"port":         "server.port",
	"log-level":    "log.level",
}

// envAliases are conventional variable names accepted next to the
// BOOKSHELF_ prefixed ones. The prefixed name wins when both are set.
var envAliases = map[string]string{
	"server.port":     "PORT",
	"database.dsn":    "DATABASE_URL",
	"auth.jwt_secret": "JWT_SECRET",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

func bindEnvAliases(v *viper.Viper) {
	for key, alias := range envAliases {
		prefixed := "BOOKSHELF_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, alias)
	}
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.max_upload_size", bookshelf.DefaultMaxFileSize)

	v.SetDefault("service.cleanup_timeout", 30) // seconds
	v.SetDefault("service.orphan_grace", time.Hour)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "bookshelf.db")
	v.SetDefault("database.tables.users", "users")
	v.SetDefault("database.tables.books", "books")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("storage.path", "./uploads")

	v.SetDefault("auth.jwt_secret", DevJWTSecret)
	v.SetDefault("auth.token_ttl", 720*time.Hour)
	v.SetDefault("auth.bcrypt_cost", bookshelf.DefaultBcryptCost)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Authorization", "Content-Type"})
	v.SetDefault("cors.exposed_headers", []string{"Content-Disposition", "ETag"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("BOOKSHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvAliases(v)

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Database.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
