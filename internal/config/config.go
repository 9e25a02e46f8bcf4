// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envFile = ".env"

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type AppConfig struct {
	Env string `mapstructure:"env" validate:"oneof=development production test"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gt=0"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=postgres mysql sqlite"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

type GitHubConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

func (g GitHubConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type AuthConfig struct {
	Secret       string        `mapstructure:"secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	CookieName   string        `mapstructure:"cookie_name" validate:"required"`
	CookieDomain string        `mapstructure:"cookie_domain"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	GitHub       GitHubConfig  `mapstructure:"github"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAge     int    `mapstructure:"max_age" validate:"gte=0"`
}

type SchedulerConfig struct {
	Interval   time.Duration `mapstructure:"interval" validate:"gt=0"`
	StaleAfter time.Duration `mapstructure:"stale_after" validate:"gt=0"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" validate:"gt=0"`
	Burst int     `mapstructure:"burst" validate:"gt=0"`
}

// NewConfig reads .env (without overriding the process environment), applies
// defaults and validates the result.
func NewConfig() (*Config, error) {
	if envMap, err := godotenv.Read(envFile); err == nil {
		for k, val := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, val)
			}
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORS.AllowedOrigins = normalizeOrigins(cfg.CORS.AllowedOrigins, os.Getenv("CLIENT_URL"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.read_header_timeout", 5*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "coffeefocus.db")

	v.SetDefault("auth.token_ttl", 168*time.Hour)
	v.SetDefault("auth.cookie_name", "token")
	v.SetDefault("auth.cookie_secure", true)
	v.SetDefault("auth.github.redirect_url", "http://localhost:3000/api/auth/github/callback")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 28)

	v.SetDefault("scheduler.interval", 10*time.Minute)
	v.SetDefault("scheduler.stale_after", 12*time.Hour)

	v.SetDefault("ratelimit.rps", 1)
	v.SetDefault("ratelimit.burst", 10)
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"app.env",
		"server.host",
		"server.shutdown_timeout",
		"server.read_header_timeout",
		"database.driver",
		"auth.token_ttl",
		"auth.cookie_name",
		"auth.cookie_domain",
		"auth.cookie_secure",
		"auth.github.redirect_url",
		"cors.allowed_origins",
		"logging.level",
		"logging.file",
		"logging.max_size",
		"logging.max_backups",
		"logging.max_age",
		"scheduler.interval",
		"scheduler.stale_after",
		"ratelimit.rps",
		"ratelimit.burst",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Aliases commonly set by hosting platforms.
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("database.dsn", "DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("auth.secret", "AUTH_SECRET", "JWT_SECRET")
	_ = v.BindEnv("auth.github.client_id", "AUTH_GITHUB_CLIENT_ID", "GITHUB_ID")
	_ = v.BindEnv("auth.github.client_secret", "AUTH_GITHUB_CLIENT_SECRET", "GITHUB_SECRET")
}

func normalizeOrigins(origins []string, clientURL string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(origins)+1)

	add := func(origin string) {
		origin = strings.TrimSpace(origin)
		if origin == "" || seen[origin] {
			return
		}
		seen[origin] = true
		result = append(result, origin)
	}

	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			add(part)
		}
	}
	add(clientURL)

	return result
}
