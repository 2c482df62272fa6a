package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	JWT      JWTConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Runs     RunsConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	MaxUploadBytes int64
}

type JWTConfig struct {
	SecretKey string
}

var ErrMissingJWTSecret = errors.New("jwt.secret_key is not set")

// Validate fails when no signing secret is configured. Only the HTTP server
// needs one.
func (c JWTConfig) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type RunsConfig struct {
	CacheTTL        time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

var envBindings = map[string]string{
	"server.port":                "PORT",
	"server.max_upload_bytes":    "SERVER_MAX_UPLOAD_BYTES",
	"jwt.secret_key":             "JWT_SECRET_KEY",
	"database.enabled":           "DATABASE_ENABLED",
	"database.host":              "DATABASE_HOST",
	"database.port":              "DATABASE_PORT",
	"database.user":              "DATABASE_USER",
	"database.password":          "DATABASE_PASSWORD",
	"database.name":              "DATABASE_NAME",
	"database.ssl_mode":          "DATABASE_SSL_MODE",
	"database.max_open_conns":    "DATABASE_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DATABASE_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DATABASE_CONN_MAX_LIFETIME",
	"redis.enabled":              "REDIS_ENABLED",
	"redis.host":                 "REDIS_HOST",
	"redis.port":                 "REDIS_PORT",
	"redis.password":             "REDIS_PASSWORD",
	"redis.db":                   "REDIS_DB",
	"runs.cache_ttl":             "RUNS_CACHE_TTL",
	"runs.breaker_failures":      "RUNS_BREAKER_FAILURES",
	"runs.breaker_timeout":       "RUNS_BREAKER_TIMEOUT",
	"log.level":                  "LOG_LEVEL",
	"log.format":                 "LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "payments_engine")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Minute*5)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("runs.cache_ttl", 24*time.Hour)
	v.SetDefault("runs.breaker_failures", 5)
	v.SetDefault("runs.breaker_timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from the global viper instance. Values come from
// an optional .env file, overridden by environment variables.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper(), ".env")
}

// LoadFrom reads configuration into v. envFile may be empty.
func LoadFrom(v *viper.Viper, envFile string) (*Config, error) {
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("error reading %s: %w", envFile, err)
			}
			logrus.Debugf("Config file %s not found, using defaults", envFile)
		}
		// .env keys are flat (DATABASE_HOST); map them onto the nested keys
		// below environment variables in precedence.
		for key, env := range envBindings {
			if v.InConfig(env) {
				v.SetDefault(key, v.Get(strings.ToLower(env)))
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			MaxUploadBytes: v.GetInt64("server.max_upload_bytes"),
		},
		JWT: JWTConfig{
			SecretKey: v.GetString("jwt.secret_key"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("database.enabled"),
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Runs: RunsConfig{
			CacheTTL:        v.GetDuration("runs.cache_ttl"),
			BreakerFailures: v.GetUint32("runs.breaker_failures"),
			BreakerTimeout:  v.GetDuration("runs.breaker_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if cfg.Server.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("server.max_upload_bytes must be positive, got %d", cfg.Server.MaxUploadBytes)
	}
	if cfg.Runs.BreakerFailures == 0 {
		return nil, errors.New("runs.breaker_failures must be positive")
	}
	return cfg, nil
}
