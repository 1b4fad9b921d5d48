package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"FastNotes/internal/logger"
)

type App struct {
	Name string `mapstructure:"name"`
}

type HTTP struct {
	Addr               string        `mapstructure:"addr"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	RateLimitRPS       int           `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int           `mapstructure:"rate_limit_burst"`
}

type Database struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
}

type Pagination struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type Config struct {
	App        App           `mapstructure:"app"`
	HTTP       HTTP          `mapstructure:"http"`
	Database   Database      `mapstructure:"database"`
	Log        logger.Config `mapstructure:"log"`
	Pagination Pagination    `mapstructure:"pagination"`
}

const envPrefix = "NOTES"

// legacyEnv maps config keys to the variable names the deployment .env
// files already use.
var legacyEnv = map[string]string{
	"database.user":     "DB_USERNAME",
	"database.password": "DB_PASSWORD",
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.name":     "DB_DATABASE",
	"database.driver":   "DB_DRIVER",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "FastNotes API")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 5*time.Second)
	v.SetDefault("http.cors_allowed_origins", []string{"*"})
	v.SetDefault("http.rate_limit_rps", 100)
	v.SetDefault("http.rate_limit_burst", 20)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "notes.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.slow_threshold", 200*time.Millisecond)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("pagination.default_limit", 50)
	v.SetDefault("pagination.max_limit", 200)
}

// Load reads defaults, then the optional config file, then the
// environment. Later sources win.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	if port := os.Getenv("HTTP_PORT"); port != "" && os.Getenv(envPrefix+"_HTTP_ADDR") == "" {
		v.Set("http.addr", ":"+port)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType(strings.TrimLeft(filepath.Ext(configFile), "."))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Pagination.DefaultLimit <= 0 {
		return fmt.Errorf("config: pagination.default_limit must be positive")
	}
	if c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		return fmt.Errorf("config: pagination.max_limit must be >= default_limit")
	}
	return nil
}

// LoadEnv looks for a .env file in the working directory and its parents
// and returns the path it loaded.
func LoadEnv() (string, error) {
	possiblePaths := []string{
		".env",
		"./.env",
		"../.env",
		"../../.env",
	}

	for _, path := range possiblePaths {
		if err := godotenv.Load(path); err == nil {
			return path, nil
		}
	}

	wd, _ := os.Getwd()
	return "", fmt.Errorf("could not load .env file from any path (cwd %s)", wd)
}
