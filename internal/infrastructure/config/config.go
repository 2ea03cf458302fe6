package config

import (
	"context"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string        `env:"PORT,        default=8080"`
	Env        string        `env:"ENV,         default=development"`
	JWTSecret  string        `env:"JWT_SECRET,  required"`
	SessionTTL time.Duration `env:"SESSION_TTL, default=24h"`
	LoginPath  string        `env:"LOGIN_PATH,  default=/login"`

	Log      LogConfig
	Backend  BackendConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Streak   StreakConfig
	Activity ActivityConfig
	Cache    CacheConfig
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL,  default=info"`
	Pretty bool   `env:"LOG_PRETTY, default=false"`
	File   string `env:"LOG_FILE"`
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:8000/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=edulearn"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type StreakConfig struct {
	Timezone      string `env:"STREAK_TIMEZONE, default=UTC"`
	NoticeWorkers int    `env:"NOTICE_WORKERS,  default=8"`
}

type ActivityConfig struct {
	Interval      time.Duration `env:"ACTIVITY_INTERVAL,       default=1m"`
	Window        time.Duration `env:"ACTIVITY_WINDOW,         default=5m"`
	CheckInterval time.Duration `env:"ACTIVITY_CHECK_INTERVAL, default=5m"`
}

type CacheConfig struct {
	ViewTTL time.Duration `env:"VIEW_CACHE_TTL, default=2m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from the given lookuper and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Location is the time zone streak days are counted in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Streak.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) validate() error {
	if _, err := time.LoadLocation(c.Streak.Timezone); err != nil {
		return fmt.Errorf("STREAK_TIMEZONE: %w", err)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Activity.Window <= 0 || c.Activity.CheckInterval <= 0 {
		return errors.New("ACTIVITY_WINDOW and ACTIVITY_CHECK_INTERVAL must be positive")
	}
	return nil
}
