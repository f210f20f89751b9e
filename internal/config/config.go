package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	App    App
	Logger Logger
	Store  Store
	Redis  Redis
	Server Server
	Shop   Shop
	Auth   Auth
}

type App struct {
	Env string `env:"APP_ENV" envDefault:"local"`
}

type Logger struct {
	Level  string `env:"LOGGER_LEVEL" envDefault:"info"`
	AsJSON bool   `env:"LOGGER_AS_JSON" envDefault:"false"`
}

type Store struct {
	Driver     string        `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath string        `env:"SQLITE_PATH" envDefault:"aspas.db"`
	MySQLDSN   string        `env:"MYSQL_DSN"`
	OpTimeout  time.Duration `env:"STORE_OP_TIMEOUT" envDefault:"5s"`
}

// Redis is optional; an empty Addr keeps idempotency and reorder events in process.
type Redis struct {
	Addr           string        `env:"REDIS_ADDR"`
	ReorderChannel string        `env:"REDIS_REORDER_CHANNEL" envDefault:"aspas:reorders"`
	IdempotencyTTL time.Duration `env:"REDIS_IDEMPOTENCY_TTL" envDefault:"24h"`
}

type Server struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:"127.0.0.1:8080"`
	GRPCAddr        string        `env:"GRPC_ADDR" envDefault:"127.0.0.1:50051"`
	MetricsAddr     string        `env:"METRICS_ADDR" envDefault:"127.0.0.1:9090"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

type Shop struct {
	Code           string  `env:"SHOP_CODE" envDefault:"ATIL"`
	ReorderRatio   float64 `env:"REORDER_RATIO" envDefault:"0.3"`
	CurrencySymbol string  `env:"CURRENCY_SYMBOL" envDefault:"₹"`
	Timezone       string  `env:"SHOP_TIMEZONE" envDefault:"Local"`
}

type Auth struct {
	SeedDefaultUsers bool `env:"SEED_DEFAULT_USERS" envDefault:"true"`
	BcryptCost       int  `env:"BCRYPT_COST" envDefault:"10"`
}

func Load(path ...string) (*Config, error) {
	const op = "config.Load"

	if shouldLoadDotenv() {
		if err := godotenv.Load(path...); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: load .env: %w", op, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverMySQL:
		if c.Store.MySQLDSN == "" {
			return errors.New("MYSQL_DSN is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Shop.ReorderRatio <= 0 || c.Shop.ReorderRatio > 1 {
		return fmt.Errorf("REORDER_RATIO must be in (0, 1], got %v", c.Shop.ReorderRatio)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves SHOP_TIMEZONE, used to interpret report dates.
func (c *Config) Location() (*time.Location, error) {
	if c.Shop.Timezone == "" || c.Shop.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Shop.Timezone)
	if err != nil {
		return nil, fmt.Errorf("SHOP_TIMEZONE: %w", err)
	}
	return loc, nil
}

func shouldLoadDotenv() bool {
	return os.Getenv("APP_ENV") == "local"
}
