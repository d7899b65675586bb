package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	Database Database `envPrefix:"DB_"`
	Auth     Auth     `envPrefix:"AUTH_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Ledger   Ledger   `envPrefix:"LEDGER_"`
	Seed     Seed     `envPrefix:"SEED_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host            string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

type Database struct {
	Driver          string        `env:"DRIVER" envDefault:"sqlite"` // sqlite, mysql, postgres
	DSN             string        `env:"DSN" envDefault:"chuks_kitchen.db?_txlock=immediate&_busy_timeout=5000&_foreign_keys=1"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"50"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"warn"` // silent, error, warn, info
}

type Auth struct {
	JWTSecret string        `env:"JWT_SECRET,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	OTPTTL    time.Duration `env:"OTP_TTL" envDefault:"10m"`
	// CatalogAdmins limits food creation and stock changes to these emails.
	// Empty lets any verified user manage the catalog.
	CatalogAdmins []string `env:"CATALOG_ADMINS" envSeparator:","`
}

// Redis is optional: an empty Addr keeps OTPs in the users table.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Ledger struct {
	// DecrementStockOnPay takes stock a second time when an order is paid,
	// on top of the decrement done at order creation.
	DecrementStockOnPay bool   `env:"DECREMENT_STOCK_ON_PAY" envDefault:"true"`
	RefPrefix           string `env:"REF_PREFIX" envDefault:"TXN"`
}

type Seed struct {
	Catalog bool `env:"CATALOG" envDefault:"false"`
}

func (c *Config) Address() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	switch cfg.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	return cfg, nil
}
