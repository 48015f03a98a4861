// Package postgres opens pooled PostgreSQL connections through the pgx driver
// and applies schema migrations.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	defaultConnMaxIdleTime = 5 * time.Minute
	defaultConnMaxLifetime = 30 * time.Minute
	defaultMaxIdleConns    = 5
	defaultMaxOpenConns    = 25
)

// Config describes where the database lives and how the pool is sized.
// URL, usually taken from DATABASE_URL, wins over the individual fields.
type Config struct {
	URL             string        `yaml:"url"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

// DefaultConfig returns a local connection with the default pool limits.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "disable",
		ConnMaxIdleTime: defaultConnMaxIdleTime,
		ConnMaxLifetime: defaultConnMaxLifetime,
		MaxIdleConns:    defaultMaxIdleConns,
		MaxOpenConns:    defaultMaxOpenConns,
	}
}

// DSN returns URL when set, otherwise a connection string built from the individual fields.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DB, c.SSLMode)
}

// New connects to the database described by cfg and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	const op = "postgres.New"

	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	configurePool(db, cfg)

	return db, nil
}

// configurePool applies the limits from cfg. Zero values keep the defaults.
func configurePool(db *sqlx.DB, cfg Config) {
	db.SetConnMaxIdleTime(orDefault(cfg.ConnMaxIdleTime, defaultConnMaxIdleTime))
	db.SetConnMaxLifetime(orDefault(cfg.ConnMaxLifetime, defaultConnMaxLifetime))
	db.SetMaxIdleConns(orDefault(cfg.MaxIdleConns, defaultMaxIdleConns))
	db.SetMaxOpenConns(orDefault(cfg.MaxOpenConns, defaultMaxOpenConns))
}

func orDefault[T int | time.Duration](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}
