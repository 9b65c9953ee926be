package db

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds the Postgres connection settings.
type Config struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Database wraps a pgx connection pool.
type Database struct {
	cfg  Config
	Pool *pgxpool.Pool
}

// ConfigFromEnv reads DB_HOST, DB_PORT, DB_NAME, DB_USER and DB_PASS, filling
// unset values from base.
func ConfigFromEnv(base Config) Config {
	return Config{
		Host:     getenv("DB_HOST", fallback(base.Host, "localhost")),
		Port:     getenv("DB_PORT", fallback(base.Port, "5432")),
		Name:     getenv("DB_NAME", fallback(base.Name, "docdesigner")),
		User:     getenv("DB_USER", fallback(base.User, "postgres")),
		Password: getenv("DB_PASS", fallback(base.Password, "postgres")),
	}
}

// ConnectFromEnv opens a pool configured from the environment.
func ConnectFromEnv(ctx context.Context) (*Database, error) {
	return Connect(ctx, ConfigFromEnv(Config{}))
}

// Connect opens a pool and verifies the server answers.
func Connect(ctx context.Context, cfg Config) (*Database, error) {
	database := &Database{cfg: cfg}
	if err := database.dialContext(ctx); err != nil {
		return database, fmt.Errorf("database ping failed: %w", err)
	}
	pool, err := pgxpool.New(ctx, database.DSN())
	if err != nil {
		return database, fmt.Errorf("database pool: %w", err)
	}
	database.Pool = pool
	if err := database.PingContext(ctx); err != nil {
		pool.Close()
		database.Pool = nil
		return database, fmt.Errorf("database ping failed: %w", err)
	}
	return database, nil
}

// DSN returns the connection URL for the configured server.
func (d *Database) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.cfg.User, d.cfg.Password),
		Host:     net.JoinHostPort(d.cfg.Host, d.cfg.Port),
		Path:     "/" + d.cfg.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// PingContext checks the pool can reach the server.
func (d *Database) PingContext(ctx context.Context) error {
	if d == nil || d.Pool == nil {
		return fmt.Errorf("database is not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return d.Pool.Ping(ctx)
}

// dialContext fails fast when nothing listens on the configured address.
func (d *Database) dialContext(ctx context.Context) error {
	dialer := &net.Dialer{Timeout: 2 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(d.cfg.Host, d.cfg.Port))
	if err != nil {
		return err
	}
	return conn.Close()
}

// Close releases the pool.
func (d *Database) Close() error {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
	return nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func fallback(value, def string) string {
	if value != "" {
		return value
	}
	return def
}
