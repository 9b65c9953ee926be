// Package config loads server settings from an optional YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"docdesigner/internal/db"
	"docdesigner/internal/models"
)

// Storage backends for the template library.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// ErrInvalidConfig is returned for values no component can work with.
var ErrInvalidConfig = errors.New("invalid_config")

// Config is the complete server configuration.
type Config struct {
	Addr         string    `yaml:"addr"`
	Storage      string    `yaml:"storage"`
	TemplateDir  string    `yaml:"templateDir"`
	HistoryLimit int       `yaml:"historyLimit"`
	Log          LogConfig `yaml:"log"`
	Database     db.Config `yaml:"database"`
}

// LogConfig selects logrus level and formatter.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:         ":8080",
		Storage:      StorageFile,
		TemplateDir:  "data/templates",
		HistoryLimit: models.DefaultHistoryLimit,
		Log:          LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path when it exists and then applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return Config{}, err
		}
	}
	return applyEnv(cfg)
}

func applyEnv(cfg Config) (Config, error) {
	cfg.Addr = getenv("DESIGNER_ADDR", cfg.Addr)
	cfg.Storage = strings.ToLower(getenv("DESIGNER_STORAGE", cfg.Storage))
	cfg.TemplateDir = getenv("DESIGNER_TEMPLATE_DIR", cfg.TemplateDir)
	cfg.Log.Level = getenv("DESIGNER_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(getenv("DESIGNER_LOG_FORMAT", cfg.Log.Format))
	if raw := os.Getenv("DESIGNER_HISTORY_LIMIT"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: DESIGNER_HISTORY_LIMIT %q", ErrInvalidConfig, raw)
		}
		cfg.HistoryLimit = limit
	}
	cfg.Database = db.ConfigFromEnv(cfg.Database)

	if cfg.HistoryLimit < 0 {
		return Config{}, fmt.Errorf("%w: negative history limit", ErrInvalidConfig)
	}
	switch cfg.Storage {
	case StorageFile, StoragePostgres:
	default:
		return Config{}, fmt.Errorf("%w: storage %q", ErrInvalidConfig, cfg.Storage)
	}
	return cfg, nil
}

// NewLogger builds the logger described by cfg. Unknown levels fall back to info.
func NewLogger(cfg LogConfig, out io.Writer) *logrus.Logger {
	log := logrus.New()
	if out != nil {
		log.SetOutput(out)
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
