package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Storage != StorageFile || cfg.HistoryLimit != 100 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Database.Name != "docdesigner" {
		t.Fatalf("expected default database name, got %q", cfg.Database.Name)
	}
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "designer.yaml")
	body := `
addr: ":9000"
storage: postgres
historyLimit: 20
log:
  level: debug
  format: json
database:
  host: pg.local
  name: layouts
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DESIGNER_ADDR", ":9100")
	t.Setenv("DB_PORT", "6000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9100" {
		t.Fatalf("env should override addr, got %q", cfg.Addr)
	}
	if cfg.Storage != StoragePostgres || cfg.HistoryLimit != 20 || cfg.Log.Format != "json" {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.Database.Host != "pg.local" || cfg.Database.Name != "layouts" || cfg.Database.Port != "6000" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DESIGNER_HISTORY_LIMIT", "lots")
	if _, err := Load(""); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config for history limit, got %v", err)
	}
	t.Setenv("DESIGNER_HISTORY_LIMIT", "0")
	t.Setenv("DESIGNER_STORAGE", "s3")
	if _, err := Load(""); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config for storage, got %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	if log.GetLevel() != logrus.WarnLevel {
		t.Fatalf("expected warn level, got %v", log.GetLevel())
	}
	log.Info("hidden")
	log.WithField("template", "tpl-1").Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"template":"tpl-1"`) {
		t.Fatalf("unexpected log output %q", out)
	}
	if NewLogger(LogConfig{Level: "chatty"}, nil).GetLevel() != logrus.InfoLevel {
		t.Fatalf("unknown level should fall back to info")
	}
}
