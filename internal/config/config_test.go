package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Chat.PageSize != 20 {
		t.Errorf("expected default page size 20, got %d", cfg.Chat.PageSize)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "zero max connections",
			mutate: func(c *Config) { c.Database.MaxConnections = 0 },
			want:   "max_connections",
		},
		{
			name:   "zero page size",
			mutate: func(c *Config) { c.Chat.PageSize = 0 },
			want:   "page_size",
		},
		{
			name:   "zero subscribe buffer",
			mutate: func(c *Config) { c.Chat.SubscribeBuffer = 0 },
			want:   "subscribe_buffer",
		},
		{
			name:   "bogus log level",
			mutate: func(c *Config) { c.Logging.Level = "loud" },
			want:   "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestDatabasePathFallsBackToDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Global.DataDir = "/var/lib/fieldhand"
	cfg.Database.Path = ""

	if got := cfg.DatabasePath(); got != "/var/lib/fieldhand/fieldhand.db" {
		t.Errorf("unexpected database path %q", got)
	}

	cfg.Database.Path = "/tmp/other.db"
	if got := cfg.DatabasePath(); got != "/tmp/other.db" {
		t.Errorf("explicit path should win, got %q", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: debug
chat:
  page_size: 50
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %q", cfg.Logging.Level)
	}
	if cfg.Chat.PageSize != 50 {
		t.Errorf("expected page size 50, got %d", cfg.Chat.PageSize)
	}
	// Untouched keys keep their defaults.
	if cfg.Chat.SubscribeBuffer != 64 {
		t.Errorf("expected default subscribe buffer, got %d", cfg.Chat.SubscribeBuffer)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("explicitly specified missing config file should error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FIELDHAND_LOGGING_LEVEL", "warn")
	t.Setenv("FIELDHAND_CHAT_PAGE_SIZE", "25")

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level warn from env, got %q", cfg.Logging.Level)
	}
	if cfg.Chat.PageSize != 25 {
		t.Errorf("expected page size 25 from env, got %d", cfg.Chat.PageSize)
	}
}
