package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
policy:
  path: /etc/veritor/policies
  watch: true
audit:
  enabled: true
  backend: sqlite
  sqlite_path: /var/lib/veritor/audit.db
  retention_days: 30
  prune_schedule: "0 3 * * *"
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Policy.Path != "/etc/veritor/policies" {
		t.Errorf("Policy.Path = %q", cfg.Policy.Path)
	}
	if !cfg.Policy.Watch {
		t.Error("Policy.Watch = false, want true")
	}
	if cfg.Audit.RetentionDays != 30 {
		t.Errorf("Audit.RetentionDays = %d", cfg.Audit.RetentionDays)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q", cfg.Logging.Format)
	}
	// Untouched fields keep their defaults.
	if cfg.Audit.BufferSize != 1024 {
		t.Errorf("Audit.BufferSize = %d, want default 1024", cfg.Audit.BufferSize)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("VERITOR_POLICY_PATH", "/env/policies")
	t.Setenv("VERITOR_AUDIT_ENABLED", "true")
	t.Setenv("VERITOR_AUDIT_RETENTION_DAYS", "7")
	t.Setenv("VERITOR_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Policy.Path != "/env/policies" {
		t.Errorf("Policy.Path = %q", cfg.Policy.Path)
	}
	if !cfg.Audit.Enabled {
		t.Error("Audit.Enabled = false, want true")
	}
	if cfg.Audit.RetentionDays != 7 {
		t.Errorf("Audit.RetentionDays = %d", cfg.Audit.RetentionDays)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() missing file expected error, got nil")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "bad store backend",
			mutate: func(c *Config) { c.Store.Backend = "postgres" },
			want:   "store.backend",
		},
		{
			name: "sqlite store without path",
			mutate: func(c *Config) {
				c.Store.Backend = "sqlite"
				c.Store.SQLitePath = ""
			},
			want: "store.sqlite_path",
		},
		{
			name:   "bad audit backend",
			mutate: func(c *Config) { c.Audit.Backend = "s3" },
			want:   "audit.backend",
		},
		{
			name:   "negative retention",
			mutate: func(c *Config) { c.Audit.RetentionDays = -1 },
			want:   "retention_days",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
			want:   "logging.level",
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Logging.Format = "xml" },
			want:   "logging.format",
		},
		{
			name:   "zero max file size",
			mutate: func(c *Config) { c.Policy.MaxFileSize = 0 },
			want:   "max_file_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
