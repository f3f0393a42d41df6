package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"platter/internal/config"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatalf("expected missing config, got exists=true for %s", resolved)
	}
	if cfg.Library.DefaultOwner != "ME" {
		t.Fatalf("default owner = %q, want ME", cfg.Library.DefaultOwner)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("default format = %q, want console", cfg.Logging.Format)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
api_bind = "  127.0.0.1:9999  "

[library]
default_owner = "bil"

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Paths.APIBind != "127.0.0.1:9999" {
		t.Fatalf("api_bind = %q, want trimmed value", cfg.Paths.APIBind)
	}
	if cfg.Library.DefaultOwner != "BIL" {
		t.Fatalf("default_owner = %q, want BIL", cfg.Library.DefaultOwner)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("data_dir not absolute: %s", cfg.Paths.DataDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mangle func(*config.Config)
		want   string
	}{
		{
			name:   "bad owner",
			mangle: func(c *config.Config) { c.Library.DefaultOwner = "SOMEONE" },
			want:   "default_owner",
		},
		{
			name:   "bad format",
			mangle: func(c *config.Config) { c.Logging.Format = "yaml" },
			want:   "logging.format",
		},
		{
			name:   "bad level",
			mangle: func(c *config.Config) { c.Logging.Level = "loud" },
			want:   "logging.level",
		},
		{
			name:   "empty data dir",
			mangle: func(c *config.Config) { c.Paths.DataDir = "" },
			want:   "data_dir",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.DataDir = t.TempDir()
			tc.mangle(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample failed: %v", err)
	}
	if !exists {
		t.Fatal("sample config not found after CreateSample")
	}
	if cfg.Paths.APIBind == "" {
		t.Fatal("sample config should set api_bind")
	}
}

func TestDatabasePathUnderDataDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = "/tmp/platter-test"
	if got := cfg.DatabasePath(); got != filepath.Join("/tmp/platter-test", "catalog.db") {
		t.Fatalf("DatabasePath = %q", got)
	}
	if got := cfg.LockPath(); got != filepath.Join("/tmp/platter-test", "platterd.lock") {
		t.Fatalf("LockPath = %q", got)
	}
}
