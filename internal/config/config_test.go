package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyEnvOverridesDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("NAV_TIMEOUT", "45")
	t.Setenv("AI_TIMEOUT", "1m30s")
	t.Setenv("WORKER_CONCURRENCY", "not-a-number")
	t.Setenv("HEADER_PROFILE", "macos")

	cfg := applyEnv(defaults())

	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr: got %q", cfg.HTTPAddr)
	}
	if cfg.NavTimeout != 45*time.Second {
		t.Errorf("NavTimeout: got %v", cfg.NavTimeout)
	}
	if cfg.AITimeout != 90*time.Second {
		t.Errorf("AITimeout: got %v", cfg.AITimeout)
	}
	if cfg.WorkerConcurrency != 10 {
		t.Errorf("WorkerConcurrency should keep default on bad input, got %d", cfg.WorkerConcurrency)
	}
	if cfg.HeaderProfile != "macos" {
		t.Errorf("HeaderProfile: got %q", cfg.HeaderProfile)
	}
	if cfg.DefaultLLMModel != "gemini-2.0-flash" {
		t.Errorf("DefaultLLMModel: got %q", cfg.DefaultLLMModel)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "store_backend: postgres\ndatabase_url: postgres://u:p@db/emlak\nsettle_delay: 500ms\nacquirer_backend: static\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path, defaults())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.StoreBackend != "postgres" || cfg.DatabaseURL != "postgres://u:p@db/emlak" {
		t.Errorf("store settings not decoded: %+v", cfg)
	}
	if cfg.SettleDelay != 500*time.Millisecond {
		t.Errorf("SettleDelay: got %v", cfg.SettleDelay)
	}
	if cfg.HTTPAddr != ":8001" {
		t.Errorf("absent keys must keep defaults, got HTTPAddr=%q", cfg.HTTPAddr)
	}

	t.Setenv("ACQUIRER_BACKEND", "chromedp")
	cfg = applyEnv(cfg)
	if cfg.AcquirerBackend != "chromedp" {
		t.Errorf("env should win over file, got %q", cfg.AcquirerBackend)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing redis", func(c *Config) { c.RedisAddr = "" }, true},
		{"postgres without dsn", func(c *Config) { c.StoreBackend = "postgres" }, true},
		{"postgres with dsn", func(c *Config) { c.StoreBackend = "postgres"; c.DatabaseURL = "postgres://x" }, false},
		{"unknown store", func(c *Config) { c.StoreBackend = "mongo" }, true},
		{"unknown acquirer", func(c *Config) { c.AcquirerBackend = "selenium" }, true},
		{"macos headers", func(c *Config) { c.HeaderProfile = "macos" }, false},
		{"unknown headers", func(c *Config) { c.HeaderProfile = "linux" }, true},
		{"zero workers", func(c *Config) { c.WorkerConcurrency = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestFeatureSwitches(t *testing.T) {
	cfg := defaults()
	if cfg.AIEnabled() || cfg.ArchiveEnabled() {
		t.Fatal("defaults should disable AI and archiving")
	}
	cfg.GeminiAPIKey = "k"
	cfg.SupabaseURL = "https://x.supabase.co"
	cfg.SupabaseServiceKey = "s"
	if !cfg.AIEnabled() || !cfg.ArchiveEnabled() {
		t.Fatal("switches should turn on once configured")
	}
}
