package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	t.Setenv(DotEnvVar, "")
	t.Chdir(t.TempDir())
	p := writeFile(t, ".", "config.yaml", `
telegram:
  token: "123:abc"
  admin_ids: [42, 7]
  run_mode: polling
session:
  backend: memory
  ttl: 1h
rate_limit:
  interval_ms: 500
  exclude_updates: [" Callback "]
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if len(cfg.Telegram.AdminIDs) != 2 || cfg.Telegram.AdminIDs[0] != 42 {
		t.Fatalf("admin ids = %v", cfg.Telegram.AdminIDs)
	}
	if cfg.Session.TTL != time.Hour || cfg.Session.Capacity != defaultSessionCapacity {
		t.Fatalf("session = %+v", cfg.Session)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != UpdateCallback {
		t.Fatalf("exclude = %v", cfg.RateLimit.ExcludeUpdates)
	}
}

func TestLoadTOMLWithEnvOverride(t *testing.T) {
	t.Setenv(DotEnvVar, "")
	t.Chdir(t.TempDir())
	p := writeFile(t, ".", "config.toml", `
[telegram]
token = "from-file"
admin_ids = [1]

[session]
backend = "redis"
redis_url = "redis://localhost:6379/0"
`)
	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_ADMIN_IDS", "5,6")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token = %q, env must win", cfg.Telegram.Token)
	}
	if len(cfg.Telegram.AdminIDs) != 2 || cfg.Telegram.AdminIDs[1] != 6 {
		t.Fatalf("admin ids = %v", cfg.Telegram.AdminIDs)
	}
	if cfg.Session.Backend != SessionRedis {
		t.Fatalf("backend = %q", cfg.Session.Backend)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "custom.env", "LOG_LEVEL=debug\n")
	t.Setenv(DotEnvVar, filepath.Join(dir, "custom.env"))
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	p := writeFile(t, dir, "config.yaml", "telegram:\n  token: t\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q, expected value from env file", cfg.Logging.Level)
	}
}

func TestLoadDotEnvMissingExplicitFile(t *testing.T) {
	t.Setenv(DotEnvVar, filepath.Join(t.TempDir(), "nope.env"))
	if err := LoadDotEnv(); err == nil {
		t.Fatal("expected error for missing explicit env file")
	}
}

func TestNormalizeErrors(t *testing.T) {
	cases := map[string]Config{
		"missing token":  {},
		"bad run mode":   {Telegram: TelegramConfig{Token: "t", RunMode: "push"}},
		"webhook no url": {Telegram: TelegramConfig{Token: "t", RunMode: RunModeWebhook}},
		"bad admin id":   {Telegram: TelegramConfig{Token: "t", AdminIDs: []int64{-1}}},
		"bad exclude":    {Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{ExcludeUpdates: []string{"poll"}}},
		"redis no url":   {Telegram: TelegramConfig{Token: "t"}, Session: SessionConfig{Backend: SessionRedis}},
		"bad backend":    {Telegram: TelegramConfig{Token: "t"}, Session: SessionConfig{Backend: "etcd"}},
	}
	for name, cfg := range cases {
		if err := Normalize(&cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestNormalizeRateLimitDefaultExclusions(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: "t"},
		RateLimit: RateLimitConfig{IntervalMS: 700},
	}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	got := cfg.RateLimit.ExcludeUpdates
	if len(got) != 2 || got[0] != UpdateCallback || got[1] != UpdateMedia {
		t.Fatalf("exclude = %v, want [callback media]", got)
	}

	explicit := &Config{
		Telegram:  TelegramConfig{Token: "t"},
		RateLimit: RateLimitConfig{IntervalMS: 700, ExcludeUpdates: []string{"Media"}},
	}
	if err := Normalize(explicit); err != nil {
		t.Fatalf("normalize explicit: %v", err)
	}
	if len(explicit.RateLimit.ExcludeUpdates) != 1 || explicit.RateLimit.ExcludeUpdates[0] != UpdateMedia {
		t.Fatalf("explicit exclude = %v", explicit.RateLimit.ExcludeUpdates)
	}
}
