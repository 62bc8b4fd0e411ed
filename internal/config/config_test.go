package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("unexpected port %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("unexpected driver %q", cfg.Database.Driver)
	}
	if cfg.JWT.AccessExpire != 3*time.Hour {
		t.Fatalf("unexpected access expire %s", cfg.JWT.AccessExpire)
	}
	if cfg.JWT.CookieName != "token" {
		t.Fatalf("unexpected cookie name %q", cfg.JWT.CookieName)
	}
	if cfg.OpenAI.Model != "gpt-4o" || cfg.OpenAI.MaxTokens != 300 || cfg.OpenAI.Temperature != 0.7 {
		t.Fatalf("unexpected openai config %+v", cfg.OpenAI)
	}
	if cfg.Places.Region != "서울, 경기" || cfg.Places.Language != "ko" {
		t.Fatalf("unexpected places config %+v", cfg.Places)
	}
	if !cfg.Assistant.GeneralTasks || cfg.Assistant.RecentFoods != 5 {
		t.Fatalf("unexpected assistant config %+v", cfg.Assistant)
	}
	if cfg.Redis.Enabled {
		t.Fatalf("redis must be disabled by default")
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: 9090
  cors:
    - https://mealmood.example
database:
  driver: postgres
  dsn: host=db user=app
assistant:
  general_tasks: false
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("env must override file, got %d", cfg.Server.Port)
	}
	if len(cfg.Server.CORS) != 1 || cfg.Server.CORS[0] != "https://mealmood.example" {
		t.Fatalf("unexpected cors %v", cfg.Server.CORS)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "host=db user=app" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("unexpected api key %q", cfg.OpenAI.APIKey)
	}
	if cfg.Assistant.GeneralTasks {
		t.Fatalf("expected general tasks disabled")
	}
}
