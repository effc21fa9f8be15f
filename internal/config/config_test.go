package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSecretsComplete(t *testing.T) {
	t.Setenv(EnvPracticumToken, "p-token")
	t.Setenv(EnvTelegramToken, "t-token")
	t.Setenv(EnvTelegramChatID, "123456")

	s, err := LoadSecrets()
	if err != nil {
		t.Fatalf("LoadSecrets: %v", err)
	}
	if s.PracticumToken != "p-token" || s.TelegramToken != "t-token" || s.ChatID != 123456 {
		t.Fatalf("unexpected secrets: %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadSecretsMissing(t *testing.T) {
	t.Setenv(EnvPracticumToken, "p-token")
	t.Setenv(EnvTelegramToken, "")
	t.Setenv(EnvTelegramChatID, "123456")

	_, err := LoadSecrets()
	if !errors.Is(err, ErrMissingSecrets) {
		t.Fatalf("err = %v, want ErrMissingSecrets", err)
	}
}

func TestLoadSecretsBadChatID(t *testing.T) {
	t.Setenv(EnvPracticumToken, "p-token")
	t.Setenv(EnvTelegramToken, "t-token")
	t.Setenv(EnvTelegramChatID, "not-a-number")

	if _, err := LoadSecrets(); err == nil {
		t.Fatal("expected error for non-numeric chat id")
	}
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestManagerParseJSON(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{
		"practicum": {"timeout": "5s"},
		"telegram": {},
		"watcher": {"schedule": "1m"},
		"logging": {"level": "debug", "console": true, "file": {"enabled": false, "path": ""}}
	}`)

	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Watcher.Schedule != "1m" {
		t.Fatalf("Schedule = %q", cfg.Watcher.Schedule)
	}
	if cfg.Practicum.Endpoint != DefaultEndpoint {
		t.Fatalf("Endpoint not defaulted: %q", cfg.Practicum.Endpoint)
	}
}

func TestManagerParseYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.yaml", `
practicum:
  timeout: 3s
telegram: {}
watcher:
  schedule: "*/10 * * * *"
logging:
  level: info
  console: true
  file:
    enabled: true
    path: ./bot.log
`)

	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Watcher.Schedule != "*/10 * * * *" {
		t.Fatalf("Schedule = %q", cfg.Watcher.Schedule)
	}
	if !cfg.Logging.File.Enabled {
		t.Fatal("file logging not enabled")
	}
}

func TestManagerRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{"practicum": {"tokenn": "oops"}}`)

	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestDurationFields(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Practicum.Timeout = ""
	if d, err := cfg.PracticumTimeout(); err != nil || d != 10*time.Second {
		t.Fatalf("empty timeout: got (%v, %v)", d, err)
	}
	cfg.Practicum.Timeout = "3s"
	if d, err := cfg.PracticumTimeout(); err != nil || d != 3*time.Second {
		t.Fatalf("timeout 3s: got (%v, %v)", d, err)
	}
	cfg.Practicum.Timeout = "-3s"
	if _, err := cfg.PracticumTimeout(); err == nil {
		t.Fatal("expected error for negative duration")
	}

	var st *StorageConfig
	if d, err := st.SQLiteBusyTimeout(); err != nil || d != 0 {
		t.Fatalf("nil storage: got (%v, %v)", d, err)
	}
	st = &StorageConfig{BusyTimeout: "250ms"}
	if d, err := st.SQLiteBusyTimeout(); err != nil || d != 250*time.Millisecond {
		t.Fatalf("busy timeout: got (%v, %v)", d, err)
	}
}
