package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeINI(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.ini")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write ini: %v", err)
	}
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.StoreBackend != "sqlite" {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, "sqlite")
	}
	if cfg.SQLitePath != "library.db" {
		t.Errorf("SQLitePath = %q, want %q", cfg.SQLitePath, "library.db")
	}
	if cfg.RedisPrefix != "library:" {
		t.Errorf("RedisPrefix = %q, want %q", cfg.RedisPrefix, "library:")
	}
	if cfg.LogLevel != "warn" || cfg.LogFormat != "text" {
		t.Errorf("log = %s/%s, want warn/text", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_FileValues(t *testing.T) {
	path := writeINI(t, `
[store]
backend = redis

[redis]
addr = cache:6380
db = 2
prefix = lib-test:

[log]
level = debug
format = json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.StoreBackend != "redis" {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, "redis")
	}
	if cfg.RedisAddr != "cache:6380" {
		t.Errorf("RedisAddr = %q, want %q", cfg.RedisAddr, "cache:6380")
	}
	if cfg.RedisDB != 2 {
		t.Errorf("RedisDB = %d, want 2", cfg.RedisDB)
	}
	if cfg.RedisPrefix != "lib-test:" {
		t.Errorf("RedisPrefix = %q, want %q", cfg.RedisPrefix, "lib-test:")
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("log = %s/%s, want debug/json", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.SQLitePath != "library.db" {
		t.Errorf("SQLitePath = %q, keys missing from the file keep their defaults", cfg.SQLitePath)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeINI(t, "[store]\nbackend = redis\nsqlite_path = from-file.db\n")
	t.Setenv("LIBRARY_STORE", "SQLite")
	t.Setenv("LIBRARY_REDIS_DB", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.StoreBackend != "sqlite" {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, "sqlite")
	}
	if cfg.SQLitePath != "from-file.db" {
		t.Errorf("SQLitePath = %q, want %q", cfg.SQLitePath, "from-file.db")
	}
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, an unparsable value keeps the previous one", cfg.RedisDB)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "backend", env: map[string]string{"LIBRARY_STORE": "etcd"}},
		{name: "level", env: map[string]string{"LIBRARY_LOG_LEVEL": "loud"}},
		{name: "format", env: map[string]string{"LIBRARY_LOG_FORMAT": "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.ini")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
