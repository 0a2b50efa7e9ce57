package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
storage:
  driver: SQLite
  sqlite:
    path: /tmp/pawmatch-test.db
redis:
  addr: ""
swipes:
  per_10sec: 4
  conflict_retries: 5
http:
  read_timeout: 2s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Storage.Driver != DriverSQLite {
		t.Fatalf("expected normalized sqlite driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.SQLite.Path != "/tmp/pawmatch-test.db" {
		t.Fatalf("unexpected sqlite path: %s", cfg.Storage.SQLite.Path)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("expected redis disabled by yaml, got %q", cfg.Redis.Addr)
	}
	if cfg.Swipes.Per10Sec != 4 || cfg.Swipes.ConflictRetries != 5 {
		t.Fatalf("unexpected swipes config: %+v", cfg.Swipes)
	}
	if cfg.HTTP.ReadTimeout != 2*time.Second {
		t.Fatalf("unexpected read timeout: %s", cfg.HTTP.ReadTimeout)
	}

	if cfg.Swipes.PerMinute != 60 {
		t.Fatalf("per_minute default should stay 60, got %d", cfg.Swipes.PerMinute)
	}
	if cfg.HTTP.WriteTimeout != 10*time.Second {
		t.Fatalf("write timeout default should stay 10s, got %s", cfg.HTTP.WriteTimeout)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	def := Default()
	if cfg.Storage.Driver != DriverPostgres {
		t.Fatalf("expected postgres driver by default, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Postgres.DSN != def.Storage.Postgres.DSN {
		t.Fatalf("unexpected dsn: %s", cfg.Storage.Postgres.DSN)
	}
	if !cfg.Storage.Postgres.MigrateOnStart {
		t.Fatalf("migrate_on_start should default to true")
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected redis addr: %s", cfg.Redis.Addr)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", ":memory:")
	t.Setenv("POSTGRES_MAX_CONNS", "32")
	t.Setenv("SWIPES_PER_MINUTE", "0")
	t.Setenv("SWIPE_CONFLICT_RETRIES", "1")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("HTTP_IDLE_TIMEOUT", "1m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.StorageDriver() != DriverSQLite || cfg.Storage.SQLite.Path != ":memory:" {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
	if cfg.Storage.Postgres.MaxConns != 32 {
		t.Fatalf("unexpected max conns: %d", cfg.Storage.Postgres.MaxConns)
	}
	if cfg.Swipes.PerMinute != 0 {
		t.Fatalf("explicit zero per_minute must win over the default, got %d", cfg.Swipes.PerMinute)
	}
	if cfg.Swipes.ConflictRetries != 1 {
		t.Fatalf("unexpected conflict retries: %d", cfg.Swipes.ConflictRetries)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Fatalf("unexpected jwt secret: %s", cfg.Auth.JWTSecret)
	}
	if cfg.HTTP.IdleTimeout != time.Minute {
		t.Fatalf("unexpected idle timeout: %s", cfg.HTTP.IdleTimeout)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "mongo"}, wantErr: "unknown storage driver"},
		{name: "negative limit", env: map[string]string{"SWIPES_PER_10SEC": "-1"}, wantErr: "must not be negative"},
		{name: "zero conflict retries", env: map[string]string{"SWIPE_CONFLICT_RETRIES": "0"}, wantErr: "conflict_retries must be at least 1"},
		{name: "negative conflict retries", env: map[string]string{"SWIPE_CONFLICT_RETRIES": "-2"}, wantErr: "conflict_retries must be at least 1"},
		{name: "max conns too large", env: map[string]string{"POSTGRES_MAX_CONNS": "3000000000"}, wantErr: "max_conns must be at most 1000"},
		{name: "bad int", env: map[string]string{"REDIS_DB": "one"}, wantErr: "REDIS_DB"},
		{name: "bad duration", env: map[string]string{"HTTP_READ_TIMEOUT": "soon"}, wantErr: "HTTP_READ_TIMEOUT"},
		{name: "default secret in prod", env: map[string]string{"APP_ENV": "prod"}, wantErr: "jwt_secret"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"STORAGE_DRIVER",
		"POSTGRES_DSN",
		"POSTGRES_MAX_CONNS",
		"POSTGRES_MIGRATE_ON_START",
		"SQLITE_PATH",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"SWIPES_PER_MINUTE",
		"SWIPES_PER_10SEC",
		"SWIPE_CONFLICT_RETRIES",
	} {
		t.Setenv(key, "")
	}
}
