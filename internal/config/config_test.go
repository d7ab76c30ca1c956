package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("API_PORT", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("api port = %q", cfg.APIPort)
	}
	if cfg.StorageBackend != "local" {
		t.Fatalf("storage backend = %q", cfg.StorageBackend)
	}
	if cfg.TokenTTLMinutes != 60 {
		t.Fatalf("token ttl = %d", cfg.TokenTTLMinutes)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing jwt secret")
	}
}

func TestEnvOverridesYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	body := "api_port: \"9999\"\nrate_limit_rps: 5\njwt_secret: from-file\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "7070")
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "7070" {
		t.Fatalf("env should win over file, got %q", cfg.APIPort)
	}
	if cfg.RateLimitRPS != 5 {
		t.Fatalf("file value should apply, got %v", cfg.RateLimitRPS)
	}
	if cfg.JWTSecret != "from-file" {
		t.Fatalf("jwt secret = %q", cfg.JWTSecret)
	}
}

func TestValidateRejectsUnknownStorageBackend(t *testing.T) {
	cfg := defaults()
	cfg.JWTSecret = "x"
	cfg.StorageBackend = "tape"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
