package config

import (
	"testing"
)

// TestLoad_Defaults verifies that Load returns sensible development defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	envVars := []string{
		"APP_HOST", "APP_PORT", "APP_ENV",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
		"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_BUCKET", "S3_PUBLIC_URL",
	}
	// envOrDefault treats empty the same as unset, so setting "" yields defaults.
	for _, key := range envVars {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host: got %q, want %q", cfg.Host, "0.0.0.0")
	}
	if cfg.Port != "8080" {
		t.Errorf("Port: got %q, want %q", cfg.Port, "8080")
	}
	if cfg.Env != "development" {
		t.Errorf("Env: got %q, want %q", cfg.Env, "development")
	}
	if cfg.DBUser != "runvault" || cfg.DBName != "runvault" {
		t.Errorf("DB defaults: got user=%q name=%q", cfg.DBUser, cfg.DBName)
	}
	if cfg.S3Region != "auto" {
		t.Errorf("S3Region: got %q, want %q", cfg.S3Region, "auto")
	}
	if !cfg.IsDev() {
		t.Error("IsDev: expected true under defaults")
	}
}

// TestLoad_ProductionGuards verifies that production mode rejects insecure
// or incomplete configuration.
func TestLoad_ProductionGuards(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("S3_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for default password in production")
	}

	t.Setenv("POSTGRES_PASSWORD", "strong-password")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing S3 endpoint in production")
	}

	t.Setenv("S3_ENDPOINT", "https://storage.example.com")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with complete production config: %v", err)
	}
	if cfg.IsDev() {
		t.Error("IsDev: expected false in production")
	}
}

func TestDSNAndAddr(t *testing.T) {
	cfg := &Config{
		Host: "127.0.0.1", Port: "9090",
		DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "vault",
	}

	wantDSN := "postgres://u:p@db:5433/vault?sslmode=disable"
	if got := cfg.DSN(); got != wantDSN {
		t.Errorf("DSN: got %q, want %q", got, wantDSN)
	}
	if got := cfg.Addr(); got != "127.0.0.1:9090" {
		t.Errorf("Addr: got %q, want %q", got, "127.0.0.1:9090")
	}
}
