package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_MAX_OPEN_CONNS", "")
	t.Setenv("CATALOG_CACHE_TTL", "")

	cfg, missing := Load("does-not-exist.env")
	if len(missing) != 1 {
		t.Errorf("missing = %v, want one entry", missing)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q", cfg.DBHost)
	}
	if cfg.DBMaxOpenConns != 25 {
		t.Errorf("DBMaxOpenConns = %d", cfg.DBMaxOpenConns)
	}
	if cfg.CatalogCacheTTL != 5*time.Minute {
		t.Errorf("CatalogCacheTTL = %v", cfg.CatalogCacheTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_OPEN_CONNS", "40")
	t.Setenv("API_RATE_LIMIT_RPS", "12.5")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("APP_ENV", "production")

	cfg, _ := Load("does-not-exist.env")
	if cfg.DBHost != "db.internal" || cfg.DBMaxOpenConns != 40 {
		t.Errorf("unexpected db config: %+v", cfg)
	}
	if cfg.RateLimitRPS != 12.5 {
		t.Errorf("RateLimitRPS = %v", cfg.RateLimitRPS)
	}
	if cfg.CatalogCacheTTL != 30*time.Second {
		t.Errorf("CatalogCacheTTL = %v", cfg.CatalogCacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.IsProduction() {
		t.Error("expected production")
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBHost: "h", DBPort: "1", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	want := "host=h port=1 user=u password=p dbname=n sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN() = %q, want %q", got, want)
	}
}
