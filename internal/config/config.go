package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config regroupe la configuration de l'application, lue depuis l'environnement
type Config struct {
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	ServerPort string
	AppEnv     string

	CatalogCacheTTL    time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string

	SeedListings int
	SeedDays     int
}

// Load charge la configuration; envFiles sont lus dans l'ordre (un fichier absent n'est pas une erreur)
// Retourne aussi la liste des fichiers qui n'ont pas pu être lus, pour les logs
func Load(envFiles ...string) (*Config, []string) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	var missing []string
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			missing = append(missing, f)
		}
	}

	cfg := &Config{
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "pricetrack"),
		DBPassword:        getEnv("DB_PASSWORD", "pricetrack"),
		DBName:            getEnv("DB_NAME", "pricetrack"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		AppEnv:            getEnv("APP_ENV", "development"),
		CatalogCacheTTL:   getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		RateLimitRPS:      getEnvFloat("API_RATE_LIMIT_RPS", 50),
		RateLimitBurst:    getEnvInt("API_RATE_LIMIT_BURST", 100),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS",
			"http://localhost:3000,http://localhost:5173")),
		SeedListings: getEnvInt("SEED_LISTINGS", 200),
		SeedDays:     getEnvInt("SEED_DAYS", 90),
	}
	return cfg, missing
}

// PostgresDSN construit la connection string lib/pq
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// IsProduction indique si l'application tourne en production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.AppEnv)
	return env == "prod" || env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
