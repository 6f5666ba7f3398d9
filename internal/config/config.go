package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                 string
	AllowedOrigins       []string
	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	RedisURL             string
	RedisPassword        string
	FrontendURL          string
	JWTSecret            string
	ScoreTokenTTL        time.Duration
	GridCols             int
	GridRows             int
	StartingLives        int
	HighScoreLimit       int
	SessionIdleTimeout   time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	port := GetEnv("PORT", "8080")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOrigins := []string{frontendURL}
	if extras := GetEnv("ALLOWED_ORIGINS", ""); extras != "" {
		for _, origin := range strings.Split(extras, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	// Append simple_protocol for PgBouncer compatibility (pgx driver)
	dbURL := GetEnv("DATABASE_URL", "")
	if dbURL != "" {
		if u, err := url.Parse(dbURL); err == nil {
			q := u.Query()
			if q.Get("default_query_exec_mode") == "" {
				q.Set("default_query_exec_mode", "simple_protocol")
				u.RawQuery = q.Encode()
				dbURL = u.String()
			}
		}
	}

	AppConfig = &Config{
		Port:                 port,
		AllowedOrigins:       allowedOrigins,
		DatabaseURL:          dbURL,
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),
		RedisURL:             GetEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:        GetEnv("REDIS_PASSWORD", ""),
		FrontendURL:          frontendURL,
		JWTSecret:            GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		ScoreTokenTTL:        time.Duration(GetEnvAsInt("SCORE_TOKEN_TTL_MINUTES", 30)) * time.Minute,
		GridCols:             GetEnvAsInt("GRID_COLS", 5),
		GridRows:             GetEnvAsInt("GRID_ROWS", 5),
		StartingLives:        startingLives(),
		HighScoreLimit:       GetEnvAsInt("HIGH_SCORE_LIMIT", 10),
		SessionIdleTimeout:   time.Duration(GetEnvAsInt("SESSION_IDLE_HOURS", 24)) * time.Hour,
	}

	return AppConfig
}

// a session treats zero lives as unset, so the smallest playable value is 1
func startingLives() int {
	lives := GetEnvAsInt("STARTING_LIVES", 3)
	if lives < 1 {
		log.Printf("STARTING_LIVES must be at least 1, got %d, using default: 3", lives)
		return 3
	}
	return lives
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
