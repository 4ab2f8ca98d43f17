package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret     string
	JWTTTLMinutes int

	AdminName     string
	AdminEmail    string
	AdminPassword string

	CORSOrigins []string

	RateLimitWindowMinutes int
	RateLimitMax           int
	AuthRateLimitMax       int
	AdminRateLimitMax      int

	OTLPEndpoint string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 7*24*60),

		AdminName:     getEnv("ADMIN_NAME", "System Administrator"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@taskmaster.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		RateLimitWindowMinutes: getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 15),
		RateLimitMax:           getEnvInt("RATE_LIMIT_MAX", 100),
		AuthRateLimitMax:       getEnvInt("AUTH_RATE_LIMIT_MAX", 5),
		AdminRateLimitMax:      getEnvInt("ADMIN_RATE_LIMIT_MAX", 30),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
	}
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMinutes) * time.Minute
}

func buildDBURL() string {
	if url := getEnv("DATABASE_URL", ""); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "taskmaster")
	pass := getEnv("DB_PASSWORD", "taskmaster")
	name := getEnv("DB_NAME", "taskmaster")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
