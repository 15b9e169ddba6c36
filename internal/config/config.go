package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sessions live this long unless SESSION_TTL_DAYS overrides it.
const defaultSessionTTLDays = 15

type Config struct {
	Env            string
	Port           int
	DBURL          string
	JWTSecret      string
	SessionTTL     time.Duration
	AllowedOrigins []string
	MaxBodyBytes   int64

	// Requests per minute per IP on /signup and /login; 0 disables the
	// limiter entirely.
	AuthRateLimit int

	// Optional bootstrap account created at startup when all three are set.
	SeedEmail    string
	SeedUsername string
	SeedPassword string
}

func Load() (Config, error) {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)
	dbURL := buildDBURL()

	secret := os.Getenv("JWT_SECRET")

	if secret == "" {
		// A server without a signing key cannot mint or validate a session;
		// refuse to start rather than fail every request.
		return Config{}, errors.New("JWT_SECRET is not set")
	}

	ttlDays := getEnvInt("SESSION_TTL_DAYS", defaultSessionTTLDays)

	origins := splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"))

	return Config{
		Env:            env,
		Port:           port,
		DBURL:          dbURL,
		JWTSecret:      secret,
		SessionTTL:     time.Duration(ttlDays) * 24 * time.Hour,
		AllowedOrigins: origins,
		MaxBodyBytes:   int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 0),
		SeedEmail:      os.Getenv("SEED_EMAIL"),
		SeedUsername:   os.Getenv("SEED_USERNAME"),
		SeedPassword:   os.Getenv("SEED_PASSWORD"),
	}, nil
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "speakwise")
	pass := getEnv("DB_PASSWORD", "speakwise")
	name := getEnv("DB_NAME", "speakwise")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
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
