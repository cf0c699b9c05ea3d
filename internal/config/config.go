// Package config reads server settings from the environment, after loading
// an optional .env file.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const devSecret = "quiztutor-dev-secret"

// Config holds the server settings.
type Config struct {
	HTTPAddr string

	DBDriver string // sqlite|postgres
	DBDSN    string

	AuthSecret  string
	CORSOrigins []string

	RabbitMQURI      string
	RabbitMQExchange string

	// ReviewEvery is the phase review cadence in answers.
	ReviewEvery int
}

// Load reads .env files (missing files are ignored) into the process
// environment without overriding variables already set.
func Load(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("config: load .env: %v", err)
		}
	}
}

// FromEnv builds a Config from QUIZTUTOR_* variables.
func FromEnv() Config {
	cfg := Config{
		HTTPAddr:         envOr("QUIZTUTOR_HTTP_ADDR", ":8000"),
		DBDriver:         envOr("QUIZTUTOR_DB_DRIVER", "sqlite"),
		DBDSN:            os.Getenv("QUIZTUTOR_DB_DSN"),
		AuthSecret:       envOr("QUIZTUTOR_AUTH_SECRET", devSecret),
		CORSOrigins:      csvOr("QUIZTUTOR_CORS_ORIGINS", "*"),
		RabbitMQURI:      os.Getenv("QUIZTUTOR_RABBITMQ_URI"),
		RabbitMQExchange: envOr("QUIZTUTOR_RABBITMQ_EXCHANGE", "quiztutor.events"),
		ReviewEvery:      envInt("QUIZTUTOR_REVIEW_EVERY", 5),
	}
	if cfg.AuthSecret == devSecret {
		log.Println("config: QUIZTUTOR_AUTH_SECRET is not set, using the development secret")
	}
	return cfg
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("config: invalid %s=%q, using %d", k, v, def)
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
