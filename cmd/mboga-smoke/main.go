// README: Smoke runner for a live API instance; drives checks and prints results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	runner := NewRunner(cfg)
	results := runner.RunAll(ctx)

	fmt.Println("\n== Summary ==")
	pass, fail, skipped := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case "PASS":
			pass++
		case "FAIL":
			fail++
		case "SKIP":
			skipped++
		}
	}
	fmt.Printf("PASS=%d FAIL=%d SKIP=%d\n", pass, fail, skipped)

	if fail > 0 {
		os.Exit(1)
	}
}

type Config struct {
	BaseURL   string
	JWTSecret string
	DSN       string
	RedisAddr string
	Timeout   time.Duration
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", envOrDefault("MBOGA_SMOKE_BASE_URL", "http://localhost:4000"), "API base URL")
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", envOrDefault("MBOGA_JWT_SECRET", "dev-mboga-secret-change-me"), "JWT signing secret, must match the server")
	flag.StringVar(&cfg.DSN, "dsn", os.Getenv("MBOGA_DB_DSN"), "Postgres DSN (optional; empty skips DB checks)")
	flag.StringVar(&cfg.RedisAddr, "redis", os.Getenv("MBOGA_REDIS_ADDR"), "Redis address (optional; empty skips Redis checks)")
	flag.DurationVar(&cfg.Timeout, "timeout", envOrDefaultDuration("MBOGA_SMOKE_TIMEOUT", 60*time.Second), "Total timeout")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
