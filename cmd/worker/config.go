package main

import (
	"log"
	"os"
)

// Config holds all configuration for the worker.
type Config struct {
	RedisAddr string
	SMTPHost  string
	SMTPPort  string
}

// loadConfig loads configuration from environment variables.
func loadConfig() *Config {
	cfg := &Config{
		RedisAddr: envOrDefault("REDIS_HOST", "localhost:6379"),
		SMTPHost:  envOrDefault("SMTP_HOST", "localhost"),
		SMTPPort:  envOrDefault("SMTP_PORT", "1025"),
	}

	log.Printf("[Config] Redis: %s, SMTP: %s:%s", cfg.RedisAddr, cfg.SMTPHost, cfg.SMTPPort)

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
