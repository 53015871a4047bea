// Package config loads bookdash runtime configuration.
//
// # Overview
//
// Configuration is layered. Each layer overrides the one before it:
//
//  1. Built-in defaults (Default)
//  2. TOML file, ~/.config/bookdash/config.toml unless a path is given
//  3. A .env file in the working directory (godotenv), which only fills
//     variables not already set in the process environment
//  4. BOOKDASH_* environment variables (caarlos0/env)
//
// A missing TOML or .env file is not an error.
//
// # Fields
//
//	api_url        BOOKDASH_API_URL        required
//	retry_limit    BOOKDASH_RETRY_LIMIT    3 total attempts
//	poll_interval  BOOKDASH_POLL_INTERVAL  30s
//	cache_ttl      BOOKDASH_CACHE_TTL      25s, 0 disables caching
//	redis_url      BOOKDASH_REDIS_URL      empty uses an in-process cache
//	rate_limit     BOOKDASH_RATE_LIMIT     requests per second, 0 is unlimited
//	metrics_addr   BOOKDASH_METRICS_ADDR   127.0.0.1:9464, empty disables
//	otlp_endpoint  BOOKDASH_OTLP_ENDPOINT  empty disables trace export
//	log_path       BOOKDASH_LOG_PATH       ~/.local/state/bookdash/bookdash.log
//	log_level      BOOKDASH_LOG_LEVEL      info
//
// Durations in the TOML file are Go duration strings ("30s", "1m").
//
// # Error Handling
//
// Load returns ErrMissingAPIURL when no API URL is configured; the
// dashboard cannot start without one. Parse failures in the file or the
// environment are returned wrapped.
package config
