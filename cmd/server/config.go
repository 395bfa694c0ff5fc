package main

import (
	"fmt"
	"os"
	"time"

	"orderdesk/internal/infrastructure/dataloader"
	"orderdesk/internal/infrastructure/storage/postgres"
)

type config struct {
	Port        string
	LogLevel    string
	Development bool

	Pool              postgres.PoolConfig
	PoolStatsInterval time.Duration

	LoaderWait     time.Duration
	LoaderMaxBatch int
}

func loadConfig() config {
	pool := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	pool.MaxConns = int32(getEnvInt("DB_MAX_CONNS", int(pool.MaxConns)))
	pool.MinConns = int32(getEnvInt("DB_MIN_CONNS", int(pool.MinConns)))
	pool.ConnectTimeout = getEnvDuration("DB_CONNECT_TIMEOUT", pool.ConnectTimeout)
	pool.AcquireTimeout = getEnvDuration("DB_ACQUIRE_TIMEOUT", pool.AcquireTimeout)
	pool.MaxConnIdleTime = getEnvDuration("DB_IDLE_TIMEOUT", pool.MaxConnIdleTime)
	pool.MaxConnLifetime = getEnvDuration("DB_MAX_LIFETIME", pool.MaxConnLifetime)

	return config{
		Port:              getEnv("APP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Development:       getEnv("APP_ENV", "development") == "development",
		Pool:              pool,
		PoolStatsInterval: getEnvDuration("DB_STATS_INTERVAL", time.Minute),
		LoaderWait:        getEnvDuration("LOADER_WAIT", dataloader.DefaultWait),
		LoaderMaxBatch:    getEnvInt("LOADER_MAX_BATCH", 0),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
