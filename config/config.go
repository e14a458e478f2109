package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Feed simulation
	Symbol       string
	BasePrice    float64
	TickInterval time.Duration
	SignalEvery  int64
	RandSeed     int64 // 0 = seed from wall clock

	// Servers
	GatewayAddr string
	MetricsAddr string

	// Notification (optional)
	TelegramBotToken string
	TelegramChatID   string
	WebhookURL       string

	// Sinks (optional)
	RedisAddr     string
	RedisPassword string
	SignalDBPath  string

	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Symbol:       getEnv("FEED_SYMBOL", "SIM"),
		BasePrice:    getEnvFloat("FEED_BASE_PRICE", 100),
		TickInterval: time.Duration(getEnvInt("TICK_INTERVAL_MS", 5000)) * time.Millisecond,
		SignalEvery:  int64(getEnvInt("SIGNAL_EVERY_TICKS", 6)),
		RandSeed:     int64(getEnvInt("RAND_SEED", 0)),

		GatewayAddr: getEnv("GATEWAY_ADDR", ":8080"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		WebhookURL:       getEnv("SIGNAL_WEBHOOK_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SignalDBPath:  getEnv("SIGNAL_DB_PATH", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid int for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] invalid float for %s: %q, using %v", key, v, fallback)
		return fallback
	}
	return f
}
