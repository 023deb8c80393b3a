package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"clicker_backend/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort          string
	DatabaseURL      string
	BotToken         string
	JWTSecret        string
	PaymentSecret    string // shared secret for the bot payment callback
	AdminTelegramIDs []int64 // добавить в env tg id админов ЧЕРЕЗ ЗАПЯТУЮ

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Daily reset boundary timezone (fixed reference for "local midnight")
	ResetTimezone *time.Location

	// Background workers
	BattleSweepInterval time.Duration
	OutboxPollInterval  time.Duration

	// Rate limits
	APIRateLimit  int
	APIRateWindow time.Duration
	TapRateLimit  int
	TapRateWindow time.Duration
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	paymentSecret := os.Getenv("PAYMENT_SECRET")
	if paymentSecret == "" {
		// бот знает собственный токен, используем его как общий секрет
		paymentSecret = botToken
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	var adminIDs []int64
	if s := os.Getenv("ADMIN_TELEGRAM_IDS"); s != "" {
		for _, idStr := range strings.Split(s, ",") {
			idStr = strings.TrimSpace(idStr)
			if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
	}

	tz := os.Getenv("RESET_TIMEZONE")
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logger.Fatal("invalid RESET_TIMEZONE", "tz", tz, "error", err)
	}

	return &Config{
		AppPort:          port,
		DatabaseURL:      dbURL,
		BotToken:         botToken,
		JWTSecret:        jwtSecret,
		PaymentSecret:    paymentSecret,
		AdminTelegramIDs: adminIDs,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		ResetTimezone: loc,

		BattleSweepInterval: envDuration("BATTLE_SWEEP_SECONDS", 60*time.Second),
		OutboxPollInterval:  envDuration("OUTBOX_POLL_SECONDS", 5*time.Second),

		APIRateLimit:  envInt("API_RATE_LIMIT", 60),
		APIRateWindow: envDuration("API_RATE_WINDOW_SECONDS", time.Minute),
		TapRateLimit:  envInt("TAP_RATE_LIMIT", 120),
		TapRateWindow: envDuration("TAP_RATE_WINDOW_SECONDS", time.Minute),
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
