package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Username string

	StockfishPath  string
	StockfishDepth int
	EngineCount    int

	// Tier thresholds in centipawns of loss from the mover's perspective.
	BlunderCP    float64
	MistakeCP    float64
	InaccuracyCP float64

	OpeningBookPlies int
	BatchTimeout     time.Duration
	AbortOnEvalError bool

	DeliveryChannel   string // "telegram", "email" or "none"
	TelegramToken     string
	TelegramChatID    string
	TelegramMarkdown  bool
	AWSRegion         string
	EmailFrom         string
	EmailFromName     string
	EmailTo           string

	ChessComRPS float64

	DBPath      string
	Addr        string
	LogLevel    string
	RunInterval time.Duration
	WorkerCount int
	QueueSize   int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Username: envOr("CHESSCOM_USERNAME", ""),

		StockfishPath:  envOr("STOCKFISH_PATH", "stockfish"),
		StockfishDepth: envIntOr("STOCKFISH_DEPTH", 12),
		EngineCount:    envIntOr("ENGINE_COUNT", 2),

		BlunderCP:    envFloatOr("BLUNDER_CP", 300),
		MistakeCP:    envFloatOr("MISTAKE_CP", 100),
		InaccuracyCP: envFloatOr("INACCURACY_CP", 50),

		OpeningBookPlies: envIntOr("OPENING_BOOK_PLIES", 12),
		BatchTimeout:     envDurationOr("BATCH_TIMEOUT", 30*time.Minute),
		AbortOnEvalError: envBoolOr("ABORT_ON_EVAL_ERROR", false),

		DeliveryChannel:  envOr("DELIVERY_CHANNEL", "none"),
		TelegramToken:    envOr("TELEGRAM_TOKEN", ""),
		TelegramChatID:   envOr("TELEGRAM_CHAT_ID", ""),
		TelegramMarkdown: envBoolOr("TELEGRAM_MARKDOWN", false),
		AWSRegion:        envOr("AWS_REGION", "us-east-1"),
		EmailFrom:        envOr("EMAIL_FROM", ""),
		EmailFromName:    envOr("EMAIL_FROM_NAME", "Chess Analyser"),
		EmailTo:          envOr("EMAIL_TO", ""),

		ChessComRPS: envFloatOr("CHESSCOM_RPS", 2),

		DBPath:      envOr("DB_PATH", "file:analyser.db"),
		Addr:        envOr("ADDR", ":8080"),
		LogLevel:    envOr("LOG_LEVEL", "INFO"),
		RunInterval: envDurationOr("RUN_INTERVAL", 0),
		WorkerCount: envIntOr("WORKER_COUNT", 1),
		QueueSize:   envIntOr("QUEUE_SIZE", 16),
	}
}

// Validate checks that the loaded configuration is usable.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.StockfishDepth < 1 || c.StockfishDepth > 30 {
		return fmt.Errorf("STOCKFISH_DEPTH must be between 1 and 30, got %d", c.StockfishDepth)
	}
	if c.EngineCount < 1 {
		return fmt.Errorf("ENGINE_COUNT must be at least 1, got %d", c.EngineCount)
	}
	if c.InaccuracyCP <= 0 {
		return fmt.Errorf("INACCURACY_CP must be positive, got %g", c.InaccuracyCP)
	}
	if c.MistakeCP < c.InaccuracyCP || c.BlunderCP < c.MistakeCP {
		return fmt.Errorf("tier thresholds must be ordered: BLUNDER_CP >= MISTAKE_CP >= INACCURACY_CP")
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1, got %d", c.WorkerCount)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be at least 1, got %d", c.QueueSize)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
