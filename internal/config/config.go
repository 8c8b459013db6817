// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Config holds every runtime knob of the server. Values come from the
// environment (a .env file is loaded by godotenv/autoload in cmd/server).
type Config struct {
	Port           string
	LogLevel       logrus.Level
	LogFormat      string
	AllowedOrigins []string

	RedisAddr      string
	RedisDB        int
	HistorianQueue string

	// RoundEndDelay is the pause between a round ending and the next phase.
	RoundEndDelay time.Duration
	MaxRounds     int
	MaxDrawTime   int

	ChatRate  rate.Limit
	ChatBurst int
	DrawRate  rate.Limit
	DrawBurst int

	// SendQueueSize bounds each session's outbound queue.
	SendQueueSize int
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	return Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       level,
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		HistorianQueue: getEnv("HISTORIAN_QUEUE_NAME", "sketch_rounds"),

		RoundEndDelay: getEnvDuration("ROUND_END_DELAY", 5*time.Second),
		MaxRounds:     getEnvInt("MAX_ROUNDS", 20),
		MaxDrawTime:   getEnvInt("MAX_DRAW_TIME", 300),

		ChatRate:  rate.Limit(getEnvFloat("CHAT_RATE", 5)),
		ChatBurst: getEnvInt("CHAT_BURST", 10),
		DrawRate:  rate.Limit(getEnvFloat("DRAW_RATE", 120)),
		DrawBurst: getEnvInt("DRAW_BURST", 240),

		SendQueueSize: getEnvInt("SEND_QUEUE_SIZE", 256),
	}
}

// NewLogger builds the process logger from the configured level and format.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// getEnvDuration accepts Go duration strings ("5s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
