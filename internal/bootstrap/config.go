package bootstrap

import (
	"os"
	"strconv"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	DeepgramAPIKey  string
	DeepgramBaseURL string

	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	FrameThreshold     int
	ThrottleIntervalMs int
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DeepgramAPIKey:  getEnv("DEEPGRAM_API_KEY", ""),
		DeepgramBaseURL: getEnv("DEEPGRAM_BASE_URL", ""),

		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqBaseURL: getEnv("GROQ_BASE_URL", ""),
		GroqModel:   getEnv("GROQ_MODEL", ""),

		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       0,

		FrameThreshold:     getEnvInt("FRAME_THRESHOLD", 6),
		ThrottleIntervalMs: getEnvInt("THROTTLE_INTERVAL_MS", 2500),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
