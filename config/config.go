package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	TelegramToken     string
	HTTPAddr          string
	InferenceURL      string
	InferenceTimeout  time.Duration
	ComplianceMapPath string
	MinConfidence     float64
	MaxImageBytes     int
	LogLevel          string
	LogFormat         string
	OllamaURL         string
	OllamaModel       string
	SentryDSN         string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		InferenceURL:      getEnv("INFERENCE_URL", "http://localhost:5000/predict"),
		ComplianceMapPath: os.Getenv("COMPLIANCE_MAP_PATH"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		OllamaURL:         os.Getenv("OLLAMA_URL"),
		OllamaModel:       os.Getenv("OLLAMA_MODEL"),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
	}

	var err error
	if cfg.InferenceTimeout, err = time.ParseDuration(getEnv("INFERENCE_TIMEOUT", "60s")); err != nil {
		return nil, fmt.Errorf("INFERENCE_TIMEOUT: %w", err)
	}
	if cfg.MinConfidence, err = strconv.ParseFloat(getEnv("MIN_CONFIDENCE", "0"), 64); err != nil {
		return nil, fmt.Errorf("MIN_CONFIDENCE: %w", err)
	}
	if cfg.MaxImageBytes, err = strconv.Atoi(getEnv("MAX_IMAGE_BYTES", strconv.Itoa(20<<20))); err != nil {
		return nil, fmt.Errorf("MAX_IMAGE_BYTES: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.TelegramToken == "" && c.HTTPAddr == "" {
		return errors.New("nothing to run: set TELEGRAM_TOKEN and/or HTTP_ADDR")
	}
	if c.InferenceURL == "" {
		return errors.New("INFERENCE_URL is required")
	}
	if c.InferenceTimeout <= 0 {
		return errors.New("INFERENCE_TIMEOUT must be positive")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return errors.New("MIN_CONFIDENCE must be between 0 and 1")
	}
	if c.MaxImageBytes <= 0 {
		return errors.New("MAX_IMAGE_BYTES must be positive")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// SetupLogging настраивает logrus по конфигу
func (c *Config) SetupLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if strings.ToLower(c.LogFormat) == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}
