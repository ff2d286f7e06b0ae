package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	// Storage
	RedisAddr string
	MySQLDSN  string // empty disables the archive

	// Uploads and OCR
	UploadDir string
	Tesseract string
	OCRLang   string
	OCRDPI    float64
	MaxPages  int

	// Embeddings
	OllamaURL  string
	EmbedModel string

	// Archive workers
	ArchiveWorkers   int
	ArchiveQueueSize int

	// Logging
	LogLevel  string
	LogFormat string
	LogOutput string
}

// Load reads configuration from the environment, with a .env file as
// fallback when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		MySQLDSN:         getEnv("MYSQL_DSN", ""),
		UploadDir:        getEnv("UPLOAD_DIR", "uploaded_pdfs"),
		Tesseract:        getEnv("TESSERACT_PATH", "tesseract"),
		OCRLang:          getEnv("OCR_LANG", "eng"),
		OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel:       getEnv("EMBED_MODEL", "all-minilm"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		LogOutput:        getEnv("LOG_OUTPUT", "stdout"),
		OCRDPI:           300,
		MaxPages:         0,
		ArchiveWorkers:   4,
		ArchiveQueueSize: 1000,
	}

	var err error
	if cfg.OCRDPI, err = getEnvFloat("OCR_DPI", cfg.OCRDPI); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = getEnvInt("OCR_MAX_PAGES", cfg.MaxPages); err != nil {
		return nil, err
	}
	if cfg.ArchiveWorkers, err = getEnvInt("ARCHIVE_WORKERS", cfg.ArchiveWorkers); err != nil {
		return nil, err
	}
	if cfg.ArchiveQueueSize, err = getEnvInt("ARCHIVE_QUEUE_SIZE", cfg.ArchiveQueueSize); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}
