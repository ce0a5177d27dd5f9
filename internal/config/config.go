// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// OCR engines.
const (
	EngineCLI = "cli" // tesseract binary
	EngineAPI = "api" // libtesseract through gosseract
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	OCR      OCRConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string
	MaxUploadBytes int
	RequestTimeout time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string
}

// AuthConfig holds receipt token configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine       string
	TesseractBin string
	PdfimagesBin string
	Lang         string
	PageSegMode  int
	TessdataDir  string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			MaxUploadBytes: getEnvAsInt("MAX_UPLOAD_BYTES", 2<<20),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/receipts.db"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
		},
		OCR: OCRConfig{
			Engine:       getEnv("OCR_ENGINE", EngineCLI),
			TesseractBin: getEnv("TESSERACT_BIN", "tesseract"),
			PdfimagesBin: getEnv("PDFIMAGES_BIN", "pdfimages"),
			Lang:         getEnv("TESSERACT_LANG", "nld"),
			PageSegMode:  getEnvAsInt("TESSERACT_PSM", 6),
			TessdataDir:  getEnv("TESSDATA_PREFIX", ""),
		},
	}
}

// Validate reports configuration the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL))
	}
	if c.OCR.Engine != EngineCLI && c.OCR.Engine != EngineAPI {
		errs = append(errs, fmt.Errorf("OCR_ENGINE must be %q or %q, got %q", EngineCLI, EngineAPI, c.OCR.Engine))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.Server.MaxUploadBytes))
	}
	return errors.Join(errs...)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
