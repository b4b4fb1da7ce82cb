package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	OCR      OCRConfig
	AI       AIConfig
	Extract  ExtractConfig
	Classify ClassifyConfig
}

// OCRConfig holds local OCR engine configuration.
type OCRConfig struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Lang      string // default "rus+eng"
	PSM       int    // 6 works well for uniform blocks of text
	OEM       int    // 3 = default + LSTM
	Enhance   bool   // preprocess page images before recognition
}

// AIConfig holds the remote AI vision/document service configuration.
type AIConfig struct {
	APIKey      string
	BaseURL     string // default https://api.openai.com/v1
	Model       string
	Temperature float32       // 0 for extraction
	MaxTokens   int           // large fixed output budget per round-trip
	Timeout     time.Duration // per round-trip; expiry is a recoverable stage failure
}

// ExtractConfig holds extraction policy thresholds and rendering settings.
type ExtractConfig struct {
	Pdftotext   string // if empty -> "pdftotext"
	Pdftoppm    string // if empty -> "pdftoppm"
	RenderDPI   int    // rasterization DPI for page images, default 300
	FallbackDPI int    // retry DPI when the first render fails, default 150
	MaxPages    int    // 0 = no limit
	MinTextLen  int    // below this, standard extraction is reported as failure
}

// ClassifyConfig holds the scanned-document classifier settings.
type ClassifyConfig struct {
	SampleDPI      int // first page rendered at this DPI, default 150
	SampleSize     int // longest side after downsampling, default 256
	ColorThreshold int // distinct RGB colors above this -> scanned, default 1000
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Tesseract: getEnv("TESSERACT_BIN", "tesseract"),
			Lang:      getEnv("TESSERACT_LANG", "rus+eng"),
			PSM:       getEnvAsInt("TESSERACT_PSM", 6),
			OEM:       getEnvAsInt("TESSERACT_OEM", 3),
			Enhance:   getEnvAsBool("OCR_ENHANCE", true),
		},
		AI: AIConfig{
			APIKey:      getEnv("AI_API_KEY", ""),
			BaseURL:     getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("AI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat32("AI_TEMPERATURE", 0.0),
			MaxTokens:   getEnvAsInt("AI_MAX_TOKENS", 4000),
			Timeout:     getEnvAsDuration("AI_TIMEOUT", 90*time.Second),
		},
		Extract: ExtractConfig{
			Pdftotext:   getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:    getEnv("PDFTOPPM_BIN", "pdftoppm"),
			RenderDPI:   getEnvAsInt("RENDER_DPI", 300),
			FallbackDPI: getEnvAsInt("RENDER_FALLBACK_DPI", 150),
			MaxPages:    getEnvAsInt("MAX_PAGES", 0),
			MinTextLen:  getEnvAsInt("MIN_TEXT_LEN", 10),
		},
		Classify: ClassifyConfig{
			SampleDPI:      getEnvAsInt("CLASSIFY_SAMPLE_DPI", 150),
			SampleSize:     getEnvAsInt("CLASSIFY_SAMPLE_SIZE", 256),
			ColorThreshold: getEnvAsInt("CLASSIFY_COLOR_THRESHOLD", 1000),
		},
	}
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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
