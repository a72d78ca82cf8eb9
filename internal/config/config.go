package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"visionspeak/internal/logger"
)

type Config struct {
	// OCR Configuration
	OCREngine           string
	OCRLanguages        string
	ConfidenceThreshold float64
	MaxImageDimension   int
	ThresholdBlockSize  int
	ThresholdC          float64

	// Speech Configuration
	TTSEngine   string
	TTSRate     int
	TTSVolume   float64
	TTSVoice    string
	AudioPlayer string

	// OpenAI Configuration
	OpenAIAPIKey   string
	OpenAITTSModel string
	OpenAITTSVoice string

	// Camera Configuration
	CameraDevice string
	CameraWidth  int
	CameraHeight int
	CameraFPS    int

	// HTTP Configuration
	ServerAddr string

	// Google Cloud Configuration
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// Benchmark Configuration
	GoogleSheetURL string
	BenchOutputDir string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OCREngine:                  strings.ToLower(getEnv("OCR_ENGINE", "tesseract")),
		OCRLanguages:               getEnv("OCR_LANGUAGES", "eng+fra"),
		TTSEngine:                  strings.ToLower(getEnv("TTS_ENGINE", "espeak")),
		TTSVoice:                   getEnv("TTS_VOICE", "en"),
		AudioPlayer:                getEnv("AUDIO_PLAYER", ""),
		OpenAIAPIKey:               getEnv("OPENAI_API_KEY", ""),
		OpenAITTSModel:             getEnv("OPENAI_TTS_MODEL", "tts-1"),
		OpenAITTSVoice:             getEnv("OPENAI_TTS_VOICE", "alloy"),
		CameraDevice:               getEnv("CAMERA_DEVICE", "/dev/video0"),
		ServerAddr:                 getEnv("SERVER_ADDR", ":5000"),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		GoogleSheetURL:             getEnv("GOOGLE_SHEET_URL", ""),
		BenchOutputDir:             getEnv("BENCH_OUTPUT_DIR", "tts_output"),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stderr"),
	}

	var err error
	if config.ConfidenceThreshold, err = getEnvAsFloat("OCR_CONFIDENCE_THRESHOLD", 0.3); err != nil {
		return nil, err
	}
	if config.MaxImageDimension, err = getEnvAsInt("OCR_MAX_DIMENSION", 1600); err != nil {
		return nil, err
	}
	if config.ThresholdBlockSize, err = getEnvAsInt("OCR_THRESHOLD_BLOCK", 11); err != nil {
		return nil, err
	}
	if config.ThresholdC, err = getEnvAsFloat("OCR_THRESHOLD_C", 2); err != nil {
		return nil, err
	}
	if config.TTSRate, err = getEnvAsInt("TTS_RATE", 150); err != nil {
		return nil, err
	}
	if config.TTSVolume, err = getEnvAsFloat("TTS_VOLUME", 1.0); err != nil {
		return nil, err
	}
	if config.CameraWidth, err = getEnvAsInt("CAMERA_WIDTH", 1280); err != nil {
		return nil, err
	}
	if config.CameraHeight, err = getEnvAsInt("CAMERA_HEIGHT", 720); err != nil {
		return nil, err
	}
	if config.CameraFPS, err = getEnvAsInt("CAMERA_FPS", 30); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OCREngine {
	case "tesseract", "vision":
	case "documentai":
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the documentai engine")
		}
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required for the documentai engine")
		}
	default:
		return fmt.Errorf("OCR_ENGINE must be one of tesseract, vision, documentai (got %q)", c.OCREngine)
	}

	switch c.TTSEngine {
	case "espeak":
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai speech engine")
		}
	default:
		return fmt.Errorf("TTS_ENGINE must be one of espeak, openai (got %q)", c.TTSEngine)
	}

	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold >= 1 {
		return fmt.Errorf("OCR_CONFIDENCE_THRESHOLD must be in [0,1), got %v", c.ConfidenceThreshold)
	}
	if c.MaxImageDimension <= 0 {
		return fmt.Errorf("OCR_MAX_DIMENSION must be positive")
	}
	if c.ThresholdBlockSize < 3 || c.ThresholdBlockSize%2 == 0 {
		return fmt.Errorf("OCR_THRESHOLD_BLOCK must be an odd number >= 3, got %d", c.ThresholdBlockSize)
	}
	if c.TTSRate <= 0 {
		return fmt.Errorf("TTS_RATE must be positive")
	}
	if c.TTSVolume < 0 || c.TTSVolume > 1 {
		return fmt.Errorf("TTS_VOLUME must be in [0,1], got %v", c.TTSVolume)
	}
	if c.CameraWidth <= 0 || c.CameraHeight <= 0 || c.CameraFPS <= 0 {
		return fmt.Errorf("camera size and frame rate must be positive")
	}
	return nil
}

// Languages splits OCR_LANGUAGES ("eng+fra") into tesseract language codes
func (c *Config) Languages() []string {
	var langs []string
	for _, l := range strings.FieldsFunc(c.OCRLanguages, func(r rune) bool { return r == '+' || r == ',' }) {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}
