package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"OCR_ENGINE", "TTS_ENGINE", "OCR_CONFIDENCE_THRESHOLD", "OCR_LANGUAGES", "SERVER_ADDR", "TTS_RATE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OCREngine != "tesseract" {
		t.Errorf("OCREngine = %q, want tesseract", cfg.OCREngine)
	}
	if cfg.ConfidenceThreshold != 0.3 {
		t.Errorf("ConfidenceThreshold = %v, want 0.3", cfg.ConfidenceThreshold)
	}
	if cfg.TTSRate != 150 {
		t.Errorf("TTSRate = %d, want 150", cfg.TTSRate)
	}
	if cfg.ServerAddr != ":5000" {
		t.Errorf("ServerAddr = %q, want :5000", cfg.ServerAddr)
	}
	if got := cfg.Languages(); !reflect.DeepEqual(got, []string{"eng", "fra"}) {
		t.Errorf("Languages() = %v", got)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown ocr engine", map[string]string{"OCR_ENGINE": "easyocr"}, "OCR_ENGINE"},
		{"threshold out of range", map[string]string{"OCR_CONFIDENCE_THRESHOLD": "1.5"}, "OCR_CONFIDENCE_THRESHOLD"},
		{"threshold not a number", map[string]string{"OCR_CONFIDENCE_THRESHOLD": "high"}, "must be a number"},
		{"even block size", map[string]string{"OCR_THRESHOLD_BLOCK": "10"}, "OCR_THRESHOLD_BLOCK"},
		{"openai without key", map[string]string{"TTS_ENGINE": "openai", "OPENAI_API_KEY": ""}, "OPENAI_API_KEY"},
		{"documentai without processor", map[string]string{"OCR_ENGINE": "documentai", "GOOGLE_CLOUD_PROJECT": "p", "DOCUMENT_AI_PROCESSOR_ID": ""}, "DOCUMENT_AI_PROCESSOR_ID"},
		{"volume too loud", map[string]string{"TTS_VOLUME": "2"}, "TTS_VOLUME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLanguages(t *testing.T) {
	cfg := &Config{OCRLanguages: " eng + fra,ara "}
	want := []string{"eng", "fra", "ara"}
	if got := cfg.Languages(); !reflect.DeepEqual(got, want) {
		t.Errorf("Languages() = %v, want %v", got, want)
	}
}
