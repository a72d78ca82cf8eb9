package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestOCRError(t *testing.T) {
	err := NewOCRError("Recognize", ErrOCRFailed, "backend unavailable")

	if !errors.Is(err, ErrOCRFailed) {
		t.Error("expected errors.Is to match ErrOCRFailed")
	}
	if errors.Is(err, ErrInvalidImage) {
		t.Error("did not expect a match with ErrInvalidImage")
	}
	if got := err.Error(); got != "ocr: Recognize failed: backend unavailable: OCR processing failed" {
		t.Errorf("Error() = %q", got)
	}
	if got := NewOCRError("Close", ErrOCRFailed, "").Error(); got != "ocr: Close failed: OCR processing failed" {
		t.Errorf("Error() without details = %q", got)
	}
}

func TestWrapOCRError(t *testing.T) {
	if WrapOCRError("op", nil, "") != nil {
		t.Error("wrapping nil should return nil")
	}

	inner := NewOCRError("inner", ErrEmptyImage, "")
	if got := WrapOCRError("outer", inner, "details"); got != error(inner) {
		t.Error("an OCRError should not be wrapped twice")
	}

	wrapped := WrapOCRError("outer", context.Canceled, "stopped")
	if !errors.Is(wrapped, context.Canceled) {
		t.Error("wrapped error should match its cause")
	}
}

func TestCheckImage(t *testing.T) {
	tests := []struct {
		name string
		size int
		want error
	}{
		{"empty", 0, ErrEmptyImage},
		{"too large", MaxImageSizeBytes + 1, ErrImageTooLarge},
		{"ok", 128, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkImage("test", make([]byte, tt.size))
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNewEngineUnknown(t *testing.T) {
	_, err := NewEngine(context.Background(), EngineConfig{Name: "easyocr"})
	if !errors.Is(err, ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
	if !strings.Contains(err.Error(), "tesseract") {
		t.Errorf("error should list available engines: %v", err)
	}
}

func TestLanguageHints(t *testing.T) {
	got := languageHints([]string{"eng", "fra", "xyz", "ja"})
	want := []string{"en", "fr", "ja"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("languageHints() = %v, want %v", got, want)
	}
}
