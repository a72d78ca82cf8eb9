package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"visionspeak/internal/ocr"
	"visionspeak/internal/reader"
	"visionspeak/pkg/models"
)

func TestSplitNames(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"tesseract", []string{"tesseract"}},
		{" Tesseract , VISION,,documentai ", []string{"tesseract", "vision", "documentai"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := splitNames(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("splitNames(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func writeTempImage(t *testing.T) os.FileInfo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sign.png")
	if err := os.WriteFile(path, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	info, err := validateImageFile(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("validateImageFile() error = %v", err)
	}
	return info
}

func TestValidateImageFile(t *testing.T) {
	writeTempImage(t)

	if _, err := validateImageFile(filepath.Join(t.TempDir(), "missing.jpg"), zerolog.Nop()); err == nil {
		t.Error("expected an error for a missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty.jpg")
	os.WriteFile(empty, nil, 0644)
	if _, err := validateImageFile(empty, zerolog.Nop()); err == nil {
		t.Error("expected an error for an empty file")
	}

	if _, err := validateImageFile(t.TempDir(), zerolog.Nop()); err == nil {
		t.Error("expected an error for a directory")
	}
}

func TestFormatResult(t *testing.T) {
	info := writeTempImage(t)
	result := &ocr.OCRResult{
		Text:               "Hello World",
		Confidence:         0.7,
		Engine:             "tesseract",
		Candidates:         4,
		Detections:         []models.Detection{{Text: "Hello", Confidence: 0.9}, {Text: "World", Confidence: 0.5}},
		ProcessedAt:        time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		ProcessingDuration: 1500 * time.Millisecond,
	}

	t.Run("plain text", func(t *testing.T) {
		out, err := formatResult(result, info, false, false)
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != "Hello World\n" {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("metadata", func(t *testing.T) {
		out, _ := formatResult(result, info, false, true)
		for _, want := range []string{"=== OCR Results for sign.png ===", "Detections kept: 2 of 4", "Confidence: 70.0%", "Hello World"} {
			if !strings.Contains(string(out), want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		out, _ := formatResult(result, info, true, false)
		var got OCROutput
		if err := json.Unmarshal(out, &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Text != "Hello World" || got.FileName != "sign.png" || got.FileSize != 3 || got.Detections != nil {
			t.Errorf("unexpected output %+v", got)
		}
	})

	t.Run("json with detections", func(t *testing.T) {
		out, _ := formatResult(result, info, true, true)
		var got OCROutput
		json.Unmarshal(out, &got)
		if len(got.Detections) != 2 {
			t.Errorf("detections = %v", got.Detections)
		}
	})
}

type staticRecognizer struct{}

func (staticRecognizer) Run(ctx context.Context, image []byte) (*ocr.OCRResult, error) {
	return &ocr.OCRResult{Text: "Exit", Confidence: 0.9, Candidates: 1, Detections: []models.Detection{{Text: "Exit", Confidence: 0.9}}}, nil
}

func TestStatusPrinter(t *testing.T) {
	var out bytes.Buffer
	onStatus, stop := statusPrinter(&out)

	onStatus(reader.Update{Status: reader.StatusReading})
	onStatus(reader.Update{Status: reader.StatusFound, Detail: "Exit", Confidence: 0.9})
	stop()

	want := "READING TEXT\nFOUND TEXT\nConfidence: 90%\nExit\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestReadInteractive(t *testing.T) {
	r := reader.New(nil, staticRecognizer{}, nil, nil)
	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var out bytes.Buffer
	in := strings.NewReader("r\nhelp\ns\nq\nr\n")
	if err := readInteractive(context.Background(), r, in, &out, zerolog.Nop()); err != nil {
		t.Fatalf("readInteractive() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"Press Enter to read", reader.ErrNothingToRepeat.Error(), `Unknown command "help"`} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestReadInteractiveEOF(t *testing.T) {
	r := reader.New(nil, staticRecognizer{}, nil, nil)
	r.Start(context.Background())
	defer r.Close()

	var out bytes.Buffer
	if err := readInteractive(context.Background(), r, strings.NewReader(""), &out, zerolog.Nop()); err != nil {
		t.Errorf("readInteractive() error = %v", err)
	}
}
