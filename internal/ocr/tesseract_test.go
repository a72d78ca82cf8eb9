package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os/exec"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ensureTesseractAvailable skips tests when tesseract is not installed.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

// renderText draws text with basicfont and scales it up for recognition.
func renderText(t *testing.T, lines ...string) []byte {
	t.Helper()

	width := 40
	for _, line := range lines {
		if w := len(line)*7 + 40; w > width {
			width = w
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, width, 30*len(lines)+20))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	for i, line := range lines {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.Black),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(20, 30*(i+1)),
		}
		d.DrawString(line)
	}

	scaled := imaging.Resize(img, img.Bounds().Dx()*4, 0, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func TestTesseractEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	engine := NewTesseractEngine("eng")
	detections, err := engine.Recognize(context.Background(), renderText(t, "HELLO", "WORLD"))
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(detections) == 0 {
		t.Fatal("expected detections")
	}

	reading := Merge(DefaultConfidenceThreshold, detections)
	got := strings.ToLower(reading.Text)
	if !strings.Contains(got, "hello") || !strings.Contains(got, "world") {
		t.Errorf("unexpected OCR output: %q", reading.Text)
	}
	if strings.Index(got, "hello") > strings.Index(got, "world") {
		t.Errorf("lines out of reading order: %q", reading.Text)
	}
	for _, d := range detections {
		if d.Confidence < 0 || d.Confidence > 1 {
			t.Errorf("confidence out of range: %+v", d)
		}
	}
}

func TestTesseractEngineCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTesseractEngine().Recognize(ctx, []byte("image"))
	if !errors.Is(err, ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", err)
	}
}

func TestTesseractEngineDefaults(t *testing.T) {
	engine := NewTesseractEngine()
	if engine.Name() != "tesseract" {
		t.Errorf("Name() = %q", engine.Name())
	}
	if strings.Join(engine.languages, "+") != "eng+fra" {
		t.Errorf("languages = %v", engine.languages)
	}
}
