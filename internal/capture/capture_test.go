package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"sign.JPG":      true,
		"menu.png":      true,
		"scan.tiff":     true,
		"notes.txt":     false,
		"archive.tar":   false,
		"no-extension":  false,
		".hidden.jpeg":  true,
		"photo.jpg.tmp": false,
	}
	for name, want := range tests {
		if got := IsImageFile(name); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "label.png")
	if err := os.WriteFile(path, []byte("\x89PNG"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource() error = %v", err)
	}
	if src.Name() != "file:label.png" {
		t.Errorf("Name() = %q", src.Name())
	}
	data, err := src.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if string(data) != "\x89PNG" {
		t.Errorf("Capture() = %q", data)
	}

	empty := filepath.Join(dir, "empty.png")
	os.WriteFile(empty, nil, 0644)
	emptySrc, _ := NewFileSource(empty)
	if _, err := emptySrc.Capture(context.Background()); !errors.Is(err, ErrNoFrame) {
		t.Errorf("expected ErrNoFrame, got %v", err)
	}

	if _, err := NewFileSource(dir); err == nil {
		t.Error("expected error for a directory")
	}
	if _, err := NewFileSource(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestCameraArgs(t *testing.T) {
	c := &CameraSource{binary: "ffmpeg", config: DefaultCameraConfig()}
	args := strings.Join(c.args(), " ")
	for _, want := range []string{"-f v4l2", "-video_size 1280x720", "-framerate 30", "-i /dev/video0", "-frames:v 1", "-vcodec png"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	files, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644)
	os.WriteFile(filepath.Join(dir, "menu.jpg"), []byte("jpeg"), 0644)

	select {
	case path := <-files:
		if filepath.Base(path) != "menu.jpg" {
			t.Errorf("got %s, want menu.jpg", path)
		}
	case <-ctx.Done():
		t.Fatal("no file reported")
	}

	cancel()
	for range files {
	}
}

func TestNewWatcherRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	os.WriteFile(path, []byte("x"), 0644)
	if _, err := NewWatcher(path, 0); err == nil {
		t.Error("expected error for a file")
	}
}
