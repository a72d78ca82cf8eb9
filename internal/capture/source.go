// Package capture supplies the still images the reader recognizes: files,
// single camera frames and images dropped into a watched folder.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrCameraUnavailable is returned when no frame can be grabbed.
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrNoFrame is returned when a source produced no image data.
	ErrNoFrame = errors.New("no frame available")
)

// Source produces one encoded image per call.
type Source interface {
	Name() string
	Capture(ctx context.Context) ([]byte, error)
	Close() error
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImageFile reports whether name has a supported image extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// FileSource reads the same image file on every capture.
type FileSource struct {
	path string
}

// NewFileSource checks that path is a readable regular file.
func NewFileSource(path string) (*FileSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("image file not accessible: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}
	return &FileSource{path: path}, nil
}

func (f *FileSource) Name() string { return "file:" + filepath.Base(f.path) }

// Capture returns the file contents.
func (f *FileSource) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoFrame, f.path)
	}
	return data, nil
}

func (f *FileSource) Close() error { return nil }
