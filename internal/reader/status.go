package reader

import (
	"fmt"
	"time"
)

// Status is the headline shown to the user while reading.
type Status string

const (
	StatusStarting       Status = "STARTING"
	StatusLoadingTTS     Status = "LOADING TTS"
	StatusStartingCamera Status = "STARTING CAMERA"
	StatusLoadingOCR     Status = "LOADING OCR"
	StatusReady          Status = "READY"
	StatusCapturing      Status = "CAPTURING"
	StatusReading        Status = "READING TEXT"
	StatusFound          Status = "FOUND TEXT"
	StatusNoTextFound    Status = "NO TEXT FOUND"
	StatusNoTextDetected Status = "NO TEXT DETECTED"
	StatusCameraError    Status = "CAMERA ERROR"
	StatusError          Status = "ERROR"
	StatusStopped        Status = "STOPPED"
)

// Hints and spoken feedback for the terminal statuses.
const (
	HintNoTextFound    = "Try: Better lighting, closer/farther, steadier hold"
	HintNoTextDetected = "Ensure text is visible and well-lit"

	SpeechNoTextFound    = "No text found. Try adjusting position or lighting."
	SpeechNoTextDetected = "No text detected. Make sure text is visible."
	SpeechCameraError    = "Camera error"
)

// Terminal reports whether s ends a read.
func (s Status) Terminal() bool {
	switch s {
	case StatusFound, StatusNoTextFound, StatusNoTextDetected, StatusCameraError, StatusError:
		return true
	}
	return false
}

// Update is one status change, delivered to the StatusFunc.
type Update struct {
	Status     Status
	Detail     string  // recognized text, a hint or an error message
	Confidence float64 // set with StatusFound
	Time       time.Time
}

// Headline renders the status line, with the confidence for found text.
func (u Update) Headline() string {
	if u.Status == StatusFound {
		return fmt.Sprintf("%s\nConfidence: %.0f%%", u.Status, u.Confidence*100)
	}
	return string(u.Status)
}

// StatusFunc receives status updates. It is called from the goroutine doing
// the work and must not block for long.
type StatusFunc func(Update)
