// Package ocr recognizes text in captured images and merges the detections of
// several recognition passes into a single reading.
//
// Engines wrap a concrete OCR backend:
//   - tesseract: local recognition through gosseract, word level boxes
//   - vision: Google Cloud Vision document text detection, word level boxes
//   - documentai: Google Document AI OCR processor, line level boxes
//
// Cloud engines read credentials from the environment:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//
// A Pipeline runs every capture twice, once on the original image and once on
// an adaptive-threshold rendition, and merges both detection lists with Merge.
package ocr

import (
	"context"
	"time"

	"visionspeak/pkg/models"
)

const (
	// MaxImageSizeBytes is the largest upload accepted for recognition (20MB)
	MaxImageSizeBytes = 20 * 1024 * 1024
)

// Engine recognizes text regions in a single encoded image.
type Engine interface {
	// Name identifies the backend in logs and benchmark reports.
	Name() string

	// Recognize returns every text region the backend reports, unfiltered.
	Recognize(ctx context.Context, image []byte) ([]models.Detection, error)

	// Close releases the backend's clients.
	Close() error
}

// OCRResult contains a merged reading with processing metadata.
type OCRResult struct {
	// Text is the merged text in reading order.
	Text string `json:"text"`

	// Confidence is the mean confidence of the detections that survived the merge (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Detections are the surviving regions, sorted top to bottom.
	Detections []models.Detection `json:"detections,omitempty"`

	// Candidates is the number of raw detections across both passes.
	Candidates int `json:"candidates"`

	// Engine is the name of the backend that produced the detections.
	Engine string `json:"engine"`

	// ProcessedAt is the timestamp when the OCR processing completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long preprocessing and both passes took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// Reading returns the merged reading carried by the result.
func (r *OCRResult) Reading() models.Reading {
	return models.Reading{
		Text:       r.Text,
		Confidence: r.Confidence,
		Detections: r.Detections,
		Candidates: r.Candidates,
	}
}
