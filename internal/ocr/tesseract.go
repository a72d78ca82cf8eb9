package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"visionspeak/internal/logger"
	"visionspeak/pkg/models"
)

// DefaultLanguages are the tesseract languages used when none are configured.
var DefaultLanguages = []string{"eng", "fra"}

// TesseractEngine implements Engine with a local tesseract installation.
// A fresh gosseract client is used per call, so concurrent passes are safe.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	languages     []string
	pageSegMode   gosseract.PageSegMode
	log           zerolog.Logger
}

// NewTesseractEngine creates an engine recognizing the given languages.
func NewTesseractEngine(languages ...string) *TesseractEngine {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	return &TesseractEngine{
		clientFactory: gosseract.NewClient,
		languages:     languages,
		pageSegMode:   gosseract.PSM_AUTO,
		log:           logger.WithComponent("ocr-tesseract"),
	}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Version returns the linked tesseract library version.
func (e *TesseractEngine) Version() string {
	return gosseract.Version()
}

// Recognize returns word level detections for image.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) ([]models.Detection, error) {
	const op = "TesseractEngine.Recognize"

	if err := checkImage(op, image); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, NewOCRError(op, ErrContextCanceled, err.Error())
	}

	client := e.clientFactory()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return nil, NewOCRError(op, err, "failed to set languages")
	}
	if err := client.SetPageSegMode(e.pageSegMode); err != nil {
		return nil, NewOCRError(op, err, "failed to set page segmentation mode")
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, NewOCRError(op, ErrInvalidImage, err.Error())
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, NewOCRError(op, ErrOCRFailed, fmt.Sprintf("tesseract: %v", err))
	}

	// tesseract does not observe ctx, report cancellation that happened meanwhile
	if err := ctx.Err(); err != nil {
		return nil, NewOCRError(op, ErrContextCanceled, err.Error())
	}

	detections := make([]models.Detection, 0, len(boxes))
	for _, b := range boxes {
		detections = append(detections, models.Detection{
			Box:        models.BoxFromRect(b.Box),
			Text:       b.Word,
			Confidence: b.Confidence / 100.0,
		})
	}

	e.log.Debug().
		Int("words", len(detections)).
		Strs("languages", e.languages).
		Msg("Tesseract recognition completed")

	return detections, nil
}

func (e *TesseractEngine) Close() error { return nil }
