package ocr

import (
	"context"
	"fmt"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"

	"visionspeak/internal/logger"
	"visionspeak/pkg/models"
)

// imageAnnotator is the subset of the Vision client used by GoogleVisionEngine.
type imageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// GoogleVisionEngine implements Engine using Google Cloud Vision API document
// text detection. Each recognized word becomes one detection.
type GoogleVisionEngine struct {
	client        imageAnnotator
	languageHints []string
	log           zerolog.Logger
}

// NewGoogleVisionEngine creates an engine with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewGoogleVisionEngine(ctx context.Context, languages ...string) (*GoogleVisionEngine, error) {
	const op = "NewGoogleVisionEngine"

	opts := googleClientOptions()
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		if len(opts) == 0 {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, "failed to create Vision client")
	}

	return NewGoogleVisionEngineWithClient(client, languages...), nil
}

// NewGoogleVisionEngineWithClient creates an engine with an explicit client (for testing).
func NewGoogleVisionEngineWithClient(client imageAnnotator, languages ...string) *GoogleVisionEngine {
	return &GoogleVisionEngine{
		client:        client,
		languageHints: languageHints(languages),
		log:           logger.WithComponent("ocr-vision"),
	}
}

func (g *GoogleVisionEngine) Name() string { return "vision" }

// Recognize sends image to the Vision API and returns word level detections.
func (g *GoogleVisionEngine) Recognize(ctx context.Context, image []byte) ([]models.Detection, error) {
	const op = "GoogleVisionEngine.Recognize"

	if err := checkImage(op, image); err != nil {
		return nil, err
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{LanguageHints: g.languageHints},
			},
		},
	}

	resp, err := g.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewOCRError(op, ErrContextCanceled, ctx.Err().Error())
		}
		return nil, NewOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.GetResponses()) == 0 {
		return nil, NewOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	imageResp := resp.GetResponses()[0]
	if imageResp.GetError() != nil {
		return nil, NewOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", imageResp.GetError().GetMessage()))
	}

	detections := visionWords(imageResp.GetFullTextAnnotation())

	g.log.Debug().
		Int("words", len(detections)).
		Msg("Vision recognition completed")

	return detections, nil
}

// visionWords flattens a full text annotation into word detections.
func visionWords(annotation *visionpb.TextAnnotation) []models.Detection {
	var detections []models.Detection

	for _, page := range annotation.GetPages() {
		for _, block := range page.GetBlocks() {
			for _, paragraph := range block.GetParagraphs() {
				for _, word := range paragraph.GetWords() {
					var text strings.Builder
					for _, symbol := range word.GetSymbols() {
						text.WriteString(symbol.GetText())
					}

					var box []models.Point
					for _, v := range word.GetBoundingBox().GetVertices() {
						box = append(box, models.Point{X: int(v.GetX()), Y: int(v.GetY())})
					}

					detections = append(detections, models.Detection{
						Box:        box,
						Text:       text.String(),
						Confidence: float64(word.GetConfidence()),
					})
				}
			}
		}
	}

	return detections
}

// Close closes the underlying Vision client.
func (g *GoogleVisionEngine) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
