package ocr

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"visionspeak/internal/logger"
	"visionspeak/pkg/models"
)

// documentProcessor is the subset of the Document AI client used by DocumentAIEngine.
type documentProcessor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
	Close() error
}

// DocumentAIConfig holds the processor coordinates.
type DocumentAIConfig struct {
	ProjectID        string
	Location         string // "us" or "eu"
	ProcessorID      string // an OCR processor
	ProcessorVersion string
	Timeout          time.Duration
}

// DocumentAIEngine implements Engine with a Google Document AI OCR processor.
// Each detected line becomes one detection.
type DocumentAIEngine struct {
	client documentProcessor
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIEngine creates an engine with credentials from environment.
func NewDocumentAIEngine(ctx context.Context, config DocumentAIConfig) (*DocumentAIEngine, error) {
	const op = "NewDocumentAIEngine"

	if config.ProjectID == "" || config.ProcessorID == "" {
		return nil, NewOCRError(op, ErrMissingCredentials, "project and processor ID are required")
	}
	if config.Location == "" {
		config.Location = "us"
	}

	clientOptions := googleClientOptions()
	hasCredentials := len(clientOptions) > 0
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if !hasCredentials {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return NewDocumentAIEngineWithClient(config, client), nil
}

// NewDocumentAIEngineWithClient creates an engine with an explicit client (for testing).
func NewDocumentAIEngineWithClient(config DocumentAIConfig, client documentProcessor) *DocumentAIEngine {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	return &DocumentAIEngine{
		client: client,
		config: config,
		log:    logger.WithComponent("ocr-documentai"),
	}
}

func (p *DocumentAIEngine) Name() string { return "documentai" }

// Recognize processes image as a raw document and returns line detections.
func (p *DocumentAIEngine) Recognize(ctx context.Context, image []byte) ([]models.Detection, error) {
	const op = "DocumentAIEngine.Recognize"

	if err := checkImage(op, image); err != nil {
		return nil, err
	}

	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, NewOCRError(op, ErrInvalidImage, fmt.Sprintf("unsupported content type: %s", mimeType))
	}

	processCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: p.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  image,
				MimeType: mimeType,
			},
		},
	}

	resp, err := p.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, p.handleProcessingError(op, err)
	}
	if resp.GetDocument() == nil {
		return nil, NewOCRError(op, ErrOCRFailed, "no document in response")
	}

	detections := documentLines(resp.GetDocument())

	p.log.Debug().
		Int("lines", len(detections)).
		Str("mime_type", mimeType).
		Msg("Document AI recognition completed")

	return detections, nil
}

// processorName constructs the full processor name for Document AI API.
func (p *DocumentAIEngine) processorName() string {
	if p.config.ProcessorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			p.config.ProjectID, p.config.Location, p.config.ProcessorID, p.config.ProcessorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		p.config.ProjectID, p.config.Location, p.config.ProcessorID)
}

// handleProcessingError converts Document AI errors to OCR errors.
func (p *DocumentAIEngine) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "PermissionDenied") || strings.Contains(errStr, "PERMISSION_DENIED"):
		return NewOCRError(op, ErrMissingCredentials, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "NotFound") || strings.Contains(errStr, "NOT_FOUND"):
		return NewOCRError(op, ErrOCRFailed, fmt.Sprintf("processor not found: %s", p.config.ProcessorID))
	case strings.Contains(errStr, "InvalidArgument") || strings.Contains(errStr, "INVALID_ARGUMENT"):
		return NewOCRError(op, ErrInvalidImage, "image format not supported or corrupted")
	case strings.Contains(errStr, "context deadline exceeded") || strings.Contains(errStr, "context canceled"):
		return NewOCRError(op, ErrContextCanceled, errStr)
	default:
		return NewOCRError(op, ErrOCRFailed, fmt.Sprintf("Document AI call failed: %v", err))
	}
}

// documentLines converts the lines of every page into detections. Vertices
// fall back to normalized vertices scaled by the page dimension.
func documentLines(doc *documentaipb.Document) []models.Detection {
	text := []rune(doc.GetText())
	var detections []models.Detection

	for _, page := range doc.GetPages() {
		width := float64(page.GetDimension().GetWidth())
		height := float64(page.GetDimension().GetHeight())

		for _, line := range page.GetLines() {
			layout := line.GetLayout()

			var content strings.Builder
			for _, seg := range layout.GetTextAnchor().GetTextSegments() {
				start, end := int(seg.GetStartIndex()), int(seg.GetEndIndex())
				if start < 0 || end > len(text) || start >= end {
					continue
				}
				content.WriteString(string(text[start:end]))
			}

			var box []models.Point
			poly := layout.GetBoundingPoly()
			if vertices := poly.GetVertices(); len(vertices) > 0 {
				for _, v := range vertices {
					box = append(box, models.Point{X: int(v.GetX()), Y: int(v.GetY())})
				}
			} else {
				for _, v := range poly.GetNormalizedVertices() {
					box = append(box, models.Point{
						X: int(math.Round(float64(v.GetX()) * width)),
						Y: int(math.Round(float64(v.GetY()) * height)),
					})
				}
			}

			detections = append(detections, models.Detection{
				Box:        box,
				Text:       strings.TrimSpace(content.String()),
				Confidence: float64(layout.GetConfidence()),
			})
		}
	}

	return detections
}

// Close closes the underlying Document AI client.
func (p *DocumentAIEngine) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
