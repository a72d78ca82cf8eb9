package ocr

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"visionspeak/internal/logger"
	"visionspeak/internal/preprocess"
	"visionspeak/pkg/models"
)

// PipelineConfig controls preprocessing and merging.
type PipelineConfig struct {
	ConfidenceThreshold float64
	Preprocess          preprocess.Options
}

// DefaultPipelineConfig returns a 0.3 threshold with the default preprocessing.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		Preprocess:          preprocess.DefaultOptions(),
	}
}

// Pipeline reads one capture with two passes of the same engine.
type Pipeline struct {
	engine Engine
	config PipelineConfig
	log    zerolog.Logger
}

// NewPipeline creates a pipeline around engine.
func NewPipeline(engine Engine, config PipelineConfig) *Pipeline {
	return &Pipeline{
		engine: engine,
		config: config,
		log:    logger.WithComponent("ocr-pipeline"),
	}
}

// Engine returns the engine used for both passes.
func (p *Pipeline) Engine() Engine {
	return p.engine
}

// Run preprocesses image, recognizes the original and the thresholded
// renditions concurrently and merges the detections. A failure of either
// pass fails the run.
func (p *Pipeline) Run(ctx context.Context, image []byte) (*OCRResult, error) {
	const op = "Pipeline.Run"
	startTime := time.Now()

	if err := checkImage(op, image); err != nil {
		return nil, err
	}

	original, thresholded, err := preprocess.Prepare(image, p.config.Preprocess)
	if err != nil {
		if errors.Is(err, preprocess.ErrInvalidImage) {
			return nil, NewOCRError(op, ErrInvalidImage, err.Error())
		}
		return nil, WrapOCRError(op, err, "preprocessing failed")
	}

	passes := make([][]models.Detection, 2)
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range [][]byte{original, thresholded} {
		g.Go(func() error {
			detections, err := p.engine.Recognize(gctx, img)
			if err != nil {
				return err
			}
			passes[i] = detections
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, WrapOCRError(op, err, "recognition pass failed")
	}

	reading := Merge(p.config.ConfidenceThreshold, passes...)

	result := &OCRResult{
		Text:        reading.Text,
		Confidence:  reading.Confidence,
		Detections:  reading.Detections,
		Candidates:  reading.Candidates,
		Engine:      p.engine.Name(),
		ProcessedAt: time.Now(),
	}
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	p.log.Debug().
		Str("engine", result.Engine).
		Int("original", len(passes[0])).
		Int("thresholded", len(passes[1])).
		Int("kept", len(result.Detections)).
		Float64("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Msg("Capture read")

	return result, nil
}
