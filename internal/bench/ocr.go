package bench

import (
	"context"
	"strings"
	"time"

	"visionspeak/internal/logger"
	"visionspeak/internal/ocr"
)

// OCRRun is the outcome of one engine on the sample.
type OCRRun struct {
	Engine     string        `json:"engine"`
	Duration   time.Duration `json:"duration"`
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Words      int           `json:"words"`
	Analysis   TextAnalysis  `json:"analysis"`
	Err        error         `json:"-"`
}

// OK reports whether the engine produced a result.
func (r OCRRun) OK() bool { return r.Err == nil }

// RunOCR reads image once with each engine, in order. A failing engine is
// recorded in its run and does not stop the others.
func RunOCR(ctx context.Context, engines []ocr.Engine, image []byte) []OCRRun {
	log := logger.WithComponent("bench")
	runs := make([]OCRRun, 0, len(engines))

	for _, engine := range engines {
		run := OCRRun{Engine: engine.Name()}

		start := time.Now()
		detections, err := engine.Recognize(ctx, image)
		run.Duration = time.Since(start)

		if err != nil {
			log.Error().Err(err).Str("engine", run.Engine).Msg("OCR engine failed")
			run.Err = err
			runs = append(runs, run)
			continue
		}

		texts := make([]string, 0, len(detections))
		var sum float64
		for _, d := range detections {
			if t := strings.TrimSpace(d.Text); t != "" {
				texts = append(texts, t)
			}
			sum += d.Confidence
		}
		run.Text = strings.Join(texts, " ")
		run.Words = len(detections)
		if len(detections) > 0 {
			run.Confidence = sum / float64(len(detections))
		}
		run.Analysis = Analyze(run.Text)

		log.Info().
			Str("engine", run.Engine).
			Dur("duration", run.Duration).
			Int("words", run.Words).
			Msg("OCR engine finished")

		runs = append(runs, run)
	}

	return runs
}
