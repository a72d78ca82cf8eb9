package bench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"visionspeak/internal/logger"
	"visionspeak/internal/tts"
)

// DefaultTTSText is spoken by every engine in the speech comparison.
const DefaultTTSText = `You know, you know where you are with
You know where you are with
Floor collapses, floating
Bouncing back
And one day, I am gonna grow wings`

// TTSRun is the outcome of one speech engine.
type TTSRun struct {
	Engine   string        `json:"engine"`
	Duration time.Duration `json:"duration"`
	File     string        `json:"file,omitempty"`
	SizeKB   float64       `json:"size_kb"`
	Online   bool          `json:"online"`
	Err      error         `json:"-"`
}

// OK reports whether the engine produced a clip.
func (r TTSRun) OK() bool { return r.Err == nil }

// RunTTS synthesizes text with each engine and saves the clips to outDir as
// <engine>_output.<format>. A failing engine is recorded in its run.
func RunTTS(ctx context.Context, synths []tts.Synthesizer, text, outDir string) ([]TTSRun, error) {
	const op = "bench.RunTTS"

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: failed to create output directory: %w", op, err)
	}

	log := logger.WithComponent("bench")
	runs := make([]TTSRun, 0, len(synths))

	for _, synth := range synths {
		run := TTSRun{Engine: synth.Name(), Online: synth.Online()}

		start := time.Now()
		audio, err := synth.Synthesize(ctx, text)
		if err == nil {
			run.File = filepath.Join(outDir, fmt.Sprintf("%s_output.%s", synth.Name(), synth.Format()))
			err = os.WriteFile(run.File, audio, 0o644)
		}
		run.Duration = time.Since(start)

		if err != nil {
			log.Error().Err(err).Str("engine", run.Engine).Msg("Speech engine failed")
			run.File = ""
			run.Err = err
			runs = append(runs, run)
			continue
		}

		run.SizeKB = float64(len(audio)) / 1024
		log.Info().
			Str("engine", run.Engine).
			Dur("duration", run.Duration).
			Str("file", run.File).
			Msg("Speech engine finished")

		runs = append(runs, run)
	}

	return runs, nil
}
