// Package tts turns recognized text into speech.
//
// A Synthesizer renders text to an encoded audio clip, a Player sends the clip
// to the sound card and a Speaker ties both together so that new speech
// interrupts whatever is still being spoken.
package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyText is returned when there is nothing to synthesize.
	ErrEmptyText = errors.New("text to synthesize is empty")

	// ErrUnknownEngine is returned by NewSynthesizer for unsupported engine names.
	ErrUnknownEngine = errors.New("unknown speech engine")

	// ErrSynthesisFailed is returned when the speech backend fails.
	ErrSynthesisFailed = errors.New("speech synthesis failed")

	// ErrPlayerUnavailable is returned when no audio player can handle a format.
	ErrPlayerUnavailable = errors.New("no audio player available")
)

// Synthesizer renders text into an encoded audio clip.
type Synthesizer interface {
	// Name identifies the engine in logs and benchmark reports.
	Name() string

	// Synthesize returns the audio for text in Format().
	Synthesize(ctx context.Context, text string) ([]byte, error)

	// Format is the container of the produced audio: "wav" or "mp3".
	Format() string

	// Online reports whether the engine needs network access.
	Online() bool

	// Close releases engine resources.
	Close() error
}

// Config holds speech settings shared by all engines.
type Config struct {
	Engine string  // espeak or openai
	Voice  string  // espeak voice, e.g. "en" or "fr"
	Rate   int     // words per minute
	Volume float64 // 0.0 to 1.0

	// OpenAI
	APIKey      string
	Model       string // tts-1, tts-1-hd
	OpenAIVoice string // alloy, nova, ...
}

// DefaultConfig returns the offline voice at a clear reading pace.
func DefaultConfig() Config {
	return Config{
		Engine:      "espeak",
		Voice:       "en",
		Rate:        150,
		Volume:      1.0,
		Model:       "tts-1",
		OpenAIVoice: "alloy",
	}
}

// EngineNames lists the engines NewSynthesizer understands.
var EngineNames = []string{"espeak", "openai"}

// NewSynthesizer creates the engine named in config.
func NewSynthesizer(config Config) (Synthesizer, error) {
	switch strings.ToLower(config.Engine) {
	case "", "espeak":
		return NewEspeakSynthesizer(config)
	case "openai":
		return NewOpenAISynthesizer(config)
	default:
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownEngine, config.Engine, strings.Join(EngineNames, ", "))
	}
}
