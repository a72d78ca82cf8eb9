package tts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"visionspeak/internal/logger"
)

// OpenAISynthesizer speaks with OpenAI's neural voices.
type OpenAISynthesizer struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
	speed  float64
	log    zerolog.Logger
}

// NewOpenAISynthesizer creates a synthesizer for config.APIKey.
func NewOpenAISynthesizer(config Config) (*OpenAISynthesizer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is required", ErrSynthesisFailed)
	}
	return NewOpenAISynthesizerWithClient(openai.NewClient(config.APIKey), config), nil
}

// NewOpenAISynthesizerWithClient creates a synthesizer with an explicit client (for testing).
func NewOpenAISynthesizerWithClient(client *openai.Client, config Config) *OpenAISynthesizer {
	defaults := DefaultConfig()
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.OpenAIVoice == "" {
		config.OpenAIVoice = defaults.OpenAIVoice
	}

	// the offline voice reads at 150 wpm, keep the neural voice at the same pace
	speed := 1.0
	if config.Rate > 0 {
		speed = float64(config.Rate) / float64(defaults.Rate)
	}

	return &OpenAISynthesizer{
		client: client,
		model:  openai.SpeechModel(config.Model),
		voice:  openai.SpeechVoice(config.OpenAIVoice),
		speed:  speed,
		log:    logger.WithComponent("tts-openai"),
	}
}

func (o *OpenAISynthesizer) Name() string   { return "openai" }
func (o *OpenAISynthesizer) Format() string { return "mp3" }
func (o *OpenAISynthesizer) Online() bool   { return true }
func (o *OpenAISynthesizer) Close() error   { return nil }

// Synthesize renders text to MP3.
func (o *OpenAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	const op = "OpenAISynthesizer.Synthesize"

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          o.speed,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrSynthesisFailed, err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read audio: %w", op, err)
	}

	o.log.Debug().
		Str("model", string(o.model)).
		Str("voice", string(o.voice)).
		Int("bytes", len(audio)).
		Msg("Speech synthesized")

	return audio, nil
}
