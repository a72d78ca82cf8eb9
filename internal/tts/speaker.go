package tts

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"visionspeak/internal/logger"
)

// Speaker speaks one text at a time. Starting new speech stops the current one.
type Speaker struct {
	synth  Synthesizer
	player Player
	log    zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSpeaker creates a speaker.
func NewSpeaker(synth Synthesizer, player Player) *Speaker {
	return &Speaker{
		synth:  synth,
		player: player,
		log:    logger.WithComponent("speaker"),
	}
}

// Synthesizer returns the engine used by the speaker.
func (s *Speaker) Synthesizer() Synthesizer {
	return s.synth
}

// Speak stops any current speech, then synthesizes and plays text. It blocks
// until playback ends. Empty text is ignored. Speech interrupted by Stop or by
// a later Speak returns nil.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	speakCtx, cancel, done := s.begin(ctx)
	defer s.end(cancel, done)

	audio, err := s.synth.Synthesize(speakCtx, text)
	if err == nil {
		err = s.player.Play(speakCtx, audio, s.synth.Format())
	}

	if err != nil {
		if speakCtx.Err() != nil && ctx.Err() == nil {
			s.log.Debug().Msg("Speech interrupted")
			return nil
		}
		return fmt.Errorf("speak: %w", err)
	}
	return nil
}

// begin interrupts the current speech and registers a new one.
func (s *Speaker) begin(ctx context.Context) (context.Context, context.CancelFunc, chan struct{}) {
	s.mu.Lock()
	for s.cancel != nil {
		cancel, done := s.cancel, s.done
		s.mu.Unlock()
		cancel()
		<-done
		s.mu.Lock()
	}
	speakCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.mu.Unlock()
	return speakCtx, cancel, done
}

func (s *Speaker) end(cancel context.CancelFunc, done chan struct{}) {
	cancel()
	s.mu.Lock()
	if s.done == done {
		s.cancel, s.done = nil, nil
	}
	s.mu.Unlock()
	close(done)
}

// Stop interrupts the current speech and waits for it to wind down.
// It reports whether anything was being spoken.
func (s *Speaker) Stop() bool {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

// Speaking reports whether speech is in progress.
func (s *Speaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}
