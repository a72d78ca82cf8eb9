package tts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSynth struct {
	err error
}

func (f *fakeSynth) Name() string   { return "fake" }
func (f *fakeSynth) Format() string { return "wav" }
func (f *fakeSynth) Online() bool   { return false }
func (f *fakeSynth) Close() error   { return nil }

func (f *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("RIFF" + text), nil
}

// blockingPlayer plays until its context is canceled or release is closed.
type blockingPlayer struct {
	mu      sync.Mutex
	played  []string
	started chan string
	release chan struct{}
}

func newBlockingPlayer() *blockingPlayer {
	return &blockingPlayer{started: make(chan string, 4), release: make(chan struct{})}
}

func (p *blockingPlayer) Play(ctx context.Context, audio []byte, format string) error {
	p.mu.Lock()
	p.played = append(p.played, string(audio))
	p.mu.Unlock()
	p.started <- string(audio)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.release:
		return nil
	}
}

func TestSpeakerSpeak(t *testing.T) {
	player := newBlockingPlayer()
	close(player.release)
	speaker := NewSpeaker(&fakeSynth{}, player)

	if err := speaker.Speak(context.Background(), "  Hello World "); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if len(player.played) != 1 || player.played[0] != "RIFFHello World" {
		t.Errorf("played = %v", player.played)
	}
	if speaker.Speaking() {
		t.Error("speaker should be idle after playback")
	}
}

func TestSpeakerIgnoresEmptyText(t *testing.T) {
	player := newBlockingPlayer()
	speaker := NewSpeaker(&fakeSynth{}, player)

	if err := speaker.Speak(context.Background(), "   "); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if len(player.played) != 0 {
		t.Errorf("nothing should be played, got %v", player.played)
	}
}

func TestSpeakerStop(t *testing.T) {
	player := newBlockingPlayer()
	speaker := NewSpeaker(&fakeSynth{}, player)

	errc := make(chan error, 1)
	go func() { errc <- speaker.Speak(context.Background(), "long text") }()

	<-player.started
	if !speaker.Speaking() {
		t.Error("speaker should report speech in progress")
	}
	if !speaker.Stop() {
		t.Error("Stop() should report interrupted speech")
	}

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("interrupted Speak() should return nil, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Speak() did not return after Stop()")
	}

	if speaker.Stop() {
		t.Error("Stop() on an idle speaker should report false")
	}
}

func TestSpeakerInterruptsPreviousSpeech(t *testing.T) {
	player := newBlockingPlayer()
	speaker := NewSpeaker(&fakeSynth{}, player)

	first := make(chan error, 1)
	go func() { first <- speaker.Speak(context.Background(), "first") }()
	<-player.started

	second := make(chan error, 1)
	go func() { second <- speaker.Speak(context.Background(), "second") }()

	select {
	case err := <-first:
		if err != nil {
			t.Errorf("interrupted speech should return nil, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first speech was not interrupted")
	}

	if got := <-player.started; got != "RIFFsecond" {
		t.Errorf("second speech played %q", got)
	}
	close(player.release)
	if err := <-second; err != nil {
		t.Errorf("second Speak() error = %v", err)
	}
}

func TestSpeakerSynthesisError(t *testing.T) {
	speaker := NewSpeaker(&fakeSynth{err: ErrSynthesisFailed}, newBlockingPlayer())

	err := speaker.Speak(context.Background(), "text")
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Errorf("expected ErrSynthesisFailed, got %v", err)
	}
}

func TestSpeakerParentCanceled(t *testing.T) {
	player := newBlockingPlayer()
	speaker := NewSpeaker(&fakeSynth{}, player)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- speaker.Speak(ctx, "text") }()
	<-player.started
	cancel()

	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
