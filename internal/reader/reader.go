// Package reader runs the capture, recognize and speak cycle.
package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"visionspeak/internal/capture"
	"visionspeak/internal/logger"
	"visionspeak/internal/ocr"
)

var (
	// ErrNotReady is returned when Read is called before Start completed.
	ErrNotReady = errors.New("System not ready yet")

	// ErrBusy is returned when a read is already in progress.
	ErrBusy = errors.New("a read is already in progress")

	// ErrNothingToRepeat is returned by Repeat before any text was found.
	ErrNothingToRepeat = errors.New("no text has been read yet")
)

// Recognizer turns an encoded image into a merged reading.
type Recognizer interface {
	Run(ctx context.Context, image []byte) (*ocr.OCRResult, error)
}

// Voice speaks text, interrupting earlier speech.
type Voice interface {
	Speak(ctx context.Context, text string) error
	Stop() bool
}

// Outcome is the result of one read.
type Outcome struct {
	Status     Status
	Text       string // merged text, set with StatusFound
	Confidence float64
	Detail     string // what was shown under the status
	Spoken     string // what was handed to the voice
	Result     *ocr.OCRResult
	Err        error
}

// Reader coordinates a capture source, a recognizer and a voice.
type Reader struct {
	source     capture.Source
	recognizer Recognizer
	voice      Voice
	onStatus   StatusFunc
	log        zerolog.Logger

	ready atomic.Bool
	busy  atomic.Bool

	mu       sync.Mutex
	lastText string
	baseCtx  context.Context
	cancel   context.CancelFunc
	speech   sync.WaitGroup
}

// New creates a reader. source may be nil when images are handed in through
// ReadImage only. onStatus may be nil.
func New(source capture.Source, recognizer Recognizer, voice Voice, onStatus StatusFunc) *Reader {
	if onStatus == nil {
		onStatus = func(Update) {}
	}
	return &Reader{
		source:     source,
		recognizer: recognizer,
		voice:      voice,
		onStatus:   onStatus,
		log:        logger.WithComponent("reader"),
		baseCtx:    context.Background(),
		cancel:     func() {},
	}
}

func (r *Reader) emit(status Status, detail string, confidence float64) {
	r.log.Debug().Str("status", string(status)).Str("detail", detail).Msg("Status")
	r.onStatus(Update{Status: status, Detail: detail, Confidence: confidence, Time: time.Now()})
}

// Start walks through the startup stages and marks the reader ready. Speech
// started later lives as long as ctx, or until Close.
func (r *Reader) Start(ctx context.Context) error {
	r.mu.Lock()
	r.baseCtx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	r.emit(StatusStarting, "", 0)
	r.emit(StatusLoadingTTS, "", 0)

	if r.source != nil {
		r.emit(StatusStartingCamera, r.source.Name(), 0)
	}

	r.emit(StatusLoadingOCR, "", 0)
	if r.recognizer == nil {
		err := errors.New("no OCR engine configured")
		r.emit(StatusError, err.Error(), 0)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.ready.Store(true)
	r.emit(StatusReady, "", 0)
	r.log.Info().Msg("Reader ready")
	return nil
}

// Ready reports whether Start completed.
func (r *Reader) Ready() bool {
	return r.ready.Load()
}

// Read captures a frame from the source and reads it aloud.
func (r *Reader) Read(ctx context.Context) (Outcome, error) {
	if r.source == nil {
		return Outcome{}, fmt.Errorf("%w: no capture source", capture.ErrCameraUnavailable)
	}
	if err := r.acquire(); err != nil {
		return Outcome{}, err
	}
	defer r.busy.Store(false)

	r.emit(StatusCapturing, "", 0)
	image, err := r.source.Capture(ctx)
	if err != nil {
		r.log.Error().Err(err).Str("source", r.source.Name()).Msg("Capture failed")
		r.emit(StatusCameraError, err.Error(), 0)
		r.speak(SpeechCameraError)
		return Outcome{Status: StatusCameraError, Detail: err.Error(), Spoken: SpeechCameraError, Err: err}, nil
	}

	return r.recognize(ctx, image), nil
}

// ReadImage reads an already captured image aloud.
func (r *Reader) ReadImage(ctx context.Context, image []byte) (Outcome, error) {
	if err := r.acquire(); err != nil {
		return Outcome{}, err
	}
	defer r.busy.Store(false)

	return r.recognize(ctx, image), nil
}

func (r *Reader) acquire() error {
	if !r.ready.Load() {
		return ErrNotReady
	}
	if !r.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

func (r *Reader) recognize(ctx context.Context, image []byte) Outcome {
	r.emit(StatusReading, "", 0)

	result, err := r.recognizer.Run(ctx, image)
	if err != nil {
		msg := fmt.Sprintf("Error: %v", err)
		r.log.Error().Err(err).Msg("Recognition failed")
		r.emit(StatusError, msg, 0)
		r.speak(msg)
		return Outcome{Status: StatusError, Detail: msg, Spoken: msg, Err: err}
	}

	switch {
	case result.Candidates == 0:
		r.emit(StatusNoTextDetected, HintNoTextDetected, 0)
		r.speak(SpeechNoTextDetected)
		return Outcome{Status: StatusNoTextDetected, Detail: HintNoTextDetected, Spoken: SpeechNoTextDetected, Result: result}

	case result.Text == "":
		r.emit(StatusNoTextFound, HintNoTextFound, 0)
		r.speak(SpeechNoTextFound)
		return Outcome{Status: StatusNoTextFound, Detail: HintNoTextFound, Spoken: SpeechNoTextFound, Result: result}
	}

	r.mu.Lock()
	r.lastText = result.Text
	r.mu.Unlock()

	r.log.Info().
		Int("words", len(result.Detections)).
		Float64("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Msg("Text found")

	r.emit(StatusFound, result.Text, result.Confidence)
	r.speak(result.Text)

	return Outcome{
		Status:     StatusFound,
		Text:       result.Text,
		Confidence: result.Confidence,
		Detail:     result.Text,
		Spoken:     result.Text,
		Result:     result,
	}
}

// speak hands text to the voice without blocking the read.
func (r *Reader) speak(text string) {
	if r.voice == nil {
		return
	}

	r.mu.Lock()
	ctx := r.baseCtx
	r.mu.Unlock()

	r.speech.Add(1)
	go func() {
		defer r.speech.Done()
		if err := r.voice.Speak(ctx, text); err != nil {
			r.log.Warn().Err(err).Msg("Speech failed")
		}
	}()
}

// Stop silences the voice.
func (r *Reader) Stop() {
	if r.voice != nil {
		r.voice.Stop()
	}
	r.emit(StatusStopped, "", 0)
}

// Repeat speaks the last found text again.
func (r *Reader) Repeat() error {
	text := r.LastText()
	if text == "" {
		return ErrNothingToRepeat
	}
	r.speak(text)
	return nil
}

// LastText returns the most recently found text.
func (r *Reader) LastText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastText
}

// Wait blocks until all pending speech has finished.
func (r *Reader) Wait() {
	r.speech.Wait()
}

// Close stops speech, waits for it and releases the source.
func (r *Reader) Close() error {
	r.mu.Lock()
	r.cancel()
	r.mu.Unlock()
	if r.voice != nil {
		r.voice.Stop()
	}
	r.speech.Wait()
	r.ready.Store(false)
	if r.source != nil {
		return r.source.Close()
	}
	return nil
}
