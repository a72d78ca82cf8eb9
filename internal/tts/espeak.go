package tts

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// EspeakSynthesizer speaks offline through the espeak-ng command line tool.
type EspeakSynthesizer struct {
	binary    string
	voice     string
	rate      int
	amplitude int
}

// NewEspeakSynthesizer locates espeak-ng (or espeak) on PATH.
func NewEspeakSynthesizer(config Config) (*EspeakSynthesizer, error) {
	binary, err := lookPath("espeak-ng", "espeak")
	if err != nil {
		return nil, err
	}
	return newEspeakSynthesizer(binary, config), nil
}

func newEspeakSynthesizer(binary string, config Config) *EspeakSynthesizer {
	defaults := DefaultConfig()
	if config.Voice == "" {
		config.Voice = defaults.Voice
	}
	if config.Rate <= 0 {
		config.Rate = defaults.Rate
	}

	// espeak amplitude runs 0-200 with 100 as the normal level
	volume := math.Max(0, math.Min(1, config.Volume))
	return &EspeakSynthesizer{
		binary:    binary,
		voice:     config.Voice,
		rate:      config.Rate,
		amplitude: int(math.Round(volume * 100)),
	}
}

func (e *EspeakSynthesizer) Name() string   { return "espeak" }
func (e *EspeakSynthesizer) Format() string { return "wav" }
func (e *EspeakSynthesizer) Online() bool   { return false }
func (e *EspeakSynthesizer) Close() error   { return nil }

// args returns the command line for a WAV rendition read from stdin.
func (e *EspeakSynthesizer) args() []string {
	return []string{
		"-v", e.voice,
		"-s", strconv.Itoa(e.rate),
		"-a", strconv.Itoa(e.amplitude),
		"--stdin",
		"--stdout",
	}
}

// Synthesize renders text to WAV.
func (e *EspeakSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	const op = "EspeakSynthesizer.Synthesize"

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, e.args()...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w: %v: %s", op, ErrSynthesisFailed, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s: %w: no audio produced", op, ErrSynthesisFailed)
	}
	return stdout.Bytes(), nil
}

// lookPath returns the first of names found on PATH.
func lookPath(names ...string) (string, error) {
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %s found in PATH", ErrSynthesisFailed, strings.Join(names, ", "))
}
