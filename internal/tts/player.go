package tts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Player sends an encoded audio clip to the sound card and blocks until
// playback ends or ctx is canceled.
type Player interface {
	Play(ctx context.Context, audio []byte, format string) error
}

// CommandPlayer plays audio by piping it into an external command.
type CommandPlayer struct {
	// Commands maps an audio format to the command line reading it from stdin.
	Commands map[string][]string
}

// NewCommandPlayer returns a player for wav (aplay) and mp3 (ffplay). A
// non-empty override, such as "paplay" or "mpv -", is used for every format.
func NewCommandPlayer(override string) *CommandPlayer {
	if fields := strings.Fields(override); len(fields) > 0 {
		return &CommandPlayer{Commands: map[string][]string{"wav": fields, "mp3": fields}}
	}
	return &CommandPlayer{Commands: map[string][]string{
		"wav": {"aplay", "-q", "-"},
		"mp3": {"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "-"},
	}}
}

// Play runs the command for format with audio on stdin.
func (p *CommandPlayer) Play(ctx context.Context, audio []byte, format string) error {
	args, ok := p.Commands[format]
	if !ok || len(args) == 0 {
		return fmt.Errorf("%w: format %q", ErrPlayerUnavailable, format)
	}
	if _, err := exec.LookPath(args[0]); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPlayerUnavailable, args[0], err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = bytes.NewReader(audio)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("audio player %s failed: %v: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
