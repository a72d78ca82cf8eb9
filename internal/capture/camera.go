package capture

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CameraConfig describes the capture device.
type CameraConfig struct {
	Device string // e.g. /dev/video0
	Width  int
	Height int
	FPS    int
}

// DefaultCameraConfig returns a 720p stream at 30 fps on the first device.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{Device: "/dev/video0", Width: 1280, Height: 720, FPS: 30}
}

// CameraSource grabs single frames from a V4L2 device through ffmpeg.
type CameraSource struct {
	binary string
	config CameraConfig
}

// NewCameraSource locates ffmpeg. The device itself is only opened on Capture.
func NewCameraSource(config CameraConfig) (*CameraSource, error) {
	binary, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg not found in PATH", ErrCameraUnavailable)
	}
	return &CameraSource{binary: binary, config: config}, nil
}

func (c *CameraSource) Name() string { return "camera:" + c.config.Device }

// args returns the ffmpeg command line writing one PNG frame to stdout.
func (c *CameraSource) args() []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "v4l2",
		"-framerate", strconv.Itoa(c.config.FPS),
		"-video_size", fmt.Sprintf("%dx%d", c.config.Width, c.config.Height),
		"-i", c.config.Device,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}
}

// Capture grabs one frame as PNG.
func (c *CameraSource) Capture(ctx context.Context) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary, c.args()...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrCameraUnavailable, c.config.Device, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFrame, c.config.Device)
	}
	return stdout.Bytes(), nil
}

func (c *CameraSource) Close() error { return nil }
