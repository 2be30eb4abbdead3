// Package media wraps the external ffmpeg toolkit behind the Decoder interface.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"mediascribe/pkg/models"
)

// Runner executes an external command, returning stdout. Split out so tests
// can stub the ffmpeg invocation.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", fmt.Errorf("command %q failed: %w: %s", name, err, stderrStr)
		}
		return "", fmt.Errorf("command %q failed: %w", name, err)
	}

	return stdout.String(), nil
}

// FFmpegDecoder implements models.Decoder by shelling out to ffmpeg.
type FFmpegDecoder struct {
	binary string
	runner Runner
}

func NewFFmpegDecoder(binary string) *FFmpegDecoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegDecoder{binary: binary, runner: execRunner{}}
}

// NewFFmpegDecoderWithRunner is used by tests to inject a stub runner.
func NewFFmpegDecoderWithRunner(binary string, runner Runner) *FFmpegDecoder {
	return &FFmpegDecoder{binary: binary, runner: runner}
}

// ExtractAudio produces the normalized artifact speech recognition expects:
// mono, 16kHz, 16-bit PCM WAV.
func (d *FFmpegDecoder) ExtractAudio(ctx context.Context, mediaPath, audioPath string) error {
	args := []string{
		"-i", mediaPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		audioPath,
	}

	if _, err := d.runner.Run(ctx, d.binary, args...); err != nil {
		return fmt.Errorf("extract audio from %s: %w", mediaPath, err)
	}
	return nil
}

var _ models.Decoder = (*FFmpegDecoder)(nil)
