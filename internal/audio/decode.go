package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ErrDecoderUnavailable is returned when ffmpeg cannot be executed.
var ErrDecoderUnavailable = errors.New("ffmpeg not found, install it to enable playback")

// Decoder converts MP3 to PCM with ffmpeg.
type Decoder struct {
	// Binary defaults to "ffmpeg" on PATH.
	Binary string

	// Timeout bounds a single conversion, defaults to 15s.
	Timeout time.Duration

	// TempDir holds the intermediate MP3, defaults to os.TempDir().
	TempDir string

	// Speed changes the tempo without changing pitch, clamped to
	// 0.5-2.0. Zero means normal speed.
	Speed float64

	// Output format; zero values use DefaultPlayerConfig.
	Config PlayerConfig
}

// DecodeMP3 returns mp3 as signed 16-bit little endian PCM in the decoder's
// output format.
func (d *Decoder) DecodeMP3(ctx context.Context, mp3 []byte) ([]byte, error) {
	if len(mp3) == 0 {
		return nil, errors.New("mp3 data is empty")
	}

	binary := d.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	mp3File, err := os.CreateTemp(d.TempDir, "snapspeak-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp MP3 file: %w", err)
	}
	defer os.Remove(mp3File.Name()) //nolint:errcheck

	if _, err := mp3File.Write(mp3); err != nil {
		mp3File.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to write MP3 data: %w", err)
	}
	if err := mp3File.Close(); err != nil {
		return nil, fmt.Errorf("failed to write MP3 data: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, d.args(mp3File.Name())...)
	cmd.Stdin = strings.NewReader("")
	cmd.WaitDelay = 100 * time.Millisecond
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffmpeg conversion timeout after %s: %w", timeout, ctx.Err())
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, fmt.Errorf("%w: %w", ErrDecoderUnavailable, err)
		}
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	pcm := stdout.Bytes()
	if len(pcm) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no audio, stderr: %s", strings.TrimSpace(stderr.String()))
	}

	log.Debug("mp3 decoded", "mp3", len(mp3), "pcm", len(pcm), "took", time.Since(start))

	return pcm, nil
}

func (d *Decoder) output() PlayerConfig {
	config := d.Config
	def := DefaultPlayerConfig()
	if config.SampleRate == 0 {
		config.SampleRate = def.SampleRate
	}
	if config.Channels == 0 {
		config.Channels = def.Channels
	}
	return config
}

func (d *Decoder) args(input string) []string {
	config := d.output()
	args := []string{
		"-loglevel", "error",
		"-i", input,
		"-f", "s16le", // signed 16-bit little-endian
		"-ar", strconv.Itoa(config.SampleRate),
		"-ac", strconv.Itoa(config.Channels),
	}

	// ffmpeg atempo filter supports 0.5 to 2.0 range
	if d.Speed != 0 && d.Speed != 1.0 {
		speed := min(max(d.Speed, 0.5), 2.0)
		args = append(args, "-filter:a", fmt.Sprintf("atempo=%.2f", speed))
	}

	return append(args, "-")
}
