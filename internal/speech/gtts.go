package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const (
	// Google rejects very long requests; gtts-cli splits internally but
	// anything past this is almost certainly an OCR accident.
	maxTextSize = 5000

	maxMP3Size = 50 * 1024 * 1024
)

// GTTSEngine synthesizes speech with gtts-cli (Google Translate TTS).
// No API key is needed but an internet connection is.
type GTTSEngine struct {
	binary  string
	timeout time.Duration

	// Rate limiting to avoid being blocked by Google
	rateLimiter *rate.Limiter
}

// GTTSConfig holds configuration for the gTTS engine.
type GTTSConfig struct {
	// Binary is the gtts-cli executable, defaults to "gtts-cli" on PATH.
	Binary string

	// Timeout bounds a single synthesis call, defaults to 30s.
	Timeout time.Duration

	// Rate limit requests per minute to avoid being blocked (defaults to 50)
	RequestsPerMinute int
}

// NewGTTSEngine creates a new gTTS engine.
func NewGTTSEngine(config GTTSConfig) (*GTTSEngine, error) {
	if config.Binary == "" {
		config.Binary = "gtts-cli"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 50
	}

	return &GTTSEngine{
		binary:      config.Binary,
		timeout:     config.Timeout,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
	}, nil
}

// Synthesize runs gtts-cli with the text on stdin and returns the MP3 it
// writes to stdout.
func (e *GTTSEngine) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewError(ErrorCodeInvalidInput, "nothing to synthesize", ErrEmptyText)
	}
	if len(text) > maxTextSize {
		return nil, NewError(ErrorCodeTextTooLong, fmt.Sprintf("text too long: %d characters (max %d)", len(text), maxTextSize), nil)
	}

	if err := e.rateLimiter.Wait(ctx); err != nil {
		return nil, NewError(ErrorCodeEngineTimeout, "rate limit wait cancelled", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.binary, e.args(voice)...)
	cmd.Stdin = strings.NewReader(text)
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
			return nil, NewError(ErrorCodeEngineTimeout, fmt.Sprintf("gtts-cli timed out after %s", e.timeout), ctx.Err())
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, NewError(ErrorCodeEngineUnavailable, "gtts-cli not found, install with: pip install gtts", err)
		}
		return nil, NewError(ErrorCodeEngineFailure, fmt.Sprintf("gtts-cli failed, stderr: %s", strings.TrimSpace(stderr.String())), err)
	}

	mp3 := stdout.Bytes()
	if len(mp3) == 0 {
		return nil, NewError(ErrorCodeEngineFailure, fmt.Sprintf("gtts-cli produced no output, stderr: %s", strings.TrimSpace(stderr.String())), nil)
	}
	if len(mp3) > maxMP3Size {
		return nil, NewError(ErrorCodeEngineFailure, fmt.Sprintf("gtts-cli output too large: %d bytes (max %d)", len(mp3), maxMP3Size), nil)
	}

	log.Debug("gtts synthesis finished",
		"lang", voice.Language,
		"tld", voice.TLD,
		"chars", len(text),
		"bytes", len(mp3),
		"took", time.Since(start))

	return mp3, nil
}

func (e *GTTSEngine) args(voice Voice) []string {
	lang := voice.Language
	if lang == "" {
		lang = "en"
	}
	tld := voice.TLD
	if tld == "" {
		tld = "com"
	}

	args := []string{"-", "--lang", lang, "--tld", tld}
	if voice.Slow {
		args = append(args, "--slow")
	}
	return append(args, "--output", "-")
}

// Validate checks that gtts-cli can be executed.
func (e *GTTSEngine) Validate() error {
	path, err := exec.LookPath(e.binary)
	if err != nil {
		return fmt.Errorf("gtts-cli not found in PATH: %w\n\nInstall with: pip install gtts", err)
	}
	if err := exec.Command(path, "--help").Run(); err != nil {
		return fmt.Errorf("cannot execute gtts-cli: %w", err)
	}
	return nil
}

var _ Synthesizer = (*GTTSEngine)(nil)
