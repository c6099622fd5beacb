// Package speech turns text into encoded MP3 audio.
package speech

import (
	"context"
	"fmt"
	"strings"
)

// Voice selects how text is spoken.
type Voice struct {
	Language string // Language code, e.g. "es" or "zh-cn"
	TLD      string // Regional variant served from this Google domain, e.g. "co.uk"
	Slow     bool
}

// Synthesizer converts text to encoded MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)
}

// EngineType names a Synthesizer implementation.
type EngineType string

const (
	EngineNone EngineType = ""
	EngineGTTS EngineType = "gtts"
	EngineMock EngineType = "mock"
)

// ValidateEngineSelection resolves the engine to use. The CLI argument wins
// over the configured value; aliases are normalized.
func ValidateEngineSelection(cliArg, configured string) (EngineType, error) {
	engine := strings.TrimSpace(cliArg)
	if engine == "" {
		engine = strings.TrimSpace(configured)
	}

	switch strings.ToLower(engine) {
	case "":
		return EngineNone, ErrNoEngineConfigured
	case "gtts", "google":
		return EngineGTTS, nil
	case "mock":
		return EngineMock, nil
	default:
		return EngineNone, fmt.Errorf("%w: %s\n\nSupported engines:\n  - gtts (Google Translate TTS, online)\n  - mock (silent placeholder audio, offline)", ErrInvalidEngine, engine)
	}
}

// New builds the Synthesizer for engine.
func New(engine EngineType, cfg GTTSConfig) (Synthesizer, error) {
	switch engine {
	case EngineGTTS:
		return NewGTTSEngine(cfg)
	case EngineMock:
		return NewMockEngine(), nil
	case EngineNone:
		return nil, ErrNoEngineConfigured
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidEngine, engine)
	}
}
