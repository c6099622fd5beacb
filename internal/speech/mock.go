package speech

import (
	"context"
	"strings"
	"sync"
)

// MockEngine produces placeholder audio without touching the network. The
// output is an ID3 tag carrying the text, which players treat as an empty
// clip.
type MockEngine struct {
	mu    sync.Mutex
	calls []string

	// Err, when set, is returned by every Synthesize call.
	Err error
}

// NewMockEngine creates a new mock engine.
func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

// Synthesize returns deterministic bytes for text.
func (e *MockEngine) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.calls = append(e.calls, text)
	e.mu.Unlock()

	if e.Err != nil {
		return nil, e.Err
	}
	if strings.TrimSpace(text) == "" {
		return nil, NewError(ErrorCodeInvalidInput, "nothing to synthesize", ErrEmptyText)
	}

	return MockAudio(text, voice), nil
}

// Calls returns the texts synthesized so far.
func (e *MockEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// MockAudio is the payload MockEngine returns for text and voice.
func MockAudio(text string, voice Voice) []byte {
	out := []byte("ID3")
	out = append(out, voice.Language...)
	out = append(out, ':')
	return append(out, text...)
}

var _ Synthesizer = (*MockEngine)(nil)
