package audio

import (
	"context"
	"sync"
)

// MockPlayer implements AudioPlayer for testing purposes.
// It records clips without producing sound.
type MockPlayer struct {
	mu     sync.Mutex
	clips  [][]byte
	closed bool

	// Err, when set, is returned by every Play call.
	Err error
}

// NewMockPlayer creates a new mock player.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

func (m *MockPlayer) Play(ctx context.Context, pcm []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrPlayerClosed
	}
	if m.Err != nil {
		return m.Err
	}
	m.clips = append(m.clips, append([]byte(nil), pcm...))
	return nil
}

func (m *MockPlayer) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Clips returns the clips played so far.
func (m *MockPlayer) Clips() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.clips...)
}

var _ AudioPlayer = (*MockPlayer)(nil)
