package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// ErrPlayerClosed is returned by Play after Close.
var ErrPlayerClosed = errors.New("player is closed")

// AudioPlayer plays PCM produced by DecodeMP3.
type AudioPlayer interface {
	// Play blocks until the clip finishes or ctx is done.
	Play(ctx context.Context, pcm []byte) error
	Close() error
}

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate int // 44100 or 48000 Hz only
	Channels   int // 1 = mono, 2 = stereo
	BitDepth   int // 16 bits per sample
	BufferSize int // Buffer size in bytes
}

// DefaultPlayerConfig returns the default player configuration.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: 44100, // CD quality
		Channels:   1,     // Mono for TTS
		BitDepth:   16,
		BufferSize: 4096,
	}
}

// validateConfig validates the player configuration.
func validateConfig(config PlayerConfig) error {
	// OTO only supports specific sample rates reliably
	if config.SampleRate != 44100 && config.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", config.SampleRate)
	}

	if config.Channels != 1 && config.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", config.Channels)
	}

	if config.BitDepth != 16 {
		return fmt.Errorf("bit depth must be 16, got %d", config.BitDepth)
	}

	if config.BufferSize <= 0 {
		return errors.New("buffer size must be positive")
	}

	return nil
}

// Duration returns how long pcm plays for under config.
func (config PlayerConfig) Duration(pcm []byte) time.Duration {
	frame := config.Channels * config.BitDepth / 8
	if frame <= 0 || config.SampleRate <= 0 {
		return 0
	}
	samples := len(pcm) / frame
	return time.Duration(samples) * time.Second / time.Duration(config.SampleRate)
}

// Player plays PCM clips one at a time on the default output device.
type Player struct {
	context *oto.Context
	config  PlayerConfig

	state  atomic.Int32  // PlayerState
	volume atomic.Uint64 // math.Float64bits

	// Serializes Play calls; oto mixes concurrent players otherwise.
	playMu sync.Mutex
}

// the audio device can only be opened once per process.
var (
	otoOnce    sync.Once
	otoContext *oto.Context
	otoErr     error
)

// NewPlayer opens the audio device with the specified configuration.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   config.SampleRate,
			ChannelCount: config.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   time.Duration(config.BufferSize) * time.Second / time.Duration(config.SampleRate*config.Channels*2),
		}
		var ready chan struct{}
		otoContext, ready, otoErr = oto.NewContext(op)
		if otoErr == nil {
			<-ready
		}
	})
	if otoErr != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", otoErr)
	}

	p := &Player{
		context: otoContext,
		config:  config,
	}
	p.state.Store(int32(StateStopped))
	p.volume.Store(math.Float64bits(1.0))

	return p, nil
}

// Play plays pcm and waits for it to finish. Cancelling ctx stops playback
// and returns ctx.Err().
func (p *Player) Play(ctx context.Context, pcm []byte) error {
	if len(pcm) == 0 {
		return errors.New("audio data is empty")
	}

	p.playMu.Lock()
	defer p.playMu.Unlock()

	if p.State() == StateClosed {
		return ErrPlayerClosed
	}

	player := p.context.NewPlayer(bytes.NewReader(pcm))
	defer player.Close() //nolint:errcheck

	player.SetVolume(p.Volume())
	player.Play()
	p.state.Store(int32(StatePlaying))
	defer p.state.CompareAndSwap(int32(StatePlaying), int32(StateStopped))

	log.Debug("playback started", "bytes", len(pcm), "duration", p.config.Duration(pcm))

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
			if p.State() == StateClosed {
				player.Pause()
				return ErrPlayerClosed
			}
		}
	}

	return nil
}

// SetVolume sets the playback volume (0.0 to 1.0) for subsequent clips.
func (p *Player) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 || math.IsNaN(volume) {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}
	p.volume.Store(math.Float64bits(volume))
	return nil
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	return math.Float64frombits(p.volume.Load())
}

// State returns the current player state.
func (p *Player) State() PlayerState {
	return PlayerState(p.state.Load())
}

// Close stops any clip in progress. The device stays open for the life of
// the process since oto cannot reopen it.
func (p *Player) Close() error {
	p.state.Store(int32(StateClosed))
	return nil
}

var _ AudioPlayer = (*Player)(nil)
