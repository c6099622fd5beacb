package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

const diskExt = ".zst"

// DiskCache implements an L2 disk-based cache. Every entry is one zstd
// compressed file named after its key, so the directory is the index.
type DiskCache struct {
	basePath string

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu    sync.Mutex
	stats Stats
}

// NewDiskCache creates a disk cache in basePath. Level is a zstd level
// (1-22); 0 selects the default.
func NewDiskCache(basePath string, level int) (*DiskCache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	encLevel := zstd.SpeedDefault
	if level > 0 {
		encLevel = zstd.EncoderLevelFromZstd(level)
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(encLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &DiskCache{
		basePath: basePath,
		encoder:  encoder,
		decoder:  decoder,
	}, nil
}

// Get retrieves a value from the disk cache. Unreadable entries are removed
// and reported as misses.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	path := dc.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		dc.stats.Misses++
		return nil, false
	}

	value, err := dc.decoder.DecodeAll(data, nil)
	if err != nil {
		log.Debug("dropping corrupt cache entry", "path", path, "error", err)
		_ = os.Remove(path)
		dc.stats.Misses++
		return nil, false
	}

	// Age counts from last use.
	now := time.Now()
	_ = os.Chtimes(path, now, now)

	dc.stats.Hits++
	return value, true
}

// Put stores a value in the disk cache.
func (dc *DiskCache) Put(key string, value []byte) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	path := dc.path(key)
	tmp, err := os.CreateTemp(dc.basePath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	_, err = tmp.Write(dc.encoder.EncodeAll(value, nil))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// Delete removes an entry from the disk cache.
func (dc *DiskCache) Delete(key string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if err := os.Remove(dc.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Prune removes entries unused for longer than maxAge and returns how many
// were removed.
func (dc *DiskCache) Prune(maxAge time.Duration) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entries, err := os.ReadDir(dc.basePath)
	if err != nil {
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), diskExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dc.basePath, entry.Name())); err != nil {
			log.Warn("could not prune cache entry", "name", entry.Name(), "error", err)
			continue
		}
		removed++
	}

	dc.stats.Evictions += int64(removed)
	return removed
}

// Stats returns cache statistics.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	stats := dc.stats
	entries, _ := os.ReadDir(dc.basePath)
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), diskExt) {
			continue
		}
		if info, err := entry.Info(); err == nil {
			stats.Size += info.Size()
			stats.ItemCount++
		}
	}
	return stats
}

// Close releases the zstd encoder and decoder.
func (dc *DiskCache) Close() error {
	dc.decoder.Close()
	return dc.encoder.Close()
}

func (dc *DiskCache) path(key string) string {
	return filepath.Join(dc.basePath, key+diskExt)
}

var _ Cache = (*DiskCache)(nil)
