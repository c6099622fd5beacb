package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrItemTooLarge is returned when an item exceeds the cache capacity
var ErrItemTooLarge = errors.New("item too large for cache")

// Stats holds cache performance metrics
type Stats struct {
	Capacity  int64 // Maximum capacity in bytes, 0 for unbounded
	Size      int64 // Current size in bytes
	ItemCount int64

	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits / (hits + misses).
func (s Stats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

// Cache defines the interface for cache implementations
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Stats() Stats
}

// Key hashes parts into a fixed length key that is safe to use as a file
// name.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
