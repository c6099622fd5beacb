package cache

// Tiered checks the memory cache first and falls back to disk, promoting
// disk hits into memory.
type Tiered struct {
	L1 *MemoryCache
	L2 *DiskCache
}

func (t *Tiered) Get(key string) ([]byte, bool) {
	if v, ok := t.L1.Get(key); ok {
		return v, true
	}
	v, ok := t.L2.Get(key)
	if ok {
		_ = t.L1.Put(key, v)
	}
	return v, ok
}

// Put writes through to both levels. A value too large for memory still
// goes to disk.
func (t *Tiered) Put(key string, value []byte) error {
	_ = t.L1.Put(key, value)
	return t.L2.Put(key, value)
}

func (t *Tiered) Delete(key string) error {
	_ = t.L1.Delete(key)
	return t.L2.Delete(key)
}

// Stats returns the combined hit counts of both levels and the size on disk.
func (t *Tiered) Stats() Stats {
	l1, l2 := t.L1.Stats(), t.L2.Stats()
	return Stats{
		Size:      l2.Size,
		ItemCount: l2.ItemCount,
		Hits:      l1.Hits + l2.Hits,
		Misses:    l2.Misses,
		Evictions: l1.Evictions + l2.Evictions,
	}
}

var _ Cache = (*Tiered)(nil)
