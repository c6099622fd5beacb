package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	if Key("en", "es", "hi") == Key("en", "es", "hi ") {
		t.Error("different inputs produced the same key")
	}
	if Key("a", "bc") == Key("ab", "c") {
		t.Error("part boundaries must affect the key")
	}
	if k := Key("x"); len(k) != 64 || strings.ContainsAny(k, "/.") {
		t.Errorf("unexpected key %q", k)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(10)

	if err := c.Put("a", []byte("12345")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put("b", []byte("12345")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// touch a so b is the least recently used
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit for a")
	}
	if err := c.Put("c", []byte("123")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || string(v) != "12345" {
		t.Errorf("a = %q, %v", v, ok)
	}

	stats := c.Stats()
	if stats.Size != 8 || stats.ItemCount != 2 || stats.Evictions != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("hits/misses = %d/%d", stats.Hits, stats.Misses)
	}

	if err := c.Put("big", make([]byte, 11)); err != ErrItemTooLarge {
		t.Errorf("expected ErrItemTooLarge, got %v", err)
	}

	// replacing a key adjusts the size instead of adding to it
	_ = c.Put("a", []byte("1"))
	if s := c.Stats().Size; s != 4 {
		t.Errorf("size after replace = %d, want 4", s)
	}

	_ = c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}
}

func TestDiskCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "translations")
	dc, err := NewDiskCache(dir, 3)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	defer dc.Close()

	value := bytes.Repeat([]byte("Hola mundo. "), 200)
	key := Key("en", "es", "Hello world.")

	if _, ok := dc.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := dc.Put(key, value); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := dc.Get(key)
	if !ok || !bytes.Equal(got, value) {
		t.Fatalf("Get = %d bytes, %v", len(got), ok)
	}

	stats := dc.Stats()
	if stats.ItemCount != 1 || stats.Size <= 0 || stats.Size >= int64(len(value)) {
		t.Errorf("expected one compressed entry, got %+v", stats)
	}

	// survives a new instance
	dc2, err := NewDiskCache(dir, 0)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	defer dc2.Close()
	if _, ok := dc2.Get(key); !ok {
		t.Error("entry not persisted")
	}

	if err := dc.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := dc.Delete(key); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}
}

func TestDiskCache_Corrupt(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 0)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	defer dc.Close()

	key := Key("x")
	if err := os.WriteFile(filepath.Join(dir, key+diskExt), []byte("not zstd"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := dc.Get(key); ok {
		t.Error("corrupt entry should be a miss")
	}
	if _, err := os.Stat(filepath.Join(dir, key+diskExt)); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestDiskCache_Prune(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 0)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	defer dc.Close()

	_ = dc.Put("old", []byte("old"))
	_ = dc.Put("new", []byte("new"))

	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "old"+diskExt), past, past); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "unrelated.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_ = os.Chtimes(filepath.Join(dir, "unrelated.txt"), past, past)

	if n := dc.Prune(24 * time.Hour); n != 1 {
		t.Errorf("Prune removed %d, want 1", n)
	}
	if _, ok := dc.Get("old"); ok {
		t.Error("old entry should be pruned")
	}
	if _, ok := dc.Get("new"); !ok {
		t.Error("new entry should survive")
	}
	if _, err := os.Stat(filepath.Join(dir, "unrelated.txt")); err != nil {
		t.Error("Prune must only touch cache entries")
	}
}

func TestTiered(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	defer dc.Close()

	tc := &Tiered{L1: NewMemoryCache(1024), L2: dc}
	if err := tc.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// drop from memory; the disk copy is promoted on the next read
	_ = tc.L1.Delete("k")
	if v, ok := tc.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	if _, ok := tc.L1.Get("k"); !ok {
		t.Error("disk hit was not promoted to memory")
	}

	_ = tc.Delete("k")
	if _, ok := tc.Get("k"); ok {
		t.Error("expected miss after Delete")
	}
}
