// Package cache provides a two-level cache for translations.
// It includes an in-memory LRU cache (L1) and a persistent, zstd compressed
// disk cache (L2) whose entries expire by age.
package cache
