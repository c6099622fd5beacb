// Package artifact manages the synthesized audio files written to the
// storage directory: naming, writing and age-based reaping. The directory
// itself is the registry; there is no index file.
package artifact
