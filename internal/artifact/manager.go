package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/snapspeak/internal/speech"
	"github.com/gofrs/flock"
)

const (
	// Extension is appended to every artifact name.
	Extension = ".mp3"

	// DefaultName is used when no name can be derived from the source text.
	DefaultName = "audio"

	// DefaultDir is the storage directory, relative to the working directory.
	DefaultDir = "temp"

	// DefaultRetentionDays is how long artifacts survive a reap.
	DefaultRetentionDays = 7

	nameLength = 20
	lockName   = ".snapspeak.lock"

	// Longest retention a time.Duration can hold. Anything above keeps
	// every artifact.
	maxRetentionDays = math.MaxInt64 / int64(24*time.Hour)
)

// Artifact is a synthesized audio file on disk.
type Artifact struct {
	Name    string    // Stem derived from the source text
	Text    string    // Text that was synthesized
	Path    string    // storage dir + Name + Extension
	Size    int64     // Only set by List
	ModTime time.Time // Only set by List
}

// ReapResult reports what a reap pass did.
type ReapResult struct {
	Scanned int
	Deleted []string
	Failed  map[string]error
}

// Manager owns the artifact storage directory.
type Manager struct {
	dir string

	// Swappable for tests.
	now    func() time.Time
	remove func(string) error
}

// NewManager returns a manager for dir. An empty dir means DefaultDir.
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = DefaultDir
	}
	return &Manager{
		dir:    dir,
		now:    time.Now,
		remove: os.Remove,
	}
}

// Dir returns the storage directory.
func (m *Manager) Dir() string {
	return m.dir
}

// PathFor returns where an artifact with the given name is stored.
func (m *Manager) PathFor(name string) string {
	return filepath.Join(m.dir, name+Extension)
}

// EnsureStorage creates the storage directory if it is missing. It never
// fails: an existing directory or a lost creation race is fine, and any
// other problem surfaces later when a write is attempted.
func (m *Manager) EnsureStorage() {
	if err := os.MkdirAll(m.dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		log.Warn("could not create artifact directory", "dir", m.dir, "error", err)
	}
}

// DeriveName builds a file stem from the first 20 characters of text, with
// spaces and newlines replaced by underscores. When that does not yield a
// usable single path element, DefaultName is returned.
func DeriveName(text string) (name string) {
	defer func() {
		if recover() != nil {
			name = DefaultName
		}
	}()

	runes := []rune(text)
	if len(runes) > nameLength {
		runes = runes[:nameLength]
	}
	name = strings.NewReplacer(" ", "_", "\n", "_").Replace(string(runes))

	if !validName(name) {
		return DefaultName
	}
	return name
}

func validName(name string) bool {
	switch name {
	case "", ".", "..":
		return false
	}
	return !strings.ContainsAny(name, "/\x00"+string(os.PathSeparator))
}

// Write synthesizes text with synth and stores the audio as name.mp3,
// replacing any artifact with the same name. On failure no artifact is
// returned and nothing is left at the target path.
func (m *Manager) Write(ctx context.Context, name, text string, voice speech.Voice, synth speech.Synthesizer) (*Artifact, error) {
	if synth == nil {
		return nil, errors.New("no synthesizer configured")
	}
	if !validName(name) {
		name = DefaultName
	}

	m.EnsureStorage()

	unlock := m.lock(false)
	defer unlock()

	audio, err := synth.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	path := m.PathFor(name)
	if err := writeFile(path, audio); err != nil {
		return nil, fmt.Errorf("failed to write artifact: %w", err)
	}

	log.Debug("wrote artifact", "path", path, "bytes", len(audio))

	return &Artifact{
		Name: name,
		Text: text,
		Path: path,
	}, nil
}

// Reap deletes artifacts whose modification time is strictly older than
// maxAgeDays days. Failures are logged per file and never stop the scan.
func (m *Manager) Reap(maxAgeDays int) ReapResult {
	if maxAgeDays < 0 {
		maxAgeDays = 0
	}

	result := ReapResult{Failed: make(map[string]error)}

	matches, err := filepath.Glob(filepath.Join(m.dir, "*"+Extension))
	if err != nil || len(matches) == 0 {
		return result
	}

	unlock := m.lock(true)
	defer unlock()

	var cutoff time.Time
	if int64(maxAgeDays) <= maxRetentionDays {
		cutoff = m.now().Add(-time.Duration(maxAgeDays) * 24 * time.Hour)
	}

	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			log.Warn("could not stat artifact", "path", path, "error", err)
			result.Failed[path] = err
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		result.Scanned++

		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := m.remove(path); err != nil {
			log.Warn("could not delete artifact", "path", path, "error", err)
			result.Failed[path] = err
			continue
		}

		log.Info("deleted artifact", "path", path, "modified", info.ModTime())
		result.Deleted = append(result.Deleted, path)
	}

	return result
}

// List returns the artifacts currently on disk, newest first.
func (m *Manager) List() ([]Artifact, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read artifact directory: %w", err)
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != Extension {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:    strings.TrimSuffix(entry.Name(), Extension),
			Path:    filepath.Join(m.dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].ModTime.After(artifacts[j].ModTime)
	})

	return artifacts, nil
}

// lock takes the advisory directory lock, shared for writers and exclusive
// for the reaper. If the lock cannot be taken the caller proceeds unlocked.
func (m *Manager) lock(exclusive bool) func() {
	fl := flock.New(filepath.Join(m.dir, lockName))

	var err error
	if exclusive {
		err = fl.Lock()
	} else {
		err = fl.RLock()
	}
	if err != nil {
		log.Debug("proceeding without artifact lock", "dir", m.dir, "error", err)
		return func() {}
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			log.Debug("failed to release artifact lock", "error", err)
		}
	}
}

// writeFile writes to a sibling temp file and renames it into place so a
// reader never sees a partial artifact.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".partial-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	closeErr := tmp.Close()

	if err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return closeErr
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
