package artifact

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/snapspeak/internal/speech"
)

// stubSynth returns fixed bytes or a fixed error.
type stubSynth struct {
	audio []byte
	err   error
	texts []string
}

func (s *stubSynth) Synthesize(_ context.Context, text string, _ speech.Voice) ([]byte, error) {
	s.texts = append(s.texts, text)
	if s.err != nil {
		return nil, s.err
	}
	return s.audio, nil
}

// touch creates an artifact file with the given modification time.
func touch(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("mp3"), 0o644); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set mtime on %s: %v", name, err)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestDeriveName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"truncates and replaces", "Hello\nWorld this is long", "Hello_World_this_is_"},
		{"empty falls back", "", DefaultName},
		{"short text kept", "Bonjour", "Bonjour"},
		{"only whitespace", "  \n", "___"},
		{"exactly twenty", "abcdefghijklmnopqrst", "abcdefghijklmnopqrst"},
		{"multibyte counted as characters", "日本語のテキストです。これは長い文章になります", "日本語のテキストです。これは長い文章にな"},
		{"slash is not a usable name", "a/b", DefaultName},
		{"dot dot", "..", DefaultName},
		{"tabs untouched", "tab\there", "tab\there"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveName(tt.text)
			if got != tt.want {
				t.Errorf("DeriveName(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDeriveName_NeverEmpty(t *testing.T) {
	inputs := []string{"", " ", "\n", "\n\n\n", "/", "\x00", strings.Repeat("x", 1000), "\xff\xfe"}
	for _, in := range inputs {
		if got := DeriveName(in); got == "" {
			t.Errorf("DeriveName(%q) returned an empty name", in)
		}
	}
}

func TestEnsureStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "temp")
	m := NewManager(dir)

	m.EnsureStorage()
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("storage directory not created: %v", err)
	}

	// Idempotent.
	m.EnsureStorage()

	// A file in the way is logged, not returned.
	blocked := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocked, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	NewManager(filepath.Join(blocked, "sub")).EnsureStorage()
}

func TestNewManager_DefaultDir(t *testing.T) {
	m := NewManager("")
	if m.Dir() != DefaultDir {
		t.Errorf("Dir() = %q, want %q", m.Dir(), DefaultDir)
	}
	if got := m.PathFor("x"); got != filepath.Join(DefaultDir, "x.mp3") {
		t.Errorf("PathFor() = %q", got)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "temp")
	m := NewManager(dir)
	payload := []byte{0x49, 0x44, 0x33, 0x00, 0xff}
	synth := &stubSynth{audio: payload}

	a, err := m.Write(context.Background(), "Hola", "Hola mundo", speech.Voice{Language: "es"}, synth)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if a.Name != "Hola" || a.Text != "Hola mundo" || a.Path != filepath.Join(dir, "Hola.mp3") {
		t.Errorf("unexpected artifact %+v", a)
	}

	got, err := os.ReadFile(a.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("file contents = %v, want %v", got, payload)
	}

	if len(synth.texts) != 1 || synth.texts[0] != "Hola mundo" {
		t.Errorf("synthesizer received %v", synth.texts)
	}
}

func TestWrite_OverwritesSameName(t *testing.T) {
	m := NewManager(t.TempDir())

	if _, err := m.Write(context.Background(), "same", "one", speech.Voice{}, &stubSynth{audio: []byte("first")}); err != nil {
		t.Fatal(err)
	}
	a, err := m.Write(context.Background(), "same", "two", speech.Voice{}, &stubSynth{audio: []byte("second")})
	if err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(a.Path)
	if string(got) != "second" {
		t.Errorf("expected overwrite, got %q", got)
	}

	list, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("expected a single artifact, got %d", len(list))
	}
}

func TestWrite_SynthesisError(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	cause := errors.New("quota exceeded")

	a, err := m.Write(context.Background(), "fail", "text", speech.Voice{}, &stubSynth{err: cause})
	if a != nil {
		t.Errorf("expected no artifact, got %+v", a)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
	if exists(filepath.Join(dir, "fail.mp3")) {
		t.Error("no file should be written on failure")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".partial-") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestWrite_InvalidNameFallsBack(t *testing.T) {
	m := NewManager(t.TempDir())
	a, err := m.Write(context.Background(), "../escape", "x", speech.Voice{}, &stubSynth{audio: []byte("x")})
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != DefaultName {
		t.Errorf("expected fallback name, got %q", a.Name)
	}
}

func TestWrite_NilSynthesizer(t *testing.T) {
	m := NewManager(t.TempDir())
	if _, err := m.Write(context.Background(), "x", "x", speech.Voice{}, nil); err == nil {
		t.Error("expected error for nil synthesizer")
	}
}

func TestReap(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(dir)
	m.now = func() time.Time { return now }

	old := touch(t, dir, "old.mp3", now.Add(-8*24*time.Hour))
	fresh := touch(t, dir, "fresh.mp3", now.Add(-time.Hour))
	other := touch(t, dir, "notes.txt", now.Add(-30*24*time.Hour))

	result := m.Reap(7)

	if exists(old) {
		t.Error("old artifact should be deleted")
	}
	if !exists(fresh) {
		t.Error("fresh artifact should survive")
	}
	if !exists(other) {
		t.Error("non-audio files must not be touched")
	}
	if len(result.Deleted) != 1 || result.Deleted[0] != old {
		t.Errorf("Deleted = %v", result.Deleted)
	}
	if result.Scanned != 2 {
		t.Errorf("Scanned = %d, want 2", result.Scanned)
	}
}

func TestReap_Idempotent(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	m := NewManager(dir)
	m.now = func() time.Time { return now }

	touch(t, dir, "a.mp3", now.Add(-10*24*time.Hour))
	touch(t, dir, "b.mp3", now.Add(-9*24*time.Hour))
	touch(t, dir, "c.mp3", now)

	first := m.Reap(7)
	second := m.Reap(7)

	if len(first.Deleted) != 2 {
		t.Errorf("first pass deleted %d, want 2", len(first.Deleted))
	}
	if len(second.Deleted) != 0 {
		t.Errorf("second pass deleted %d, want 0", len(second.Deleted))
	}
}

func TestReap_BoundaryIsExclusive(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(dir)
	m.now = func() time.Time { return now }

	edge := touch(t, dir, "edge.mp3", now.Add(-7*24*time.Hour))
	past := touch(t, dir, "past.mp3", now.Add(-7*24*time.Hour-time.Second))

	m.Reap(7)

	if !exists(edge) {
		t.Error("file exactly at the threshold must not be reaped")
	}
	if exists(past) {
		t.Error("file past the threshold should be reaped")
	}
}

func TestReap_HugeRetentionKeepsEverything(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	m := NewManager(dir)
	m.now = func() time.Time { return now }

	fresh := touch(t, dir, "fresh.mp3", now.Add(-time.Minute))
	ancient := touch(t, dir, "ancient.mp3", now.Add(-50*365*24*time.Hour))

	for _, days := range []int{106752, 1000000, math.MaxInt} {
		result := m.Reap(days)
		if len(result.Deleted) != 0 {
			t.Errorf("Reap(%d) deleted %v", days, result.Deleted)
		}
	}
	if !exists(fresh) || !exists(ancient) {
		t.Error("artifacts deleted with a retention longer than any file age")
	}
}

func TestReap_ContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	m := NewManager(dir)
	m.now = func() time.Time { return now }

	locked := touch(t, dir, "locked.mp3", now.Add(-30*24*time.Hour))
	a := touch(t, dir, "a.mp3", now.Add(-30*24*time.Hour))
	z := touch(t, dir, "z.mp3", now.Add(-30*24*time.Hour))

	m.remove = func(path string) error {
		if path == locked {
			return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrPermission}
		}
		return os.Remove(path)
	}

	result := m.Reap(7)

	if exists(a) || exists(z) {
		t.Error("deletable files should be removed despite another failure")
	}
	if !exists(locked) {
		t.Error("locked file should remain")
	}
	if err := result.Failed[locked]; !errors.Is(err, fs.ErrPermission) {
		t.Errorf("expected permission error for locked file, got %v", err)
	}
	if len(result.Deleted) != 2 {
		t.Errorf("Deleted = %v", result.Deleted)
	}
}

func TestReap_EmptyAndMissingDirectory(t *testing.T) {
	result := NewManager(filepath.Join(t.TempDir(), "missing")).Reap(7)
	if len(result.Deleted) != 0 || len(result.Failed) != 0 {
		t.Errorf("expected no-op, got %+v", result)
	}

	result = NewManager(t.TempDir()).Reap(7)
	if len(result.Deleted) != 0 || result.Scanned != 0 {
		t.Errorf("expected no-op, got %+v", result)
	}
}

func TestReap_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested.mp3")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-30 * 24 * time.Hour)
	_ = os.Chtimes(sub, old, old)

	m := NewManager(dir)
	m.Reap(0)

	if !exists(sub) {
		t.Error("directories must not be reaped")
	}
}

func TestLifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "temp")
	m := NewManager(dir)

	if exists(dir) {
		t.Fatal("storage directory should start absent")
	}

	m.EnsureStorage()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("storage directory missing: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("storage directory should start empty, has %d entries", len(entries))
	}

	stub := []byte("stub-audio")
	a, err := m.Write(context.Background(), DeriveName("Bonjour"), "Bonjour", speech.Voice{Language: "fr"}, &stubSynth{audio: stub})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(a.Path) != "Bonjour.mp3" {
		t.Errorf("unexpected path %s", a.Path)
	}
	got, _ := os.ReadFile(a.Path)
	if string(got) != string(stub) {
		t.Errorf("artifact contents = %q", got)
	}

	// Zero retention: anything written before "now" is older than now.
	m.now = func() time.Time { return time.Now().Add(time.Second) }
	result := m.Reap(0)

	if exists(a.Path) {
		t.Error("artifact should be reaped with zero retention")
	}
	if len(result.Deleted) != 1 {
		t.Errorf("Deleted = %v", result.Deleted)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, dir, "older.mp3", now.Add(-2*time.Hour))
	touch(t, dir, "newer.mp3", now.Add(-time.Minute))
	touch(t, dir, "ignored.wav", now)

	list, err := NewManager(dir).List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(list))
	}
	if list[0].Name != "newer" || list[1].Name != "older" {
		t.Errorf("expected newest first, got %s, %s", list[0].Name, list[1].Name)
	}
	if list[0].Size != 3 {
		t.Errorf("Size = %d, want 3", list[0].Size)
	}

	missing, err := NewManager(filepath.Join(dir, "nope")).List()
	if err != nil || missing != nil {
		t.Errorf("missing directory should list nothing, got %v, %v", missing, err)
	}
}
