package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Youngzheimer/subtrans/internal/media"
	"github.com/Youngzheimer/subtrans/internal/persistence"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const helloSRT = "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n"

type fakeProber struct {
	mu      sync.Mutex
	streams []media.Stream
	err     error
	calls   []string
}

func (f *fakeProber) Probe(ctx context.Context, videoPath string) ([]media.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, videoPath)
	return f.streams, f.err
}

// fakeExtractor writes content to the requested output path.
type fakeExtractor struct {
	mu      sync.Mutex
	content string
	err     error
	outputs []string
	streams []int
}

func (f *fakeExtractor) Extract(ctx context.Context, videoPath string, streamIndex int, outputPath string) (media.RawFile, error) {
	f.mu.Lock()
	f.outputs = append(f.outputs, outputPath)
	f.streams = append(f.streams, streamIndex)
	f.mu.Unlock()
	if f.err != nil {
		return media.RawFile{}, f.err
	}
	if err := os.WriteFile(outputPath, []byte(f.content), 0o644); err != nil {
		return media.RawFile{}, err
	}
	return media.RawFile{Path: outputPath, StreamIndex: streamIndex, Size: int64(len(f.content))}, nil
}

type translateFunc func(ctx context.Context, text string, target language.Tag) (string, error)

func (f translateFunc) Translate(ctx context.Context, text string, target language.Tag) (string, error) {
	return f(ctx, text, target)
}

// replacer translates by plain word substitution.
func replacer(pairs ...string) translateFunc {
	r := strings.NewReplacer(pairs...)
	return func(ctx context.Context, text string, target language.Tag) (string, error) {
		return r.Replace(text), nil
	}
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries []persistence.Entry
}

func (m *memoryRecorder) Record(ctx context.Context, e persistence.Entry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return int64(len(m.entries)), nil
}

// newVideo creates an empty video file in dir.
func newVideo(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func englishStream(index int, size int64) media.Stream {
	return media.Stream{Index: index, Codec: "subrip", Language: "eng", Size: size}
}

// assertEmptyDir fails when dir has any entries left.
func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Empty(t, names, "temp files left behind")
}
