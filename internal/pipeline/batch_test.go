package pipeline

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/Youngzheimer/subtrans/internal/media"
	"github.com/Youngzheimer/subtrans/internal/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// perVideoProber fails for one path and tracks concurrent probes.
type perVideoProber struct {
	failFor string
	active  atomic.Int32
	peak    atomic.Int32
}

func (p *perVideoProber) Probe(ctx context.Context, videoPath string) ([]media.Stream, error) {
	n := p.active.Add(1)
	defer p.active.Add(-1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	if videoPath == p.failFor {
		return nil, apperr.New(apperr.KindProbe, "corrupt container")
	}
	return []media.Stream{englishStream(2, 100)}, nil
}

func TestProcessBatch_IsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	videos := []string{
		newVideo(t, dir, "a.mkv"),
		newVideo(t, dir, "b.mkv"),
		newVideo(t, dir, "c.mkv"),
		newVideo(t, dir, "d.mkv"),
	}
	prober := &perVideoProber{failFor: videos[1]}
	o := NewOrchestrator(prober, &fakeExtractor{content: helloSRT}, replacer("Hello", "Hola"), language.Spanish,
		WithTempDir(t.TempDir()), WithWorkers(2))

	results := o.ProcessBatch(context.Background(), videos)
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, videos[i], r.Video)
	}
	assert.Equal(t, StatusFailed, results[1].Status)
	assert.Equal(t, Summary{Translated: 3, Failed: 1}, Summarize(results))
	assert.FileExists(t, filepath.Join(dir, "a.es.srt"))
	assert.NoFileExists(t, filepath.Join(dir, "b.es.srt"))
	assert.FileExists(t, filepath.Join(dir, "d.es.srt"))
	assert.LessOrEqual(t, prober.peak.Load(), int32(2))
}

func TestProcessBatch_CancelledBeforeStart(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(&fakeProber{}, &fakeExtractor{}, replacer(), language.French)
	results := o.ProcessBatch(ctx, []string{newVideo(t, dir, "a.mkv")})
	assert.Empty(t, results)
}

func TestHandle_ProcessesWatchedVideos(t *testing.T) {
	dir := t.TempDir()
	recorder := &memoryRecorder{}
	o := NewOrchestrator(&fakeProber{}, &fakeExtractor{}, replacer(), language.French, WithRecorder(recorder))

	a := newVideo(t, dir, "a.mkv")
	o.Handle(context.Background(), []watch.Video{{Path: a, DiscoveredAt: time.Now()}})

	require.Len(t, recorder.entries, 1)
	assert.Equal(t, a, recorder.entries[0].Video)
	assert.Equal(t, "skipped", recorder.entries[0].Status)
	assert.Equal(t, "no subtitle streams", recorder.entries[0].Error)
}
