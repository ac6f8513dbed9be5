package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Youngzheimer/subtrans/pkg/icron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(videos []Video) []string {
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.Name())
	}
	return out
}

func TestWatcher_ScanReportsNewVideosOnce(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp4"))
	touch(t, filepath.Join(root, "b.mkv"))
	touch(t, filepath.Join(root, "c.txt"))

	w := NewWatcher(root, nil)

	first, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp4", "b.mkv"}, names(first))

	second, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestWatcher_NewAndRemovedFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp4"))

	seen := NewSeenSet()
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	w := NewWatcher(root, nil, WithSeenSet(seen), WithClock(func() time.Time { return clock }))

	_, err := w.Scan(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "a.mp4")))
	touch(t, filepath.Join(root, "d.mov"))

	got, err := w.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d.mov", got[0].Name())
	assert.Equal(t, clock, got[0].DiscoveredAt)
	assert.Equal(t, []string{filepath.Join(root, "d.mov")}, seen.Paths())

	// a file that comes back is new again
	touch(t, filepath.Join(root, "a.mp4"))
	got, err = w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp4"}, names(got))
}

func TestWatcher_IgnoreExisting(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "old.mp4"))

	w := NewWatcher(root, nil, WithIgnoreExisting(true))

	first, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, first)
	assert.True(t, w.Seen().Has(filepath.Join(root, "old.mp4")))

	touch(t, filepath.Join(root, "new.mkv"))
	second, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"new.mkv"}, names(second))
}

func TestWatcher_InjectedSeenSet(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp4"))
	touch(t, filepath.Join(root, "b.mp4"))

	w := NewWatcher(root, nil, WithSeenSet(NewSeenSet(filepath.Join(root, "a.mp4"))))
	got, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b.mp4"}, names(got))
}

func TestWatcher_RunLoop(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp4"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var handled [][]string
	var waits []time.Duration
	var w *Watcher
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	w = NewWatcher(root,
		func(_ context.Context, videos []Video) {
			assert.Equal(t, StateScanning, w.State())
			handled = append(handled, names(videos))
		},
		WithSchedule(icron.Every(45*time.Second)),
		WithClock(func() time.Time { return clock }),
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			assert.Equal(t, StateSleeping, w.State())
			waits = append(waits, d)
			switch len(waits) {
			case 1:
				touch(t, filepath.Join(root, "b.mkv"))
			case 3:
				cancel()
				return ctx.Err()
			}
			return nil
		}),
	)

	err := w.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, [][]string{{"a.mp4"}, {"b.mkv"}}, handled)
	assert.Equal(t, []time.Duration{45 * time.Second, 45 * time.Second, 45 * time.Second}, waits)
	assert.Equal(t, StateIdle, w.State())
}

func TestWatcher_RunSurvivesScanErrors(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not-yet")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var handled []string
	sleeps := 0
	w := NewWatcher(root,
		func(_ context.Context, videos []Video) { handled = append(handled, names(videos)...) },
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			sleeps++
			if sleeps == 1 {
				touch(t, filepath.Join(root, "late.mp4"))
				return nil
			}
			cancel()
			return ctx.Err()
		}),
	)

	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
	assert.Equal(t, []string{"late.mp4"}, handled)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "scanning", StateScanning.String())
	assert.Equal(t, "sleeping", StateSleeping.String())
}
