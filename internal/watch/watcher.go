package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/Youngzheimer/subtrans/pkg/icron"
	"github.com/Youngzheimer/subtrans/pkg/log"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"
)

type State int

const (
	StateIdle State = iota
	StateScanning
	StateSleeping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateSleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

// Video is a video file first observed by a scan.
type Video struct {
	Path         string
	DiscoveredAt time.Time
}

func (v Video) Name() string {
	return filepath.Base(v.Path)
}

// Handler receives the videos that are new in a scan. It runs on the
// watcher goroutine; the next scan starts after it returns.
type Handler func(ctx context.Context, videos []Video)

// Watcher polls a directory and reports videos that were not present in
// the previous listing.
type Watcher struct {
	root           string
	recursive      bool
	ignoreExisting bool
	seen           *SeenSet
	schedule       cron.Schedule
	sleep          func(ctx context.Context, d time.Duration) error
	now            func() time.Time
	handler        Handler

	group singleflight.Group

	mu    sync.Mutex
	state State
	scans int
}

// Option is a function type for configuring Watcher
type Option func(*Watcher)

func WithRecursive(recursive bool) Option {
	return func(w *Watcher) {
		w.recursive = recursive
	}
}

// WithIgnoreExisting makes the first scan only seed the seen set.
func WithIgnoreExisting(ignore bool) Option {
	return func(w *Watcher) {
		w.ignoreExisting = ignore
	}
}

func WithSeenSet(seen *SeenSet) Option {
	return func(w *Watcher) {
		w.seen = seen
	}
}

func WithSchedule(schedule cron.Schedule) Option {
	return func(w *Watcher) {
		w.schedule = schedule
	}
}

// WithSleeper replaces the wait between scans (for testing).
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(w *Watcher) {
		w.sleep = sleep
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Watcher) {
		w.now = now
	}
}

func NewWatcher(root string, handler Handler, opts ...Option) *Watcher {
	w := &Watcher{
		root:      root,
		recursive: true,
		seen:      NewSeenSet(),
		schedule:  icron.Every(time.Minute),
		sleep:     icron.SleepWithContext,
		now:       time.Now,
		handler:   handler,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Watcher) Seen() *SeenSet {
	return w.seen
}

func (w *Watcher) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Scan lists the directory once and returns the videos absent from the
// previous listing. Concurrent calls share one listing.
func (w *Watcher) Scan(ctx context.Context) ([]Video, error) {
	v, err, _ := w.group.Do("scan", func() (any, error) {
		return w.scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Video), nil
}

func (w *Watcher) scan(ctx context.Context) ([]Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	current, err := ListVideos(w.root, w.recursive)
	if err != nil {
		return nil, err
	}

	added, removed := w.seen.Sync(current)

	w.mu.Lock()
	first := w.scans == 0
	w.scans++
	w.mu.Unlock()

	for _, p := range removed {
		log.Info("Removed: %s", filepath.Base(p))
	}

	if first && w.ignoreExisting {
		log.Info("Initial scan found %d existing video file(s); they will be ignored", len(added))
		for _, p := range added {
			log.Debug("Ignoring: %s", filepath.Base(p))
		}
		return []Video{}, nil
	}

	now := w.now()
	videos := make([]Video, 0, len(added))
	for _, p := range added {
		videos = append(videos, Video{Path: p, DiscoveredAt: now})
	}
	if len(videos) > 0 {
		log.Info("Detected %d new video file(s)", len(videos))
	}
	return videos, nil
}

// Run scans until ctx is cancelled, waiting between scans per the schedule.
// Scan errors are logged and the loop continues.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.setState(StateIdle)

	for {
		w.setState(StateScanning)
		videos, err := w.Scan(ctx)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return ctx.Err()
		case err != nil:
			log.Error("Failed to scan %s: %v", w.root, err)
		case len(videos) > 0 && w.handler != nil:
			w.handler(ctx, videos)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		w.setState(StateSleeping)
		trigger := icron.GetTriggerInfo(w.schedule, w.now())
		log.Debug("Next scan at %s (in %s)", trigger.Next.Format(time.DateTime), trigger.TimeUntilNext)
		if err := w.sleep(ctx, trigger.TimeUntilNext); err != nil {
			return err
		}
	}
}
