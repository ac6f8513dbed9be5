package pipeline

import (
	"context"

	"github.com/Youngzheimer/subtrans/internal/watch"
	"github.com/Youngzheimer/subtrans/pkg/log"
	"golang.org/x/sync/errgroup"
)

// ProcessBatch processes videos with up to the configured number of workers.
// Results are returned in input order. Videos not started before ctx is
// cancelled are left out.
func (o *Orchestrator) ProcessBatch(ctx context.Context, videos []string) []Result {
	results := make([]Result, len(videos))
	started := make([]bool, len(videos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, video := range videos {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			started[i] = true
			results[i] = o.Process(gctx, video)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Result, 0, len(videos))
	for i, ok := range started {
		if ok {
			out = append(out, results[i])
		}
	}

	s := Summarize(out)
	if len(videos) > 1 || s.Failed > 0 {
		log.Info("Batch finished: %d translated, %d skipped, %d failed", s.Translated, s.Skipped, s.Failed)
	}
	return out
}

// Handle adapts the orchestrator to a watch.Handler.
func (o *Orchestrator) Handle(ctx context.Context, videos []watch.Video) {
	paths := make([]string, len(videos))
	for i, v := range videos {
		paths[i] = v.Path
	}
	o.ProcessBatch(ctx, paths)
}
