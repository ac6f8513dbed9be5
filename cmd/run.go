package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/Youngzheimer/subtrans/internal/config"
	"github.com/Youngzheimer/subtrans/internal/watch"
	"github.com/Youngzheimer/subtrans/pkg/icron"
	"github.com/Youngzheimer/subtrans/pkg/log"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

func newRunCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch WATCH_DIRECTORY and translate new videos (default)",
		Long: `Scan WATCH_DIRECTORY every SCAN_INTERVAL seconds (or on SCAN_CRON) and
translate the embedded subtitle of every new video. Videos that already have a
<video>.<lang>.srt next to them are skipped. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDaemon(ctx, cfg)
		},
	}
}

func runDaemon(ctx context.Context, cfg *config.Config) error {
	info, err := os.Stat(cfg.Watch.Directory)
	if err != nil || !info.IsDir() {
		return apperr.Newf(apperr.KindConfig, "WATCH_DIRECTORY %s is not a directory", cfg.Watch.Directory)
	}

	lock, err := acquireLock(cfg.Runtime.LockFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("Failed to release lock %s: %v", cfg.Runtime.LockFile, err)
		}
	}()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.verifyTools(ctx); err != nil {
		return err
	}

	schedule, err := icron.NewSchedule(cfg.Watch.Interval, cfg.Watch.CronExpr)
	if err != nil {
		return apperr.Wrap(apperr.KindConfig, "invalid scan schedule", err)
	}

	w := watch.NewWatcher(cfg.Watch.Directory, a.orchestrator.Handle,
		watch.WithRecursive(cfg.Watch.Recursive),
		watch.WithIgnoreExisting(cfg.Watch.IgnoreExisting),
		watch.WithSchedule(schedule),
	)

	log.Info("Starting subtrans: %s", cfg)
	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("Shutting down")
		return nil
	}
	return err
}

// acquireLock takes the single-instance lock or fails when another daemon
// holds it.
func acquireLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another subtrans instance is already running (lock %s)", path)
	}
	return lock, nil
}
