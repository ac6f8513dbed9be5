package main

import (
	"context"
	"fmt"

	"github.com/Youngzheimer/subtrans/internal/config"
	"github.com/Youngzheimer/subtrans/internal/media"
	"github.com/Youngzheimer/subtrans/internal/persistence"
	"github.com/Youngzheimer/subtrans/internal/pipeline"
	"github.com/Youngzheimer/subtrans/internal/translator"
	"github.com/Youngzheimer/subtrans/pkg/log"
)

// app holds the components shared by the run and process commands.
type app struct {
	cfg          *config.Config
	prober       *media.Prober
	extractor    *media.Extractor
	journal      *persistence.Journal
	orchestrator *pipeline.Orchestrator
}

func newProber(cfg *config.Config) *media.Prober {
	return media.NewProber(
		media.WithFFprobePath(cfg.Media.FFprobePath),
		media.WithProbeTimeout(cfg.Media.ProbeTimeout),
	)
}

func newExtractor(cfg *config.Config) *media.Extractor {
	return media.NewExtractor(
		media.WithFFmpegPath(cfg.Media.FFmpegPath),
		media.WithExtractTimeout(cfg.Media.ExtractTimeout),
	)
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg:       cfg,
		prober:    newProber(cfg),
		extractor: newExtractor(cfg),
	}

	client, err := translator.NewFromConfig(ctx, cfg.Translate)
	if err != nil {
		return nil, err
	}

	opts := pipeline.ConfigOptions(*cfg)
	if cfg.Runtime.HistoryDB != "" {
		journal, err := persistence.OpenJournal(cfg.Runtime.HistoryDB)
		if err != nil {
			return nil, fmt.Errorf("open history db: %w", err)
		}
		a.journal = journal
		opts = append(opts, pipeline.WithRecorder(journal))
		log.Debug("Journaling to %s", cfg.Runtime.HistoryDB)
	}

	a.orchestrator = pipeline.NewOrchestrator(a.prober, a.extractor, client, cfg.Translate.TargetLanguage, opts...)
	return a, nil
}

// verifyTools fails when ffprobe or ffmpeg cannot be run.
func (a *app) verifyTools(ctx context.Context) error {
	if err := a.prober.VerifyInstalled(ctx); err != nil {
		return err
	}
	return a.extractor.VerifyInstalled(ctx)
}

func (a *app) Close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			log.Warn("Failed to close history db: %v", err)
		}
	}
}
