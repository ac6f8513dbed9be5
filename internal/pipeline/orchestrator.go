package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/Youngzheimer/subtrans/internal/config"
	"github.com/Youngzheimer/subtrans/internal/media"
	"github.com/Youngzheimer/subtrans/internal/persistence"
	"github.com/Youngzheimer/subtrans/internal/subtitle"
	"github.com/Youngzheimer/subtrans/pkg/file"
	"github.com/Youngzheimer/subtrans/pkg/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
)

// Orchestrator runs the per-video pipeline: probe, select, extract, parse,
// translate, write. Failures are contained per video.
type Orchestrator struct {
	prober     Prober
	extractor  Extractor
	translator Translator
	recorder   Recorder

	target    language.Tag
	tempDir   string
	batchSize int
	maxSize   int64
	workers   int
	now       func() time.Time
}

type Option func(*Orchestrator)

// WithRecorder journals every processed video.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

func WithTempDir(dir string) Option {
	return func(o *Orchestrator) {
		if dir != "" {
			o.tempDir = dir
		}
	}
}

// WithBatchSize sets the number of cues sent per request. Below 1 sends the
// whole subtitle at once.
func WithBatchSize(n int) Option {
	return func(o *Orchestrator) {
		o.batchSize = n
	}
}

// WithMaxSubtitleSize skips extracted subtitles larger than n bytes; 0 disables the check.
func WithMaxSubtitleSize(n int64) Option {
	return func(o *Orchestrator) {
		o.maxSize = n
	}
}

func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithClock replaces time.Now (for testing).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func NewOrchestrator(prober Prober, extractor Extractor, translator Translator, target language.Tag, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		prober:     prober,
		extractor:  extractor,
		translator: translator,
		target:     target,
		tempDir:    os.TempDir(),
		batchSize:  10,
		workers:    1,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ConfigOptions maps the runtime configuration onto orchestrator options.
func ConfigOptions(cfg config.Config) []Option {
	return []Option{
		WithTempDir(cfg.Media.TempDir),
		WithBatchSize(cfg.Translate.BatchSize),
		WithMaxSubtitleSize(cfg.Media.MaxSubtitleSize),
		WithWorkers(cfg.Runtime.Workers),
	}
}

// OutputPath is where the translation of videoPath is written.
func (o *Orchestrator) OutputPath(videoPath string) string {
	return file.SubtitlePath(videoPath, o.target.String())
}

// Process runs every stage for one video. It never returns an error: the
// outcome, including any failure, is carried in the Result.
func (o *Orchestrator) Process(ctx context.Context, videoPath string) (res Result) {
	res = Result{
		Video:          videoPath,
		Output:         o.OutputPath(videoPath),
		Stream:         -1,
		SourceLanguage: language.Und,
		StartedAt:      o.now(),
	}
	defer func() {
		res.FinishedAt = o.now()
		o.report(ctx, res)
	}()

	skip := func(stage Stage, reason string) Result {
		res.Status = StatusSkipped
		res.Stage = stage
		res.Reason = reason
		return res
	}
	fail := func(stage Stage, err error) Result {
		res.Status = StatusFailed
		res.Stage = stage
		res.Reason = err.Error()
		res.Err = err
		return res
	}

	if file.Exists(res.Output) {
		return skip(StageCheck, "output already exists")
	}

	log.Info("Processing %s", videoPath)

	streams, err := o.prober.Probe(ctx, videoPath)
	if err != nil {
		return fail(StageProbe, err)
	}
	usable := media.TextStreams(streams)
	if len(usable) == 0 {
		if len(streams) == 0 {
			return skip(StageProbe, "no subtitle streams")
		}
		return skip(StageProbe, fmt.Sprintf("%d subtitle streams, none text based", len(streams)))
	}
	if media.HasLanguage(streams, o.target) {
		return skip(StageSelect, fmt.Sprintf("already has a %s subtitle stream", o.target))
	}

	best, _ := media.SelectBest(usable)
	res.Stream = best.Index
	log.Debug("Selected stream %d (%s, %s) of %d for %s",
		best.Index, best.Codec, humanize.IBytes(uint64(max(best.Size, 0))), len(usable), videoPath)

	if err := os.MkdirAll(o.tempDir, 0o755); err != nil {
		return fail(StageExtract, apperr.Wrap(apperr.KindExtract, "create temp directory", err).
			WithContext("dir", o.tempDir))
	}
	rawPath := file.RawSubtitlePath(o.tempDir, videoPath, best.Index)
	defer func() {
		if err := file.RemoveIfExists(rawPath); err != nil {
			log.Warn("Failed to remove temp subtitle %s: %v", rawPath, err)
		}
	}()

	raw, err := o.extractor.Extract(ctx, videoPath, best.Index, rawPath)
	if err != nil {
		return fail(StageExtract, err)
	}
	if o.maxSize > 0 && raw.Size > o.maxSize {
		return skip(StageExtract, fmt.Sprintf("subtitle is %s, over the %s limit",
			humanize.IBytes(uint64(raw.Size)), humanize.IBytes(uint64(o.maxSize))))
	}

	cues, err := subtitle.ReadFile(raw.Path)
	if err != nil {
		return fail(StageParse, err)
	}
	if len(cues) == 0 {
		return skip(StageParse, "subtitle has no cues")
	}
	res.SourceLanguage = subtitle.DetectLanguage(cues)

	translated, err := o.translateCues(ctx, cues)
	if err != nil {
		return fail(StageTranslate, err)
	}

	if err := subtitle.WriteFile(res.Output, translated); err != nil {
		return fail(StageWrite, apperr.Wrap(apperr.KindOutput, "write translated subtitle", err).
			WithContext("output", res.Output))
	}

	res.Status = StatusTranslated
	res.Stage = StageWrite
	res.Cues = len(translated)
	return res
}

func (o *Orchestrator) report(ctx context.Context, res Result) {
	elapsed := res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond)
	switch res.Status {
	case StatusTranslated:
		log.Info("Translated %s (%d cues, %s -> %s) in %s: %s",
			res.Video, res.Cues, res.SourceLanguage, o.target, elapsed, res.Output)
	case StatusSkipped:
		if res.Stage == StageCheck {
			log.Debug("Skipping %s: %s", res.Video, res.Reason)
		} else {
			log.Info("Skipping %s at %s: %s", res.Video, res.Stage, res.Reason)
		}
	case StatusFailed:
		log.Error("Failed %s at %s: %v", res.Video, res.Stage, res.Err)
		if advice := apperr.Advice(res.Err); advice != "" {
			log.Info("Hint: %s", advice)
		}
	}

	if o.recorder == nil || (res.Status == StatusSkipped && res.Stage == StageCheck) {
		return
	}
	entry := persistence.Entry{
		Video:      res.Video,
		Status:     string(res.Status),
		Stage:      string(res.Stage),
		Cues:       res.Cues,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
	if res.Status == StatusTranslated {
		entry.Output = res.Output
	}
	if res.SourceLanguage != language.Und {
		entry.SourceLanguage = res.SourceLanguage.String()
	}
	if res.Status != StatusTranslated {
		entry.Error = res.Reason
	}
	if _, err := o.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		log.Warn("Failed to journal %s: %v", res.Video, err)
	}
}
