package media

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/Youngzheimer/subtrans/pkg/log"
	"github.com/dustin/go-humanize"
)

// Extractor converts one subtitle stream to an SRT file with ffmpeg.
type Extractor struct {
	ffmpegPath string
	timeout    time.Duration
	runner     CommandRunner
}

// ExtractorOption is a functional option for configuring Extractor
type ExtractorOption func(*Extractor)

func WithFFmpegPath(path string) ExtractorOption {
	return func(e *Extractor) {
		e.ffmpegPath = path
	}
}

func WithExtractTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		e.timeout = d
	}
}

// WithExtractorCommandRunner sets a custom command runner (for testing)
func WithExtractorCommandRunner(runner CommandRunner) ExtractorOption {
	return func(e *Extractor) {
		e.runner = runner
	}
}

func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		ffmpegPath: "ffmpeg",
		timeout:    5 * time.Minute,
		runner:     &ExecCommandRunner{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract writes stream streamIndex of videoPath to outputPath as SRT.
func (e *Extractor) Extract(ctx context.Context, videoPath string, streamIndex int, outputPath string) (RawFile, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	fail := func(msg string, cause error) (RawFile, error) {
		return RawFile{}, apperr.Wrap(apperr.KindExtract, msg, cause).
			WithContext("video", videoPath).
			WithContext("stream", streamIndex)
	}

	if err := e.runner.Run(ctx, e.ffmpegPath, extractArgs(videoPath, streamIndex, outputPath)...); err != nil {
		return fail(commandFailure(ctx, "ffmpeg", err), err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fail("ffmpeg produced no output", err)
	}
	if info.Size() == 0 {
		return fail("ffmpeg produced an empty subtitle", nil)
	}

	log.Debug("Extracted stream %d of %s (%s)", streamIndex, videoPath, humanize.IBytes(uint64(info.Size())))
	return RawFile{Path: outputPath, StreamIndex: streamIndex, Size: info.Size()}, nil
}

// VerifyInstalled checks that ffmpeg is available
func (e *Extractor) VerifyInstalled(ctx context.Context) error {
	if _, err := e.runner.Output(ctx, e.ffmpegPath, "-version"); err != nil {
		return apperr.Wrap(apperr.KindExtract, "ffmpeg not found or not executable", err)
	}
	return nil
}

func extractArgs(videoPath string, streamIndex int, outputPath string) []string {
	return []string{
		"-nostdin",
		"-v", "error",
		"-y",
		"-i", videoPath,
		"-map", "0:" + strconv.Itoa(streamIndex),
		"-c:s", "srt",
		"-f", "srt",
		outputPath,
	}
}
