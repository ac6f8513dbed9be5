package pipeline

import (
	"context"
	"time"

	"github.com/Youngzheimer/subtrans/internal/media"
	"github.com/Youngzheimer/subtrans/internal/persistence"
	"golang.org/x/text/language"
)

type Prober interface {
	Probe(ctx context.Context, videoPath string) ([]media.Stream, error)
}

type Extractor interface {
	Extract(ctx context.Context, videoPath string, streamIndex int, outputPath string) (media.RawFile, error)
}

type Translator interface {
	Translate(ctx context.Context, sourceText string, target language.Tag) (string, error)
}

// Recorder stores one entry per processed video.
type Recorder interface {
	Record(ctx context.Context, e persistence.Entry) (int64, error)
}

type Status string

const (
	StatusTranslated Status = "translated"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Stage names the step a video was in when it stopped.
type Stage string

const (
	StageCheck     Stage = "check"
	StageProbe     Stage = "probe"
	StageSelect    Stage = "select"
	StageExtract   Stage = "extract"
	StageParse     Stage = "parse"
	StageTranslate Stage = "translate"
	StageWrite     Stage = "write"
)

// Result is the outcome of processing one video. Err is set only for
// StatusFailed.
type Result struct {
	Video          string
	Status         Status
	Stage          Stage
	Reason         string
	Output         string
	Cues           int
	Stream         int
	SourceLanguage language.Tag
	Err            error
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Summary counts results by status.
type Summary struct {
	Translated int
	Skipped    int
	Failed     int
}

func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusTranslated:
			s.Translated++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
