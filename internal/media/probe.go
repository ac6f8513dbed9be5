package media

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/Youngzheimer/subtrans/pkg/log"
)

// Prober lists subtitle streams with ffprobe.
type Prober struct {
	ffprobePath string
	timeout     time.Duration
	runner      CommandRunner
}

// ProberOption is a functional option for configuring Prober
type ProberOption func(*Prober)

func WithFFprobePath(path string) ProberOption {
	return func(p *Prober) {
		p.ffprobePath = path
	}
}

func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		p.timeout = d
	}
}

// WithProberCommandRunner sets a custom command runner (for testing)
func WithProberCommandRunner(runner CommandRunner) ProberOption {
	return func(p *Prober) {
		p.runner = runner
	}
}

func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		ffprobePath: "ffprobe",
		timeout:     30 * time.Second,
		runner:      &ExecCommandRunner{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	Index       int               `json:"index"`
	CodecName   string            `json:"codec_name"`
	CodecType   string            `json:"codec_type"`
	BitRate     string            `json:"bit_rate"`
	Duration    string            `json:"duration"`
	Tags        map[string]string `json:"tags"`
	Disposition struct {
		Default int `json:"default"`
		Forced  int `json:"forced"`
	} `json:"disposition"`
}

// Probe returns the subtitle streams of videoPath. A video without
// subtitles yields an empty slice and no error.
func (p *Prober) Probe(ctx context.Context, videoPath string) ([]Stream, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	output, err := p.runner.Output(ctx, p.ffprobePath, probeArgs(videoPath)...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProbe, commandFailure(ctx, "ffprobe", err), err).
			WithContext("video", videoPath)
	}

	streams, err := parseProbeOutput(output)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProbe, "invalid ffprobe output", err).
			WithContext("video", videoPath)
	}

	log.Debug("ffprobe found %d subtitle stream(s) in %s", len(streams), videoPath)
	return streams, nil
}

// VerifyInstalled checks that ffprobe is available
func (p *Prober) VerifyInstalled(ctx context.Context) error {
	if _, err := p.runner.Output(ctx, p.ffprobePath, "-version"); err != nil {
		return apperr.Wrap(apperr.KindProbe, "ffprobe not found or not executable", err)
	}
	return nil
}

func probeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "s",
		"-show_entries", "stream=index,codec_name,codec_type,bit_rate,duration" +
			":stream_tags=language,title,NUMBER_OF_BYTES,NUMBER_OF_BYTES-eng,DURATION" +
			":stream_disposition=default,forced",
		"-of", "json",
		path,
	}
}

func parseProbeOutput(output []byte) ([]Stream, error) {
	var result probeOutput
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, err
	}

	streams := make([]Stream, 0, len(result.Streams))
	for _, s := range result.Streams {
		if s.CodecType != "" && s.CodecType != "subtitle" {
			continue
		}
		streams = append(streams, Stream{
			Index:    s.Index,
			Codec:    s.CodecName,
			Language: tag(s.Tags, "language"),
			Title:    tag(s.Tags, "title"),
			Size:     s.estimateSize(),
			Default:  s.Disposition.Default == 1,
			Forced:   s.Disposition.Forced == 1,
		})
	}
	return streams, nil
}

// estimateSize prefers the Matroska NUMBER_OF_BYTES statistic and falls
// back to bit_rate × duration.
func (s probeStream) estimateSize() int64 {
	for key, value := range s.Tags {
		if strings.HasPrefix(strings.ToUpper(key), "NUMBER_OF_BYTES") {
			if n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil && n > 0 {
				return n
			}
		}
	}

	bitRate, err := strconv.ParseFloat(s.BitRate, 64)
	if err != nil || bitRate <= 0 {
		return 0
	}
	seconds, err := strconv.ParseFloat(s.Duration, 64)
	if err != nil || seconds <= 0 {
		seconds = parseTagDuration(tag(s.Tags, "DURATION"))
	}
	if seconds <= 0 {
		return 0
	}
	return int64(bitRate * seconds / 8)
}

func tag(tags map[string]string, key string) string {
	for k, v := range tags {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// parseTagDuration parses "01:23:45.678000000" into seconds.
func parseTagDuration(value string) float64 {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0
	}
	h, errH := strconv.ParseFloat(parts[0], 64)
	m, errM := strconv.ParseFloat(parts[1], 64)
	sec, errS := strconv.ParseFloat(parts[2], 64)
	if errH != nil || errM != nil || errS != nil {
		return 0
	}
	return h*3600 + m*60 + sec
}
