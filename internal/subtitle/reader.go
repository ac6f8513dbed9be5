package subtitle

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// 00:02:16,612 --> 00:02:19,376, with '.' accepted for ',' and trailing
// position hints ignored.
var timeRangePattern = regexp.MustCompile(
	`^(\d+):(\d{1,2}):(\d{1,2})[,.](\d{1,3})\s*-->\s*(\d+):(\d{1,2}):(\d{1,2})[,.](\d{1,3})`)

// Parse reads SRT text into cues in presentation order. Text separated from
// its cue by a blank line stays with that cue.
func Parse(text string) ([]Cue, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var (
		cues    []Cue
		current = -1 // index into cues of the cue receiving text, -1 after a blank line
		pending []string
		blockAt int
	)

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		lineNo := i + 1

		if line == "" {
			current = -1
			continue
		}

		start, end, ok := parseTimeRange(line)
		if !ok {
			if current >= 0 {
				cues[current].Lines = append(cues[current].Lines, line)
				continue
			}
			if len(pending) == 0 {
				blockAt = lineNo
			}
			pending = append(pending, line)
			continue
		}

		cue := Cue{Start: start, End: end}
		if current >= 0 {
			// Cues not separated by a blank line: a trailing number on the
			// previous cue is this cue's index.
			prev := &cues[current]
			if n := len(prev.Lines); n > 0 {
				if idx, err := strconv.Atoi(prev.Lines[n-1]); err == nil {
					cue.Index = idx
					prev.Lines = prev.Lines[:n-1]
				}
			}
		} else if n := len(pending); n > 0 {
			if idx, err := strconv.Atoi(pending[n-1]); err == nil {
				cue.Index = idx
				pending = pending[:n-1]
			}
			if err := attachOrphans(cues, pending, blockAt); err != nil {
				return nil, err
			}
		}

		pending = nil
		cues = append(cues, cue)
		current = len(cues) - 1
	}

	if err := attachOrphans(cues, pending, blockAt); err != nil {
		return nil, err
	}
	return cues, nil
}

// attachOrphans appends lines found between blocks to the last cue. Lines
// before the first cue are an error.
func attachOrphans(cues []Cue, orphans []string, lineNo int) error {
	if len(orphans) == 0 {
		return nil
	}
	if len(cues) == 0 {
		return missingTimeRange(lineNo, orphans)
	}
	last := &cues[len(cues)-1]
	last.Lines = append(last.Lines, orphans...)
	return nil
}

func missingTimeRange(lineNo int, block []string) error {
	return apperr.Newf(apperr.KindFormat, "cue block at line %d has no time range", lineNo).
		WithContext("text", truncate(strings.Join(block, " "), 60))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// parseTimeRange parses an SRT time line.
func parseTimeRange(line string) (time.Duration, time.Duration, bool) {
	m := timeRangePattern.FindStringSubmatch(line)
	if len(m) != 9 {
		return 0, 0, false
	}
	return parseTimestamp(m[1], m[2], m[3], m[4]), parseTimestamp(m[5], m[6], m[7], m[8]), true
}

func parseTimestamp(hours, minutes, seconds, millis string) time.Duration {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	// "1,5" is 500ms
	for len(millis) < 3 {
		millis += "0"
	}
	ms, _ := strconv.Atoi(millis)

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond
}

// ReadFile reads and parses an SRT file.
func ReadFile(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}
	return Parse(string(data))
}

// DetectLanguage returns the majority language of the cue text, or
// language.Und when nothing is recognised.
func DetectLanguage(cues []Cue) language.Tag {
	counts := make(map[string]int)
	var order []string

	for _, cue := range cues {
		text := cue.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		lang := whatlanggo.DetectLang(text).Iso6391()
		if lang == "" {
			continue
		}
		if _, ok := counts[lang]; !ok {
			order = append(order, lang)
		}
		counts[lang]++
	}

	var topLang string
	var topCount int
	for _, lang := range order {
		if counts[lang] > topCount {
			topLang = lang
			topCount = counts[lang]
		}
	}

	if topLang == "" {
		return language.Und
	}
	tag, err := language.Parse(topLang)
	if err != nil {
		return language.Und
	}
	return tag
}
