package subtitle

import (
	"slices"
	"strings"
	"time"
)

// Cue is one timed block of subtitle text.
type Cue struct {
	Index int           // sequence number as read; 0 when the input had none
	Start time.Duration // start time
	End   time.Duration // end time
	Lines []string      // text lines, in display order
}

// Text returns the cue lines joined by newlines.
func (c Cue) Text() string {
	return strings.Join(c.Lines, "\n")
}

// WithText returns a copy of c carrying text in place of its lines.
func (c Cue) WithText(text string) Cue {
	c.Lines = nil
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			c.Lines = append(c.Lines, line)
		}
	}
	return c
}

// Renumber returns a copy of cues ordered by start then end time and
// numbered 1..n. Cues with equal timing keep their input order.
func Renumber(cues []Cue) []Cue {
	out := slices.Clone(cues)
	slices.SortStableFunc(out, func(a, b Cue) int {
		if a.Start != b.Start {
			return cmpDuration(a.Start, b.Start)
		}
		return cmpDuration(a.End, b.End)
	})
	for i := range out {
		out[i].Index = i + 1
	}
	return out
}

func cmpDuration(a, b time.Duration) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Chunk splits cues into consecutive groups of at most size cues.
// A size below 1 yields a single chunk.
func Chunk(cues []Cue, size int) [][]Cue {
	if len(cues) == 0 {
		return nil
	}
	if size < 1 || size >= len(cues) {
		return [][]Cue{cues}
	}

	chunks := make([][]Cue, 0, (len(cues)+size-1)/size)
	for start := 0; start < len(cues); start += size {
		end := min(start+size, len(cues))
		chunks = append(chunks, cues[start:end])
	}
	return chunks
}
