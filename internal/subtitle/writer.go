package subtitle

import (
	"fmt"
	"strings"
	"time"

	"github.com/Youngzheimer/subtrans/pkg/file"
)

// Serialize renders cues as SRT in start time order, numbered 1..n
// regardless of their Index.
func Serialize(cues []Cue) string {
	var b strings.Builder
	for _, cue := range Renumber(cues) {
		fmt.Fprintf(&b, "%d\n", cue.Index)
		fmt.Fprintf(&b, "%s --> %s\n", formatDuration(cue.Start), formatDuration(cue.End))
		for _, line := range cue.Lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFile serializes cues and replaces path atomically.
func WriteFile(path string, cues []Cue) error {
	if err := file.WriteAtomic(path, []byte(Serialize(cues)), 0o644); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return nil
}

// formatDuration formats time.Duration to SRT time format
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, milliseconds)
}
