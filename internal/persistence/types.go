package persistence

import "time"

// Entry is one processing attempt for a video.
type Entry struct {
	ID             int64
	Video          string
	Status         string
	Stage          string
	Output         string
	Error          string
	Cues           int
	SourceLanguage string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Duration is how long the attempt took.
func (e Entry) Duration() time.Duration {
	if e.FinishedAt.Before(e.StartedAt) {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}
