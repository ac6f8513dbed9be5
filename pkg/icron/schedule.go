package icron

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// NewSchedule returns the scan schedule. A non-empty cron expression wins over
// the fixed interval; descriptors such as "@hourly" are accepted.
func NewSchedule(interval time.Duration, expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr != "" {
		schedule, err := cron.ParseStandard(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid cron expression: %w", err)
		}
		return schedule, nil
	}
	if interval <= 0 {
		return nil, fmt.Errorf("scan interval must be positive, got %s", interval)
	}
	return Every(interval), nil
}

// Every is cron.Every without the rounding down to whole seconds, so tests
// can run the loop at millisecond intervals.
func Every(interval time.Duration) cron.Schedule {
	return constantDelay{delay: interval}
}

type constantDelay struct {
	delay time.Duration
}

func (c constantDelay) Next(t time.Time) time.Time {
	return t.Add(c.delay)
}

type TriggerInfo struct {
	Next          time.Time
	TimeUntilNext time.Duration
}

// GetTriggerInfo reports when schedule fires next after refTime.
func GetTriggerInfo(schedule cron.Schedule, refTime time.Time) TriggerInfo {
	next := schedule.Next(refTime)
	return TriggerInfo{
		Next:          next,
		TimeUntilNext: next.Sub(refTime),
	}
}
