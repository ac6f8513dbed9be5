package icron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedule_Interval(t *testing.T) {
	schedule, err := NewSchedule(60*time.Second, "")
	require.NoError(t, err)

	ref := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	info := GetTriggerInfo(schedule, ref)
	assert.Equal(t, ref.Add(time.Minute), info.Next)
	assert.Equal(t, time.Minute, info.TimeUntilNext)
}

func TestNewSchedule_SubSecondInterval(t *testing.T) {
	schedule, err := NewSchedule(20*time.Millisecond, "")
	require.NoError(t, err)

	ref := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 20*time.Millisecond, schedule.Next(ref).Sub(ref))
}

func TestNewSchedule_CronOverridesInterval(t *testing.T) {
	schedule, err := NewSchedule(60*time.Second, "*/5 * * * *")
	require.NoError(t, err)

	ref := time.Date(2025, 1, 1, 10, 1, 0, 0, time.Local)
	assert.Equal(t, time.Date(2025, 1, 1, 10, 5, 0, 0, time.Local), schedule.Next(ref))
}

func TestNewSchedule_Invalid(t *testing.T) {
	_, err := NewSchedule(time.Minute, "not a cron")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")

	_, err = NewSchedule(0, "")
	require.Error(t, err)
}
