package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var fixedNow = time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)

func TestCalculateAtSchedule(t *testing.T) {
	t.Run("epoch milliseconds", func(t *testing.T) {
		nextRun, err := CalculateNextRun(Schedule{Kind: ScheduleKindAt, AtMs: 1767225600000}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, int64(1767225600000), nextRun)
	})

	t.Run("valid ISO 8601 timestamp", func(t *testing.T) {
		schedule := Schedule{
			Kind: ScheduleKindAt,
			At:   "2024-12-25T14:00:00Z",
		}

		nextRun, err := CalculateNextRun(schedule, fixedNow)
		require.NoError(t, err)

		expected := time.Date(2024, 12, 25, 14, 0, 0, 0, time.UTC).UnixMilli()
		assert.Equal(t, expected, nextRun)
	})

	t.Run("invalid timestamp", func(t *testing.T) {
		_, err := CalculateNextRun(Schedule{Kind: ScheduleKindAt, At: "invalid"}, fixedNow)
		assert.ErrorIs(t, err, ErrInvalidSchedule)
		assert.Contains(t, err.Error(), "invalid timestamp")
	})

	t.Run("missing at field", func(t *testing.T) {
		_, err := CalculateNextRun(Schedule{Kind: ScheduleKindAt}, fixedNow)
		assert.ErrorIs(t, err, ErrInvalidSchedule)
	})
}

func TestCalculateEverySchedule(t *testing.T) {
	t.Run("without anchor", func(t *testing.T) {
		nextRun, err := CalculateNextRun(Schedule{Kind: ScheduleKindEvery, EveryMs: 60000}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, fixedNow.UnixMilli()+60000, nextRun)
	})

	t.Run("with anchor in the past", func(t *testing.T) {
		anchor := fixedNow.Add(-150 * time.Second).UnixMilli()
		nextRun, err := CalculateNextRun(Schedule{Kind: ScheduleKindEvery, EveryMs: 60000, AnchorMs: &anchor}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, anchor+3*60000, nextRun)
	})

	t.Run("with anchor in the future", func(t *testing.T) {
		anchor := fixedNow.Add(time.Hour).UnixMilli()
		nextRun, err := CalculateNextRun(Schedule{Kind: ScheduleKindEvery, EveryMs: 60000, AnchorMs: &anchor}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, anchor, nextRun)
	})

	t.Run("zero interval", func(t *testing.T) {
		_, err := CalculateNextRun(Schedule{Kind: ScheduleKindEvery}, fixedNow)
		assert.ErrorIs(t, err, ErrInvalidSchedule)
	})
}

func TestNextRuns(t *testing.T) {
	t.Run("every fifteen minutes", func(t *testing.T) {
		runs, err := NextRuns("*/15 * * * *", "", fixedNow, 3)
		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, time.Date(2026, 3, 10, 8, 45, 0, 0, time.UTC), runs[0])
		assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), runs[1])
		assert.Equal(t, time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC), runs[2])
	})

	t.Run("respects the timezone", func(t *testing.T) {
		runs, err := NextRuns("0 9 * * *", "Asia/Jakarta", fixedNow, 1)
		require.NoError(t, err)
		// 08:30 UTC is 15:30 in Jakarta, so the next 09:00 is tomorrow
		assert.Equal(t, time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC), runs[0].UTC())
	})

	t.Run("accepts descriptors", func(t *testing.T) {
		runs, err := NextRuns("@hourly", "", fixedNow, 1)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), runs[0])
	})

	t.Run("rejects bad expressions and zones", func(t *testing.T) {
		_, err := NextRuns("61 * * * *", "", fixedNow, 1)
		assert.ErrorIs(t, err, ErrInvalidSchedule)
		_, err = NextRuns("* * * *", "", fixedNow, 1)
		assert.ErrorIs(t, err, ErrInvalidSchedule)
		_, err = NextRuns("* * * * *", "Mars/Olympus", fixedNow, 1)
		assert.ErrorIs(t, err, ErrInvalidSchedule)
		_, err = NextRuns("", "", fixedNow, 1)
		assert.ErrorIs(t, err, ErrInvalidSchedule)
	})
}

func TestScheduleFrom(t *testing.T) {
	t.Run("reads the nanobot schedule shape", func(t *testing.T) {
		s, ok := ScheduleFrom(gjson.Parse(`{"schedule":{"kind":"every","everyMs":3600000,"anchorMs":5}}`))
		require.True(t, ok)
		assert.Equal(t, ScheduleKindEvery, s.Kind)
		assert.Equal(t, int64(3600000), s.EveryMs)
		require.NotNil(t, s.AnchorMs)
		assert.Equal(t, int64(5), *s.AnchorMs)
	})

	t.Run("reports a missing schedule", func(t *testing.T) {
		_, ok := ScheduleFrom(gjson.Parse(`{"name":"x"}`))
		assert.False(t, ok)
	})

	t.Run("unknown kinds do not validate", func(t *testing.T) {
		assert.ErrorIs(t, Validate(Schedule{Kind: "weekly"}), ErrInvalidSchedule)
	})
}
