package cron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// CalculateNextRun returns the first run strictly after now, in epoch ms.
func CalculateNextRun(schedule Schedule, now time.Time) (int64, error) {
	switch schedule.Kind {
	case ScheduleKindAt:
		return calculateAtSchedule(schedule)
	case ScheduleKindEvery:
		return calculateEverySchedule(schedule, now)
	case ScheduleKindCron:
		next, err := NextRuns(schedule.Expr, schedule.TZ, now, 1)
		if err != nil {
			return 0, err
		}
		return next[0].UnixMilli(), nil
	default:
		return 0, fmt.Errorf("%w: unknown schedule kind %q", ErrInvalidSchedule, schedule.Kind)
	}
}

// Validate checks that schedule can be evaluated.
func Validate(schedule Schedule) error {
	_, err := CalculateNextRun(schedule, time.Now())
	return err
}

func calculateAtSchedule(schedule Schedule) (int64, error) {
	if schedule.AtMs > 0 {
		return schedule.AtMs, nil
	}
	if schedule.At == "" {
		return 0, fmt.Errorf("%w: 'at' schedule requires 'atMs' or 'at'", ErrInvalidSchedule)
	}

	t, err := time.Parse(time.RFC3339, schedule.At)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid timestamp: %v", ErrInvalidSchedule, err)
	}
	return t.UnixMilli(), nil
}

func calculateEverySchedule(schedule Schedule, now time.Time) (int64, error) {
	if schedule.EveryMs <= 0 {
		return 0, fmt.Errorf("%w: 'every' schedule requires positive 'everyMs' value", ErrInvalidSchedule)
	}

	nowMs := now.UnixMilli()
	if schedule.AnchorMs == nil {
		return nowMs + schedule.EveryMs, nil
	}

	anchor := *schedule.AnchorMs
	elapsed := nowMs - anchor
	if elapsed < 0 {
		return anchor, nil
	}

	periods := elapsed / schedule.EveryMs
	return anchor + (periods+1)*schedule.EveryMs, nil
}

// NextRuns returns the next n activation times of a 5-field cron
// expression after from, in tz when given.
func NextRuns(expr, tz string, from time.Time, n int) ([]time.Time, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: 'cron' schedule requires 'expr' field", ErrInvalidSchedule)
	}
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid cron expression: %v", ErrInvalidSchedule, err)
	}

	if tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid timezone: %v", ErrInvalidSchedule, err)
		}
		from = from.In(loc)
	}

	if n <= 0 {
		n = 1
	}
	out := make([]time.Time, 0, n)
	next := from
	for i := 0; i < n; i++ {
		next = sched.Next(next)
		if next.IsZero() {
			break
		}
		out = append(out, next)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q never fires", ErrInvalidSchedule, expr)
	}
	return out, nil
}
